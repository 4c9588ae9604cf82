package Controllers_test

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/services"
)

func TestExportReservations(t *testing.T) {
	e := newEnv(t)
	table := e.addTable("A1", 4)
	res := e.book(table, "19:00")

	w := e.do(http.MethodGet, fmt.Sprintf("/admin/reports/reservations?from=%s&to=%s", bookingDate, bookingDate), e.token(e.staff), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "reservations_2030-06-01_2030-06-01.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Reservations")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Code", rows[0][0])
	assert.Equal(t, res.Code, rows[1][0])
	assert.Equal(t, "A1", rows[1][3])
	assert.Equal(t, "Budi", rows[1][6])
}

func TestExportReservationsBadRange(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/admin/reports/reservations?from=2030-06-02&to=2030-06-01", e.token(e.staff), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestDashboardStats(t *testing.T) {
	e := newEnv(t)
	table := e.addTable("A1", 4)
	e.addTable("A2", 4)
	e.book(table, "19:00")

	w := e.do(http.MethodGet, "/admin/dashboard/stats", e.token(e.staff), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats services.DashboardStats
	decode(t, w, &stats)
	assert.EqualValues(t, 1, stats.TableStats[models.TablePending])
	assert.EqualValues(t, 1, stats.TableStats[models.TableAvailable])
	assert.EqualValues(t, 1, stats.UpcomingCount)
}
