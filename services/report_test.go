package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yeremiapane/table-reservation/models"
)

func TestReportService_ExportReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.addTable(t, "A1", 4)
	f.book(t, table, "2024-06-02", "19:00")
	first := f.book(t, table, "2024-06-01", "19:00")
	f.book(t, table, "2024-07-01", "19:00")
	require.NoError(t, f.reservations.Cancel(ctx, f.customer, first.ID, "rain"))

	var buf bytes.Buffer
	report := NewReportService(f.db, f.tables)
	require.NoError(t, report.ExportReservations(ctx, f.staff, 0, "2024-06-01", "2024-06-30", &buf))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, reportColumns, rows[0])
	assert.Equal(t, first.Code, rows[1][0])
	assert.Equal(t, "2024-06-01", rows[1][1])
	assert.Equal(t, "A1", rows[1][3])
	assert.Equal(t, "cancelled", rows[1][5])
	assert.Equal(t, "Budi", rows[1][6])
	assert.Equal(t, "rain", rows[1][10])
	assert.Equal(t, "2024-06-02", rows[2][1])
}

func TestReportService_ExportValidation(t *testing.T) {
	f := newFixture(t)
	report := NewReportService(f.db, f.tables)
	var buf bytes.Buffer

	err := report.ExportReservations(context.Background(), f.staff, 0, "2024-06-30", "2024-06-01", &buf)
	assert.True(t, errors.Is(err, ErrValidation))

	err = report.ExportReservations(context.Background(), f.customer, 0, "2024-06-01", "2024-06-30", &buf)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestReportService_Dashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	report := NewReportService(f.db, f.tables)
	report.now = func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }

	a := f.addTable(t, "A1", 4)
	f.addTable(t, "A2", 4)
	f.book(t, a, "2024-06-01", "19:00")
	f.book(t, a, "2024-06-03", "19:00")
	waitlist := NewWaitlistService(f.db, nil, 10)
	_, err := waitlist.Add(ctx, f.staff, AddWaitlistInput{Name: "walk-in", PartySize: 2})
	require.NoError(t, err)

	stats, err := report.Dashboard(ctx, f.staff, 0)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", stats.Date)
	assert.Equal(t, int64(1), stats.TableStats[models.TablePending])
	assert.Equal(t, int64(1), stats.TableStats[models.TableAvailable])
	assert.Equal(t, int64(1), stats.TodayReservations[models.ReservationPending])
	assert.Equal(t, int64(1), stats.UpcomingCount)
	assert.Equal(t, int64(1), stats.WaitingParties)
	assert.Zero(t, stats.DepositsToday)
}
