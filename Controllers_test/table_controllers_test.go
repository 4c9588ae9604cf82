package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/table-reservation/models"
)

func TestTableCRUD(t *testing.T) {
	e := newEnv(t)
	staff := e.token(e.staff)

	// restaurant_id diambil dari token staff
	w := e.do(http.MethodPost, "/admin/tables", staff, map[string]interface{}{
		"number":     "A1",
		"capacity":   4,
		"position_x": 10,
		"position_y": 20,
		"shape":      "round",
		"zone":       "indoor",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var table models.Table
	decode(t, w, &table)
	assert.Equal(t, e.restaurant.ID, table.RestaurantID)
	assert.Equal(t, models.TableAvailable, table.Status)
	assert.Equal(t, "round", table.Shape)

	w = e.do(http.MethodGet, "/admin/tables", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tables []models.Table
	decode(t, w, &tables)
	assert.Len(t, tables, 1)

	w = e.do(http.MethodPut, fmt.Sprintf("/admin/tables/%d", table.ID), staff, map[string]interface{}{
		"capacity": 6,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &table)
	assert.Equal(t, 6, table.Capacity)
	assert.Equal(t, "A1", table.Number)

	w = e.do(http.MethodPatch, fmt.Sprintf("/admin/tables/%d/status", table.ID), staff, map[string]string{
		"status": "disabled",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.TableDisabled, e.tableStatus(table.ID))

	w = e.do(http.MethodDelete, fmt.Sprintf("/admin/tables/%d", table.ID), staff, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, fmt.Sprintf("/admin/tables/%d", table.ID), staff, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTableValidation(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/admin/tables", e.token(e.staff), map[string]interface{}{
		"number":   "A1",
		"capacity": 0,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var detail struct {
		Field string `json:"field"`
	}
	resp := decode(t, w, &detail)
	assert.False(t, resp.Status)
	assert.Equal(t, "capacity", detail.Field)
}

func TestUpdateTableStatusRejectsUnknownStatus(t *testing.T) {
	e := newEnv(t)
	table := e.addTable("A1", 4)

	w := e.do(http.MethodPatch, fmt.Sprintf("/admin/tables/%d/status", table.ID), e.token(e.staff), map[string]string{
		"status": "dirty",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.TableAvailable, e.tableStatus(table.ID))
}

func TestTablesScopedToStaffRestaurant(t *testing.T) {
	e := newEnv(t)
	table := e.addTable("A1", 4)

	other := models.Restaurant{Name: "Kopi Pagi"}
	require.NoError(t, e.db.Create(&other).Error)
	outsider := e.seedUser("Tono", "tono@example.com", models.RoleStaff, &other.ID)

	w := e.do(http.MethodPatch, fmt.Sprintf("/admin/tables/%d/status", table.ID), e.token(outsider), map[string]string{
		"status": "disabled",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodGet, fmt.Sprintf("/admin/tables?restaurant_id=%d", e.restaurant.ID), e.token(outsider), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// admin global harus menyebut restoran
	w = e.do(http.MethodGet, "/admin/tables", e.token(e.admin), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(http.MethodGet, fmt.Sprintf("/admin/tables?restaurant_id=%d", e.restaurant.ID), e.token(e.admin), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteTableWithActiveReservation(t *testing.T) {
	e := newEnv(t)
	table := e.addTable("A1", 4)
	e.book(table, "19:00")

	w := e.do(http.MethodDelete, fmt.Sprintf("/admin/tables/%d", table.ID), e.token(e.staff), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
