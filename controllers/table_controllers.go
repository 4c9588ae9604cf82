package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

type TableController struct {
	Tables *services.TableStore
}

func NewTableController(tables *services.TableStore) *TableController {
	return &TableController{Tables: tables}
}

type tableRequest struct {
	RestaurantID uint     `json:"restaurant_id"`
	Number       *string  `json:"number"`
	Capacity     *int     `json:"capacity"`
	Status       string   `json:"status"`
	PositionX    *float64 `json:"position_x"`
	PositionY    *float64 `json:"position_y"`
	Shape        *string  `json:"shape"`
	Width        *float64 `json:"width"`
	Height       *float64 `json:"height"`
	Zone         *string  `json:"zone"`
}

// CreateTable -> menambahkan meja baru ke denah restoran
func (tc *TableController) CreateTable(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	in := services.CreateTableInput{
		RestaurantID: req.RestaurantID,
		Status:       models.TableStatus(req.Status),
	}
	if req.Number != nil {
		in.Number = *req.Number
	}
	if req.Capacity != nil {
		in.Capacity = *req.Capacity
	}
	if req.PositionX != nil {
		in.PositionX = *req.PositionX
	}
	if req.PositionY != nil {
		in.PositionY = *req.PositionY
	}
	if req.Shape != nil {
		in.Shape = *req.Shape
	}
	if req.Width != nil {
		in.Width = *req.Width
	}
	if req.Height != nil {
		in.Height = *req.Height
	}
	if req.Zone != nil {
		in.Zone = *req.Zone
	}

	table, err := tc.Tables.Create(c.Request.Context(), currentActor(c), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> menampilkan seluruh meja restoran (?restaurant_id= untuk admin global)
func (tc *TableController) GetAllTables(c *gin.Context) {
	requested, ok := queryUint(c, "restaurant_id")
	if !ok {
		return
	}
	restaurantID, err := services.ScopeRestaurant(currentActor(c), requested)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	tables, err := tc.Tables.List(c.Request.Context(), restaurantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	table, err := tc.Tables.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !currentActor(c).CanManage(table.RestaurantID) {
		respondServiceError(c, services.ErrForbidden)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTable -> ubah nomor, kapasitas atau posisi meja; status lewat UpdateTableStatus
func (tc *TableController) UpdateTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.UpdateLayout(c.Request.Context(), currentActor(c), id, services.UpdateTableInput{
		Number:    req.Number,
		Capacity:  req.Capacity,
		PositionX: req.PositionX,
		PositionY: req.PositionY,
		Shape:     req.Shape,
		Width:     req.Width,
		Height:    req.Height,
		Zone:      req.Zone,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %d updated", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table updated successfully", table)
}

// UpdateTableStatus -> update status meja secara manual oleh staff
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.SetStatusAs(c.Request.Context(), currentActor(c), id, models.TableStatus(body.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %d status updated to %s", table.ID, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	if err := tc.Tables.Delete(c.Request.Context(), currentActor(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted successfully", nil)
}
