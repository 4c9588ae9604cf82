package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminController struct {
	Reports *services.ReportService
}

func NewAdminController(reports *services.ReportService) *AdminController {
	return &AdminController{Reports: reports}
}

// GetDashboardStats mengambil statistik untuk dashboard
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	requested, ok := queryUint(c, "restaurant_id")
	if !ok {
		return
	}
	stats, err := ac.Reports.Dashboard(c.Request.Context(), currentActor(c), requested)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

// ExportReservations -> unduh reservasi ?from=&to= sebagai xlsx
func (ac *AdminController) ExportReservations(c *gin.Context) {
	requested, ok := queryUint(c, "restaurant_id")
	if !ok {
		return
	}
	from, to := c.Query("from"), c.Query("to")

	// tulis ke buffer dulu supaya error masih bisa dikirim sebagai JSON
	var buf bytes.Buffer
	if err := ac.Reports.ExportReservations(c.Request.Context(), currentActor(c), requested, from, to, &buf); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="reservations_%s_%s.xlsx"`, from, to))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
