package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

type AvailabilityController struct {
	Availability *services.AvailabilityService
}

func NewAvailabilityController(availability *services.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{Availability: availability}
}

// GetAvailability -> ?date=YYYY-MM-DD&time=HH:MM&guest_count=N
func (ac *AvailabilityController) GetAvailability(c *gin.Context) {
	restaurantID, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	guests, err := strconv.Atoi(c.DefaultQuery("guest_count", "1"))
	if err != nil {
		respondServiceError(c, &services.ValidationError{Field: "guest_count", Message: "must be a number"})
		return
	}

	tables, err := ac.Availability.Query(c.Request.Context(), services.AvailabilityQuery{
		RestaurantID: restaurantID,
		Date:         c.Query("date"),
		Time:         c.Query("time"),
		GuestCount:   guests,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table availability", tables)
}
