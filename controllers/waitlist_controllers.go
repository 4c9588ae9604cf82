package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

type WaitlistController struct {
	Waitlist *services.WaitlistService
}

func NewWaitlistController(waitlist *services.WaitlistService) *WaitlistController {
	return &WaitlistController{Waitlist: waitlist}
}

// AddToWaitlist -> tamu walk-in masuk antrian
func (wc *WaitlistController) AddToWaitlist(c *gin.Context) {
	var req struct {
		RestaurantID         uint   `json:"restaurant_id"`
		Name                 string `json:"name" binding:"required"`
		Phone                string `json:"phone"`
		PartySize            int    `json:"party_size" binding:"required"`
		Priority             string `json:"priority"`
		EstimatedWaitMinutes *int   `json:"estimated_wait_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	entry, err := wc.Waitlist.Add(c.Request.Context(), currentActor(c), services.AddWaitlistInput{
		RestaurantID:         req.RestaurantID,
		Name:                 req.Name,
		Phone:                req.Phone,
		PartySize:            req.PartySize,
		Priority:             models.WaitlistPriority(req.Priority),
		EstimatedWaitMinutes: req.EstimatedWaitMinutes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Added to waitlist", entry)
}

func (wc *WaitlistController) GetWaitlist(c *gin.Context) {
	requested, ok := queryUint(c, "restaurant_id")
	if !ok {
		return
	}
	entries, err := wc.Waitlist.List(c.Request.Context(), currentActor(c), requested)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Waitlist", entries)
}

// UpdateWaitlistStatus -> notified, seated, left, cancelled
func (wc *WaitlistController) UpdateWaitlistStatus(c *gin.Context) {
	id, ok := paramID(c, "entry_id")
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

	entry, err := wc.Waitlist.UpdateStatus(c.Request.Context(), currentActor(c), id, models.WaitlistStatus(body.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Waitlist entry updated", entry)
}

func (wc *WaitlistController) RemoveFromWaitlist(c *gin.Context) {
	id, ok := paramID(c, "entry_id")
	if !ok {
		return
	}
	if err := wc.Waitlist.Remove(c.Request.Context(), currentActor(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Waitlist entry removed", nil)
}
