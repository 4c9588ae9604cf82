package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

type ReservationController struct {
	Reservations *services.ReservationService
}

func NewReservationController(reservations *services.ReservationService) *ReservationController {
	return &ReservationController{Reservations: reservations}
}

// CreateReservation -> customer memesan meja untuk tanggal dan jam tertentu
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req struct {
		RestaurantID   uint    `json:"restaurant_id" binding:"required"`
		TableID        uint    `json:"table_id" binding:"required"`
		Date           string  `json:"date" binding:"required"`
		Time           string  `json:"time" binding:"required"`
		GuestCount     int     `json:"guest_count" binding:"required"`
		Occasion       *string `json:"occasion"`
		SpecialRequest *string `json:"special_request"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	res, err := rc.Reservations.Create(c.Request.Context(), currentActor(c), services.CreateReservationInput{
		RestaurantID:   req.RestaurantID,
		TableID:        req.TableID,
		Date:           req.Date,
		Time:           req.Time,
		GuestCount:     req.GuestCount,
		Occasion:       req.Occasion,
		SpecialRequest: req.SpecialRequest,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Reservation created", res)
}

// MyReservations -> riwayat reservasi milik customer (?status=, ?upcoming=true)
func (rc *ReservationController) MyReservations(c *gin.Context) {
	filter := reservationFilter(c)
	filter.Upcoming = c.Query("upcoming") == "true"

	list, err := rc.Reservations.ListForCustomer(c.Request.Context(), currentActor(c).UserID, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", list)
}

func (rc *ReservationController) GetReservation(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	res, err := rc.Reservations.Get(c.Request.Context(), currentActor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", res)
}

// CancelReservation dipakai customer (miliknya sendiri) dan staff
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	// body boleh kosong
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	if err := rc.Reservations.Cancel(c.Request.Context(), currentActor(c), id, body.Reason); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", gin.H{"id": id})
}

// ListReservations -> daftar reservasi restoran untuk staff (?date=, ?status=)
func (rc *ReservationController) ListReservations(c *gin.Context) {
	requested, ok := queryUint(c, "restaurant_id")
	if !ok {
		return
	}
	actor := currentActor(c)
	restaurantID, err := services.ScopeRestaurant(actor, requested)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	filter := reservationFilter(c)
	filter.Date = c.Query("date")

	list, err := rc.Reservations.ListForRestaurant(c.Request.Context(), actor, restaurantID, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", list)
}

// UpdateReservationStatus -> confirm, complete, no_show oleh staff
func (rc *ReservationController) UpdateReservationStatus(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
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

	res, err := rc.Reservations.UpdateStatus(c.Request.Context(), currentActor(c), id, models.ReservationStatus(body.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation status updated", res)
}

// MarkArrived -> tamu datang, meja menjadi occupied
func (rc *ReservationController) MarkArrived(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}
	res, err := rc.Reservations.MarkArrived(c.Request.Context(), currentActor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Guest arrived", res)
}

func reservationFilter(c *gin.Context) services.ReservationFilter {
	var f services.ReservationFilter
	if raw := c.Query("status"); raw != "" {
		status := models.ReservationStatus(raw)
		f.Status = &status
	}
	return f
}
