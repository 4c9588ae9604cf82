package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
	"gorm.io/gorm"
)

type PaymentController struct {
	DB           *gorm.DB
	Gateway      *services.DepositGateway
	Reservations *services.ReservationService
}

func NewPaymentController(db *gorm.DB, gateway *services.DepositGateway, reservations *services.ReservationService) *PaymentController {
	return &PaymentController{DB: db, Gateway: gateway, Reservations: reservations}
}

// DepositCallback -> notifikasi dari payment gateway untuk deposit reservasi
func (pc *PaymentController) DepositCallback(c *gin.Context) {
	var notification services.DepositNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	log := utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":           notification.OrderID,
		"transaction_id":     notification.TransactionID,
		"transaction_status": notification.TransactionStatus,
	})

	confirmation, err := pc.Gateway.Confirmation(notification)
	if err != nil {
		// status selain settlement cukup di-ack supaya gateway berhenti retry
		if errors.Is(err, services.ErrInvalidState) {
			log.Info("Deposit notification ignored")
			utils.RespondJSON(c, http.StatusOK, "Notification acknowledged", gin.H{
				"status": services.MapTransactionStatus(notification.TransactionStatus),
			})
			return
		}
		log.WithError(err).Warn("Deposit notification rejected")
		respondServiceError(c, err)
		return
	}

	res, err := pc.Reservations.ConfirmDeposit(c.Request.Context(), confirmation)
	if err != nil {
		log.WithError(err).Error("Failed to confirm deposit")
		respondServiceError(c, err)
		return
	}

	log.Info("Deposit confirmed")
	utils.RespondJSON(c, http.StatusOK, "Deposit confirmed", res)
}

// GetAllPayments -> daftar deposit yang sudah diterima restoran
func (pc *PaymentController) GetAllPayments(c *gin.Context) {
	requested, ok := queryUint(c, "restaurant_id")
	if !ok {
		return
	}
	restaurantID, err := services.ScopeRestaurant(currentActor(c), requested)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var payments []models.Payment
	if err := pc.DB.WithContext(c.Request.Context()).
		Joins("JOIN reservations ON reservations.id = payments.reservation_id").
		Where("reservations.restaurant_id = ?", restaurantID).
		Order("payments.paid_at DESC").
		Find(&payments).Error; err != nil {
		utils.ErrorLogger.Printf("Error listing payments: %v", err)
		utils.RespondMessage(c, http.StatusInternalServerError, "internal error")
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All payments", payments)
}
