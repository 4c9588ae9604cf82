package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

type NotificationController struct {
	Notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{Notifications: notifications}
}

// GetAllNotifications -> ?unread=true untuk yang belum dibaca saja
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	requested, ok := queryUint(c, "restaurant_id")
	if !ok {
		return
	}
	notifs, err := nc.Notifications.List(c.Request.Context(), currentActor(c), requested, c.Query("unread") == "true")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications", notifs)
}

// MarkAsRead -> tandai notifikasi sudah dibaca
func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	id, ok := paramID(c, "notification_id")
	if !ok {
		return
	}
	notif, err := nc.Notifications.MarkRead(c.Request.Context(), currentActor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", notif)
}
