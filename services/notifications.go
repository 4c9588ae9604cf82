package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/table-reservation/events"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/utils"
	"gorm.io/gorm"
)

// NotificationService stores staff notifications. It is also an
// events.Notifier: reservation events become rows the dashboard can list.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify -> simpan notifikasi untuk event reservasi yang perlu dilihat staff
func (s *NotificationService) Notify(ctx context.Context, evt events.Event) {
	res, ok := evt.Data.(*models.Reservation)
	if !ok {
		return
	}

	var title, message string
	switch evt.Type {
	case events.ReservationCreated:
		title = "New reservation"
		message = fmt.Sprintf("Reservation %s for %d guest(s) on %s %s", res.Code, res.GuestCount, res.Date, res.Time)
	case events.ReservationCancelled:
		title = "Reservation cancelled"
		message = fmt.Sprintf("Reservation %s on %s %s was cancelled", res.Code, res.Date, res.Time)
		if res.CancelReason != nil {
			message += ": " + *res.CancelReason
		}
	case events.ReservationDepositPaid:
		title = "Deposit paid"
		message = fmt.Sprintf("Deposit of %.2f received for reservation %s", res.DepositAmount, res.Code)
	default:
		return
	}

	id := res.ID
	notif := models.Notification{
		RestaurantID:  res.RestaurantID,
		ReservationID: &id,
		Event:         evt.Type,
		Title:         title,
		Message:       message,
	}
	if err := s.db.WithContext(ctx).Create(&notif).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to record notification for reservation %d: %v", res.ID, err)
		return
	}
	utils.InfoLogger.Printf("Notification created: %v", notif.Message)
}

func (s *NotificationService) List(ctx context.Context, actor Actor, restaurantID uint, unreadOnly bool) ([]models.Notification, error) {
	restaurantID, err := ScopeRestaurant(actor, restaurantID)
	if err != nil {
		return nil, err
	}
	var notifs []models.Notification
	err = retryRead(ctx, func() error {
		q := s.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
		if unreadOnly {
			q = q.Where("`read` = ?", false)
		}
		if err := q.Order("created_at DESC, id DESC").Limit(200).Find(&notifs).Error; err != nil {
			return storageError("list notifications", err)
		}
		return nil
	})
	return notifs, err
}

func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id uint) (*models.Notification, error) {
	var notif models.Notification
	if err := s.db.WithContext(ctx).First(&notif, id).Error; err != nil {
		return nil, lookupError("notification", "load notification", err)
	}
	if err := requireManager(actor, notif.RestaurantID); err != nil {
		return nil, err
	}
	if notif.Read {
		return &notif, nil
	}
	if err := s.db.WithContext(ctx).Model(&notif).Update("read", true).Error; err != nil {
		return nil, storageError("mark notification read", err)
	}
	notif.Read = true
	return &notif, nil
}
