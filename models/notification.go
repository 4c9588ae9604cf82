package models

import (
	"time"
)

// Notification is a staff-facing note about a booking event.
type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RestaurantID  uint      `gorm:"not null;index" json:"restaurant_id"`
	ReservationID *uint     `gorm:"index" json:"reservation_id,omitempty"`
	Event         string    `gorm:"type:varchar(50);not null" json:"event"`
	Title         string    `gorm:"type:varchar(100);not null" json:"title"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	Read          bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}
