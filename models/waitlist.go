package models

import (
	"time"

	"gorm.io/gorm"
)

type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "waiting"
	WaitlistNotified  WaitlistStatus = "notified"
	WaitlistSeated    WaitlistStatus = "seated"
	WaitlistLeft      WaitlistStatus = "left"
	WaitlistCancelled WaitlistStatus = "cancelled"
)

func (s WaitlistStatus) Valid() bool {
	switch s {
	case WaitlistWaiting, WaitlistNotified, WaitlistSeated, WaitlistLeft, WaitlistCancelled:
		return true
	}
	return false
}

// Finished -> seated, left dan cancelled tidak bisa dibuka lagi
func (s WaitlistStatus) Finished() bool {
	return s == WaitlistSeated || s == WaitlistLeft || s == WaitlistCancelled
}

type WaitlistPriority string

const (
	PriorityNormal WaitlistPriority = "normal"
	PriorityVIP    WaitlistPriority = "vip"
)

type WaitlistEntry struct {
	ID                   uint             `gorm:"primaryKey" json:"id"`
	RestaurantID         uint             `gorm:"not null;index" json:"restaurant_id"`
	Name                 string           `gorm:"type:varchar(255);not null" json:"name"`
	Phone                string           `gorm:"type:varchar(50)" json:"phone"`
	PartySize            int              `gorm:"not null" json:"party_size"`
	Status               WaitlistStatus   `gorm:"type:varchar(20);not null;default:'waiting'" json:"status"`
	EstimatedWaitMinutes int              `gorm:"not null;default:0" json:"estimated_wait_minutes"`
	Priority             WaitlistPriority `gorm:"type:varchar(10);not null;default:'normal'" json:"priority"`
	NotifiedAt           *time.Time       `json:"notified_at,omitempty"`
	SeatedAt             *time.Time       `json:"seated_at,omitempty"`
	CreatedAt            time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time        `gorm:"not null" json:"updated_at"`
	DeletedAt            gorm.DeletedAt   `gorm:"index" json:"-"`
}
