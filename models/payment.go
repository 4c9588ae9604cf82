package models

import (
	"time"
)

const (
	PaymentStatusSuccess = "success"
)

// Payment records a deposit confirmation reported by the payment provider.
type Payment struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ReservationID uint      `json:"reservation_id" gorm:"not null;index"`
	Amount        float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	Status        string    `json:"status" gorm:"type:varchar(20);not null;default:'success'"`
	Provider      string    `json:"provider" gorm:"type:varchar(50)"`
	Reference     string    `json:"reference" gorm:"type:varchar(100);not null;uniqueIndex:idx_payments_reference"`
	PaidAt        time.Time `json:"paid_at" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
}
