package models

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationArrived   ReservationStatus = "arrived"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationNoShow    ReservationStatus = "no_show"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationArrived,
		ReservationCompleted, ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}

// HoldsSlot reports whether a reservation in this status still occupies its
// (table, date, time) slot.
func (s ReservationStatus) HoldsSlot() bool {
	return s != ReservationCancelled && s != ReservationNoShow
}

// Finished reports whether no further action is possible.
func (s ReservationStatus) Finished() bool {
	return s == ReservationCompleted || s == ReservationCancelled || s == ReservationNoShow
}

type Reservation struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	Code         string            `gorm:"type:varchar(32);not null;uniqueIndex:idx_reservations_code" json:"code"`
	RestaurantID uint              `gorm:"not null;index:idx_reservations_restaurant_date" json:"restaurant_id"`
	CustomerID   uint              `gorm:"not null;index" json:"customer_id"`
	TableID      uint              `gorm:"not null;index:idx_reservations_table_date" json:"table_id"`
	Date         string            `gorm:"type:varchar(10);not null;index:idx_reservations_restaurant_date;index:idx_reservations_table_date" json:"date"`
	Time         string            `gorm:"type:varchar(8);not null" json:"time"`
	GuestCount   int               `gorm:"not null" json:"guest_count"`
	Status       ReservationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	// SlotKey is "table|date|time" while the reservation holds its slot and
	// NULL once cancelled or marked no_show. The unique index on it is what
	// rejects a second active booking for the same slot.
	SlotKey          *string    `gorm:"type:varchar(64);uniqueIndex:idx_reservations_slot_key" json:"-"`
	Occasion         *string    `gorm:"type:varchar(100)" json:"occasion,omitempty"`
	SpecialRequest   *string    `gorm:"type:text" json:"special_request,omitempty"`
	DepositAmount    float64    `gorm:"type:decimal(10,2);not null;default:0" json:"deposit_amount"`
	DepositPaid      bool       `gorm:"not null;default:false" json:"deposit_paid"`
	DepositReference *string    `gorm:"type:varchar(100)" json:"deposit_reference,omitempty"`
	DepositPaidAt    *time.Time `json:"deposit_paid_at,omitempty"`
	CancelReason     *string    `gorm:"type:text" json:"cancel_reason,omitempty"`
	CancelledBy      *uint      `json:"cancelled_by,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updated_at"`
}
