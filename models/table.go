package models

import (
	"time"

	"gorm.io/gorm"
)

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
	TablePending   TableStatus = "pending"
	TableDisabled  TableStatus = "disabled"
)

// Valid reports whether s is one of the known table states.
func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TablePending, TableDisabled:
		return true
	}
	return false
}

// Table is a physical table. Status is a display cache of current occupancy,
// the reservation set stays the source of truth for future bookings.
type Table struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RestaurantID uint           `gorm:"not null;index" json:"restaurant_id"`
	Number       string         `gorm:"type:varchar(50);not null" json:"number"`
	Capacity     int            `gorm:"not null;default:1" json:"capacity"`
	Status       TableStatus    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	PositionX    float64        `gorm:"not null;default:0" json:"position_x"`
	PositionY    float64        `gorm:"not null;default:0" json:"position_y"`
	Shape        string         `gorm:"type:varchar(20);not null;default:'square'" json:"shape"`
	Width        float64        `gorm:"not null;default:1" json:"width"`
	Height       float64        `gorm:"not null;default:1" json:"height"`
	Zone         string         `gorm:"type:varchar(50)" json:"zone"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
