package models

import "time"

const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255); not null" json:"name"`
	Email        string    `gorm:"type:varchar(255); unique;not null" json:"email"`
	Password     string    `gorm:"type:varchar(255); not null" json:"-"`
	Role         string    `gorm:"type:varchar(20); not null" json:"role"`
	RestaurantID *uint     `gorm:"index" json:"restaurant_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
