package services

import (
	"fmt"

	"github.com/yeremiapane/table-reservation/models"
)

// Actor is the identity resolved by the auth collaborator. RestaurantID is
// set for staff and for admins bound to one restaurant; an admin without it
// manages every restaurant.
type Actor struct {
	UserID       uint
	Role         string
	RestaurantID *uint
}

func (a Actor) IsStaff() bool {
	return a.Role == models.RoleStaff || a.Role == models.RoleAdmin
}

// CanManage reports whether the actor is staff or admin of the restaurant.
func (a Actor) CanManage(restaurantID uint) bool {
	if !a.IsStaff() {
		return false
	}
	if a.Role == models.RoleAdmin && a.RestaurantID == nil {
		return true
	}
	return a.RestaurantID != nil && *a.RestaurantID == restaurantID
}

func requireManager(a Actor, restaurantID uint) error {
	if !a.CanManage(restaurantID) {
		return fmt.Errorf("%w: not staff of restaurant %d", ErrForbidden, restaurantID)
	}
	return nil
}

// ScopeRestaurant resolves which restaurant a staff request targets: staff
// bound to a restaurant always act on their own, unbound admins must name one.
func ScopeRestaurant(a Actor, requested uint) (uint, error) {
	if !a.IsStaff() {
		return 0, fmt.Errorf("%w: staff access required", ErrForbidden)
	}
	if a.RestaurantID != nil {
		if requested != 0 && requested != *a.RestaurantID {
			return 0, fmt.Errorf("%w: not staff of restaurant %d", ErrForbidden, requested)
		}
		return *a.RestaurantID, nil
	}
	if requested == 0 {
		return 0, invalid("restaurant_id", "is required")
	}
	return requested, nil
}
