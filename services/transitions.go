package services

import "github.com/yeremiapane/table-reservation/models"

// reservationTransitions lists every allowed status edge. Anything missing
// here, including a status to itself, is rejected with ErrInvalidTransition.
var reservationTransitions = map[models.ReservationStatus][]models.ReservationStatus{
	models.ReservationPending:   {models.ReservationConfirmed, models.ReservationCancelled, models.ReservationNoShow},
	models.ReservationConfirmed: {models.ReservationArrived, models.ReservationCancelled, models.ReservationNoShow},
	models.ReservationArrived:   {models.ReservationCompleted},
}

// CanTransition reports whether a reservation may move from one status to another.
func CanTransition(from, to models.ReservationStatus) bool {
	for _, next := range reservationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from the given one.
func NextStatuses(from models.ReservationStatus) []models.ReservationStatus {
	next := reservationTransitions[from]
	out := make([]models.ReservationStatus, len(next))
	copy(out, next)
	return out
}
