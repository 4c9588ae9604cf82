// Package events carries booking domain events from the services to the
// websocket board, the message broker and the notification log.
package events

import (
	"context"
	"time"
)

const (
	ReservationCreated       = "reservation.created"
	ReservationStatusChanged = "reservation.status_changed"
	ReservationCancelled     = "reservation.cancelled"
	ReservationDepositPaid   = "reservation.deposit_paid"
	TableStatusChanged       = "table.status_changed"
	WaitlistUpdated          = "waitlist.updated"
)

// Event represents a lightweight domain event.
type Event struct {
	Type         string      `json:"event"`
	RestaurantID uint        `json:"restaurant_id"`
	Data         interface{} `json:"data"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

// Notifier reacts to an event. Implementations must not block the request
// for long and must not fail it: delivery problems are logged, not returned.
type Notifier interface {
	Notify(ctx context.Context, evt Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, evt Event)

func (f NotifierFunc) Notify(ctx context.Context, evt Event) { f(ctx, evt) }

// Multi fans an event out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, evt Event) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, evt)
		}
	}
}

// Nop discards events.
var Nop Notifier = NotifierFunc(func(context.Context, Event) {})
