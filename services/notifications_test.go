package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-reservation/events"
	"github.com/yeremiapane/table-reservation/models"
)

func TestNotificationService_RecordsReservationEvents(t *testing.T) {
	f := newFixture(t)
	notifs := NewNotificationService(f.db)
	svc := NewReservationService(f.db, f.tables, WithNotifier(events.Multi{f.events, notifs}))
	ctx := context.Background()
	table := f.addTable(t, "A1", 4)

	res, err := svc.Create(ctx, f.customer, CreateReservationInput{
		RestaurantID: f.restaurant.ID, TableID: table.ID, Date: "2024-06-01", Time: "19:00", GuestCount: 2,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, f.customer, res.ID, "sick"))

	list, err := notifs.List(ctx, f.staff, 0, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, events.ReservationCancelled, list[0].Event)
	assert.Contains(t, list[0].Message, "sick")
	assert.Equal(t, events.ReservationCreated, list[1].Event)
	require.NotNil(t, list[1].ReservationID)
	assert.Equal(t, res.ID, *list[1].ReservationID)
}

func TestNotificationService_IgnoresOtherEvents(t *testing.T) {
	f := newFixture(t)
	notifs := NewNotificationService(f.db)

	notifs.Notify(context.Background(), events.Event{Type: events.TableStatusChanged, RestaurantID: f.restaurant.ID, Data: &models.Table{}})

	var count int64
	f.db.Model(&models.Notification{}).Count(&count)
	assert.Zero(t, count)
}

func TestNotificationService_MarkRead(t *testing.T) {
	f := newFixture(t)
	notifs := NewNotificationService(f.db)
	ctx := context.Background()

	n := models.Notification{RestaurantID: f.restaurant.ID, Event: events.ReservationCreated, Title: "New reservation", Message: "m"}
	require.NoError(t, f.db.Create(&n).Error)

	_, err := notifs.MarkRead(ctx, f.customer, n.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	got, err := notifs.MarkRead(ctx, f.staff, n.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)

	unread, err := notifs.List(ctx, f.staff, 0, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
