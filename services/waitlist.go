package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/table-reservation/events"
	"github.com/yeremiapane/table-reservation/metrics"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/utils"
	"gorm.io/gorm"
)

// WaitlistService keeps the walk-in queue. Open entries (waiting, notified)
// may move to any status; seated, left and cancelled are final.
type WaitlistService struct {
	db          *gorm.DB
	notifier    events.Notifier
	defaultWait int
	now         func() time.Time
}

func NewWaitlistService(db *gorm.DB, notifier events.Notifier, defaultWaitMinutes int) *WaitlistService {
	if notifier == nil {
		notifier = events.Nop
	}
	return &WaitlistService{db: db, notifier: notifier, defaultWait: defaultWaitMinutes, now: time.Now}
}

type AddWaitlistInput struct {
	RestaurantID         uint
	Name                 string
	Phone                string
	PartySize            int
	Priority             models.WaitlistPriority
	EstimatedWaitMinutes *int
}

func (s *WaitlistService) Add(ctx context.Context, actor Actor, in AddWaitlistInput) (*models.WaitlistEntry, error) {
	restaurantID, err := ScopeRestaurant(actor, in.RestaurantID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if in.PartySize < 1 {
		return nil, invalid("party_size", "must be at least 1")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityNormal
	}
	if in.Priority != models.PriorityNormal && in.Priority != models.PriorityVIP {
		return nil, invalid("priority", "must be normal or vip")
	}
	wait := s.defaultWait
	if in.EstimatedWaitMinutes != nil {
		if *in.EstimatedWaitMinutes < 0 {
			return nil, invalid("estimated_wait_minutes", "must not be negative")
		}
		wait = *in.EstimatedWaitMinutes
	}

	entry := models.WaitlistEntry{
		RestaurantID:         restaurantID,
		Name:                 name,
		Phone:                strings.TrimSpace(in.Phone),
		PartySize:            in.PartySize,
		Status:               models.WaitlistWaiting,
		EstimatedWaitMinutes: wait,
		Priority:             in.Priority,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, storageError("create waitlist entry", err)
	}

	utils.InfoLogger.Printf("Waitlist entry %d added for restaurant %d (party=%d, priority=%s)", entry.ID, restaurantID, entry.PartySize, entry.Priority)
	s.changed(ctx, &entry)
	return &entry, nil
}

func (s *WaitlistService) UpdateStatus(ctx context.Context, actor Actor, id uint, status models.WaitlistStatus) (*models.WaitlistEntry, error) {
	if !status.Valid() {
		return nil, invalid("status", "unknown waitlist status %q", status)
	}
	entry, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if entry.Status.Finished() {
		return nil, fmt.Errorf("%w: waitlist entry is already %s", ErrInvalidState, entry.Status)
	}

	updates := map[string]interface{}{"status": status}
	now := s.now()
	switch status {
	case models.WaitlistNotified:
		updates["notified_at"] = now
		entry.NotifiedAt = &now
	case models.WaitlistSeated:
		updates["seated_at"] = now
		entry.SeatedAt = &now
	}
	if err := s.db.WithContext(ctx).Model(entry).Updates(updates).Error; err != nil {
		return nil, storageError("update waitlist entry", err)
	}
	entry.Status = status

	s.changed(ctx, entry)
	return entry, nil
}

// Remove soft-deletes the entry; the row stays for audit.
func (s *WaitlistService) Remove(ctx context.Context, actor Actor, id uint) error {
	entry, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(entry).Error; err != nil {
		return storageError("delete waitlist entry", err)
	}
	utils.InfoLogger.Printf("Waitlist entry %d removed", entry.ID)
	s.notifier.Notify(ctx, events.Event{
		Type:         events.WaitlistUpdated,
		RestaurantID: entry.RestaurantID,
		Data:         map[string]interface{}{"id": entry.ID, "removed": true},
	})
	return nil
}

// List returns the live queue: waiting and notified entries, VIP first,
// oldest first within a tier.
func (s *WaitlistService) List(ctx context.Context, actor Actor, restaurantID uint) ([]models.WaitlistEntry, error) {
	restaurantID, err := ScopeRestaurant(actor, restaurantID)
	if err != nil {
		return nil, err
	}
	var entries []models.WaitlistEntry
	err = retryRead(ctx, func() error {
		if err := s.db.WithContext(ctx).
			Where("restaurant_id = ? AND status IN ?", restaurantID,
				[]models.WaitlistStatus{models.WaitlistWaiting, models.WaitlistNotified}).
			Order("CASE priority WHEN '" + string(models.PriorityVIP) + "' THEN 0 ELSE 1 END, created_at ASC, id ASC").
			Find(&entries).Error; err != nil {
			return storageError("list waitlist", err)
		}
		return nil
	})
	return entries, err
}

func (s *WaitlistService) load(ctx context.Context, actor Actor, id uint) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := s.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, lookupError("waitlist entry", "load waitlist entry", err)
	}
	if err := requireManager(actor, entry.RestaurantID); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *WaitlistService) changed(ctx context.Context, entry *models.WaitlistEntry) {
	metrics.IncWaitlistChange(string(entry.Status))
	s.notifier.Notify(ctx, events.Event{
		Type:         events.WaitlistUpdated,
		RestaurantID: entry.RestaurantID,
		Data:         entry,
	})
}
