package services

import (
	"context"
	"time"

	"github.com/yeremiapane/table-reservation/metrics"
	"github.com/yeremiapane/table-reservation/models"
	"gorm.io/gorm"
)

type AvailabilityStatus string

const (
	SlotAvailable AvailabilityStatus = "available"
	SlotReserved  AvailabilityStatus = "reserved"
	SlotOccupied  AvailabilityStatus = "occupied"
	SlotBlocked   AvailabilityStatus = "blocked"
)

// TableAvailability is one row of the booking picker.
type TableAvailability struct {
	Table              models.Table       `json:"table"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status"`
	IsSelectable       bool               `json:"is_selectable"`
}

// AvailabilityService labels tables for a requested slot. It reads the
// reservation ledger, never the cached table status, except for disabled.
type AvailabilityService struct {
	db     *gorm.DB
	window time.Duration
}

// NewAvailabilityService - window 0 artinya satu reservasi aktif memblok meja seharian.
func NewAvailabilityService(db *gorm.DB, window time.Duration) *AvailabilityService {
	return &AvailabilityService{db: db, window: window}
}

type AvailabilityQuery struct {
	RestaurantID uint
	Date         string
	Time         string
	GuestCount   int
}

func (s *AvailabilityService) Query(ctx context.Context, q AvailabilityQuery) ([]TableAvailability, error) {
	if q.RestaurantID == 0 {
		return nil, invalid("restaurant_id", "is required")
	}
	date, err := ParseDate("date", q.Date)
	if err != nil {
		return nil, err
	}
	clock, err := ParseClock("time", q.Time)
	if err != nil {
		return nil, err
	}
	if q.GuestCount < 1 {
		return nil, invalid("guest_count", "must be at least 1")
	}

	// a window can reach across midnight into the neighbouring days
	dates := []string{date}
	if s.window > 0 {
		day, _ := time.Parse(dateLayout, date)
		dates = append(dates, day.AddDate(0, 0, -1).Format(dateLayout), day.AddDate(0, 0, 1).Format(dateLayout))
	}

	var (
		tables       []models.Table
		reservations []models.Reservation
	)
	err = retryRead(ctx, func() error {
		db := s.db.WithContext(ctx)
		var restaurant models.Restaurant
		if err := db.First(&restaurant, q.RestaurantID).Error; err != nil {
			return lookupError("restaurant", "load restaurant", err)
		}
		if err := db.Where("restaurant_id = ? AND capacity >= ?", q.RestaurantID, q.GuestCount).
			Order("zone ASC, number ASC, id ASC").
			Find(&tables).Error; err != nil {
			return storageError("list tables", err)
		}
		if err := db.Where("restaurant_id = ? AND date IN ? AND status IN ?", q.RestaurantID, dates,
			[]models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed, models.ReservationArrived}).
			Find(&reservations).Error; err != nil {
			return storageError("list reservations", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncAvailabilityQuery()

	// table id -> strongest matching reservation status
	matched := make(map[uint]models.ReservationStatus, len(reservations))
	for _, r := range reservations {
		if !s.overlaps(r.Date, r.Time, date, clock) {
			continue
		}
		if matched[r.TableID] != models.ReservationArrived {
			matched[r.TableID] = r.Status
		}
	}

	result := make([]TableAvailability, 0, len(tables))
	for _, t := range tables {
		row := TableAvailability{Table: t}
		status, hit := matched[t.ID]
		switch {
		case hit && status == models.ReservationArrived:
			row.AvailabilityStatus = SlotOccupied
		case hit:
			row.AvailabilityStatus = SlotReserved
		case t.Status == models.TableDisabled:
			row.AvailabilityStatus = SlotBlocked
		default:
			row.AvailabilityStatus = SlotAvailable
			row.IsSelectable = true
		}
		result = append(result, row)
	}
	return result, nil
}

// overlaps reports whether a reservation at bookedDate/bookedTime blocks the
// requested slot. Without a window only the same date counts.
func (s *AvailabilityService) overlaps(bookedDate, bookedTime, date, clock string) bool {
	if s.window <= 0 {
		return bookedDate == date
	}
	b, err1 := time.Parse(dateLayout+" "+clockLayout, bookedDate+" "+bookedTime)
	r, err2 := time.Parse(dateLayout+" "+clockLayout, date+" "+clock)
	if err1 != nil || err2 != nil {
		return bookedDate == date
	}
	d := b.Sub(r)
	if d < 0 {
		d = -d
	}
	return d < s.window
}
