package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-reservation/events"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/utils"
	"gorm.io/gorm"
)

// TableStore persists tables and their display status. It deliberately does
// not validate status transitions: staff overrides such as disabling a table
// for cleaning must always go through.
type TableStore struct {
	db       *gorm.DB
	notifier events.Notifier
}

func NewTableStore(db *gorm.DB, notifier events.Notifier) *TableStore {
	if notifier == nil {
		notifier = events.Nop
	}
	return &TableStore{db: db, notifier: notifier}
}

type CreateTableInput struct {
	RestaurantID uint
	Number       string
	Capacity     int
	Status       models.TableStatus
	PositionX    float64
	PositionY    float64
	Shape        string
	Width        float64
	Height       float64
	Zone         string
}

type UpdateTableInput struct {
	Number    *string
	Capacity  *int
	PositionX *float64
	PositionY *float64
	Shape     *string
	Width     *float64
	Height    *float64
	Zone      *string
}

var tableShapes = map[string]bool{"square": true, "round": true, "rectangle": true}

func (s *TableStore) Create(ctx context.Context, actor Actor, in CreateTableInput) (*models.Table, error) {
	restaurantID, err := ScopeRestaurant(actor, in.RestaurantID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Number) == "" {
		return nil, invalid("number", "is required")
	}
	if in.Capacity < 1 {
		return nil, invalid("capacity", "must be at least 1")
	}
	if in.Status == "" {
		in.Status = models.TableAvailable
	}
	if !in.Status.Valid() {
		return nil, invalid("status", "unknown table status %q", in.Status)
	}
	if in.Shape == "" {
		in.Shape = "square"
	}
	if !tableShapes[in.Shape] {
		return nil, invalid("shape", "unknown shape %q", in.Shape)
	}
	if in.Width <= 0 {
		in.Width = 1
	}
	if in.Height <= 0 {
		in.Height = 1
	}

	db := s.db.WithContext(ctx)
	var restaurant models.Restaurant
	if err := db.First(&restaurant, restaurantID).Error; err != nil {
		return nil, lookupError("restaurant", "load restaurant", err)
	}

	table := models.Table{
		RestaurantID: restaurantID,
		Number:       strings.TrimSpace(in.Number),
		Capacity:     in.Capacity,
		Status:       in.Status,
		PositionX:    in.PositionX,
		PositionY:    in.PositionY,
		Shape:        in.Shape,
		Width:        in.Width,
		Height:       in.Height,
		Zone:         in.Zone,
	}
	if err := db.Create(&table).Error; err != nil {
		return nil, storageError("create table", err)
	}

	utils.InfoLogger.Printf("New table created: %s (restaurant=%d, capacity=%d)", table.Number, table.RestaurantID, table.Capacity)
	s.publish(ctx, &table)
	return &table, nil
}

func (s *TableStore) Get(ctx context.Context, id uint) (*models.Table, error) {
	var table models.Table
	err := retryRead(ctx, func() error {
		if err := s.db.WithContext(ctx).First(&table, id).Error; err != nil {
			return lookupError("table", "load table", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (s *TableStore) List(ctx context.Context, restaurantID uint) ([]models.Table, error) {
	var tables []models.Table
	err := retryRead(ctx, func() error {
		if err := s.db.WithContext(ctx).
			Where("restaurant_id = ?", restaurantID).
			Order("zone ASC, number ASC, id ASC").
			Find(&tables).Error; err != nil {
			return storageError("list tables", err)
		}
		return nil
	})
	return tables, err
}

func (s *TableStore) UpdateLayout(ctx context.Context, actor Actor, id uint, in UpdateTableInput) (*models.Table, error) {
	table, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireManager(actor, table.RestaurantID); err != nil {
		return nil, err
	}

	if in.Number != nil {
		if strings.TrimSpace(*in.Number) == "" {
			return nil, invalid("number", "must not be empty")
		}
		table.Number = strings.TrimSpace(*in.Number)
	}
	if in.Capacity != nil {
		if *in.Capacity < 1 {
			return nil, invalid("capacity", "must be at least 1")
		}
		table.Capacity = *in.Capacity
	}
	if in.Shape != nil {
		if !tableShapes[*in.Shape] {
			return nil, invalid("shape", "unknown shape %q", *in.Shape)
		}
		table.Shape = *in.Shape
	}
	if in.PositionX != nil {
		table.PositionX = *in.PositionX
	}
	if in.PositionY != nil {
		table.PositionY = *in.PositionY
	}
	if in.Width != nil && *in.Width > 0 {
		table.Width = *in.Width
	}
	if in.Height != nil && *in.Height > 0 {
		table.Height = *in.Height
	}
	if in.Zone != nil {
		table.Zone = *in.Zone
	}

	if err := s.db.WithContext(ctx).Save(table).Error; err != nil {
		return nil, storageError("update table", err)
	}
	s.publish(ctx, table)
	return table, nil
}

// Delete soft-deletes a table that no active reservation references.
func (s *TableStore) Delete(ctx context.Context, actor Actor, id uint) error {
	table, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := requireManager(actor, table.RestaurantID); err != nil {
		return err
	}

	var active int64
	if err := s.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("table_id = ? AND status IN ?", id, []models.ReservationStatus{
			models.ReservationPending, models.ReservationConfirmed, models.ReservationArrived,
		}).
		Count(&active).Error; err != nil {
		return storageError("count table reservations", err)
	}
	if active > 0 {
		return fmt.Errorf("%w: table %s still has %d active reservation(s)", ErrConflict, table.Number, active)
	}

	if err := s.db.WithContext(ctx).Delete(table).Error; err != nil {
		return storageError("delete table", err)
	}
	utils.InfoLogger.Printf("Table %d deleted", table.ID)
	return nil
}

// SetStatus writes the display status unconditionally.
func (s *TableStore) SetStatus(ctx context.Context, tableID uint, status models.TableStatus) (*models.Table, error) {
	if !status.Valid() {
		return nil, invalid("status", "unknown table status %q", status)
	}
	var table models.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&table, tableID).Error; err != nil {
			return lookupError("table", "load table", err)
		}
		return s.setStatusTx(tx, &table, status)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, &table)
	return &table, nil
}

// SetStatusAs is the staff override path: same write, scoped to the actor's restaurant.
func (s *TableStore) SetStatusAs(ctx context.Context, actor Actor, tableID uint, status models.TableStatus) (*models.Table, error) {
	table, err := s.Get(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(actor, table.RestaurantID); err != nil {
		return nil, err
	}
	return s.SetStatus(ctx, tableID, status)
}

func (s *TableStore) setStatusTx(tx *gorm.DB, table *models.Table, status models.TableStatus) error {
	before := table.Status
	if before == status {
		return nil
	}
	if err := tx.Model(table).Update("status", status).Error; err != nil {
		return storageError("update table status", err)
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"table_id": table.ID,
		"from":     before,
		"to":       status,
	}).Info("table status changed")
	table.Status = status
	return nil
}

func (s *TableStore) publish(ctx context.Context, table *models.Table) {
	s.notifier.Notify(ctx, events.Event{
		Type:         events.TableStatusChanged,
		RestaurantID: table.RestaurantID,
		Data:         table,
	})
}

// Stats counts tables per status for one restaurant.
func (s *TableStore) Stats(ctx context.Context, restaurantID uint) (map[models.TableStatus]int64, error) {
	var rows []struct {
		Status models.TableStatus
		Total  int64
	}
	err := retryRead(ctx, func() error {
		rows = rows[:0]
		if err := s.db.WithContext(ctx).Model(&models.Table{}).
			Select("status, COUNT(*) AS total").
			Where("restaurant_id = ?", restaurantID).
			Group("status").
			Scan(&rows).Error; err != nil {
			return storageError("table stats", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats := map[models.TableStatus]int64{
		models.TableAvailable: 0,
		models.TableOccupied:  0,
		models.TableReserved:  0,
		models.TablePending:   0,
		models.TableDisabled:  0,
	}
	for _, r := range rows {
		stats[r.Status] = r.Total
	}
	return stats, nil
}
