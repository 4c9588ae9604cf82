package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-reservation/config"
	"github.com/yeremiapane/table-reservation/events"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// recorder captures published events.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Notify(_ context.Context, evt events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db           *gorm.DB
	events       *recorder
	tables       *TableStore
	reservations *ReservationService
	restaurant   models.Restaurant
	staff        Actor
	customer     Actor
}

func newFixture(t *testing.T, opts ...ReservationOption) *fixture {
	t.Helper()
	db := newTestDB(t)
	rec := &recorder{}

	restaurant := models.Restaurant{Name: "Warung Senja", Address: "Jl. Merdeka 1"}
	require.NoError(t, db.Create(&restaurant).Error)

	customer := models.User{Name: "Budi", Email: "budi@example.com", Password: "x", Role: models.RoleCustomer}
	require.NoError(t, db.Create(&customer).Error)

	rid := restaurant.ID
	staff := models.User{Name: "Sari", Email: "sari@example.com", Password: "x", Role: models.RoleStaff, RestaurantID: &rid}
	require.NoError(t, db.Create(&staff).Error)

	tables := NewTableStore(db, rec)
	opts = append([]ReservationOption{
		WithNotifier(rec),
		WithClock(func() time.Time { return time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC) }),
	}, opts...)

	return &fixture{
		db:           db,
		events:       rec,
		tables:       tables,
		reservations: NewReservationService(db, tables, opts...),
		restaurant:   restaurant,
		staff:        Actor{UserID: staff.ID, Role: models.RoleStaff, RestaurantID: &rid},
		customer:     Actor{UserID: customer.ID, Role: models.RoleCustomer},
	}
}

func (f *fixture) addTable(t *testing.T, number string, capacity int) *models.Table {
	t.Helper()
	table, err := f.tables.Create(context.Background(), f.staff, CreateTableInput{
		Number:   number,
		Capacity: capacity,
	})
	require.NoError(t, err)
	return table
}

func (f *fixture) book(t *testing.T, table *models.Table, date, clock string) *models.Reservation {
	t.Helper()
	res, err := f.reservations.Create(context.Background(), f.customer, CreateReservationInput{
		RestaurantID: f.restaurant.ID,
		TableID:      table.ID,
		Date:         date,
		Time:         clock,
		GuestCount:   2,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) tableStatus(t *testing.T, id uint) models.TableStatus {
	t.Helper()
	var table models.Table
	require.NoError(t, f.db.First(&table, id).Error)
	return table.Status
}

// captureInfoLog records everything written to utils.InfoLogger during the test.
func captureInfoLog(t *testing.T) *logtest.Hook {
	t.Helper()
	hook := logtest.NewLocal(utils.InfoLogger)
	t.Cleanup(func() { utils.InfoLogger.ReplaceHooks(make(logrus.LevelHooks)) })
	return hook
}

func logEntry(hook *logtest.Hook, msg string) *logrus.Entry {
	for _, e := range hook.AllEntries() {
		if e.Message == msg {
			return e
		}
	}
	return nil
}
