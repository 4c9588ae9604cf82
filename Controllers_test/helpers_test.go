package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/table-reservation/config"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/router"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

const (
	testSecret    = "controller-test-secret"
	testServerKey = "SB-Mid-server-test"
	bookingDate   = "2030-06-01"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	utils.SetLevel("error")
	utils.ConfigureJWT(testSecret, time.Hour)
}

// setupTestDB menggunakan SQLite in-memory, satu database per test
func setupTestDB(t *testing.T) *gorm.DB {
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

func testConfig() *config.Config {
	return &config.Config{
		GinMode:             gin.TestMode,
		CORSOrigin:          "*",
		RateLimitPerSecond:  1000,
		PaymentServerKey:    testServerKey,
		DefaultWaitMinutes:  15,
		SlotLockWaitTimeout: time.Second,
	}
}

// env is a full router over a seeded database: one restaurant with a staff
// member, a global admin and a customer.
type env struct {
	t          *testing.T
	db         *gorm.DB
	router     *gin.Engine
	restaurant models.Restaurant
	admin      models.User
	staff      models.User
	customer   models.User
}

func newEnv(t *testing.T, deps ...func(*router.Deps)) *env {
	t.Helper()
	db := setupTestDB(t)

	d := router.Deps{DB: db, Config: testConfig()}
	for _, fn := range deps {
		fn(&d)
	}

	e := &env{t: t, db: db, router: router.SetupRouter(d)}
	e.restaurant = models.Restaurant{Name: "Warung Senja", Address: "Jl. Braga 12"}
	require.NoError(t, db.Create(&e.restaurant).Error)

	rid := e.restaurant.ID
	e.admin = e.seedUser("Admin", "admin@example.com", models.RoleAdmin, nil)
	e.staff = e.seedUser("Sari", "sari@example.com", models.RoleStaff, &rid)
	e.customer = e.seedUser("Budi", "budi@example.com", models.RoleCustomer, nil)
	return e
}

func (e *env) seedUser(name, email, role string, restaurantID *uint) models.User {
	e.t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(e.t, err)
	u := models.User{Name: name, Email: email, Password: string(hashed), Role: role, RestaurantID: restaurantID}
	require.NoError(e.t, e.db.Create(&u).Error)
	return u
}

func (e *env) token(u models.User) string {
	e.t.Helper()
	tok, err := utils.GenerateToken(u.ID, u.Role, u.RestaurantID)
	require.NoError(e.t, err)
	return tok
}

func (e *env) addTable(number string, capacity int) models.Table {
	e.t.Helper()
	table := models.Table{RestaurantID: e.restaurant.ID, Number: number, Capacity: capacity, Status: models.TableAvailable, Shape: "square", Width: 1, Height: 1}
	require.NoError(e.t, e.db.Create(&table).Error)
	return table
}

// do kirim request JSON dan kembalikan recorder
func (e *env) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(e.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into interface{}) envelope {
	t.Helper()
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if into != nil {
		require.NoError(t, json.Unmarshal(resp.Data, into), w.Body.String())
	}
	return resp
}

func (e *env) book(table models.Table, clock string) models.Reservation {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/reservations", e.token(e.customer), map[string]interface{}{
		"restaurant_id": e.restaurant.ID,
		"table_id":      table.ID,
		"date":          bookingDate,
		"time":          clock,
		"guest_count":   2,
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var res models.Reservation
	decode(e.t, w, &res)
	return res
}

func (e *env) tableStatus(id uint) models.TableStatus {
	e.t.Helper()
	var table models.Table
	require.NoError(e.t, e.db.First(&table, id).Error)
	return table.Status
}

func signedNotification(code, status, amount, txID string) services.DepositNotification {
	n := services.DepositNotification{
		OrderID:           code,
		TransactionID:     txID,
		TransactionStatus: status,
		StatusCode:        "200",
		GrossAmount:       amount,
		PaymentType:       "bank_transfer",
	}
	n.SignatureKey = services.NewDepositGateway(testServerKey).Signature(n.OrderID, n.StatusCode, n.GrossAmount)
	return n
}
