package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/table-reservation/config"
	"github.com/yeremiapane/table-reservation/events"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/realtime"
	"github.com/yeremiapane/table-reservation/router"
	"github.com/yeremiapane/table-reservation/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	utils.SetLevel("error")
	utils.ConfigureJWT("integration-secret", time.Hour)
	os.Exit(m.Run())
}

// TestEndToEndIntegration menguji flow utama:
// 0. Seed restoran + staff, customer register & login -> token
// 1. Staff membuat meja, board websocket tersambung
// 2. Customer cek ketersediaan lalu booking
// 3. Board menerima event reservasi
// 4. Staff confirm -> arrive -> complete, meja kembali available
func TestEndToEndIntegration(t *testing.T) {
	db := setupTestDB(t)
	restaurant := models.Restaurant{Name: "Warung Senja"}
	require.NoError(t, db.Create(&restaurant).Error)
	seedStaff(t, db, restaurant.ID)

	hub := realtime.NewHub()
	r := router.SetupRouter(router.Deps{
		DB:  db,
		Hub: hub,
		Config: &config.Config{
			GinMode:             gin.TestMode,
			CORSOrigin:          "*",
			RateLimitPerSecond:  1000,
			DefaultWaitMinutes:  15,
			SlotLockWaitTimeout: time.Second,
		},
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	// 0. Login
	staffToken := loginTest(t, srv.URL, "sari@example.com")
	registerTest(t, srv.URL, "budi@example.com")
	customerToken := loginTest(t, srv.URL, "budi@example.com")

	// 1. Meja + board
	var table models.Table
	call(t, srv.URL, http.MethodPost, "/admin/tables", staffToken, map[string]interface{}{
		"number": "A1", "capacity": 4,
	}, http.StatusCreated, &table)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/board?token=" + staffToken
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	// 2. Availability + booking
	var rows []struct {
		Table              models.Table `json:"table"`
		AvailabilityStatus string       `json:"availability_status"`
	}
	call(t, srv.URL, http.MethodGet,
		fmt.Sprintf("/restaurants/%d/availability?date=2030-06-01&time=19:00&guest_count=2", restaurant.ID),
		"", nil, http.StatusOK, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "available", rows[0].AvailabilityStatus)

	var res models.Reservation
	call(t, srv.URL, http.MethodPost, "/api/reservations", customerToken, map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"table_id":      table.ID,
		"date":          "2030-06-01",
		"time":          "19:00",
		"guest_count":   2,
	}, http.StatusCreated, &res)

	// 3. Board menerima reservation.created
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	seen := map[string]bool{}
	for !seen[events.ReservationCreated] {
		var evt events.Event
		require.NoError(t, conn.ReadJSON(&evt))
		seen[evt.Type] = true
	}

	// 4. Lifecycle staff
	call(t, srv.URL, http.MethodPatch, fmt.Sprintf("/admin/reservations/%d/status", res.ID), staffToken,
		map[string]string{"status": "confirmed"}, http.StatusOK, nil)
	call(t, srv.URL, http.MethodPost, fmt.Sprintf("/admin/reservations/%d/arrive", res.ID), staffToken,
		nil, http.StatusOK, nil)
	call(t, srv.URL, http.MethodGet,
		fmt.Sprintf("/restaurants/%d/availability?date=2030-06-01&time=19:00&guest_count=2", restaurant.ID),
		"", nil, http.StatusOK, &rows)
	assert.Equal(t, "occupied", rows[0].AvailabilityStatus)

	call(t, srv.URL, http.MethodPatch, fmt.Sprintf("/admin/reservations/%d/status", res.ID), staffToken,
		map[string]string{"status": "completed"}, http.StatusOK, &res)
	assert.Equal(t, models.ReservationCompleted, res.Status)

	var stored models.Table
	require.NoError(t, db.First(&stored, table.ID).Error)
	assert.Equal(t, models.TableAvailable, stored.Status)
}

// setupTestDB -> SQLite in-memory + migrasi
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

func seedStaff(t *testing.T, db *gorm.DB, restaurantID uint) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	staff := models.User{
		Name:         "Sari",
		Email:        "sari@example.com",
		Password:     string(hashed),
		Role:         models.RoleStaff,
		RestaurantID: &restaurantID,
	}
	require.NoError(t, db.Create(&staff).Error)
}

func registerTest(t *testing.T, baseURL, email string) {
	call(t, baseURL, http.MethodPost, "/register", "", map[string]string{
		"name": "Budi", "email": email, "password": "password123",
	}, http.StatusCreated, nil)
}

func loginTest(t *testing.T, baseURL, email string) string {
	var data struct {
		Token string `json:"token"`
	}
	call(t, baseURL, http.MethodPost, "/login", "", map[string]string{
		"email": email, "password": "password123",
	}, http.StatusOK, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func call(t *testing.T, baseURL, method, path, token string, body interface{}, want int, into interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, baseURL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope struct {
		Status  bool            `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Equal(t, want, resp.StatusCode, envelope.Message)
	if into != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, into))
	}
}
