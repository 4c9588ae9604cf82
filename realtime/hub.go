// Package realtime pushes booking events to staff floor-plan boards over
// websockets.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/table-reservation/events"
	"github.com/yeremiapane/table-reservation/utils"
)

const writeWait = 5 * time.Second

// subscriber -> role dan restoran yang dipantau; restaurantID nil berarti semua restoran
type subscriber struct {
	role         string
	restaurantID *uint
}

// Hub menampung semua board client (staff, admin) dan melakukan broadcast
type Hub struct {
	clients map[*websocket.Conn]subscriber
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]subscriber)}
}

// Register -> menambahkan connection dengan role dan scope restoran
func (h *Hub) Register(conn *websocket.Conn, role string, restaurantID *uint) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = subscriber{role: role, restaurantID: restaurantID}
	utils.InfoLogger.Printf("Board client connected (role=%s, clients=%d)", role, len(h.clients))
}

// Unregister -> melepaskan connection
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// Serve registers conn and blocks until the client goes away.
func (h *Hub) Serve(conn *websocket.Conn, role string, restaurantID *uint) {
	h.Register(conn, role, restaurantID)
	defer h.Unregister(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Notify broadcasts evt to every board watching its restaurant.
func (h *Hub) Notify(_ context.Context, evt events.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling board message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, sub := range h.clients {
		if sub.restaurantID != nil && *sub.restaurantID != evt.RestaurantID {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to %s client: %v", evt.Type, sub.role, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
