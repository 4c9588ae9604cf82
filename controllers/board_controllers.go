package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/realtime"
	"github.com/yeremiapane/table-reservation/utils"
)

type BoardController struct {
	Hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewBoardController -> origin "*" menerima semua origin
func NewBoardController(hub *realtime.Hub, allowedOrigin string) *BoardController {
	return &BoardController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// BoardHandler -> endpoint WebSocket papan meja untuk staff
func (bc *BoardController) BoardHandler(c *gin.Context) {
	actor := currentActor(c)
	if actor.Role == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if actor.Role != models.RoleStaff && actor.Role != models.RoleAdmin {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := bc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Websocket upgrade failed: %v", err)
		return
	}

	// blok sampai client disconnect
	bc.Hub.Serve(ws, actor.Role, actor.RestaurantID)
}
