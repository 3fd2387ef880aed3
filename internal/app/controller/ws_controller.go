package controller

import (
	"net/http"

	"github.com/MauroRinelli/Solship/internal/middleware"
	ws "github.com/MauroRinelli/Solship/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The SPA and API share an origin in production; cross-origin access
	// is already gated by the CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSController struct {
	hub *ws.Hub
}

func NewWSController(hub *ws.Hub) *WSController {
	return &WSController{hub: hub}
}

// Updates upgrades the connection and streams data-change notifications
// for the caller's records.
// GET /ws/updates
func (ctrl *WSController) Updates(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket upgrade failed", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	client := &ws.Client{
		Hub:    ctrl.hub,
		Conn:   &ws.Conn{Conn: conn},
		UserID: userID,
		Send:   make(chan []byte, 64),
	}
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
