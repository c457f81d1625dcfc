package handler

import (
	"civicdesk/backend/internal/api/middleware"
	"civicdesk/backend/internal/eventhub"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and subscribes the caller to the
// complaint events they may see.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WARNING: websocket upgrade failed for %s: %v", p.UserID, err)
		return
	}

	client := eventhub.NewWebSocketClient(h.Hub, conn, p)
	if !h.Hub.Register(client) {
		log.Printf("WARNING: event hub stopped, dropping websocket for %s", p.UserID)
		conn.Close()
		return
	}
	client.Run()
}
