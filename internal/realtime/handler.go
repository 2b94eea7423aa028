package realtime

import (
	"net/http"

	"github.com/coedit/coedit/pkg/logger"
	"github.com/coedit/coedit/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// same permissive policy as the HTTP CORS layer; tighten in production
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterRoutes exposes the websocket endpoint. Joining rooms happens via
// the join-document event after the upgrade; no credential is required here
// (matching the HTTP-independent realtime flow).
func RegisterRoutes(r *gin.Engine, reg *Registry, disp *Dispatcher) {
	r.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warnf("realtime: upgrade failed: %v", err)
			return
		}
		client := newClient(conn)
		metrics.RealtimeConnections.Inc()
		go client.writePump()
		go client.readPump(reg, disp)
	})
}
