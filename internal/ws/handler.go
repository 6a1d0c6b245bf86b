package ws

import (
	"net/http"
	"slices"

	"task_manager/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades to the task change feed. Browser origins must be in
// allowedOrigins; requests without an Origin header are accepted.
func HandleWS(hub *Hub, allowedOrigins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the error response
			logger.FromContext(c.Request.Context()).Warn("ws upgrade failed", "error", err)
			return
		}

		client := NewClient(hub, conn)
		go client.Run()
	}
}
