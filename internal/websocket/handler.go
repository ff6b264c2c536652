package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"
	"go.uber.org/zap"
)

// HandleWebSocket returns an HTTP handler that upgrades connections to WebSocket
// and runs them as Hub clients until they disconnect.
func HandleWebSocket(hub *Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // UI runs on loopback under another origin
		})
		if err != nil {
			logger.Warn("websocket accept", zap.Error(err))
			return
		}
		defer conn.CloseNow()

		logger.Debug("change feed client connected", zap.String("remote", r.RemoteAddr))
		NewClient(hub, conn).Run(r.Context())
		logger.Debug("change feed client disconnected", zap.String("remote", r.RemoteAddr))
	}
}
