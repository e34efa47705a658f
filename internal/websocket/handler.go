package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades requests to WebSocket connections subscribed to
// the hub. originPatterns restricts cross-origin clients; empty allows only
// same-origin. hello builds the first message each client receives.
func HandleWebSocket(hub *Hub, originPatterns []string, hello func() Message) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		NewClient(hub, conn).Run(r.Context(), hello)
	}
}
