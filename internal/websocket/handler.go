package websocket

import (
	"context"
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// GroupLookup returns the ids of the groups the authenticated caller belongs to.
type GroupLookup func(ctx context.Context) (email string, groupIDs []int64, err error)

// HandleWebSocket returns an HTTP handler that upgrades authenticated requests
// and subscribes the connection to the caller's groups.
func HandleWebSocket(hub *Hub, lookup GroupLookup, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, groupIDs, err := lookup(r.Context())
		if err != nil {
			hub.logger.Warn("websocket: resolve groups", "error", err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			hub.logger.Warn("websocket: accept", "error", err)
			return
		}

		hub.logger.LogAttrs(r.Context(), slog.LevelDebug, "websocket connected",
			slog.String("email", email), slog.Int("groups", len(groupIDs)))
		client := NewClient(hub, conn, email, groupIDs)
		client.Run(r.Context())
	}
}
