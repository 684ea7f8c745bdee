package websocket

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

// ServeClassRoster upgrades the request and subscribes the connection to the roster of classID.
// Access control is the caller's job.
func (h *Hub) ServeClassRoster(w http.ResponseWriter, r *http.Request, classID, userID int64) error {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return h.originAllowed(r.Header.Get("Origin"))
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 64),
		userID:  userID,
		classID: classID,
		logger:  h.logger,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return fmt.Errorf("roster hub is stopped")
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("classID", classID).
		Int64("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
	return nil
}
