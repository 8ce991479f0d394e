package api

import (
	"net/http"

	"github.com/gorilla/websocket"

	"taxi-dispatch-system/registry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// DriverStream accepts a websocket connection streaming position updates.
// Each JSON message is a LocationUpdate; invalid updates are acknowledged
// with an error message but do not close the stream.
func (s *Server) DriverStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logRequest(r, "websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var update registry.LocationUpdate
		if err := conn.ReadJSON(&update); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logRequest(r, "websocket read: %v", err)
			}
			return
		}

		if err := s.Registry.Upsert(r.Context(), update); err != nil {
			conn.WriteJSON(map[string]string{"error": err.Error()})
			continue
		}
		conn.WriteJSON(map[string]string{"status": "ok"})
	}
}
