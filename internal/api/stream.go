package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamExecution handles GET /api/tasks/executions/{id}/ws. It pushes the
// execution record over the socket on every change until the execution
// reaches a terminal status, then closes.
func (h *Handler) StreamExecution(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.tasks.Get(id); err != nil {
		writeError(w, http.StatusNotFound, "execution not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed to upgrade connection: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("client streaming execution %.8s", id)

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	lastProgress := -1
	var lastStatus string

	for {
		exec, err := h.tasks.Get(id)
		if err != nil {
			return
		}

		if exec.Progress != lastProgress || string(exec.Status) != lastStatus {
			lastProgress = exec.Progress
			lastStatus = string(exec.Status)

			if err := conn.WriteJSON(exec); err != nil {
				// client went away
				return
			}
		}

		if exec.Status.Terminal() {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(exec.Status)))
			return
		}

		<-ticker.C
	}
}
