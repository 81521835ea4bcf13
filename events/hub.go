package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/senpow/italy-restaurant-booking/utils"
)

const writeWait = 5 * time.Second

// Hub keeps the websocket connections of the staff screens and pushes every
// reservation event to all of them.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> user id
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

func (h *Hub) Register(conn *websocket.Conn, userID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = userID
	utils.InfoLogger.Printf("Staff screen connected: user=%s clients=%d", userID, len(h.clients))
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish writes the event to every connected client. Clients that fail to
// receive it are dropped.
func (h *Hub) Publish(_ context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, userID := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to user %s: %v", e.Topic(), userID, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
	return nil
}
