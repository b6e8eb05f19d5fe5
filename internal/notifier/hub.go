// Package notifier fans consumed notification events out to connected
// websocket clients. Delivery is best effort: no targeting, no confirmation,
// and a client attaching after an event was sent never sees it.
package notifier

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub tracks live websocket connections and broadcasts to all of them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// ServeWS upgrades the request and keeps the connection registered until the
// client goes away. Inbound frames are discarded; the read loop only exists
// to observe the close.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Notifier] Websocket upgrade failed: %v", err)
		return
	}

	h.register(conn)
	log.Println("[Notifier] Client connected")

	go func() {
		defer func() {
			h.unregister(conn)
			conn.Close()
			log.Println("[Notifier] Client disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends the JSON-encoded payload to every attached client.
// Connections whose writes fail are dropped. Returns the number of clients
// written to; zero listeners is not an error.
func (h *Hub) Broadcast(payload any) int {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Notifier] Failed to encode broadcast: %v", err)
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.clients, conn)
			conn.Close()
			continue
		}
		sent++
	}
	return sent
}

// ClientCount reports the number of attached clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}
