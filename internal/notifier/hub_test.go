package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/checkout-saga/internal/message"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestClient(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_Broadcast_ReachesAllClients(t *testing.T) {
	hub := NewHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	first := dialTestClient(t, srv)
	second := dialTestClient(t, srv)
	waitForClients(t, hub, 2)

	event := message.Notification{ProductID: 1, BuyerID: 7, Qty: 3, TotalBill: 76.5}
	sent := hub.Broadcast(event)
	assert.Equal(t, 2, sent)

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var got message.Notification
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, event, got)
	}
}

func TestHub_Broadcast_NoClients(t *testing.T) {
	hub := NewHub()

	sent := hub.Broadcast(message.Notification{ProductID: 1, BuyerID: 7, Qty: 1, TotalBill: 10})

	// Nobody listening is not an error.
	assert.Zero(t, sent)
}

func TestHub_DisconnectedClientIsDropped(t *testing.T) {
	hub := NewHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn := dialTestClient(t, srv)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

type countingHub struct {
	calls int
	last  any
}

func (c *countingHub) Broadcast(payload any) int {
	c.calls++
	c.last = payload
	return 0
}

func TestHandler_HandleMessage(t *testing.T) {
	hub := &countingHub{}
	handler := NewHandler(hub)

	value, err := json.Marshal(message.Notification{ProductID: 1, BuyerID: 7, Qty: 3, TotalBill: 76.5})
	require.NoError(t, err)

	// Acks even though the hub reports zero listeners.
	require.NoError(t, handler.HandleMessage(context.Background(), nil, value))
	assert.Equal(t, 1, hub.calls)
	assert.Equal(t, message.Notification{ProductID: 1, BuyerID: 7, Qty: 3, TotalBill: 76.5}, hub.last)
}

func TestHandler_HandleMessage_BadPayload(t *testing.T) {
	hub := &countingHub{}
	handler := NewHandler(hub)

	err := handler.HandleMessage(context.Background(), nil, []byte("not json"))

	require.Error(t, err)
	assert.Zero(t, hub.calls)
}
