package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/checkout-saga/internal/message"
)

// Broadcaster is the slice of the hub the consumer handler needs.
type Broadcaster interface {
	Broadcast(payload any) int
}

// Handler consumes notification events and pushes them to connected clients.
type Handler struct {
	hub Broadcaster
}

func NewHandler(hub Broadcaster) *Handler {
	return &Handler{hub: hub}
}

// HandleMessage broadcasts the event. It succeeds even when nobody is
// listening: the message is acknowledged once the broadcast ran, whether or
// not any client received it.
func (h *Handler) HandleMessage(ctx context.Context, key, value []byte) error {
	var event message.Notification
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}

	sent := h.hub.Broadcast(event)
	log.Printf("[Notifier] Notification broadcast to %d client(s): product %d, buyer %d, bill %.2f",
		sent, event.ProductID, event.BuyerID, event.TotalBill)
	return nil
}
