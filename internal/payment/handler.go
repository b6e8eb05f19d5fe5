package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/checkout-saga/internal/message"
	"github.com/google/uuid"
)

// Recorder is the slice of the payment store the handler needs.
type Recorder interface {
	Insert(ctx context.Context, rec *Record) error
}

// Publisher emits the notification once a record is committed.
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// Handler processes payment-request messages one at a time. Messages that
// cannot be processed are dropped after logging: the consumer commits the
// offset either way, so there is no retry and no dead-letter. Redelivering
// the same message (crash before commit) produces a second record; no
// idempotency is attempted.
type Handler struct {
	store    Recorder
	producer Publisher
}

func NewHandler(store Recorder, producer Publisher) *Handler {
	return &Handler{store: store, producer: producer}
}

// HandleMessage records the payment and, only on a committed record,
// publishes the notification.
func (h *Handler) HandleMessage(ctx context.Context, key, value []byte) error {
	var req message.PaymentRequest
	if err := json.Unmarshal(value, &req); err != nil {
		return fmt.Errorf("decode payment request: %w", err)
	}

	rec := Record{
		ProductID:     req.ProductID,
		Qty:           req.Qty,
		BuyerID:       req.BuyerID,
		UnitPrice:     req.UnitPrice,
		Bill:          req.UnitPrice * float64(req.Qty),
		TransactionID: uuid.New().String(),
	}
	if err := h.store.Insert(ctx, &rec); err != nil {
		// Rolled back inside the store; nothing was emitted downstream.
		return fmt.Errorf("record payment for product %d: %w", req.ProductID, err)
	}

	notification := message.Notification{
		ProductID: req.ProductID,
		BuyerID:   req.BuyerID,
		Qty:       req.Qty,
		TotalBill: rec.Bill,
	}
	if err := h.producer.Publish(ctx, fmt.Sprintf("%d", req.BuyerID), notification); err != nil {
		// The record is committed; the lost notification is an accepted gap.
		log.Printf("[Payment] Failed to publish notification for buyer %d: %v", req.BuyerID, err)
		return nil
	}

	log.Printf("[Payment] Payment processed and notification sent (product %d, buyer %d, bill %.2f)",
		req.ProductID, req.BuyerID, rec.Bill)
	return nil
}
