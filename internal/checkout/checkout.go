// Package checkout orchestrates one checkout: reserve stock, verify the
// buyer, emit a payment request. A reservation that outlives a failed
// verification is undone with the ledger's compensating release.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/example/checkout-saga/internal/buyer"
	"github.com/example/checkout-saga/internal/inventory"
	"github.com/example/checkout-saga/internal/message"
)

// State names the step a checkout reached. StatePaymentRequested is the only
// success terminal; the failure states are reached after compensation.
type State string

const (
	StateStarted                State = "started"
	StateStockReserved          State = "stock_reserved"
	StateBuyerVerified          State = "buyer_verified"
	StatePaymentRequested       State = "payment_requested"
	StateStockReservationFailed State = "stock_reservation_failed"
	StateBuyerNotFound          State = "buyer_not_found"
	StateVerificationError      State = "verification_error"
)

// Request drives one saga instance. It has no identity beyond the message
// itself: no saga id is tracked, so a replay is reprocessed from the start.
type Request struct {
	ProductID int64 `json:"productId"`
	Qty       int   `json:"qty"`
	BuyerID   int64 `json:"buyerId"`
}

// Ledger is the slice of the inventory ledger the saga needs.
type Ledger interface {
	Reserve(ctx context.Context, id int64, qty int) (*inventory.Product, error)
	Release(ctx context.Context, id int64, qty int) error
}

// BuyerFinder verifies a buyer exists. buyer.ErrNotFound means a clean
// not-found; anything else is a hard verification failure.
type BuyerFinder interface {
	FindByID(ctx context.Context, id int64) (*buyer.Buyer, error)
}

// Publisher emits the payment request onto the broker.
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

type Service struct {
	ledger   Ledger
	buyers   BuyerFinder
	producer Publisher
}

func NewService(ledger Ledger, buyers BuyerFinder, producer Publisher) *Service {
	return &Service{
		ledger:   ledger,
		buyers:   buyers,
		producer: producer,
	}
}

// Checkout runs the saga steps strictly in sequence: each depends on the
// previous outcome. The reservation commits before the buyer lookup so no row
// lock is held across the network call; a failed verification compensates
// with Release instead of rolling back an open transaction.
//
// Publication happens after the reservation is committed. If the publish
// itself fails the reservation stays committed and the gap is only logged:
// beyond the commit the saga is fire-and-forget.
func (s *Service) Checkout(ctx context.Context, req Request) (State, error) {
	product, err := s.ledger.Reserve(ctx, req.ProductID, req.Qty)
	if err != nil {
		// Nothing was committed, so nothing to compensate.
		return StateStockReservationFailed, err
	}

	if _, err := s.buyers.FindByID(ctx, req.BuyerID); err != nil {
		s.compensate(ctx, req)
		if errors.Is(err, buyer.ErrNotFound) {
			return StateBuyerNotFound, err
		}
		return StateVerificationError, fmt.Errorf("verify buyer %d: %w", req.BuyerID, err)
	}

	msg := message.PaymentRequest{
		ProductID: req.ProductID,
		Qty:       req.Qty,
		BuyerID:   req.BuyerID,
		UnitPrice: product.Price,
	}
	if err := s.producer.Publish(ctx, fmt.Sprintf("%d", req.ProductID), msg); err != nil {
		log.Printf("[Checkout] Failed to publish payment request for product %d: %v", req.ProductID, err)
	}

	return StatePaymentRequested, nil
}

func (s *Service) compensate(ctx context.Context, req Request) {
	if err := s.ledger.Release(ctx, req.ProductID, req.Qty); err != nil {
		log.Printf("[Checkout] Failed to release reservation for product %d: %v", req.ProductID, err)
	}
}
