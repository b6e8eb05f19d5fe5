// Package message defines the payloads exchanged between services over the
// broker. Queues are non-durable and delivery is at-least-once; consumers do
// not deduplicate, so a redelivered message is reprocessed from scratch.
package message

// Topic names are logical routing keys, overridable per service via env.
const (
	TopicPaymentRequests = "payment-requests"
	TopicNotifications   = "notifications"
)

// PaymentRequest is published by the checkout service after a reservation
// commits, and consumed by the payment service.
type PaymentRequest struct {
	ProductID int64   `json:"productId"`
	Qty       int     `json:"qty"`
	BuyerID   int64   `json:"buyerId"`
	UnitPrice float64 `json:"unitPrice"`
}

// Notification is published by the payment service once a payment record is
// committed, and fanned out to connected clients by the notifier.
type Notification struct {
	ProductID int64   `json:"productId"`
	BuyerID   int64   `json:"buyerId"`
	Qty       int     `json:"qty"`
	TotalBill float64 `json:"totalBill"`
}
