// Package payment consumes payment requests and records the resulting
// ledger entries.
package payment

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Record is created exactly once per completed checkout and never updated or
// deleted afterwards.
type Record struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"productId"`
	Qty           int       `json:"qty"`
	BuyerID       int64     `json:"buyerId"`
	UnitPrice     float64   `json:"unitPrice"`
	Bill          float64   `json:"bill"`
	TransactionID string    `json:"transactionId"`
	PaidAt        time.Time `json:"paidAt"`
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Insert writes the record in its own transaction and stamps PaidAt.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert payment: begin: %w", err)
	}
	defer tx.Rollback()

	rec.PaidAt = time.Now().UTC()
	err = tx.QueryRowContext(ctx,
		`INSERT INTO payments (product_id, qty, buyer_id, price, bill, transaction_id, paid_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		rec.ProductID, rec.Qty, rec.BuyerID, rec.UnitPrice, rec.Bill, rec.TransactionID, rec.PaidAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert payment: commit: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_id, qty, buyer_id, price, bill, transaction_id, paid_at
		 FROM payments ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.ProductID, &r.Qty, &r.BuyerID, &r.UnitPrice, &r.Bill, &r.TransactionID, &r.PaidAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
