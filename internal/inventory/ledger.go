// Package inventory owns product stock. All mutation goes through Reserve and
// Release so the quantity invariant is enforced in exactly one place.
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidInput      = errors.New("quantity and price must be non-negative")
)

// Product is the only shared-mutable entity in the system. Its quantity never
// goes negative: a reservation that would violate this is rejected before any
// write happens.
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

// Ledger reads and mutates product rows. Reservations may originate from
// multiple process instances, so correctness relies on row locking in the
// database, never on in-process synchronization.
type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := l.db.QueryRowContext(ctx,
		"SELECT id, name, qty, price FROM products WHERE id = $1", id,
	).Scan(&p.ID, &p.Name, &p.Qty, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

func (l *Ledger) List(ctx context.Context) ([]Product, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT id, name, qty, price FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Qty, &p.Price); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Add creates a product. Administrative operation, no business invariant
// beyond non-negative inputs.
func (l *Ledger) Add(ctx context.Context, name string, qty int, price float64) (int64, error) {
	if qty < 0 || price < 0 {
		return 0, ErrInvalidInput
	}

	var id int64
	err := l.db.QueryRowContext(ctx,
		"INSERT INTO products (name, qty, price) VALUES ($1, $2, $3) RETURNING id",
		name, qty, price,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add product: %w", err)
	}
	return id, nil
}

// Reserve atomically checks stock and decrements it in one transaction. The
// row is locked for the duration of the check-then-update, so two concurrent
// reservations can never both pass the guard against stale data. Returns the
// product as it was before the decrement; the checkout saga needs its unit
// price.
func (l *Ledger) Reserve(ctx context.Context, id int64, qty int) (*Product, error) {
	if qty <= 0 {
		return nil, ErrInvalidInput
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("reserve: begin: %w", err)
	}
	defer tx.Rollback()

	var p Product
	err = tx.QueryRowContext(ctx,
		"SELECT id, name, qty, price FROM products WHERE id = $1 FOR UPDATE", id,
	).Scan(&p.ID, &p.Name, &p.Qty, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reserve product %d: %w", id, err)
	}

	if p.Qty < qty {
		return nil, ErrInsufficientStock
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE products SET qty = qty - $1 WHERE id = $2", qty, id,
	); err != nil {
		return nil, fmt.Errorf("reserve product %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("reserve product %d: commit: %w", id, err)
	}
	return &p, nil
}

// Release is the exact inverse of Reserve. It is the compensating action used
// when a saga step fails after a reservation already committed.
func (l *Ledger) Release(ctx context.Context, id int64, qty int) error {
	if qty <= 0 {
		return ErrInvalidInput
	}

	res, err := l.db.ExecContext(ctx,
		"UPDATE products SET qty = qty + $1 WHERE id = $2", qty, id,
	)
	if err != nil {
		return fmt.Errorf("release product %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
