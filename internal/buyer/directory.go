// Package buyer is the buyer directory: a plain CRUD surface plus the HTTP
// client other services use to confirm a buyer exists. No saga logic lives
// here.
package buyer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("buyer not found")

type Buyer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type Directory struct {
	db *sql.DB
}

func NewDirectory(db *sql.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) Create(ctx context.Context, name, address string) (int64, error) {
	var id int64
	err := d.db.QueryRowContext(ctx,
		"INSERT INTO buyers (name, address) VALUES ($1, $2) RETURNING id",
		name, address,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create buyer: %w", err)
	}
	return id, nil
}

func (d *Directory) FindByID(ctx context.Context, id int64) (*Buyer, error) {
	var b Buyer
	err := d.db.QueryRowContext(ctx,
		"SELECT id, name, address FROM buyers WHERE id = $1", id,
	).Scan(&b.ID, &b.Name, &b.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find buyer %d: %w", id, err)
	}
	return &b, nil
}

func (d *Directory) List(ctx context.Context) ([]Buyer, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT id, name, address FROM buyers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list buyers: %w", err)
	}
	defer rows.Close()

	var buyers []Buyer
	for rows.Next() {
		var b Buyer
		if err := rows.Scan(&b.ID, &b.Name, &b.Address); err != nil {
			return nil, err
		}
		buyers = append(buyers, b)
	}
	return buyers, rows.Err()
}
