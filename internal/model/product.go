package model

import (
	"time"
)

// Product represents a sellable catalog item. Soft-deleted products keep their
// row but carry Available=false and are excluded from every read path.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	// DeletedAt is reserved: soft delete is tracked by Available, the column
	// exists in the schema but is never written.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
