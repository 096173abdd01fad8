package repository

import (
	"context"
	"errors"

	"github.com/mkravets/products-service/internal/model"
)

var (
	// ErrNotFound is returned when the referenced product id has no matching row.
	// Lookup methods also return it when the row exists but is unavailable.
	ErrNotFound = errors.New("product not found")
)

// ProductRepository defines the storage operations the product service needs.
// Implementations are injected ready to use; connection lifecycle is theirs.
type ProductRepository interface {
	// Insert persists a new product and returns it with the assigned id,
	// timestamps and availability flag.
	Insert(ctx context.Context, product *model.Product) (*model.Product, error)

	// CountAvailable returns the number of rows with available = true.
	CountAvailable(ctx context.Context) (int64, error)

	// ListAvailable returns up to limit available rows starting at offset,
	// ordered by id for stable pagination.
	ListAvailable(ctx context.Context, offset, limit int64) ([]model.Product, error)

	// FindAvailableByID returns a single available row, or ErrNotFound.
	FindAvailableByID(ctx context.Context, id int64) (*model.Product, error)

	// UpdateByID applies a partial field update regardless of availability.
	// Returns ErrNotFound when no row with that id exists.
	UpdateByID(ctx context.Context, id int64, fields ProductFields) (*model.Product, error)

	// SetAvailability flips the availability flag regardless of its current
	// value. Returns ErrNotFound when no row with that id exists.
	SetAvailability(ctx context.Context, id int64, available bool) (*model.Product, error)

	// FindAvailableByIDs returns the subset of available rows whose id is in ids.
	FindAvailableByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
}

// ProductFields is a partial set of mutable product fields. Nil pointers mean
// "leave unchanged". The id is never part of the field set.
type ProductFields struct {
	Name        *string
	Description *string
	Price       *float64
}

// ConstraintError represents a database integrity constraint violation.
type ConstraintError struct {
	Detail string
}

func (c *ConstraintError) Error() string {
	return "product violates a storage constraint: " + c.Detail
}
