package service

import (
	"errors"
	"fmt"
)

// ErrProductsUnavailable is returned by ValidateProducts when at least one
// requested id is missing or soft-deleted. The message text is part of the
// cross-service contract.
var ErrProductsUnavailable = errors.New("Some products are not available")

// NotFoundError is returned when an operation references a product id that
// cannot be served.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Product with id %d not found", e.ID)
}
