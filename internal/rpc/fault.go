package rpc

import (
	"errors"
	"net/http"

	"github.com/mkravets/products-service/internal/repository"
	"github.com/mkravets/products-service/internal/service"
)

// Fault is the structured failure sent back over the RPC channel instead of a
// success payload. Status follows HTTP-style codes even though no HTTP
// transport is involved; the collaborating services rely on that convention.
type Fault struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (f *Fault) Error() string {
	return f.Message
}

// NewFault creates a Fault with the given status code and message.
func NewFault(status int, message string) *Fault {
	return &Fault{Status: status, Message: message}
}

// FaultFromError normalizes any error into a Fault. Not-found lookups,
// failed batch validations and storage constraint violations are caller
// errors (400); everything else is an internal fault (500).
func FaultFromError(err error) *Fault {
	var fault *Fault
	if errors.As(err, &fault) {
		return fault
	}

	var notFound *service.NotFoundError
	var constraint *repository.ConstraintError
	switch {
	case errors.As(err, &notFound),
		errors.Is(err, service.ErrProductsUnavailable),
		errors.As(err, &constraint):
		return NewFault(http.StatusBadRequest, err.Error())
	}

	return NewFault(http.StatusInternalServerError, err.Error())
}
