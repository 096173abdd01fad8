package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mkravets/products-service/internal/repository"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// RegisterValidation only errors on an empty tag name.
	_ = v.RegisterValidation("maxdecimals", maxDecimalPlaces)
	return v
}

// maxDecimalPlaces checks that a numeric field carries at most the given
// number of fractional digits, e.g. `maxdecimals=4`.
func maxDecimalPlaces(fl validator.FieldLevel) bool {
	places, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	d := decimal.NewFromFloat(fl.Field().Float())
	return int(-d.Exponent()) <= places
}

// CreateProductRequest is the payload of the create-product command.
// Price is a pointer so that an explicit zero passes the required check.
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0,maxdecimals=4"`
}

// UpdateProductRequest is the payload of the update-product command. All
// mutable fields are optional; the id identifies the target and is never
// applied to storage.
type UpdateProductRequest struct {
	ID          int64    `json:"id" validate:"required,gt=0"`
	Name        *string  `json:"name" validate:"omitempty,min=1"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0,maxdecimals=4"`
}

// Fields returns the mutable field set with the id stripped.
func (r *UpdateProductRequest) Fields() repository.ProductFields {
	return repository.ProductFields{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
	}
}

// ProductIDRequest is the payload of the find-one-product and remove-product
// commands.
type ProductIDRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

// FindAllProductsRequest is the payload of the find-all-products command.
type FindAllProductsRequest struct {
	Page  *int64 `json:"page" validate:"omitempty,gt=0"`
	Limit *int64 `json:"limit" validate:"omitempty,gt=0"`
}

// Pagination builds the pagination state, substituting defaults for absent
// fields.
func (r *FindAllProductsRequest) Pagination() repository.Pagination {
	var page, limit int64
	if r.Page != nil {
		page = *r.Page
	}
	if r.Limit != nil {
		limit = *r.Limit
	}
	return repository.NewPagination(page, limit)
}

// decodeRequest decodes and validates a command payload. Unknown fields are a
// hard rejection, not silently dropped. An empty payload decodes as {} so
// commands with all-optional fields can be called without a body.
func decodeRequest(payload []byte, v any) *Fault {
	if len(bytes.TrimSpace(payload)) == 0 {
		payload = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return NewFault(http.StatusBadRequest, "invalid payload: "+err.Error())
	}

	if err := validate.Struct(v); err != nil {
		return NewFault(http.StatusBadRequest, formatValidationErr(err))
	}
	return nil
}

func formatValidationErr(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, formatFieldError(fieldError))
	}
	return strings.Join(messages, "; ")
}

func formatFieldError(err validator.FieldError) string {
	field := strings.ToLower(err.Field())

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, err.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, err.Param())
	case "min":
		return fmt.Sprintf("%s must not be shorter than %s", field, err.Param())
	case "maxdecimals":
		return fmt.Sprintf("%s must have at most %s decimal places", field, err.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
