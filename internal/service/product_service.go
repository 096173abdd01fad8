package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkravets/products-service/internal/metrics"
	"github.com/mkravets/products-service/internal/model"
	"github.com/mkravets/products-service/internal/repository"
	"github.com/mkravets/products-service/internal/sqs"
)

// ProductService implements the product catalog operations. It is stateless:
// every call stands alone and concurrent requests share nothing in-process.
type ProductService struct {
	repo      repository.ProductRepository
	publisher *sqs.Publisher
}

// NewProductService creates a ProductService. The publisher is optional; when
// nil no product events are sent.
func NewProductService(repo repository.ProductRepository, publisher *sqs.Publisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// ProductPage is a page of products together with its pagination metadata.
type ProductPage struct {
	Data []model.Product     `json:"data"`
	Meta repository.PageMeta `json:"meta"`
}

// MutationResult reports the outcome of an update or remove operation.
type MutationResult struct {
	Message string         `json:"message"`
	Data    *model.Product `json:"data"`
}

// Create persists a new product. Storage constraint violations pass through
// as *repository.ConstraintError for the RPC boundary to classify.
func (ps *ProductService) Create(ctx context.Context, name, description string, price float64) (*model.Product, error) {
	product := &model.Product{
		Name:        name,
		Description: description,
		Price:       price,
	}

	created, err := ps.repo.Insert(ctx, product)
	if err != nil {
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	ps.publishEvent(ctx, sqs.ActionCreated, created)

	return created, nil
}

// FindAll returns one page of available products. A page past the end is not
// an error; it yields an empty data slice with unchanged metadata.
func (ps *ProductService) FindAll(ctx context.Context, pagination repository.Pagination) (*ProductPage, error) {
	total, err := ps.repo.CountAvailable(ctx)
	if err != nil {
		return nil, err
	}

	products, err := ps.repo.ListAvailable(ctx, pagination.Offset(), pagination.Limit)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}

	return &ProductPage{
		Data: products,
		Meta: pagination.Meta(total),
	}, nil
}

// FindOne returns a single available product. Soft-deleted products are
// reported as not found even though their row still exists.
func (ps *ProductService) FindOne(ctx context.Context, id int64) (*model.Product, error) {
	product, err := ps.repo.FindAvailableByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, err
	}
	return product, nil
}

// Update applies a partial field update. The target is looked up by id alone,
// so a soft-deleted product can still be updated.
func (ps *ProductService) Update(ctx context.Context, id int64, fields repository.ProductFields) (*MutationResult, error) {
	product, err := ps.repo.UpdateByID(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, err
	}

	return &MutationResult{
		Message: fmt.Sprintf("Product with id %d has been updated", id),
		Data:    product,
	}, nil
}

// Remove soft-deletes a product by flipping its availability flag. Removing
// an already removed product succeeds again with the same result.
func (ps *ProductService) Remove(ctx context.Context, id int64) (*MutationResult, error) {
	product, err := ps.repo.SetAvailability(ctx, id, false)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, err
	}

	metrics.ProductsRemoved.Inc()
	ps.publishEvent(ctx, sqs.ActionDeleted, product)

	return &MutationResult{
		Message: fmt.Sprintf("Product with id %d has been deleted", id),
		Data:    product,
	}, nil
}

// ValidateProducts checks that every distinct requested id maps to an
// available product. All-or-nothing: a single missing or soft-deleted id
// fails the whole batch.
func (ps *ProductService) ValidateProducts(ctx context.Context, ids []int64) ([]model.Product, error) {
	distinct := dedupeIDs(ids)

	products, err := ps.repo.FindAvailableByIDs(ctx, distinct)
	if err != nil {
		return nil, err
	}

	if len(products) != len(distinct) {
		return nil, ErrProductsUnavailable
	}

	return products, nil
}

// dedupeIDs drops duplicate ids, keeping first-occurrence order.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	distinct := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	return distinct
}

func (ps *ProductService) publishEvent(ctx context.Context, action string, product *model.Product) {
	if ps.publisher == nil {
		return
	}

	event := sqs.ProductEvent{
		Action:    action,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
	}
	if err := ps.publisher.PublishProductEvent(ctx, event); err != nil {
		// Log error but don't fail the request
		slog.Error("Failed to send SQS message", slog.Any("err", err), slog.String("action", action), slog.Int64("product_id", product.ID))
	}
}
