package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mkravets/products-service/internal/model"
	"github.com/mkravets/products-service/internal/repository"
)

const (
	// PostgreSQL integrity constraint violation class. Covers unique (23505),
	// check (23514) and not-null (23502) violations.
	// See https://www.postgresql.org/docs/14/errcodes-appendix.html
	pqIntegrityViolationClass = "23"

	productColumns = "id, name, description, price, available, created_at, updated_at, deleted_at"
)

// ProductRepository implements repository.ProductRepository over PostgreSQL.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &ProductRepository{db: db}
}

func scanProduct(row interface{ Scan(dest ...any) error }) (*model.Product, error) {
	var product model.Product
	var deletedAt sql.NullTime
	err := row.Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.Available, &product.CreatedAt, &product.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		product.DeletedAt = &deletedAt.Time
	}
	return &product, nil
}

func mapConstraintErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, pqIntegrityViolationClass) {
		detail := pgErr.Detail
		if detail == "" {
			detail = pgErr.Message
		}
		return &repository.ConstraintError{Detail: detail}
	}
	return nil
}

// Insert persists a new product. The database assigns the id, the timestamps
// and the default availability flag.
func (r *ProductRepository) Insert(ctx context.Context, product *model.Product) (*model.Product, error) {
	query := `INSERT INTO products (name, description, price)
	          VALUES ($1, $2, $3)
	          RETURNING ` + productColumns

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, product.Name, product.Description, product.Price)
	created, err := scanProduct(row)
	if err != nil {
		if constraintErr := mapConstraintErr(err); constraintErr != nil {
			return nil, constraintErr
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return created, nil
}

// CountAvailable returns the number of available products.
func (r *ProductRepository) CountAvailable(ctx context.Context) (int64, error) {
	stmt, err := r.db.PrepareContext(ctx, `SELECT COUNT(*) FROM products WHERE available = TRUE`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare count statement: %w", err)
	}
	defer stmt.Close()

	var count int64
	if err := stmt.QueryRowContext(ctx).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// ListAvailable returns a page of available products ordered by id.
func (r *ProductRepository) ListAvailable(ctx context.Context, offset, limit int64) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
	          WHERE available = TRUE ORDER BY id LIMIT $1 OFFSET $2`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// FindAvailableByID returns a single available product.
func (r *ProductRepository) FindAvailableByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND available = TRUE`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	product, err := scanProduct(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return product, nil
}

// UpdateByID applies a partial update to a product row. Availability is not
// part of the lookup: updating a soft-deleted product still succeeds.
func (r *ProductRepository) UpdateByID(ctx context.Context, id int64, fields repository.ProductFields) (*model.Product, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("UPDATE products SET updated_at = NOW()")

	var args []interface{}
	argIndex := 1

	if fields.Name != nil {
		queryBuilder.WriteString(fmt.Sprintf(", name = $%d", argIndex))
		args = append(args, *fields.Name)
		argIndex++
	}
	if fields.Description != nil {
		queryBuilder.WriteString(fmt.Sprintf(", description = $%d", argIndex))
		args = append(args, *fields.Description)
		argIndex++
	}
	if fields.Price != nil {
		queryBuilder.WriteString(fmt.Sprintf(", price = $%d", argIndex))
		args = append(args, *fields.Price)
		argIndex++
	}

	queryBuilder.WriteString(fmt.Sprintf(" WHERE id = $%d RETURNING %s", argIndex, productColumns))
	args = append(args, id)

	stmt, err := r.db.PrepareContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare update statement: %w", err)
	}
	defer stmt.Close()

	product, err := scanProduct(stmt.QueryRowContext(ctx, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if constraintErr := mapConstraintErr(err); constraintErr != nil {
			return nil, constraintErr
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// SetAvailability flips the soft-delete flag. The update is unconditional on
// the current flag value, which makes remove idempotent.
func (r *ProductRepository) SetAvailability(ctx context.Context, id int64, available bool) (*model.Product, error) {
	query := `UPDATE products SET available = $2, updated_at = NOW()
	          WHERE id = $1 RETURNING ` + productColumns

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare update statement: %w", err)
	}
	defer stmt.Close()

	product, err := scanProduct(stmt.QueryRowContext(ctx, id, available))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product availability: %w", err)
	}

	return product, nil
}

// FindAvailableByIDs returns the available products whose id is in ids.
func (r *ProductRepository) FindAvailableByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + productColumns + " FROM products WHERE available = TRUE AND id IN (")

	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			queryBuilder.WriteString(", ")
		}
		fmt.Fprintf(&queryBuilder, "$%d", i+1)
		args = append(args, id)
	}
	queryBuilder.WriteString(") ORDER BY id")

	stmt, err := r.db.PrepareContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]model.Product, error) {
	products := []model.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}
