package sql

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mkravets/products-service/internal/model"
	"github.com/mkravets/products-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(name, description string, price float64) *model.Product {
	return &model.Product{Name: name, Description: description, Price: price}
}

var productTestColumns = []string{"id", "name", "description", "price", "available", "created_at", "updated_at", "deleted_at"}

func newRepo(t *testing.T) (repository.ProductRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewProductRepository(db), mock, func() { db.Close() }
}

func TestProductRepository_Insert(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()
	ctx := context.Background()

	t.Run("successful insert", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(productTestColumns).
			AddRow(int64(1), "Test Product", "Test Description", 99.99, true, now, now, nil)

		mock.ExpectPrepare("INSERT INTO products").
			ExpectQuery().
			WithArgs("Test Product", "Test Description", 99.99).
			WillReturnRows(rows)

		created, err := repo.Insert(ctx, newProduct("Test Product", "Test Description", 99.99))
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
		assert.True(t, created.Available)
		assert.False(t, created.CreatedAt.IsZero())
		assert.Nil(t, created.DeletedAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("constraint violation maps to ConstraintError", func(t *testing.T) {
		mock.ExpectPrepare("INSERT INTO products").
			ExpectQuery().
			WithArgs("Test Product", "", -5.0).
			WillReturnError(&pgconn.PgError{Code: "23514", Message: "price_nonnegative check failed"})

		_, err := repo.Insert(ctx, newProduct("Test Product", "", -5.0))
		require.Error(t, err)

		var constraintErr *repository.ConstraintError
		assert.ErrorAs(t, err, &constraintErr)
		assert.Contains(t, constraintErr.Detail, "price_nonnegative")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_CountAvailable(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()
	ctx := context.Background()

	mock.ExpectPrepare("SELECT COUNT\\(\\*\\) FROM products WHERE available = TRUE").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(15)))

	count, err := repo.CountAvailable(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(15), count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ListAvailable(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()
	ctx := context.Background()

	t.Run("returns page of available products", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(productTestColumns).
			AddRow(int64(11), "Product 11", "", 10.5, true, now, now, nil).
			AddRow(int64(12), "Product 12", "", 20.5, true, now, now, nil)

		mock.ExpectPrepare("SELECT (.+) FROM products\\s+WHERE available = TRUE ORDER BY id LIMIT").
			ExpectQuery().
			WithArgs(int64(10), int64(10)).
			WillReturnRows(rows)

		products, err := repo.ListAvailable(ctx, 10, 10)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, int64(11), products[0].ID)
		assert.Equal(t, int64(12), products[1].ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty page is not an error", func(t *testing.T) {
		mock.ExpectPrepare("SELECT (.+) FROM products\\s+WHERE available = TRUE ORDER BY id LIMIT").
			ExpectQuery().
			WithArgs(int64(10), int64(100)).
			WillReturnRows(sqlmock.NewRows(productTestColumns))

		products, err := repo.ListAvailable(ctx, 100, 10)
		require.NoError(t, err)
		assert.Empty(t, products)
		assert.NotNil(t, products)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_FindAvailableByID(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()
	ctx := context.Background()

	t.Run("successful find", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(productTestColumns).
			AddRow(int64(7), "Test Product", "Test Description", 99.99, true, now, now, nil)

		mock.ExpectPrepare("SELECT (.+) FROM products WHERE id = \\$1 AND available = TRUE").
			ExpectQuery().
			WithArgs(int64(7)).
			WillReturnRows(rows)

		product, err := repo.FindAvailableByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), product.ID)
		assert.Equal(t, "Test Product", product.Name)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing or unavailable row returns ErrNotFound", func(t *testing.T) {
		mock.ExpectPrepare("SELECT (.+) FROM products WHERE id = \\$1 AND available = TRUE").
			ExpectQuery().
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		product, err := repo.FindAvailableByID(ctx, 404)
		require.Error(t, err)
		assert.Nil(t, product)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_UpdateByID(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()
	ctx := context.Background()

	t.Run("partial update sets only supplied fields", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(productTestColumns).
			AddRow(int64(5), "Renamed", "Old description", 42.0, true, now, now, nil)

		mock.ExpectPrepare("UPDATE products SET updated_at = NOW\\(\\), name = \\$1, price = \\$2 WHERE id = \\$3 RETURNING").
			ExpectQuery().
			WithArgs("Renamed", 42.0, int64(5)).
			WillReturnRows(rows)

		name := "Renamed"
		price := 42.0
		product, err := repo.UpdateByID(ctx, 5, repository.ProductFields{Name: &name, Price: &price})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", product.Name)
		assert.Equal(t, 42.0, product.Price)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty field set still touches updated_at", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(productTestColumns).
			AddRow(int64(5), "Same", "", 1.0, true, now, now, nil)

		mock.ExpectPrepare("UPDATE products SET updated_at = NOW\\(\\) WHERE id = \\$1 RETURNING").
			ExpectQuery().
			WithArgs(int64(5)).
			WillReturnRows(rows)

		_, err := repo.UpdateByID(ctx, 5, repository.ProductFields{})
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row returns ErrNotFound", func(t *testing.T) {
		mock.ExpectPrepare("UPDATE products SET updated_at = NOW\\(\\), name = \\$1 WHERE id = \\$2 RETURNING").
			ExpectQuery().
			WithArgs("Renamed", int64(404)).
			WillReturnError(sql.ErrNoRows)

		name := "Renamed"
		_, err := repo.UpdateByID(ctx, 404, repository.ProductFields{Name: &name})
		assert.ErrorIs(t, err, repository.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_SetAvailability(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()
	ctx := context.Background()

	t.Run("soft delete flips the flag", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(productTestColumns).
			AddRow(int64(3), "Gone", "", 9.99, false, now, now, nil)

		mock.ExpectPrepare("UPDATE products SET available = \\$2, updated_at = NOW\\(\\)\\s+WHERE id = \\$1 RETURNING").
			ExpectQuery().
			WithArgs(int64(3), false).
			WillReturnRows(rows)

		product, err := repo.SetAvailability(ctx, 3, false)
		require.NoError(t, err)
		assert.False(t, product.Available)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row returns ErrNotFound", func(t *testing.T) {
		mock.ExpectPrepare("UPDATE products SET available = \\$2, updated_at = NOW\\(\\)\\s+WHERE id = \\$1 RETURNING").
			ExpectQuery().
			WithArgs(int64(404), false).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.SetAvailability(ctx, 404, false)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_FindAvailableByIDs(t *testing.T) {
	repo, mock, closeDB := newRepo(t)
	defer closeDB()
	ctx := context.Background()

	t.Run("returns subset of available rows", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(productTestColumns).
			AddRow(int64(1), "Product 1", "", 10.0, true, now, now, nil).
			AddRow(int64(2), "Product 2", "", 20.0, true, now, now, nil)

		mock.ExpectPrepare("SELECT (.+) FROM products WHERE available = TRUE AND id IN \\(\\$1, \\$2, \\$3\\) ORDER BY id").
			ExpectQuery().
			WithArgs(int64(1), int64(2), int64(3)).
			WillReturnRows(rows)

		products, err := repo.FindAvailableByIDs(ctx, []int64{1, 2, 3})
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, int64(1), products[0].ID)
		assert.Equal(t, int64(2), products[1].ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty id set short-circuits without querying", func(t *testing.T) {
		products, err := repo.FindAvailableByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, products)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
