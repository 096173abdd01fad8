package repository_test

import (
	"testing"

	"github.com/mkravets/products-service/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestNewPagination_Defaults(t *testing.T) {
	tests := []struct {
		name      string
		page      int64
		limit     int64
		wantPage  int64
		wantLimit int64
	}{
		{"BothZero", 0, 0, 1, 10},
		{"PageOnly", 3, 0, 3, 10},
		{"LimitOnly", 0, 25, 1, 25},
		{"BothSet", 2, 5, 2, 5},
		{"Negative", -1, -1, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := repository.NewPagination(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
		})
	}
}

func TestPagination_Offset(t *testing.T) {
	assert.Equal(t, int64(0), repository.NewPagination(1, 10).Offset())
	assert.Equal(t, int64(10), repository.NewPagination(2, 10).Offset())
	assert.Equal(t, int64(40), repository.NewPagination(9, 5).Offset())
}

func TestPagination_Meta(t *testing.T) {
	tests := []struct {
		name         string
		page         int64
		limit        int64
		total        int64
		wantLastPage int64
	}{
		{"EmptyCatalog", 1, 10, 0, 0},
		{"ExactPages", 1, 10, 20, 2},
		{"PartialLastPage", 2, 10, 15, 2},
		{"SingleRow", 1, 10, 1, 1},
		{"PastTheEnd", 9, 10, 15, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := repository.NewPagination(tt.page, tt.limit).Meta(tt.total)
			assert.Equal(t, tt.page, meta.Page)
			assert.Equal(t, tt.limit, meta.Limit)
			assert.Equal(t, tt.total, meta.TotalPages, "totalPages carries the raw row count")
			assert.Equal(t, tt.wantLastPage, meta.LastPage)
		})
	}
}
