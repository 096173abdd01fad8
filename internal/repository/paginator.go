package repository

const (
	// DefaultPage is the page assumed when the caller does not supply one.
	DefaultPage = 1
	// DefaultPaginationLimit is the default number of items per page.
	DefaultPaginationLimit = 10
)

// Pagination represents offset pagination state. Page and Limit are always
// positive; callers validate their input before building one.
type Pagination struct {
	Page  int64
	Limit int64
}

// NewPagination builds a Pagination, substituting defaults for non-positive
// page or limit values.
func NewPagination(page, limit int64) Pagination {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultPaginationLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip for the current page.
func (p Pagination) Offset() int64 {
	return (p.Page - 1) * p.Limit
}

// PageMeta describes the page of results sent back to the caller.
//
// TotalPages carries the raw count of available rows, not a page count. The
// field name is part of the wire contract consumed by the other services and
// must stay as is.
type PageMeta struct {
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"totalPages"`
	LastPage   int64 `json:"lastPage"`
}

// Meta computes page metadata for the given total of available rows. A page
// beyond LastPage is not an error; it simply pairs with an empty data slice.
func (p Pagination) Meta(total int64) PageMeta {
	var lastPage int64
	if total > 0 {
		lastPage = (total + p.Limit - 1) / p.Limit
	}
	return PageMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: total,
		LastPage:   lastPage,
	}
}
