package model

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DefaultPageSize applies when no limit is given.
const DefaultPageSize = 10

// ListOptions controls paging and ordering of a listing.
type ListOptions struct {
	Page  int
	Limit int
	Sort  string
	Order SortOrder
}

// Offset returns the number of records to skip.
func (o ListOptions) Offset() int {
	if o.Page < 1 {
		return 0
	}
	return (o.Page - 1) * o.Limit
}

// Pagination is echoed back with paginated listings.
type Pagination struct {
	Current int   `json:"current"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int64 `json:"pages"`
}

// NewPagination computes pages = ceil(total / limit). Current echoes the
// requested page without clamping.
func NewPagination(page, limit int, total int64) Pagination {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Current: page, Limit: limit, Total: total, Pages: pages}
}

// Page is one page of results.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}
