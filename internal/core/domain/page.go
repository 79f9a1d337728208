package domain

// PageSize is the fixed number of rows returned per listing page.
const PageSize = 10

// Page is one slice of a listing plus the total row count.
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

// TotalPages returns the number of pages needed to cover Total.
func (p Page[T]) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// Offset converts a 1-based page number into a row offset.
func Offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
