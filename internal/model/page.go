package model

// PageSize is the number of rows returned per page by every paged listing.
const PageSize = 20

// PageRequest selects one page of a listing. Page is zero-based.
type PageRequest struct {
	Page          int    `json:"page"`
	SortColumn    string `json:"sort_column"`
	SortDirection string `json:"sort_direction"`
	Filter        string `json:"filter"`
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPage builds a Page from one slice of rows and the total row count.
func NewPage[T any](items []T, page, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Page:       page,
		TotalItems: total,
		TotalPages: (total + PageSize - 1) / PageSize,
	}
}
