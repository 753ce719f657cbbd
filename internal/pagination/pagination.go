// Package pagination describes a result page's position within a larger collection.
package pagination

import "math"

// Defaults used by list screens.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	// windowAll is the largest page count shown without an ellipsis.
	windowAll = 5
)

// Info is the pagination block of a backend envelope.
type Info struct {
	CurrentPage   int            `json:"current_page"`
	PageSize      int            `json:"page_size"`
	TotalItems    int            `json:"total_items"`
	TotalPages    int            `json:"total_pages"`
	HasNext       bool           `json:"has_next"`
	HasPrevious   bool           `json:"has_previous"`
	SearchFilters map[string]any `json:"search_filters,omitempty"`
}

// New computes a consistent Info from a known total.
func New(page, pageSize, totalItems int) Info {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if totalItems < 0 {
		totalItems = 0
	}
	totalPages := int(math.Ceil(float64(totalItems) / float64(pageSize)))
	return Info{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// Fallback builds Info when the backend omitted it. Only the current page is known,
// so the total is the lower bound implied by the rows received so far.
func Fallback(page, pageSize, received int) Info {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return New(page, pageSize, (page-1)*pageSize+received)
}

// Resolve prefers the server block and falls back to a local computation.
func Resolve(server *Info, page, pageSize, received int) Info {
	if server != nil {
		return *server
	}
	return Fallback(page, pageSize, received)
}

// Valid reports whether page can be requested: a guard against out-of-range navigation.
func (i Info) Valid(page int) bool {
	return page >= 1 && page <= i.TotalPages
}

// ShowControls reports whether page controls are worth rendering.
func (i Info) ShowControls(rows int) bool {
	return rows > 0 && i.TotalPages > 1
}

// Ellipsis marks a gap in Window output.
const Ellipsis = 0

// Window lists page buttons: every page up to five pages, otherwise 1 2 3 … N.
func (i Info) Window() []int {
	n := i.TotalPages
	if n <= 0 {
		return nil
	}
	if n <= windowAll {
		out := make([]int, 0, n)
		for p := 1; p <= n; p++ {
			out = append(out, p)
		}
		return out
	}
	return []int{1, 2, 3, Ellipsis, n}
}

// Range returns the 1-based item span displayed on the current page.
func (i Info) Range() (start, end int) {
	if i.TotalItems == 0 || i.PageSize == 0 {
		return 0, 0
	}
	start = (i.CurrentPage-1)*i.PageSize + 1
	end = i.CurrentPage * i.PageSize
	if end > i.TotalItems {
		end = i.TotalItems
	}
	return start, end
}

// Page is one fetched page: rows plus the server's pagination block, if any.
type Page[T any] struct {
	Items      []T
	Pagination *Info
}
