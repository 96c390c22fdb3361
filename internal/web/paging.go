package web

import (
	"net/http"
	"net/url"
	"strconv"
)

// PageSize is the number of rows shown in paged lists.
const PageSize = 10

// Pagination describes one page of a client-side sliced list.
type Pagination struct {
	Page    int
	Pages   int
	Total   int
	HasPrev bool
	HasNext bool

	query url.Values
}

// Prev returns the previous page number.
func (p Pagination) Prev() int { return p.Page - 1 }

// Next returns the next page number.
func (p Pagination) Next() int { return p.Page + 1 }

// URL returns the query string for page n, keeping the other parameters.
func (p Pagination) URL(n int) string {
	q := url.Values{}
	for k, v := range p.query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(n))
	return "?" + q.Encode()
}

// parsePage extracts the 1-based "page" query parameter. Returns 1 if not
// present or invalid.
func parsePage(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate slices items to the requested page. Pages past the end clamp to
// the last page.
func Paginate[T any](r *http.Request, items []T) ([]T, Pagination) {
	total := len(items)
	pages := max(1, (total+PageSize-1)/PageSize)
	page := min(parsePage(r), pages)

	start := (page - 1) * PageSize
	end := min(start+PageSize, total)

	return items[start:end], Pagination{
		Page:    page,
		Pages:   pages,
		Total:   total,
		HasPrev: page > 1,
		HasNext: page < pages,
		query:   r.URL.Query(),
	}
}
