package common

import (
	"net/http"
	"strconv"
)

// maxPerPage caps list page sizes; the register history screens never show
// more than this and an unbounded limit is an easy way to drag the database.
const maxPerPage = 100

// Pagination is the paging block list endpoints return alongside their data.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// ParsePagination reads page and limit from the query string, defaulting to
// page 1 and the caller's page size, and clamps the size to maxPerPage.
func ParsePagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	q := r.URL.Query()
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		perPage = l
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}
