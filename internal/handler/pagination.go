package handler

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// PageParams is the limit/offset window for channel message listings.
// Session snapshots are never paged; polling clients need the full log.
type PageParams struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit and offset from the query string. Missing or
// junk values fall back to the default page size; an oversized limit is
// clamped rather than rejected.
func ParsePagination(r *http.Request) PageParams {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return PageParams{Limit: limit, Offset: offset}
}
