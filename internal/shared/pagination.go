package shared

import (
	"net/http"
	"strconv"
)

// Pagination carries limit/offset parsed from the query string.
type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit/offset with sane bounds.
func ParsePagination(r *http.Request) Pagination {
	p := Pagination{Limit: 50}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 1000 {
		p.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		p.Offset = v
	}
	return p
}
