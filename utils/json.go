// utils/json.go
package utils

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ParseJSON parses a JSON request body.
func ParseJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// Pagination carries the page/pageSize query parameters.
type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) Skip() int64 {
	return int64((p.Page - 1) * p.PageSize)
}

func (p Pagination) Limit() int64 {
	return int64(p.PageSize)
}

// ParsePagination reads page and pageSize from the query string, falling
// back to page 1 / size 10 on anything missing or malformed.
func ParsePagination(r *http.Request) Pagination {
	p := Pagination{Page: 1, PageSize: 10}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Page = n
		}
	}
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			p.PageSize = n
		}
	}
	return p
}

// PaginatedResponse is the envelope every paginated list endpoint returns.
type PaginatedResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}
