package utils

import (
	"net/http/httptest"
	"testing"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		page     int
		pageSize int
	}{
		{"defaults", "/api/vulns", 1, 10},
		{"explicit values", "/api/vulns?page=3&pageSize=25", 3, 25},
		{"zero page falls back", "/api/vulns?page=0", 1, 10},
		{"negative page falls back", "/api/vulns?page=-2", 1, 10},
		{"non-numeric falls back", "/api/vulns?page=abc&pageSize=xyz", 1, 10},
		{"oversized pageSize capped to default", "/api/vulns?pageSize=5000", 1, 10},
		{"max pageSize accepted", "/api/vulns?pageSize=200", 1, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			p := ParsePagination(r)
			if p.Page != tt.page || p.PageSize != tt.pageSize {
				t.Errorf("got page=%d size=%d, want page=%d size=%d", p.Page, p.PageSize, tt.page, tt.pageSize)
			}
		})
	}
}

func TestPaginationSkipLimit(t *testing.T) {
	p := Pagination{Page: 3, PageSize: 25}
	if p.Skip() != 50 {
		t.Errorf("Skip() = %d, want 50", p.Skip())
	}
	if p.Limit() != 25 {
		t.Errorf("Limit() = %d, want 25", p.Limit())
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPasswordHash("s3cret-pass", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong-pass", hash) {
		t.Error("wrong password accepted")
	}
}
