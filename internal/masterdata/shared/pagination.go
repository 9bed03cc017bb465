package shared

import (
	"net/http"
	"strings"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// ListFilters represents standard list page filters
type ListFilters struct {
	Page     int
	Limit    int
	Search   string
	SortBy   string
	SortDir  string
	IsActive *bool
}

// Offset returns the row offset of the requested page.
func (f ListFilters) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// FiltersFromRequest reads page, limit, search, sort, dir and is_active
// query parameters.
func FiltersFromRequest(r *http.Request) ListFilters {
	filters := ListFilters{
		Page:    httpx.QueryInt(r, "page", DefaultPage),
		Limit:   httpx.QueryInt(r, "limit", DefaultLimit),
		Search:  strings.TrimSpace(r.URL.Query().Get("search")),
		SortBy:  r.URL.Query().Get("sort"),
		SortDir: r.URL.Query().Get("dir"),
	}
	if filters.Page < 1 {
		filters.Page = DefaultPage
	}
	if filters.Limit < 1 || filters.Limit > MaxLimit {
		filters.Limit = DefaultLimit
	}
	if raw := r.URL.Query().Get("is_active"); raw != "" {
		active := raw == "true"
		filters.IsActive = &active
	}
	return filters
}

// Page is a JSON list envelope.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
