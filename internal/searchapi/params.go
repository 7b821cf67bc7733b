package searchapi

import (
	"net/url"
	"strconv"
	"strings"
)

// BuildSearchParams builds the query string for GET /search.
// The query is trimmed and omitted when blank, only non-empty filters are
// sent, and limit falls back to DefaultLimit when not positive.
func BuildSearchParams(query string, filters Filters, limit int) url.Values {
	params := url.Values{}

	if q := strings.TrimSpace(query); q != "" {
		params.Set(ParamQuery, q)
	}
	for key, value := range filters.Map() {
		params.Set(key, value)
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	params.Set(ParamLimit, strconv.Itoa(limit))

	return params
}
