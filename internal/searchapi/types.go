// Package searchapi is the HTTP client for the remote startup search service.
//
// The service is a black box: it ranks, filters and highlights. This package
// only builds requests, decodes responses and classifies failures.
package searchapi

import (
	"context"
	"encoding/json"
	"strings"
)

// DefaultLimit is the result limit sent when the caller passes zero or less.
const DefaultLimit = 20

// Wire names of the filter parameters.
const (
	ParamQuery        = "q"
	ParamSector       = "sector"
	ParamFundingStage = "funding_stage"
	ParamLocation     = "location"
	ParamLimit        = "limit"
)

// Searcher is what the orchestrator needs from the remote service.
type Searcher interface {
	Search(ctx context.Context, query string, filters Filters, limit int) (*SearchResponse, error)
	FilterOptions(ctx context.Context) (*FilterOptions, error)
	Health(ctx context.Context) (*HealthStatus, error)
}

// Filters narrows a search. An empty field means unconstrained.
type Filters struct {
	Sector       string `json:"sector,omitempty"`
	FundingStage string `json:"funding_stage,omitempty"`
	Location     string `json:"location,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return f.Normalize() == Filters{}
}

// Normalize trims surrounding whitespace from every value.
func (f Filters) Normalize() Filters {
	return Filters{
		Sector:       strings.TrimSpace(f.Sector),
		FundingStage: strings.TrimSpace(f.FundingStage),
		Location:     strings.TrimSpace(f.Location),
	}
}

// Map returns the non-empty filters keyed by their wire names.
func (f Filters) Map() map[string]string {
	n := f.Normalize()
	m := make(map[string]string, 3)
	if n.Sector != "" {
		m[ParamSector] = n.Sector
	}
	if n.FundingStage != "" {
		m[ParamFundingStage] = n.FundingStage
	}
	if n.Location != "" {
		m[ParamLocation] = n.Location
	}
	return m
}

// Startup is one directory entry.
type Startup struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Sector        string `json:"sector"`
	Location      string `json:"location"`
	FundingStage  string `json:"funding_stage"`
	FundingAmount string `json:"funding_amount"`
	Description   string `json:"description"`
	Founded       int    `json:"founded"`
	Employees     string `json:"employees"`
	Website       string `json:"website"`
}

// FieldValue returns the raw text of a highlightable field by wire name.
func (s Startup) FieldValue(field string) string {
	switch field {
	case "name":
		return s.Name
	case "sector":
		return s.Sector
	case "location":
		return s.Location
	case "funding_stage":
		return s.FundingStage
	case "funding_amount":
		return s.FundingAmount
	case "description":
		return s.Description
	case "employees":
		return s.Employees
	case "website":
		return s.Website
	default:
		return ""
	}
}

// Result is one ranked hit. Highlights holds server-produced markup in which
// matched substrings are wrapped in <mark> elements.
type Result struct {
	Startup       Startup           `json:"startup"`
	Score         float64           `json:"score"`
	MatchedFields []string          `json:"matched_fields"`
	Highlights    map[string]string `json:"highlights"`
}

// UnmarshalJSON decodes a result and drops repeated matched field names.
func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.MatchedFields = dedupe(p.MatchedFields)
	*r = Result(p)
	return nil
}

// Highlight returns the markup for field, if the service produced any.
func (r Result) Highlight(field string) (string, bool) {
	h, ok := r.Highlights[field]
	return h, ok && h != ""
}

// SearchResponse is the service's answer to one search. Results keep the
// service's order.
type SearchResponse struct {
	Query        string            `json:"query"`
	Filters      map[string]string `json:"filters"`
	TotalResults int               `json:"total_results"`
	Results      []Result          `json:"results"`
}

// FilterOptions lists the values each filter accepts.
type FilterOptions struct {
	Sectors       []string `json:"sectors"`
	FundingStages []string `json:"funding_stages"`
	Locations     []string `json:"locations"`
}

// HealthStatus is the service's self-report.
type HealthStatus struct {
	Status        string `json:"status"`
	TotalStartups int    `json:"total_startups"`
	Message       string `json:"message"`
}

func dedupe(in []string) []string {
	if in == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
