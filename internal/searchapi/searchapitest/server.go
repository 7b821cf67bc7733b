// Package searchapitest provides an in-process fake of the search service
// for tests. By default it serves a small catalog with substring matching
// and <mark> highlights; tests can script replies, delays and failures.
package searchapitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Aman-CERP/scout/internal/searchapi"
)

// Reply scripts one response from the fake.
type Reply struct {
	// Status defaults to 200.
	Status int
	// Body is encoded as JSON unless Raw is set.
	Body any
	// Raw is written verbatim, for malformed-body tests.
	Raw string
	// Delay holds the response back, to force out-of-order completions.
	Delay time.Duration
}

// SearchFunc decides the reply to a /search request.
type SearchFunc func(params url.Values) Reply

// Server is a fake search service.
type Server struct {
	srv *httptest.Server

	mu         sync.Mutex
	catalog    []searchapi.Startup
	onSearch   SearchFunc
	filters    *Reply
	health     *Reply
	requests   []url.Values
	rawQueries []string
	hits       map[string]int
}

// NewServer starts a fake with the default catalog.
func NewServer() *Server {
	s := &Server{
		catalog: DefaultCatalog(),
		hits:    make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/search", s.handleSearch)
	r.Get("/filters", s.handleFilters)
	r.Get("/health", s.handleHealth)

	s.srv = httptest.NewServer(r)
	return s
}

// TB is the subset of testing.TB the fake needs.
type TB interface {
	Helper()
	Cleanup(func())
}

// New starts a fake and closes it when the test ends.
func New(t TB) *Server {
	t.Helper()
	s := NewServer()
	t.Cleanup(s.Close)
	return s
}

// URL returns the base URL to hand to searchapi.New.
func (s *Server) URL() string { return s.srv.URL }

// Close shuts the fake down.
func (s *Server) Close() { s.srv.Close() }

// SetCatalog replaces the startups the default search runs over.
func (s *Server) SetCatalog(startups []searchapi.Startup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = append([]searchapi.Startup(nil), startups...)
}

// OnSearch overrides /search. Pass nil to restore the catalog search.
func (s *Server) OnSearch(fn SearchFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSearch = fn
}

// SetFilters overrides /filters.
func (s *Server) SetFilters(r Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = &r
}

// SetHealth overrides /health.
func (s *Server) SetHealth(r Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health = &r
}

// SearchRequests returns the parsed query of every /search call, in arrival order.
func (s *Server) SearchRequests() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.requests))
	copy(out, s.requests)
	return out
}

// RawSearchQueries returns the raw query strings of every /search call.
func (s *Server) RawSearchQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rawQueries...)
}

// Hits returns how many times path was requested.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	s.mu.Lock()
	s.hits["/search"]++
	s.requests = append(s.requests, params)
	s.rawQueries = append(s.rawQueries, r.URL.RawQuery)
	fn := s.onSearch
	catalog := s.catalog
	s.mu.Unlock()

	if fn == nil {
		write(w, r, Reply{Body: catalogSearch(catalog, params)})
		return
	}
	write(w, r, fn(params))
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits["/filters"]++
	override := s.filters
	catalog := s.catalog
	s.mu.Unlock()

	if override != nil {
		write(w, r, *override)
		return
	}
	write(w, r, Reply{Body: catalogFilters(catalog)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits["/health"]++
	override := s.health
	n := len(s.catalog)
	s.mu.Unlock()

	if override != nil {
		write(w, r, *override)
		return
	}
	write(w, r, Reply{Body: searchapi.HealthStatus{
		Status:        "healthy",
		TotalStartups: n,
		Message:       "Search API is running",
	}})
}

func write(w http.ResponseWriter, r *http.Request, reply Reply) {
	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-r.Context().Done():
			return
		}
	}

	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if reply.Raw != "" {
		_, _ = w.Write([]byte(reply.Raw))
		return
	}
	if reply.Body != nil {
		_ = json.NewEncoder(w).Encode(reply.Body)
	}
}

// catalogSearch is a small stand-in for the real ranking engine: every query
// term found in a field adds to the score, and matches are wrapped in <mark>.
func catalogSearch(catalog []searchapi.Startup, params url.Values) searchapi.SearchResponse {
	query := strings.TrimSpace(params.Get(searchapi.ParamQuery))
	filters := searchapi.Filters{
		Sector:       params.Get(searchapi.ParamSector),
		FundingStage: params.Get(searchapi.ParamFundingStage),
		Location:     params.Get(searchapi.ParamLocation),
	}
	limit, err := strconv.Atoi(params.Get(searchapi.ParamLimit))
	if err != nil || limit <= 0 {
		limit = searchapi.DefaultLimit
	}

	resp := searchapi.SearchResponse{
		Query:   query,
		Filters: filters.Map(),
		Results: []searchapi.Result{},
	}
	if query == "" && filters.IsEmpty() {
		return resp
	}

	terms := strings.Fields(strings.ToLower(query))
	weights := []struct {
		field  string
		weight float64
	}{
		{"name", 0.4},
		{"description", 0.2},
		{"sector", 0.2},
		{"location", 0.2},
	}

	for _, st := range catalog {
		if !matchesFilters(st, filters) {
			continue
		}
		if len(terms) == 0 {
			resp.Results = append(resp.Results, searchapi.Result{
				Startup:       st,
				MatchedFields: []string{},
				Highlights:    map[string]string{},
			})
			continue
		}

		res := searchapi.Result{
			Startup:       st,
			MatchedFields: []string{},
			Highlights:    map[string]string{},
		}
		for _, fw := range weights {
			text := st.FieldValue(fw.field)
			hit := 0
			for _, term := range terms {
				if strings.Contains(strings.ToLower(text), term) {
					hit++
				}
			}
			if hit == 0 {
				continue
			}
			res.Score += fw.weight * float64(hit) / float64(len(terms))
			res.MatchedFields = append(res.MatchedFields, fw.field)
			res.Highlights[fw.field] = markTerms(text, terms)
		}
		if res.Score > 0 {
			resp.Results = append(resp.Results, res)
		}
	}

	sort.SliceStable(resp.Results, func(i, j int) bool {
		return resp.Results[i].Score > resp.Results[j].Score
	})
	if len(resp.Results) > limit {
		resp.Results = resp.Results[:limit]
	}
	resp.TotalResults = len(resp.Results)
	return resp
}

func matchesFilters(st searchapi.Startup, f searchapi.Filters) bool {
	if f.Sector != "" && st.Sector != f.Sector {
		return false
	}
	if f.FundingStage != "" && st.FundingStage != f.FundingStage {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(st.Location), strings.ToLower(f.Location)) {
		return false
	}
	return true
}

func markTerms(text string, terms []string) string {
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = regexp.QuoteMeta(term)
	}
	re := regexp.MustCompile("(?i)(" + strings.Join(quoted, "|") + ")")
	return re.ReplaceAllStringFunc(text, func(m string) string {
		return `<mark class="bg-yellow-200 px-1 rounded">` + m + `</mark>`
	})
}

func catalogFilters(catalog []searchapi.Startup) searchapi.FilterOptions {
	sectors := map[string]struct{}{}
	stages := map[string]struct{}{}
	locations := map[string]struct{}{}
	for _, st := range catalog {
		sectors[st.Sector] = struct{}{}
		stages[st.FundingStage] = struct{}{}
		loc := st.Location
		if _, after, ok := strings.Cut(loc, ","); ok {
			loc = strings.TrimSpace(after)
		}
		locations[loc] = struct{}{}
	}
	return searchapi.FilterOptions{
		Sectors:       sortedKeys(sectors),
		FundingStages: sortedKeys(stages),
		Locations:     sortedKeys(locations),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
