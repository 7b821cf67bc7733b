package searchapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	scouterrors "github.com/Aman-CERP/scout/internal/errors"
	"github.com/Aman-CERP/scout/pkg/version"
)

// Operation names used in logs and metrics.
const (
	OpSearch  = "search"
	OpFilters = "filters"
	OpHealth  = "health"
)

// maxErrorBody caps how much of a failed response body is kept for diagnostics.
const maxErrorBody = 512

// Client talks to the search service over HTTP.
// It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	obs        *observer
}

var _ Searcher = (*Client)(nil)

// New creates a Client rooted at baseURL (for example http://localhost:5000).
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		timeout:   DefaultTimeout,
		userAgent: version.UserAgent(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	hc := cfg.httpClient
	if hc == nil {
		// No Client.Timeout: deadlines come from the per-request context.
		hc = &http.Client{}
	}

	return &Client{
		baseURL:    u,
		httpClient: hc,
		timeout:    cfg.timeout,
		userAgent:  cfg.userAgent,
		obs:        obs,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, scouterrors.ConfigError("search service URL is empty", nil).
			WithSuggestion("Set SCOUT_API_BASE_URL or api.base_url in the config file")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, scouterrors.ConfigError(fmt.Sprintf("invalid search service URL %q", raw), err).
			WithSuggestion("Use an absolute URL such as http://localhost:5000")
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

// BaseURL returns the service root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Search runs GET /search. See BuildSearchParams for how arguments map to
// query parameters.
func (c *Client) Search(ctx context.Context, query string, filters Filters, limit int) (resp *SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe(OpSearch, start, err) }()

	var out SearchResponse
	if err = c.get(ctx, OpSearch, "/search", BuildSearchParams(query, filters, limit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FilterOptions runs GET /filters.
func (c *Client) FilterOptions(ctx context.Context) (opts *FilterOptions, err error) {
	start := time.Now()
	defer func() { c.obs.observe(OpFilters, start, err) }()

	var out FilterOptions
	if err = c.get(ctx, OpFilters, "/filters", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health runs GET /health.
func (c *Client) Health(ctx context.Context) (status *HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe(OpHealth, start, err) }()

	var out HealthStatus
	if err = c.get(ctx, OpHealth, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// get performs one request and decodes a 2xx JSON body into out.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := *c.baseURL
	u.Path += path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return scouterrors.InternalError("failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := scouterrors.New(scouterrors.ErrCodeRemoteStatus,
			fmt.Sprintf("%s: %s", failurePrefix(op), resp.Status), nil).
			WithDetail("status", strconv.Itoa(resp.StatusCode)).
			WithDetail("operation", op)
		if b := strings.TrimSpace(string(body)); b != "" {
			se.WithDetail("body", b)
		}
		return se
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return transportError(op, ctx.Err())
		}
		return scouterrors.New(scouterrors.ErrCodeBadResponse,
			fmt.Sprintf("%s: invalid response body", failurePrefix(op)), err).
			WithDetail("operation", op)
	}

	return nil
}

func transportError(op string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return scouterrors.New(scouterrors.ErrCodeNetworkTimeout,
			fmt.Sprintf("%s: search service timed out", failurePrefix(op)), err).
			WithDetail("operation", op)
	}
	return scouterrors.NetworkError(
		fmt.Sprintf("%s: search service unreachable", failurePrefix(op)), err).
		WithDetail("operation", op).
		WithSuggestion("Make sure the backend is running and SCOUT_API_BASE_URL points at it")
}

func failurePrefix(op string) string {
	switch op {
	case OpSearch:
		return "search failed"
	case OpFilters:
		return "failed to fetch filter options"
	case OpHealth:
		return "health check failed"
	default:
		return op + " failed"
	}
}
