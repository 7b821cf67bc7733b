package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	scouterrors "github.com/Aman-CERP/scout/internal/errors"
	"github.com/Aman-CERP/scout/internal/orchestrator"
	"github.com/Aman-CERP/scout/internal/searchapi"
)

// PlainRenderer writes search output as plain lines (for CI/pipes and the
// one-shot commands).
type PlainRenderer struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles
	debug  bool
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{
		out:    cfg.Output,
		styles: GetStyles(cfg.NoColor || !IsTTY(cfg.Output)),
		debug:  cfg.Debug,
	}
}

// State writes the error, empty state or result list of a snapshot.
func (r *PlainRenderer) State(s orchestrator.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.Err != nil {
		r.writeError(s.Err)
		if len(s.Results()) == 0 {
			return
		}
		_, _ = fmt.Fprintln(r.out)
	}

	if title, hint, ok := EmptyState(s); ok {
		_, _ = fmt.Fprintln(r.out, r.styles.Title.Render(title))
		_, _ = fmt.Fprintln(r.out, r.styles.Label.Render(hint))
		return
	}

	r.writeResults(s.Results(), s.Query)
}

// Results writes a result list under its summary line.
func (r *PlainRenderer) Results(results []searchapi.Result, query string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(results) == 0 {
		_, _ = fmt.Fprintln(r.out, r.styles.Title.Render(TitleNoResults))
		_, _ = fmt.Fprintln(r.out, r.styles.Label.Render(HintNoResults))
		return
	}
	r.writeResults(results, query)
}

func (r *PlainRenderer) writeResults(results []searchapi.Result, query string) {
	_, _ = fmt.Fprintln(r.out, r.styles.Header.Render(ResultSummary(len(results), query)))
	for i, res := range results {
		_, _ = fmt.Fprintln(r.out)
		for j, line := range cardLines(res, r.styles) {
			prefix := "   "
			if j == 0 {
				prefix = fmt.Sprintf("%2d.", i+1)
			}
			_, _ = fmt.Fprintf(r.out, "%s %s\n", prefix, line)
		}
	}
}

// FilterOptions lists every filter with its accepted values.
func (r *PlainRenderer) FilterOptions(opts searchapi.FilterOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, group := range filterGroups(opts) {
		_, _ = fmt.Fprintf(r.out, "%s (%s)\n", r.styles.Header.Render(group.label), group.param)
		if len(group.values) == 0 {
			_, _ = fmt.Fprintln(r.out, r.styles.Dim.Render("  (none)"))
		}
		for _, v := range group.values {
			_, _ = fmt.Fprintf(r.out, "  %s\n", v)
		}
	}
}

// History lists recent queries, most recent first.
func (r *PlainRenderer) History(entries []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(r.out, r.styles.Dim.Render("No recent searches"))
		return
	}
	_, _ = fmt.Fprintln(r.out, r.styles.Header.Render("Recent searches"))
	for i, e := range entries {
		_, _ = fmt.Fprintf(r.out, "%2d. %s\n", i+1, e)
	}
}

// Health reports the service's self-description.
func (r *PlainRenderer) Health(h searchapi.HealthStatus, baseURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := r.styles.Success.Render(h.Status)
	if !strings.EqualFold(h.Status, "healthy") {
		status = r.styles.Warning.Render(h.Status)
	}
	_, _ = fmt.Fprintf(r.out, "%s %s\n", r.styles.Label.Render("Service: "), baseURL)
	_, _ = fmt.Fprintf(r.out, "%s %s\n", r.styles.Label.Render("Status:  "), status)
	_, _ = fmt.Fprintf(r.out, "%s %d\n", r.styles.Label.Render("Startups:"), h.TotalStartups)
	if h.Message != "" {
		_, _ = fmt.Fprintf(r.out, "%s %s\n", r.styles.Label.Render("Message: "), h.Message)
	}
}

// Error writes err the way the error banner shows it.
func (r *PlainRenderer) Error(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeError(err)
}

func (r *PlainRenderer) writeError(err error) {
	_, _ = fmt.Fprintln(r.out, r.styles.Error.Render(strings.TrimRight(scouterrors.FormatForUser(err, r.debug), "\n")))
}

type filterGroup struct {
	label    string
	allLabel string
	param    string
	values   []string
}

// filterGroups orders the filters the way both front ends present them.
func filterGroups(opts searchapi.FilterOptions) []filterGroup {
	return []filterGroup{
		{label: "Sector", allLabel: "All sectors", param: searchapi.ParamSector, values: opts.Sectors},
		{label: "Funding Stage", allLabel: "All stages", param: searchapi.ParamFundingStage, values: opts.FundingStages},
		{label: "Location", allLabel: "All locations", param: searchapi.ParamLocation, values: opts.Locations},
	}
}
