// Package ui renders search state to the terminal.
//
// Two front ends share the same card and summary formatting: App, an
// interactive bubbletea program driven by orchestrator snapshots, and
// PlainRenderer, line-oriented text for pipes, CI and one-shot commands.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/Aman-CERP/scout/internal/orchestrator"
)

// Empty-state and status texts.
const (
	TitleWelcome   = "Discover Amazing Startups"
	HintWelcome    = "Enter a search term to find startups by name, sector, description, or location"
	TitleNoResults = "No results found"
	HintNoResults  = "Try adjusting your search terms or filters to find more startups"
	TextSearching  = "Searching..."
)

// Config configures the UI.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	// Debug adds error causes to the error banner.
	Debug bool
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithDebug shows underlying causes in error output.
func WithDebug(debug bool) ConfigOption {
	return func(c *Config) {
		c.Debug = debug
	}
}

// NewConfig creates a new Config with the given output and options.
// NO_COLOR in the environment always disables color.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Output: output}
	for _, opt := range opts {
		opt(&cfg)
	}
	if DetectNoColor() {
		cfg.NoColor = true
	}
	return cfg
}

// Interactive reports whether the full-screen app can run on cfg.Output.
func Interactive(cfg Config) bool {
	return !cfg.ForcePlain && IsTTY(cfg.Output) && !DetectCI()
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}

// EmptyState returns the title and hint to show instead of results, or
// ok=false when there are results to show.
func EmptyState(s orchestrator.State) (title, hint string, ok bool) {
	if len(s.Results()) > 0 {
		return "", "", false
	}
	// A query still waiting on the debounce has not searched yet.
	if strings.TrimSpace(s.Query) == "" || !s.HasSearched {
		return TitleWelcome, HintWelcome, true
	}
	return TitleNoResults, HintNoResults, true
}

// ResultSummary is the heading above a non-empty result list.
func ResultSummary(n int, query string) string {
	noun := "startups"
	if n == 1 {
		noun = "startup"
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return fmt.Sprintf("Found %d %s", n, noun)
	}
	return fmt.Sprintf("Found %d %s for %q", n, noun, q)
}

// ScoreLabel formats a relevance score as a whole percentage. Scores of zero
// or less have no label.
func ScoreLabel(score float64) string {
	if score <= 0 {
		return ""
	}
	return fmt.Sprintf("%.0f%%", score*100)
}
