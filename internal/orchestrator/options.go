package orchestrator

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultDebounce is the typing quiet period before an implicit search.
const DefaultDebounce = 300 * time.Millisecond

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDebounce sets the debounce delay. Zero fires on the next tick.
func WithDebounce(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.debounce = d
		}
	}
}

// WithLimit sets the result limit sent with every search.
func WithLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPrometheus registers orchestrator counters on reg.
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(o *Orchestrator) {
		o.metricsReg = reg
	}
}

// WithRequestTimeout bounds each search request. Zero leaves it to the client.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.requestTimeout = d
	}
}
