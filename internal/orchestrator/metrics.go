package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aman-CERP/scout/internal/searchapi"
)

type metrics struct {
	dispatched     prometheus.Counter
	staleDiscarded prometheus.Counter
	debounceFired  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scout",
			Subsystem: "orchestrator",
			Name:      "dispatched_total",
			Help:      "Search requests dispatched.",
		}),
		staleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scout",
			Subsystem: "orchestrator",
			Name:      "stale_discarded_total",
			Help:      "Completions discarded because a newer request was dispatched.",
		}),
		debounceFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scout",
			Subsystem: "orchestrator",
			Name:      "debounce_fired_total",
			Help:      "Implicit searches fired by the typing debounce.",
		}),
	}
	for _, c := range []*prometheus.Counter{&m.dispatched, &m.staleDiscarded, &m.debounceFired} {
		if err := searchapi.RegisterOrReuse(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) incDispatched() {
	if m != nil {
		m.dispatched.Inc()
	}
}

func (m *metrics) incStale() {
	if m != nil {
		m.staleDiscarded.Inc()
	}
}

func (m *metrics) incDebounce() {
	if m != nil {
		m.debounceFired.Inc()
	}
}
