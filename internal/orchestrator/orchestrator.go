// Package orchestrator turns query edits and filter changes into searches.
//
// It debounces typing, dispatches requests through a searchapi.Searcher,
// applies only the newest request's completion, records successful queries
// in the history store and publishes a State snapshot on every transition.
//
// All state lives behind one mutex. Network calls run on their own
// goroutines and re-enter through that mutex, where each completion is
// checked against the highest dispatched sequence number; anything older is
// discarded. In-flight requests are never cancelled by newer ones.
package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	scouterrors "github.com/Aman-CERP/scout/internal/errors"
	"github.com/Aman-CERP/scout/internal/history"
	"github.com/Aman-CERP/scout/internal/searchapi"
)

// User-facing messages.
const (
	MsgSearchFailed  = "Search failed. Please check your connection and try again."
	MsgConnectFailed = "Failed to connect to search API. Please make sure the backend is running."
)

// Orchestrator owns the search state. Create it with New.
type Orchestrator struct {
	searcher       searchapi.Searcher
	history        *history.Store
	logger         *slog.Logger
	debounce       time.Duration
	limit          int
	requestTimeout time.Duration
	metricsReg     prometheus.Registerer
	metrics        *metrics

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	idle     *sync.Cond
	state    State
	lastSeq  uint64
	inflight int
	timer    *time.Timer
	timerGen uint64
	closed   bool

	notify *notifier
}

// New creates an Orchestrator. A nil store keeps history in memory.
// Metrics registration failures are logged and metrics disabled.
func New(searcher searchapi.Searcher, store *history.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		searcher: searcher,
		history:  store,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
		limit:    searchapi.DefaultLimit,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.history == nil {
		o.history = history.New(nil, o.logger)
	}
	if o.metricsReg != nil {
		m, err := newMetrics(o.metricsReg)
		if err != nil {
			o.logger.Warn("orchestrator metrics disabled", "error", err)
		}
		o.metrics = m
	}

	o.ctx, o.cancel = context.WithCancel(context.Background())
	o.idle = sync.NewCond(&o.mu)
	o.notify = newNotifier()
	o.state = State{
		Phase:   PhaseIdle,
		History: o.history.Entries(),
	}

	return o
}

// Subscribe registers fn to receive every published snapshot, in order, on
// a dedicated goroutine. The returned func unsubscribes.
func (o *Orchestrator) Subscribe(fn func(State)) func() {
	return o.notify.subscribe(fn)
}

// State returns the current snapshot.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// SetQuery updates the query text and restarts the debounce timer. When the
// timer fires, a search runs if the trimmed query is non-empty or a search
// has already succeeded (so clearing the box refreshes to unfiltered results).
func (o *Orchestrator) SetQuery(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	o.state.Query = text
	o.scheduleLocked()
	o.publishLocked()
}

// SetFilters replaces the filters and searches immediately, cancelling any
// pending debounce.
func (o *Orchestrator) SetFilters(f searchapi.Filters) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	o.state.Filters = f.Normalize()
	o.dispatchLocked()
}

// Submit searches now with the current query and filters.
func (o *Orchestrator) Submit() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	o.dispatchLocked()
}

// SubmitQuery sets the query and searches immediately, as when a history
// entry is picked.
func (o *Orchestrator) SubmitQuery(q string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	o.state.Query = q
	o.dispatchLocked()
}

// SubmitSearch replaces both query and filters and searches immediately.
// One-shot callers use it to get exactly one request.
func (o *Orchestrator) SubmitSearch(q string, f searchapi.Filters) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	o.state.Query = q
	o.state.Filters = f.Normalize()
	o.dispatchLocked()
}

// ClearHistory empties the recent-query list.
func (o *Orchestrator) ClearHistory() {
	o.history.Clear()

	o.mu.Lock()
	defer o.mu.Unlock()

	o.state.History = o.history.Entries()
	o.publishLocked()
}

// LoadFilterOptions fetches the filter choices once. On failure the state
// carries the connection error and the error is returned.
func (o *Orchestrator) LoadFilterOptions(ctx context.Context) error {
	opts, err := o.searcher.FilterOptions(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return err
	}

	if err != nil {
		userErr := userError(MsgConnectFailed, err)
		o.logger.Warn("failed to load filter options", scouterrors.LogAttrs(err)...)
		// A running search owns the error slot until it resolves.
		if !o.state.IsSearching {
			o.state.Err = userErr
			o.publishLocked()
		}
		return userErr
	}

	if opts != nil {
		o.state.FilterOptions = *opts
	}
	o.publishLocked()
	return nil
}

// Start performs the mount-time work: filter options and a health check run
// concurrently. Health is only logged; the filter-options error is returned.
func (o *Orchestrator) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return o.LoadFilterOptions(gctx)
	})

	g.Go(func() error {
		h, err := o.searcher.Health(gctx)
		if err != nil {
			o.logger.Debug("health check failed", "error", err)
			return nil
		}
		if h == nil {
			return nil
		}
		o.logger.Info("search service healthy",
			"status", h.Status,
			"total_startups", h.TotalStartups)
		return nil
	})

	return g.Wait()
}

// Wait blocks until no request is in flight and every snapshot published so
// far has been delivered. Must not be called from a subscriber.
func (o *Orchestrator) Wait() {
	o.mu.Lock()
	for o.inflight > 0 {
		o.idle.Wait()
	}
	o.mu.Unlock()

	o.notify.drain()
}

// Close cancels any pending debounce and discards later completions.
// Subscribers still receive snapshots published before Close.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.stopTimerLocked()
	o.mu.Unlock()

	o.cancel()
	o.notify.close()
}

func (o *Orchestrator) scheduleLocked() {
	o.stopTimerLocked()
	o.timerGen++
	gen := o.timerGen
	o.timer = time.AfterFunc(o.debounce, func() {
		o.debounceFired(gen)
	})
}

func (o *Orchestrator) stopTimerLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	// A callback already past Stop sees a stale generation and does nothing.
	o.timerGen++
}

func (o *Orchestrator) debounceFired(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || gen != o.timerGen {
		return
	}
	o.timer = nil

	if strings.TrimSpace(o.state.Query) == "" && !o.state.HasSearched {
		return
	}

	o.metrics.incDebounce()
	o.dispatchLocked()
}

func (o *Orchestrator) dispatchLocked() {
	o.stopTimerLocked()

	o.lastSeq++
	seq := o.lastSeq
	query := strings.TrimSpace(o.state.Query)
	filters := o.state.Filters

	o.state.Phase = PhaseSearching
	o.state.IsSearching = true
	o.state.Err = nil
	o.state.Seq = seq
	o.inflight++

	o.metrics.incDispatched()
	o.logger.Debug("search dispatched",
		"seq", seq,
		"query", query,
		"filters", filters.Map())

	o.publishLocked()

	go o.run(seq, query, filters)
}

func (o *Orchestrator) run(seq uint64, query string, filters searchapi.Filters) {
	ctx := o.ctx
	if o.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.requestTimeout)
		defer cancel()
	}

	resp, err := o.searcher.Search(ctx, query, filters, o.limit)
	o.complete(seq, query, resp, err)
}

func (o *Orchestrator) complete(seq uint64, query string, resp *searchapi.SearchResponse, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer o.idle.Broadcast()

	o.inflight--

	if o.closed {
		return
	}
	if seq != o.lastSeq {
		o.metrics.incStale()
		o.logger.Debug("discarding stale completion", "seq", seq, "latest", o.lastSeq)
		return
	}

	o.state.IsSearching = false

	if err != nil {
		o.logger.Warn("search failed", scouterrors.LogAttrs(err)...)
		o.state.Phase = PhaseFailed
		o.state.Err = userError(MsgSearchFailed, err)
		o.publishLocked()
		return
	}

	if resp == nil {
		resp = &searchapi.SearchResponse{}
	}
	o.state.Phase = PhaseSettled
	o.state.Response = resp
	o.state.HasSearched = true
	o.state.Err = nil

	if query != "" {
		o.state.History = o.history.Record(query)
	}

	o.logger.Debug("search settled", "seq", seq, "results", len(resp.Results))
	o.publishLocked()
}

// publishLocked queues a snapshot; holding o.mu keeps queue order equal to
// transition order.
func (o *Orchestrator) publishLocked() {
	o.notify.push(o.state.clone())
}

// userError wraps err with a message fit for the screen, keeping the
// underlying code so callers can still classify it.
func userError(msg string, err error) error {
	code := scouterrors.GetCode(err)
	if code == "" {
		code = scouterrors.ErrCodeSearchFailed
	}
	return scouterrors.New(code, msg, err)
}
