package orchestrator_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scouterrors "github.com/Aman-CERP/scout/internal/errors"
	"github.com/Aman-CERP/scout/internal/history"
	"github.com/Aman-CERP/scout/internal/logging"
	"github.com/Aman-CERP/scout/internal/orchestrator"
	"github.com/Aman-CERP/scout/internal/searchapi"
	"github.com/Aman-CERP/scout/internal/searchapi/searchapitest"
)

const testDebounce = 30 * time.Millisecond

func newOrchestrator(t *testing.T, srv *searchapitest.Server, opts ...orchestrator.Option) (*orchestrator.Orchestrator, *history.Store) {
	t.Helper()

	client, err := searchapi.New(srv.URL())
	require.NoError(t, err)

	store := history.New(nil, logging.Discard())
	all := append([]orchestrator.Option{
		orchestrator.WithDebounce(testDebounce),
		orchestrator.WithLogger(logging.Discard()),
	}, opts...)

	o := orchestrator.New(client, store, all...)
	t.Cleanup(o.Close)
	return o, store
}

// waitSettled waits for requests to finish after the debounce has fired.
func waitSettled(t *testing.T, o *orchestrator.Orchestrator, want uint64) {
	t.Helper()
	require.Eventually(t, func() bool {
		s := o.State()
		return s.Seq >= want && !s.IsSearching
	}, 2*time.Second, 5*time.Millisecond)
	o.Wait()
}

func aiReply(_ url.Values) searchapitest.Reply {
	return searchapitest.Reply{Body: searchapi.SearchResponse{
		Query:        "AI",
		TotalResults: 2,
		Results: []searchapi.Result{
			{Startup: searchapi.Startup{ID: 1, Name: "NeuralMed"}, Score: 0.9},
			{Startup: searchapi.Startup{ID: 2, Name: "Tutorly"}, Score: 0.4},
		},
	}}
}

func TestSubmitQuery_AppliesResultsAndRecordsHistory(t *testing.T) {
	// Given: a service answering "AI" with two ranked results
	srv := searchapitest.New(t)
	srv.OnSearch(aiReply)
	o, store := newOrchestrator(t, srv)

	// When: the query is submitted
	o.SubmitQuery("AI")
	o.Wait()

	// Then: results keep the service order and history holds the query
	s := o.State()
	require.Len(t, s.Results(), 2)
	assert.Equal(t, 0.9, s.Results()[0].Score)
	assert.Equal(t, 0.4, s.Results()[1].Score)
	assert.Equal(t, orchestrator.PhaseSettled, s.Phase)
	assert.True(t, s.HasSearched)
	assert.False(t, s.IsSearching)
	assert.NoError(t, s.Err)
	assert.Equal(t, []string{"AI"}, s.History)
	assert.Equal(t, []string{"AI"}, store.Entries())
}

func TestSetQuery_DebounceCoalescesTyping(t *testing.T) {
	// Given: a fresh orchestrator
	srv := searchapitest.New(t)
	o, _ := newOrchestrator(t, srv)

	// When: several edits arrive inside the debounce window
	for _, q := range []string{"f", "fi", "fin", "fint"} {
		o.SetQuery(q)
	}
	waitSettled(t, o, 1)

	// Then: exactly one request went out, for the last text
	reqs := srv.SearchRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "fint", reqs[0].Get("q"))
	assert.Equal(t, "fint", o.State().Query)
}

func TestSetQuery_BlankBeforeFirstSearchDoesNotDispatch(t *testing.T) {
	// Given: nothing searched yet
	srv := searchapitest.New(t)
	o, _ := newOrchestrator(t, srv)

	// When: only whitespace is typed
	o.SetQuery("   ")
	time.Sleep(4 * testDebounce)
	o.Wait()

	// Then: no request is made and the state stays idle
	assert.Equal(t, 0, srv.Hits("/search"))
	assert.Equal(t, orchestrator.PhaseIdle, o.State().Phase)
}

func TestSetQuery_ClearingAfterSearchRefreshes(t *testing.T) {
	// Given: a completed search
	srv := searchapitest.New(t)
	o, _ := newOrchestrator(t, srv)
	o.SubmitQuery("payments")
	o.Wait()

	// When: the box is cleared
	o.SetQuery("")
	waitSettled(t, o, 2)

	// Then: an unfiltered search without q is sent
	reqs := srv.SearchRequests()
	require.Len(t, reqs, 2)
	assert.False(t, reqs[1].Has("q"))
	assert.Equal(t, "20", reqs[1].Get("limit"))
}

func TestSetFilters_SearchesImmediatelyWithOnlySetFilters(t *testing.T) {
	// Given: an empty query
	srv := searchapitest.New(t)
	o, _ := newOrchestrator(t, srv, orchestrator.WithDebounce(time.Hour))

	// When: the sector filter is chosen
	o.SetFilters(searchapi.Filters{Sector: "FinTech"})
	o.Wait()

	// Then: the request carries only sector and limit
	reqs := srv.SearchRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, url.Values{"sector": {"FinTech"}, "limit": {"20"}}, reqs[0])

	// And: only FinTech startups are shown
	s := o.State()
	require.NotEmpty(t, s.Results())
	for _, r := range s.Results() {
		assert.Equal(t, "FinTech", r.Startup.Sector)
	}
	assert.Empty(t, s.History, "filter-only searches are not recorded")
}

func TestSetFilters_CancelsPendingDebounce(t *testing.T) {
	// Given: a pending typed query
	srv := searchapitest.New(t)
	o, _ := newOrchestrator(t, srv, orchestrator.WithDebounce(50*time.Millisecond))
	o.SetQuery("pay")

	// When: a filter changes before the debounce fires
	o.SetFilters(searchapi.Filters{Location: "London, UK"})
	time.Sleep(150 * time.Millisecond)
	o.Wait()

	// Then: a single request with both query and filter was sent
	reqs := srv.SearchRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "pay", reqs[0].Get("q"))
	assert.Equal(t, "London, UK", reqs[0].Get("location"))
}

func TestCompletion_StaleResponseIsDiscarded(t *testing.T) {
	// Given: the first query answers slowly and the second quickly
	srv := searchapitest.New(t)
	srv.OnSearch(func(p url.Values) searchapitest.Reply {
		if p.Get("q") == "slow" {
			return searchapitest.Reply{
				Delay: 200 * time.Millisecond,
				Body: searchapi.SearchResponse{Query: "slow", TotalResults: 1,
					Results: []searchapi.Result{{Startup: searchapi.Startup{ID: 1, Name: "Slow"}}}},
			}
		}
		return searchapitest.Reply{Body: searchapi.SearchResponse{Query: "fast", TotalResults: 1,
			Results: []searchapi.Result{{Startup: searchapi.Startup{ID: 2, Name: "Fast"}}}}}
	})
	reg := prometheus.NewRegistry()
	o, _ := newOrchestrator(t, srv, orchestrator.WithPrometheus(reg))

	// When: both are submitted back to back
	o.SubmitQuery("slow")
	o.SubmitQuery("fast")
	o.Wait()

	// Then: the newest response wins even though the older one landed last
	s := o.State()
	require.Len(t, s.Results(), 1)
	assert.Equal(t, "Fast", s.Results()[0].Startup.Name)
	assert.Equal(t, uint64(2), s.Seq)
	assert.Equal(t, []string{"fast"}, s.History)

	// And: the discard was counted
	assert.Equal(t, 1.0, counterValue(t, reg, "scout_orchestrator_stale_discarded_total"))
	assert.Equal(t, 2.0, counterValue(t, reg, "scout_orchestrator_dispatched_total"))
}

func TestCompletion_FailureKeepsPreviousResults(t *testing.T) {
	// Given: one successful search
	srv := searchapitest.New(t)
	o, _ := newOrchestrator(t, srv)
	o.SubmitQuery("FinTech")
	o.Wait()
	before := o.State()
	require.NotEmpty(t, before.Results())

	// When: the next search gets a 503
	srv.OnSearch(func(url.Values) searchapitest.Reply {
		return searchapitest.Reply{Status: http.StatusServiceUnavailable}
	})
	o.SubmitQuery("health")
	o.Wait()

	// Then: the error is user facing and earlier results and history survive
	s := o.State()
	require.Error(t, s.Err)
	assert.Equal(t, orchestrator.MsgSearchFailed, errMessage(t, s.Err))
	assert.Equal(t, scouterrors.ErrCodeRemoteStatus, scouterrors.GetCode(s.Err))
	assert.Equal(t, orchestrator.PhaseFailed, s.Phase)
	assert.False(t, s.IsSearching)
	assert.Equal(t, before.Results(), s.Results())
	assert.Equal(t, []string{"FinTech"}, s.History)

	// When: the service recovers
	srv.OnSearch(nil)
	o.Submit()
	o.Wait()

	// Then: the error is cleared
	assert.NoError(t, o.State().Err)
	assert.Equal(t, []string{"health", "FinTech"}, o.State().History)
}

func TestCompletion_UnreachableServiceIsReported(t *testing.T) {
	// Given: a service that has gone away
	srv := searchapitest.NewServer()
	o, _ := newOrchestrator(t, srv)
	srv.Close()

	// When: a search is submitted
	o.SubmitQuery("anything")
	o.Wait()

	// Then: the failure carries the transport code
	s := o.State()
	require.Error(t, s.Err)
	assert.True(t, scouterrors.IsTransport(s.Err))
	assert.Equal(t, orchestrator.MsgSearchFailed, errMessage(t, s.Err))
}

func TestClearHistory_PersistsEmptyList(t *testing.T) {
	// Given: history backed by a file
	srv := searchapitest.New(t)
	path := t.TempDir() + "/history.json"
	client, err := searchapi.New(srv.URL())
	require.NoError(t, err)
	store := history.New(history.NewFileStorage(path), logging.Discard())
	o := orchestrator.New(client, store, orchestrator.WithLogger(logging.Discard()))
	t.Cleanup(o.Close)

	o.SubmitQuery("AI")
	o.Wait()
	require.Equal(t, []string{"AI"}, o.State().History)

	// When: history is cleared
	o.ClearHistory()
	o.Wait()

	// Then: the state and a fresh load are both empty
	assert.Empty(t, o.State().History)
	reloaded := history.New(history.NewFileStorage(path), logging.Discard())
	assert.Empty(t, reloaded.Entries())
}

func TestLoadFilterOptions(t *testing.T) {
	t.Run("populates options", func(t *testing.T) {
		srv := searchapitest.New(t)
		o, _ := newOrchestrator(t, srv)

		require.NoError(t, o.LoadFilterOptions(context.Background()))

		opts := o.State().FilterOptions
		assert.Contains(t, opts.Sectors, "FinTech")
		assert.Contains(t, opts.Locations, "UK")
		assert.NotContains(t, opts.Locations, "London, UK")
		assert.NoError(t, o.State().Err)
	})

	t.Run("failure sets connect error", func(t *testing.T) {
		srv := searchapitest.New(t)
		srv.SetFilters(searchapitest.Reply{Status: http.StatusInternalServerError})
		o, _ := newOrchestrator(t, srv)

		err := o.LoadFilterOptions(context.Background())

		require.Error(t, err)
		s := o.State()
		require.Error(t, s.Err)
		assert.Equal(t, orchestrator.MsgConnectFailed, errMessage(t, s.Err))
		assert.Empty(t, s.FilterOptions.Sectors)
	})
}

func TestStart_LoadsFiltersAndChecksHealth(t *testing.T) {
	// Given: a healthy fake
	srv := searchapitest.New(t)
	o, _ := newOrchestrator(t, srv)

	// When: starting up
	err := o.Start(context.Background())

	// Then: both endpoints were hit and options are loaded
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Hits("/filters"))
	assert.Equal(t, 1, srv.Hits("/health"))
	assert.NotEmpty(t, o.State().FilterOptions.Sectors)
}

func TestStart_HealthFailureIsNotAnError(t *testing.T) {
	srv := searchapitest.New(t)
	srv.SetHealth(searchapitest.Reply{Status: http.StatusServiceUnavailable})
	o, _ := newOrchestrator(t, srv)

	assert.NoError(t, o.Start(context.Background()))
}

func TestSubscribe_ReceivesTransitionsInOrder(t *testing.T) {
	// Given: a subscriber recording phases
	srv := searchapitest.New(t)
	o, _ := newOrchestrator(t, srv)

	var mu sync.Mutex
	var phases []orchestrator.Phase
	unsubscribe := o.Subscribe(func(s orchestrator.State) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, s.Phase)
	})

	// When: one search runs
	o.SubmitQuery("AI")
	o.Wait()

	// Then: searching precedes settled
	mu.Lock()
	assert.Equal(t, []orchestrator.Phase{orchestrator.PhaseSearching, orchestrator.PhaseSettled}, phases)
	mu.Unlock()

	// When: unsubscribed
	unsubscribe()
	o.SubmitQuery("AI")
	o.Wait()

	// Then: nothing more arrives
	mu.Lock()
	assert.Len(t, phases, 2)
	mu.Unlock()
}

func TestSubscribe_CallbackMayReenter(t *testing.T) {
	srv := searchapitest.New(t)
	o, _ := newOrchestrator(t, srv)

	seen := make(chan orchestrator.State, 8)
	o.Subscribe(func(s orchestrator.State) {
		// Reads the live state from inside delivery.
		seen <- o.State()
	})

	o.SubmitQuery("AI")
	o.Wait()

	require.Len(t, seen, 2)
}

func TestClose_CancelsPendingDebounce(t *testing.T) {
	// Given: a typed query waiting on the debounce
	srv := searchapitest.New(t)
	o, _ := newOrchestrator(t, srv)
	o.SetQuery("FinTech")

	// When: closed before the timer fires
	o.Close()
	time.Sleep(4 * testDebounce)

	// Then: no request is made and further calls are ignored
	assert.Equal(t, 0, srv.Hits("/search"))
	o.Submit()
	assert.Equal(t, 0, srv.Hits("/search"))
}

func TestDebounceMetric(t *testing.T) {
	srv := searchapitest.New(t)
	reg := prometheus.NewRegistry()
	o, _ := newOrchestrator(t, srv, orchestrator.WithPrometheus(reg))

	o.SetQuery("AI")
	waitSettled(t, o, 1)

	assert.Equal(t, 1.0, counterValue(t, reg, "scout_orchestrator_debounce_fired_total"))
}

func TestNew_ReusesCollectorsOnSharedRegistry(t *testing.T) {
	srv := searchapitest.New(t)
	reg := prometheus.NewRegistry()
	first, _ := newOrchestrator(t, srv, orchestrator.WithPrometheus(reg))
	second, _ := newOrchestrator(t, srv, orchestrator.WithPrometheus(reg))

	first.SubmitQuery("AI")
	second.SubmitQuery("AI")
	first.Wait()
	second.Wait()

	assert.Equal(t, 2.0, counterValue(t, reg, "scout_orchestrator_dispatched_total"))
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", orchestrator.PhaseIdle.String())
	assert.Equal(t, "searching", orchestrator.PhaseSearching.String())
	assert.Equal(t, "settled", orchestrator.PhaseSettled.String())
	assert.Equal(t, "failed", orchestrator.PhaseFailed.String())
	assert.Equal(t, "unknown", orchestrator.Phase(42).String())
}

func errMessage(t *testing.T, err error) string {
	t.Helper()
	var se *scouterrors.ScoutError
	require.True(t, errors.As(err, &se))
	return se.Message
}

// counterValue reads a counter from reg by its full name.
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.Len(t, mf.GetMetric(), 1)
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestSubmitSearch_SendsQueryAndFiltersOnce(t *testing.T) {
	// Given: an orchestrator with a long debounce
	srv := searchapitest.New(t)
	o, _ := newOrchestrator(t, srv, orchestrator.WithDebounce(time.Hour), orchestrator.WithLimit(5))

	// When: submitting query and filters together
	o.SubmitSearch(" pay ", searchapi.Filters{Sector: " FinTech "})
	o.Wait()

	// Then: one request carries both, with the configured limit
	reqs := srv.SearchRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, url.Values{"q": {"pay"}, "sector": {"FinTech"}, "limit": {"5"}}, reqs[0])
	assert.Equal(t, searchapi.Filters{Sector: "FinTech"}, o.State().Filters)
	assert.Equal(t, []string{"pay"}, o.State().History)
}

// emptySearcher answers every call with neither a value nor an error.
type emptySearcher struct{}

func (emptySearcher) Search(context.Context, string, searchapi.Filters, int) (*searchapi.SearchResponse, error) {
	return nil, nil
}

func (emptySearcher) FilterOptions(context.Context) (*searchapi.FilterOptions, error) {
	return nil, nil
}

func (emptySearcher) Health(context.Context) (*searchapi.HealthStatus, error) {
	return nil, nil
}

func TestNilReplies_AreTreatedAsEmpty(t *testing.T) {
	// Given: a searcher that returns nil values without errors
	o := orchestrator.New(emptySearcher{}, nil, orchestrator.WithLogger(logging.Discard()))
	t.Cleanup(o.Close)

	// When: starting up and searching
	require.NoError(t, o.Start(context.Background()))
	o.SubmitQuery("AI")
	o.Wait()

	// Then: the state is settled and empty rather than broken
	s := o.State()
	assert.Equal(t, searchapi.FilterOptions{}, s.FilterOptions)
	assert.Equal(t, orchestrator.PhaseSettled, s.Phase)
	assert.Empty(t, s.Results())
	assert.NoError(t, s.Err)
}
