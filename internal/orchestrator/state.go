package orchestrator

import (
	"github.com/Aman-CERP/scout/internal/searchapi"
)

// Phase is where the orchestrator is in the search lifecycle.
type Phase int

const (
	// PhaseIdle is the state before any search has been dispatched.
	PhaseIdle Phase = iota
	// PhaseSearching means the newest request has not resolved yet.
	PhaseSearching
	// PhaseSettled means the newest request succeeded.
	PhaseSettled
	// PhaseFailed means the newest request failed.
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSearching:
		return "searching"
	case PhaseSettled:
		return "settled"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of everything the presentation layer renders.
// Snapshots are copies; mutating one has no effect on the orchestrator.
type State struct {
	Phase Phase

	// Query is the text as typed, untrimmed.
	Query   string
	Filters searchapi.Filters

	// Response is the last applied response. It survives failures.
	Response *searchapi.SearchResponse

	IsSearching bool
	HasSearched bool

	// Err is the user-facing error of the last failure, if any.
	Err error

	History       []string
	FilterOptions searchapi.FilterOptions

	// Seq is the sequence number of the newest dispatched request.
	Seq uint64
}

// Results returns the current results, or nil before the first success.
func (s State) Results() []searchapi.Result {
	if s.Response == nil {
		return nil
	}
	return s.Response.Results
}

func (s State) clone() State {
	out := s
	out.History = append([]string(nil), s.History...)
	out.FilterOptions = searchapi.FilterOptions{
		Sectors:       append([]string(nil), s.FilterOptions.Sectors...),
		FundingStages: append([]string(nil), s.FilterOptions.FundingStages...),
		Locations:     append([]string(nil), s.FilterOptions.Locations...),
	}
	return out
}
