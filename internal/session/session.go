// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the state of one search flow and the pure reducer
// that advances it. A State value is never mutated in place: Reduce returns
// a new State, copying the saved-index map when it changes.
package session

import (
	"maps"
	"slices"

	"github.com/pdiddy/outreach/pkg/types"
)

// Phase is the position of the current search in the flow.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSearching  Phase = "searching"
	PhaseExtracting Phase = "extracting"
	PhaseReady      Phase = "ready"
	PhaseFailed     Phase = "failed"
)

// State is the search flow state owned by the pipeline.
type State struct {
	Criteria   types.Criteria          `json:"criteria"`
	Phase      Phase                   `json:"phase"`
	RawText    string                  `json:"rawText,omitempty"`
	Sources    []types.GroundingSource `json:"sources"`
	Candidates []types.Candidate       `json:"candidates"`

	// Saved maps a candidate index to the ID of the lead created from it.
	Saved map[int]string `json:"saved"`

	// Err is the message of the last search failure.
	Err string `json:"error,omitempty"`

	// Generation increases with every new result set so callers can detect
	// that the candidates they hold are stale.
	Generation int `json:"generation"`
}

// New returns an idle state.
func New() State {
	return State{Phase: PhaseIdle, Saved: map[int]string{}}
}

// Busy reports whether a search or extraction is in flight.
func (s State) Busy() bool {
	return s.Phase == PhaseSearching || s.Phase == PhaseExtracting
}

// Candidate returns the candidate at index i.
func (s State) Candidate(i int) (types.Candidate, bool) {
	if i < 0 || i >= len(s.Candidates) {
		return types.Candidate{}, false
	}
	return s.Candidates[i], true
}

// IsSaved reports whether the candidate at index i was already saved.
func (s State) IsSaved(i int) bool {
	_, ok := s.Saved[i]
	return ok
}

// Unsaved returns the indices of candidates not yet saved, in order.
func (s State) Unsaved() []int {
	var out []int
	for i := range s.Candidates {
		if !s.IsSaved(i) {
			out = append(out, i)
		}
	}
	return out
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s State) Clone() State {
	c := s
	c.Sources = slices.Clone(s.Sources)
	c.Candidates = slices.Clone(s.Candidates)
	c.Saved = maps.Clone(s.Saved)
	if c.Saved == nil {
		c.Saved = map[int]string{}
	}
	return c
}

// Action is an event applied to a State by Reduce.
type Action interface {
	apply(State) State
}

// SearchStarted begins a new search and discards the previous result set.
type SearchStarted struct {
	Criteria types.Criteria
}

// SearchSucceeded records the grounded search output. Extraction follows.
type SearchSucceeded struct {
	Result types.SearchResult
}

// SearchFailed aborts the current search.
type SearchFailed struct {
	Err error
}

// ExtractionDone records the extracted candidates. An empty list is a
// valid outcome.
type ExtractionDone struct {
	Candidates []types.Candidate
}

// ResultsLoaded replaces the state with a previously saved result set.
type ResultsLoaded struct {
	Criteria   types.Criteria
	Result     types.SearchResult
	Candidates []types.Candidate
}

// CandidateSaved marks candidate Index as saved under LeadID.
type CandidateSaved struct {
	Index  int
	LeadID string
}

// Reduce applies a to s and returns the resulting state. Actions that do
// not fit the current phase leave s unchanged.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

func (a SearchStarted) apply(s State) State {
	return State{
		Criteria:   a.Criteria,
		Phase:      PhaseSearching,
		Saved:      map[int]string{},
		Generation: s.Generation + 1,
	}
}

func (a SearchSucceeded) apply(s State) State {
	if s.Phase != PhaseSearching {
		return s
	}
	s.Phase = PhaseExtracting
	s.RawText = a.Result.RawText
	s.Sources = slices.Clone(a.Result.Sources)
	return s
}

func (a SearchFailed) apply(s State) State {
	if !s.Busy() {
		return s
	}
	s.Phase = PhaseFailed
	s.Err = "search failed"
	if a.Err != nil {
		s.Err = a.Err.Error()
	}
	return s
}

func (a ExtractionDone) apply(s State) State {
	if s.Phase != PhaseExtracting {
		return s
	}
	s.Phase = PhaseReady
	s.Candidates = slices.Clone(a.Candidates)
	if s.Candidates == nil {
		s.Candidates = []types.Candidate{}
	}
	return s
}

func (a ResultsLoaded) apply(s State) State {
	cands := slices.Clone(a.Candidates)
	if cands == nil {
		cands = []types.Candidate{}
	}
	return State{
		Criteria:   a.Criteria,
		Phase:      PhaseReady,
		RawText:    a.Result.RawText,
		Sources:    slices.Clone(a.Result.Sources),
		Candidates: cands,
		Saved:      map[int]string{},
		Generation: s.Generation + 1,
	}
}

func (a CandidateSaved) apply(s State) State {
	if s.Phase != PhaseReady || s.IsSaved(a.Index) {
		return s
	}
	if _, ok := s.Candidate(a.Index); !ok {
		return s
	}
	saved := maps.Clone(s.Saved)
	if saved == nil {
		saved = map[int]string{}
	}
	saved[a.Index] = a.LeadID
	s.Saved = saved
	return s
}
