// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outreach orchestrates the lead flow: grounded search, extraction,
// user-driven saving, per-lead drafting and dispatch.
//
// A Pipeline owns one session. Search and extraction run strictly in
// sequence and only one search may be in flight; a second call fails with
// ErrBusy. Saving is tracked per candidate index so a candidate is stored
// at most once per result set. Drafts for different leads are independent;
// concurrent drafts for the same lead share one model call.
package outreach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/outreach/internal/dispatch"
	"github.com/pdiddy/outreach/internal/draft"
	"github.com/pdiddy/outreach/internal/export"
	"github.com/pdiddy/outreach/internal/extract"
	"github.com/pdiddy/outreach/internal/logging"
	"github.com/pdiddy/outreach/internal/reconcile"
	"github.com/pdiddy/outreach/internal/resolve"
	"github.com/pdiddy/outreach/internal/search"
	"github.com/pdiddy/outreach/internal/session"
	"github.com/pdiddy/outreach/internal/store"
	"github.com/pdiddy/outreach/pkg/types"
)

var (
	// ErrBusy is returned when a search is started while another is running.
	ErrBusy = errors.New("a search is already in progress")

	// ErrAlreadySaved is returned when a candidate index was saved before.
	ErrAlreadySaved = errors.New("candidate already saved")

	// ErrNoCandidate is returned for an index outside the current results.
	ErrNoCandidate = errors.New("no such candidate")

	// ErrInvalidEmail is returned when an edited address does not parse.
	ErrInvalidEmail = errors.New("invalid email address")
)

// Deps are the collaborators of a Pipeline. Searcher, Extractor, Drafter
// and Store are required.
type Deps struct {
	Searcher  search.Searcher
	Extractor extract.Extractor
	Drafter   draft.Drafter
	Store     store.Store

	// Sender delivers SMTP dispatches. Nil disables the smtp channel.
	Sender dispatch.Sender

	// Reconciler overrides lead construction (IDs, clock). Defaults to
	// reconcile.New(Store).
	Reconciler *reconcile.Reconciler

	Logger   *zap.Logger
	Profile  types.UserProfile
	Defaults types.Criteria
}

// Pipeline is the consumer-facing surface of the outreach flow. It is safe
// for concurrent use.
type Pipeline struct {
	searcher   search.Searcher
	extractor  extract.Extractor
	drafter    draft.Drafter
	store      store.Store
	sender     dispatch.Sender
	reconciler *reconcile.Reconciler
	logger     *zap.Logger
	defaults   types.Criteria

	mu      sync.Mutex
	state   session.State
	profile types.UserProfile

	drafts singleflight.Group
}

// New returns a pipeline wired to d.
func New(d Deps) (*Pipeline, error) {
	switch {
	case d.Searcher == nil:
		return nil, fmt.Errorf("outreach: searcher is required")
	case d.Extractor == nil:
		return nil, fmt.Errorf("outreach: extractor is required")
	case d.Drafter == nil:
		return nil, fmt.Errorf("outreach: drafter is required")
	case d.Store == nil:
		return nil, fmt.Errorf("outreach: store is required")
	}

	rec := d.Reconciler
	if rec == nil {
		rec = reconcile.New(d.Store)
	}

	return &Pipeline{
		searcher:   d.Searcher,
		extractor:  d.Extractor,
		drafter:    d.Drafter,
		store:      d.Store,
		sender:     d.Sender,
		reconciler: rec,
		logger:     logging.OrNop(d.Logger),
		defaults:   d.Defaults,
		state:      session.New(),
		profile:    d.Profile,
	}, nil
}

// Close releases the lead store.
func (p *Pipeline) Close() error {
	return p.store.Close()
}

// State returns a snapshot of the current search session.
func (p *Pipeline) State() session.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

func (p *Pipeline) reduce(a session.Action) session.State {
	p.state = session.Reduce(p.state, a)
	return p.state
}

// withDefaults fills empty criteria fields from the configured defaults.
func (p *Pipeline) withDefaults(c types.Criteria) types.Criteria {
	c.Role = strings.TrimSpace(c.Role)
	c.Niche = strings.TrimSpace(c.Niche)
	c.Location = strings.TrimSpace(c.Location)
	if c.Role == "" {
		c.Role = p.defaults.Role
	}
	if c.Niche == "" {
		c.Niche = p.defaults.Niche
	}
	if c.Location == "" {
		c.Location = p.defaults.Location
	}
	return c
}

// Search runs the grounded search and then extraction for c, replacing
// the previous result set. A search failure aborts the flow and is
// returned; extraction failures yield zero candidates. The returned state
// reflects the outcome in both cases.
func (p *Pipeline) Search(ctx context.Context, c types.Criteria) (session.State, error) {
	c = p.withDefaults(c)

	p.mu.Lock()
	if p.state.Busy() {
		p.mu.Unlock()
		return session.State{}, ErrBusy
	}
	p.reduce(session.SearchStarted{Criteria: c})
	p.mu.Unlock()

	// A panicking searcher or extractor must not leave the session busy.
	defer func() {
		if r := recover(); r != nil {
			p.mu.Lock()
			p.reduce(session.SearchFailed{Err: fmt.Errorf("search panicked: %v", r)})
			p.mu.Unlock()
			panic(r)
		}
	}()

	log := p.logger.With(zap.String("role", c.Role), zap.String("niche", c.Niche), zap.String("location", c.Location))
	log.Info("searching for leads")

	res, err := p.searcher.Search(ctx, c)
	if err != nil {
		log.Error("search failed", zap.Error(err))
		p.mu.Lock()
		st := p.reduce(session.SearchFailed{Err: err}).Clone()
		p.mu.Unlock()
		return st, err
	}

	p.mu.Lock()
	p.reduce(session.SearchSucceeded{Result: res})
	p.mu.Unlock()

	cands := p.extractor.Extract(ctx, res)

	p.mu.Lock()
	st := p.reduce(session.ExtractionDone{Candidates: cands}).Clone()
	p.mu.Unlock()

	log.Info("search complete", zap.Int("candidates", len(cands)), zap.Int("sources", len(res.Sources)))
	return st, nil
}

// Load replaces the session with a previously saved result set.
func (p *Pipeline) Load(c types.Criteria, res types.SearchResult, cands []types.Candidate) (session.State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Busy() {
		return session.State{}, ErrBusy
	}
	return p.reduce(session.ResultsLoaded{Criteria: c, Result: res, Candidates: cands}).Clone(), nil
}

// SaveCandidate resolves the website of candidate index and stores it as
// a NEW lead. Saving the same index twice fails with ErrAlreadySaved.
func (p *Pipeline) SaveCandidate(ctx context.Context, index int) (types.Lead, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saveLocked(ctx, index)
}

func (p *Pipeline) saveLocked(ctx context.Context, index int) (types.Lead, error) {
	st := p.state
	if st.Phase != session.PhaseReady {
		return types.Lead{}, fmt.Errorf("%w: no results to save from", ErrNoCandidate)
	}
	cand, ok := st.Candidate(index)
	if !ok {
		return types.Lead{}, fmt.Errorf("%w: index %d of %d", ErrNoCandidate, index, len(st.Candidates))
	}
	if st.IsSaved(index) {
		return types.Lead{}, fmt.Errorf("%w: index %d", ErrAlreadySaved, index)
	}

	url := resolve.Resolve(cand.Website, cand.Name, st.Sources)
	lead, err := p.reconciler.Reconcile(ctx, cand, st.Criteria.Role, url)
	if err != nil {
		return types.Lead{}, err
	}
	p.reduce(session.CandidateSaved{Index: index, LeadID: lead.ID})

	p.logger.Info("lead saved",
		zap.String("id", lead.ID),
		zap.String("name", lead.Name),
		zap.String("source_url", lead.SourceURL),
	)
	return lead, nil
}

// SaveSummary holds the outcome of SaveAll.
type SaveSummary struct {
	Saved   []types.Lead `json:"saved"`
	Skipped int          `json:"skipped"`
	Failed  int          `json:"failed"`
}

// Total returns the number of candidates considered.
func (s SaveSummary) Total() int {
	return len(s.Saved) + s.Skipped + s.Failed
}

// SaveAll saves every candidate of the current result set that has not
// been saved yet. Already-saved candidates are counted as skipped.
func (p *Pipeline) SaveAll(ctx context.Context) (SaveSummary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Phase != session.PhaseReady {
		return SaveSummary{}, fmt.Errorf("%w: no results to save from", ErrNoCandidate)
	}

	pending := p.state.Unsaved()
	sum := SaveSummary{Saved: []types.Lead{}, Skipped: len(p.state.Candidates) - len(pending)}
	for _, i := range pending {
		lead, err := p.saveLocked(ctx, i)
		if err != nil {
			p.logger.Warn("saving candidate failed", zap.Int("index", i), zap.Error(err))
			sum.Failed++
			continue
		}
		sum.Saved = append(sum.Saved, lead)
	}
	return sum, nil
}

// Profile returns the sender profile used for drafting.
func (p *Pipeline) Profile() types.UserProfile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile
}

// SetProfile replaces the sender profile. Name and Offer are required.
func (p *Pipeline) SetProfile(u types.UserProfile) (types.UserProfile, error) {
	u.Name = strings.TrimSpace(u.Name)
	u.Business = strings.TrimSpace(u.Business)
	u.Offer = strings.TrimSpace(u.Offer)
	if u.Name == "" || u.Offer == "" {
		return types.UserProfile{}, fmt.Errorf("profile requires a name and an offer")
	}
	p.mu.Lock()
	p.profile = u
	p.mu.Unlock()
	return u, nil
}

// Lead returns one saved lead.
func (p *Pipeline) Lead(ctx context.Context, id string) (types.Lead, error) {
	return p.store.Get(ctx, id)
}

// Leads returns saved leads matching f in insertion order.
func (p *Pipeline) Leads(ctx context.Context, f store.Filter) ([]types.Lead, error) {
	return p.store.List(ctx, f)
}

// Stats returns lead counts by status.
func (p *Pipeline) Stats(ctx context.Context) (store.Stats, error) {
	return p.store.Stats(ctx)
}

// UpdateLeadEmail sets the contact address of a lead. An empty address
// clears it.
func (p *Pipeline) UpdateLeadEmail(ctx context.Context, id, email string) (types.Lead, error) {
	email = strings.TrimSpace(email)
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil {
			return types.Lead{}, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
		}
		email = addr.Address
	}
	return p.store.Update(ctx, id, func(l *types.Lead) error {
		l.Email = email
		return nil
	})
}

// UpdateLeadStatus sets the status of a lead. Any known status is
// accepted; REPLIED is only reachable this way.
func (p *Pipeline) UpdateLeadStatus(ctx context.Context, id string, st types.Status) (types.Lead, error) {
	if !st.Valid() {
		return types.Lead{}, fmt.Errorf("%w: %q", types.ErrInvalidStatus, st)
	}
	lead, err := p.store.Update(ctx, id, func(l *types.Lead) error {
		l.Status = st
		return nil
	})
	if err == nil {
		p.logger.Info("lead status updated", zap.String("id", id), zap.String("status", string(st)))
	}
	return lead, err
}

// UpdateLeadDraft stores a user-edited subject and body. A NEW lead with
// a non-empty body becomes DRAFTED.
func (p *Pipeline) UpdateLeadDraft(ctx context.Context, id string, d types.Draft) (types.Lead, error) {
	return p.store.Update(ctx, id, func(l *types.Lead) error {
		l.EmailSubject = d.Subject
		l.EmailDraft = d.Body
		if l.Status == types.StatusNew && strings.TrimSpace(d.Body) != "" {
			l.Status = types.StatusDrafted
		}
		return nil
	})
}

// DraftOutcome is the result of GenerateDraft. Fallback is true when the
// stored draft is the fixed placeholder; Reason then carries the cause.
type DraftOutcome struct {
	Lead     types.Lead `json:"lead"`
	Fallback bool       `json:"fallback"`
	Reason   string     `json:"reason,omitempty"`
}

// GenerateDraft writes a cold email for lead id and stores it on the lead,
// overwriting any previous draft. Drafting failures do not fail the call:
// the fallback draft is stored instead. The lead becomes DRAFTED unless it
// was already SENT or REPLIED.
func (p *Pipeline) GenerateDraft(ctx context.Context, id string) (DraftOutcome, error) {
	// The shared call outlives any single caller; the AI client timeout
	// still bounds it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := p.drafts.Do(id, func() (any, error) {
		return p.generateDraft(shared, id)
	})
	if err != nil {
		return DraftOutcome{}, err
	}
	return v.(DraftOutcome), nil
}

func (p *Pipeline) generateDraft(ctx context.Context, id string) (DraftOutcome, error) {
	lead, err := p.store.Get(ctx, id)
	if err != nil {
		return DraftOutcome{}, err
	}

	profile := p.Profile()
	sender := profile.Name
	if profile.Business != "" {
		sender = fmt.Sprintf("%s (%s)", profile.Name, profile.Business)
	}

	res := draft.Generate(ctx, p.drafter, draft.Request{
		LeadName:    lead.Name,
		LeadContext: lead.Description,
		Offer:       profile.Offer,
		Sender:      sender,
	})
	d := res.Draft()
	if res.IsFallback() {
		p.logger.Warn("draft generation failed, using fallback", zap.String("id", id), zap.Error(res.Err))
	}

	updated, err := p.store.Update(ctx, id, func(l *types.Lead) error {
		l.EmailSubject = d.Subject
		l.EmailDraft = d.Body
		if l.Status == types.StatusNew || l.Status == types.StatusDrafted {
			l.Status = types.StatusDrafted
		}
		return nil
	})
	if err != nil {
		return DraftOutcome{}, err
	}

	out := DraftOutcome{Lead: updated, Fallback: res.IsFallback()}
	if res.Err != nil {
		out.Reason = res.Err.Error()
	}
	return out, nil
}

// DispatchOutcome is the result of Dispatch.
type DispatchOutcome struct {
	Lead types.Lead `json:"lead"`
	dispatch.Outcome
}

// Dispatch hands the lead's current draft to channel c and marks the lead
// SENT. A REPLIED lead keeps its status. A lead without an email fails
// with dispatch.ErrNoRecipient and is left unchanged.
func (p *Pipeline) Dispatch(ctx context.Context, id string, c dispatch.Channel) (DispatchOutcome, error) {
	lead, err := p.store.Get(ctx, id)
	if err != nil {
		return DispatchOutcome{}, err
	}
	msg, err := dispatch.MessageFor(lead)
	if err != nil {
		return DispatchOutcome{}, err
	}

	out, err := dispatch.Dispatch(ctx, c, msg, p.sender)
	if err != nil {
		return DispatchOutcome{}, err
	}

	updated, err := p.store.Update(ctx, id, func(l *types.Lead) error {
		if l.Status != types.StatusReplied {
			l.Status = types.StatusSent
		}
		return nil
	})
	if err != nil {
		return DispatchOutcome{}, err
	}

	p.logger.Info("lead dispatched", zap.String("id", id), zap.String("channel", string(out.Channel)), zap.Bool("sent", out.Sent))
	return DispatchOutcome{Lead: updated, Outcome: out}, nil
}

// ExportAll renders every saved lead as CSV.
func (p *Pipeline) ExportAll(ctx context.Context) (string, error) {
	leads, err := p.store.List(ctx, store.Filter{})
	if err != nil {
		return "", fmt.Errorf("listing leads for export: %w", err)
	}
	return export.CSV(leads), nil
}

// Export writes the leads matching filter to w in format f.
func (p *Pipeline) Export(ctx context.Context, w io.Writer, f export.Format, filter store.Filter) error {
	leads, err := p.store.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("listing leads for export: %w", err)
	}
	return export.Write(w, f, leads)
}
