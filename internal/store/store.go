// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store holds the leads saved during a session. Leads are only
// appended and updated; nothing in the pipeline removes a lead. Both
// backends keep state in process memory and lose it on exit.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/outreach/pkg/types"
)

var (
	// ErrNotFound is returned when no lead has the requested ID.
	ErrNotFound = errors.New("lead not found")

	// ErrDuplicateID is returned when appending a lead whose ID is already stored.
	ErrDuplicateID = errors.New("duplicate lead id")
)

// Store is the session's lead collection, keyed by lead ID and ordered by
// insertion. Implementations are safe for concurrent use.
type Store interface {
	// Append adds a new lead. The lead must have a non-empty ID and Name.
	Append(ctx context.Context, lead types.Lead) error

	// Get returns the lead with the given ID.
	Get(ctx context.Context, id string) (types.Lead, error)

	// Update applies fn to a copy of the stored lead and saves the result.
	// ID and DateAdded are preserved regardless of what fn does.
	Update(ctx context.Context, id string, fn func(*types.Lead) error) (types.Lead, error)

	// List returns the leads matching f in insertion order.
	List(ctx context.Context, f Filter) ([]types.Lead, error)

	// Stats counts stored leads by status.
	Stats(ctx context.Context) (Stats, error)

	Close() error
}

// Filter narrows List results. The zero value matches every lead.
type Filter struct {
	// Status keeps only leads in this status.
	Status types.Status

	// Query keeps leads whose name, role, description or email contains it
	// (case-insensitive).
	Query string
}

// IsEmpty reports whether the filter matches everything.
func (f Filter) IsEmpty() bool {
	return f.Status == "" && strings.TrimSpace(f.Query) == ""
}

// Match reports whether lead passes the filter.
func (f Filter) Match(lead types.Lead) bool {
	if f.Status != "" && lead.Status != f.Status {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{lead.Name, lead.Role, lead.Description, lead.Email} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Stats holds lead counts for the dashboard view.
type Stats struct {
	Total    int                  `json:"total" yaml:"total"`
	ByStatus map[types.Status]int `json:"byStatus" yaml:"by_status"`
}

// Count returns the number of leads in status s.
func (s Stats) Count(st types.Status) int {
	return s.ByStatus[st]
}

func newStats() Stats {
	by := make(map[types.Status]int, len(types.Statuses))
	for _, st := range types.Statuses {
		by[st] = 0
	}
	return Stats{ByStatus: by}
}

// Open returns the store selected by cfg.Backend. An empty backend selects
// the in-memory map store.
func Open(cfg types.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case types.StoreMemory, "":
		return NewMemory(), nil
	case types.StoreSQLite:
		return NewSQLite()
	default:
		return nil, fmt.Errorf("unsupported store backend %q: use memory or sqlite", cfg.Backend)
	}
}

// validate checks the invariants every stored lead must satisfy.
func validate(lead types.Lead) error {
	if strings.TrimSpace(lead.ID) == "" {
		return fmt.Errorf("lead has empty id")
	}
	if strings.TrimSpace(lead.Name) == "" {
		return fmt.Errorf("lead %s has empty name", lead.ID)
	}
	if !lead.Status.Valid() {
		return fmt.Errorf("lead %s: %w: %q", lead.ID, types.ErrInvalidStatus, lead.Status)
	}
	return nil
}

// applyUpdate runs fn on a copy of cur and restores the immutable fields.
func applyUpdate(cur types.Lead, fn func(*types.Lead) error) (types.Lead, error) {
	next := cur
	if err := fn(&next); err != nil {
		return types.Lead{}, err
	}
	next.ID = cur.ID
	next.DateAdded = cur.DateAdded
	if err := validate(next); err != nil {
		return types.Lead{}, err
	}
	return next, nil
}
