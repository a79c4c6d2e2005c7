// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile turns extracted candidates into saved leads.
//
// The reconciler does not deduplicate by content: calling Reconcile twice
// with the same candidate stores two leads. Callers track which candidates
// of a result set were already saved.
package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/outreach/pkg/types"
)

// Appender is the subset of the lead store the reconciler writes to.
type Appender interface {
	Append(ctx context.Context, lead types.Lead) error
}

// Reconciler assigns identity, defaults and status to candidates and
// appends the resulting leads to a store.
type Reconciler struct {
	Store Appender

	// NewID generates lead identifiers. Defaults to random UUIDs.
	NewID func() string

	// Now returns the creation timestamp. Defaults to time.Now.
	Now func() time.Time
}

// New returns a Reconciler writing to s with the default ID and clock.
func New(s Appender) *Reconciler {
	return &Reconciler{Store: s}
}

// Reconcile builds a lead from c and appends it to the store.
func (r *Reconciler) Reconcile(ctx context.Context, c types.Candidate, defaultRole, resolvedURL string) (types.Lead, error) {
	newID := r.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}

	lead, err := NewLead(c, defaultRole, resolvedURL, newID(), now())
	if err != nil {
		return types.Lead{}, err
	}
	if err := r.Store.Append(ctx, lead); err != nil {
		return types.Lead{}, fmt.Errorf("saving lead %q: %w", lead.Name, err)
	}
	return lead, nil
}

// NewLead maps a candidate to a NEW lead. Role falls back to defaultRole
// when the candidate has none; name, description and email are copied as is.
func NewLead(c types.Candidate, defaultRole, resolvedURL, id string, added time.Time) (types.Lead, error) {
	if strings.TrimSpace(c.Name) == "" {
		return types.Lead{}, fmt.Errorf("candidate has empty name")
	}
	if id == "" {
		return types.Lead{}, fmt.Errorf("empty lead id for %q", c.Name)
	}

	role := c.Role
	if strings.TrimSpace(role) == "" {
		role = defaultRole
	}

	return types.Lead{
		ID:          id,
		Name:        c.Name,
		Role:        role,
		Description: c.Description,
		SourceURL:   resolvedURL,
		Email:       c.Email,
		Status:      types.StatusNew,
		DateAdded:   added.UTC(),
	}, nil
}
