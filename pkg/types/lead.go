// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the outreach pipeline:
// search criteria, grounding sources, extracted candidates, saved leads and
// email drafts.
package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status tracks a lead through the outreach workflow. Transitions are
// NEW → DRAFTED → SENT in practice; REPLIED is only set by an explicit
// external signal.
type Status string

const (
	StatusNew     Status = "NEW"
	StatusDrafted Status = "DRAFTED"
	StatusSent    Status = "SENT"
	StatusReplied Status = "REPLIED"
)

// ErrInvalidStatus is returned when a status string is not one of the
// known Status values.
var ErrInvalidStatus = errors.New("invalid lead status")

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusNew, StatusDrafted, StatusSent, StatusReplied}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusDrafted, StatusSent, StatusReplied:
		return true
	}
	return false
}

// ParseStatus converts a case-insensitive status name to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Lead is a saved prospect. Every stored lead has a unique ID and a
// non-empty Name; DateAdded never changes after creation.
type Lead struct {
	// ID is an opaque unique identifier assigned at save time.
	ID string `json:"id" yaml:"id"`

	// Name is the display name of the person or business.
	Name string `json:"name" yaml:"name"`

	// Role is a free-text category such as "Agency" or "Coach".
	Role string `json:"role" yaml:"role"`

	// Description is a one-sentence summary.
	Description string `json:"description" yaml:"description"`

	// SourceURL is the resolved website or profile URL. Always absolute
	// when set.
	SourceURL string `json:"sourceUrl,omitempty" yaml:"source_url,omitempty"`

	// Email is the contact address. The user may edit it before sending.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	Status Status `json:"status" yaml:"status"`

	// EmailSubject and EmailDraft hold the last generated (or edited) email.
	EmailSubject string `json:"emailSubject,omitempty" yaml:"email_subject,omitempty"`
	EmailDraft   string `json:"emailDraft,omitempty" yaml:"email_draft,omitempty"`

	DateAdded time.Time `json:"dateAdded" yaml:"date_added"`
}

// GroundingSource is a title/URL pair returned by the grounded search step.
// Sources are scoped to one search and only used to backfill Lead.SourceURL.
type GroundingSource struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	URI   string `json:"uri,omitempty" yaml:"uri,omitempty"`
}

// Candidate is an extracted prospect that has not been saved yet.
type Candidate struct {
	Name        string `json:"name" yaml:"name"`
	Role        string `json:"role,omitempty" yaml:"role,omitempty"`
	Description string `json:"description" yaml:"description"`
	Website     string `json:"website,omitempty" yaml:"website,omitempty"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Criteria describes the target prospect profile for one search.
type Criteria struct {
	Role     string `json:"role" yaml:"role" mapstructure:"role"`
	Niche    string `json:"niche" yaml:"niche" mapstructure:"niche"`
	Location string `json:"location" yaml:"location" mapstructure:"location"`
}

// IsEmpty reports whether the criteria contain no searchable terms.
func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.Role) == "" &&
		strings.TrimSpace(c.Niche) == "" &&
		strings.TrimSpace(c.Location) == ""
}

// UserProfile identifies the sender of outreach emails.
type UserProfile struct {
	Name     string `json:"name" yaml:"name" mapstructure:"name"`
	Business string `json:"business,omitempty" yaml:"business,omitempty" mapstructure:"business"`
	Offer    string `json:"offer" yaml:"offer" mapstructure:"offer"`
}

// Draft is a generated cold email.
type Draft struct {
	Subject string `json:"subject" yaml:"subject"`
	Body    string `json:"body" yaml:"body"`
}
