// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// SearchResult is the output of the grounded web search: free text listing
// prospects plus the web sources the model grounded on.
type SearchResult struct {
	RawText string            `json:"rawText" yaml:"raw_text"`
	Sources []GroundingSource `json:"sources" yaml:"sources"`
}

// ErrMissingAPIKey is returned when no Gemini API key is configured.
var ErrMissingAPIKey = errors.New("API key is missing: set GEMINI_API_KEY, API_KEY, or .secrets/gemini-api-key")

// ServiceError reports a transport or authentication failure reaching the
// AI service. It is fatal to the stage that produced it.
type ServiceError struct {
	Stage string
	Err   error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: AI service error: %v", e.Stage, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
