// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract structures the free text of a grounded search into
// candidate records.
//
// Extraction fails soft: a service error or malformed model output yields
// an empty candidate list, indistinguishable from "nothing found".
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/outreach/internal/gemini"
	"github.com/pdiddy/outreach/pkg/types"
)

// Extractor turns search output into candidates. Implementations never
// return an error; an empty slice means nothing was extracted.
type Extractor interface {
	Extract(ctx context.Context, res types.SearchResult) []types.Candidate
}

// GeminiExtractor asks a Gemini model in JSON mode to structure the text.
type GeminiExtractor struct {
	Gen    gemini.Generator
	Logger *zap.Logger
}

// NewGeminiExtractor returns an extractor backed by gen. A nil logger
// discards warnings.
func NewGeminiExtractor(gen gemini.Generator, logger *zap.Logger) *GeminiExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiExtractor{Gen: gen, Logger: logger}
}

// Extract calls the model and parses its JSON answer. Failures are logged
// and reported as an empty list.
func (e *GeminiExtractor) Extract(ctx context.Context, res types.SearchResult) []types.Candidate {
	prompt, err := renderPrompt(res)
	if err != nil {
		e.Logger.Warn("rendering extraction prompt", zap.Error(err))
		return []types.Candidate{}
	}

	resp, err := e.Gen.Generate(ctx, prompt, gemini.Options{JSON: true})
	if err != nil {
		e.Logger.Warn("extraction call failed", zap.Error(err))
		return []types.Candidate{}
	}

	cands, err := ParseCandidates(resp.Text)
	if err != nil {
		e.Logger.Warn("extraction output malformed", zap.Error(err), zap.Int("chars", len(resp.Text)))
		return []types.Candidate{}
	}
	return cands
}

// rawCandidate mirrors the JSON the model returns. Website and email may
// come back as null.
type rawCandidate struct {
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	Description string  `json:"description"`
	Website     *string `json:"website"`
	Email       *string `json:"email"`
}

// ParseCandidates decodes the model's JSON answer. It accepts a bare array
// or an object wrapping the array under "leads", "candidates" or "items",
// tolerates a Markdown code fence, trims every field and drops entries
// without a name. Empty text yields an empty list.
func ParseCandidates(text string) ([]types.Candidate, error) {
	text = gemini.StripCodeFence(text)
	if text == "" {
		return []types.Candidate{}, nil
	}

	var raw []rawCandidate
	if strings.HasPrefix(text, "{") {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
			return nil, fmt.Errorf("parsing extraction JSON: %w", err)
		}
		var inner json.RawMessage
		for _, key := range []string{"leads", "candidates", "items"} {
			if v, ok := wrapped[key]; ok {
				inner = v
				break
			}
		}
		if inner == nil {
			return nil, fmt.Errorf("extraction JSON object has no candidate array")
		}
		if err := json.Unmarshal(inner, &raw); err != nil {
			return nil, fmt.Errorf("parsing extraction JSON: %w", err)
		}
	} else if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parsing extraction JSON: %w", err)
	}

	cands := make([]types.Candidate, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		cands = append(cands, types.Candidate{
			Name:        name,
			Role:        strings.TrimSpace(r.Role),
			Description: strings.TrimSpace(r.Description),
			Website:     deref(r.Website),
			Email:       deref(r.Email),
		})
	}
	return cands, nil
}

// deref returns the trimmed value, treating nil and the literal "null"
// as empty.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	v := strings.TrimSpace(*s)
	if strings.EqualFold(v, "null") {
		return ""
	}
	return v
}
