// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/outreach/internal/gemini"
	"github.com/pdiddy/outreach/pkg/types"
)

// --- mock generator ---

type mockGen struct {
	text       string
	err        error
	lastPrompt string
	lastOpts   gemini.Options
}

func (m *mockGen) Generate(_ context.Context, prompt string, opts gemini.Options) (gemini.Response, error) {
	m.lastPrompt = prompt
	m.lastOpts = opts
	return gemini.Response{Text: m.text}, m.err
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.WarnLevel)
	return zap.New(core), logs
}

var acmeResult = types.SearchResult{
	RawText: "1. Acme Realty Co - NYC homes",
	Sources: []types.GroundingSource{{Title: "Acme Realty Co - Homepage", URI: "acme.example"}},
}

func TestExtract(t *testing.T) {
	gen := &mockGen{text: `[{"name":"Acme Realty Co","role":"Agency","description":"Sells NYC homes.","website":null,"email":null}]`}
	logger, logs := observed()
	e := NewGeminiExtractor(gen, logger)

	got := e.Extract(context.Background(), acmeResult)
	want := []types.Candidate{{Name: "Acme Realty Co", Role: "Agency", Description: "Sells NYC homes."}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, gen.lastOpts.JSON)
	assert.False(t, gen.lastOpts.GoogleSearch)
	assert.Contains(t, gen.lastPrompt, acmeResult.RawText)
	assert.Contains(t, gen.lastPrompt, `"uri":"acme.example"`)
	assert.Equal(t, 0, logs.Len())
}

func TestExtractSoftFails(t *testing.T) {
	tests := []struct {
		name string
		gen  *mockGen
	}{
		{"service error", &mockGen{err: errors.New("503 unavailable")}},
		{"malformed json", &mockGen{text: `{"oops": `}},
		{"object without array", &mockGen{text: `{"message":"none"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := observed()
			got := NewGeminiExtractor(tt.gen, logger).Extract(context.Background(), acmeResult)
			require.NotNil(t, got)
			assert.Empty(t, got)
			assert.Equal(t, 1, logs.Len(), "failure is logged once")
		})
	}
}

func TestExtractEmptyTextIsNotAFailure(t *testing.T) {
	logger, logs := observed()
	got := NewGeminiExtractor(&mockGen{text: ""}, logger).Extract(context.Background(), acmeResult)
	assert.Empty(t, got)
	assert.Equal(t, 0, logs.Len())
}

func TestParseCandidates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []types.Candidate
	}{
		{
			name: "bare array",
			text: `[{"name":"A","description":"d","website":"a.example","email":"x@a.example"}]`,
			want: []types.Candidate{{Name: "A", Description: "d", Website: "a.example", Email: "x@a.example"}},
		},
		{
			name: "code fence",
			text: "```json\n[{\"name\":\"B\",\"description\":\"d\"}]\n```",
			want: []types.Candidate{{Name: "B", Description: "d"}},
		},
		{
			name: "wrapped object",
			text: `{"leads":[{"name":"C","role":" Coach ","description":"d"}]}`,
			want: []types.Candidate{{Name: "C", Role: "Coach", Description: "d"}},
		},
		{
			name: "nameless dropped and null strings cleared",
			text: `[{"name":"  ","description":"x"},{"name":"D","description":"d","website":"null","email":"NULL"}]`,
			want: []types.Candidate{{Name: "D", Description: "d"}},
		},
		{
			name: "empty",
			text: "   ",
			want: []types.Candidate{},
		},
		{
			name: "empty array",
			text: "[]",
			want: []types.Candidate{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCandidates(tt.text)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseCandidates mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCandidatesErrors(t *testing.T) {
	for _, text := range []string{"not json", `{"items": "nope"}`, `[{"name": 3}]`} {
		_, err := ParseCandidates(text)
		assert.Error(t, err, "input %q", text)
	}
}

func TestRenderPromptNilSources(t *testing.T) {
	p, err := renderPrompt(types.SearchResult{RawText: "text"})
	require.NoError(t, err)
	assert.Contains(t, p, "[]")
}
