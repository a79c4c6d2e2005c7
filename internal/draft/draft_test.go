// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/outreach/internal/gemini"
	"github.com/pdiddy/outreach/pkg/types"
)

// failingDrafter errors on every call.
type failingDrafter struct{ calls int }

func (f *failingDrafter) Draft(context.Context, Request) (types.Draft, error) {
	f.calls++
	return types.Draft{}, errors.New("service unavailable")
}

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

var acmeReq = Request{
	LeadName:    "Acme Realty Co",
	LeadContext: "Boutique brokerage in Brooklyn.",
	Offer:       "We grow organic traffic.",
	Sender:      "Alex Johnson",
}

func TestGenerateAlwaysYieldsDraft(t *testing.T) {
	f := &failingDrafter{}
	for i := 0; i < 3; i++ {
		res := Generate(context.Background(), f, acmeReq)
		require.Error(t, res.Err)
		assert.True(t, res.IsFallback())
		assert.Equal(t, Fallback, res.Draft())
	}
	assert.Equal(t, 3, f.calls)
}

func TestGeminiDrafter(t *testing.T) {
	gen := &mockGen{text: `{"subject":" Quick idea for Acme ","body":"Hi Acme team,\nLoved your Brooklyn listings."}`}
	res := Generate(context.Background(), NewGeminiDrafter(gen), acmeReq)

	require.NoError(t, res.Err)
	assert.False(t, res.IsFallback())
	assert.Equal(t, types.Draft{Subject: "Quick idea for Acme", Body: "Hi Acme team,\nLoved your Brooklyn listings."}, res.Draft())

	assert.True(t, gen.lastOpts.JSON)
	assert.Contains(t, gen.lastPrompt, "**Sender:** Alex Johnson")
	assert.Contains(t, gen.lastPrompt, "**Recipient:** Acme Realty Co")
	assert.Contains(t, gen.lastPrompt, "Boutique brokerage in Brooklyn.")
	assert.Contains(t, gen.lastPrompt, "We grow organic traffic.")
}

func TestGeminiDrafterFailures(t *testing.T) {
	tests := []struct {
		name    string
		gen     *mockGen
		service bool
	}{
		{"transport", &mockGen{err: errors.New("dial tcp: refused")}, true},
		{"malformed", &mockGen{text: "Dear Acme, ..."}, false},
		{"empty", &mockGen{text: ""}, false},
		{"no body", &mockGen{text: `{"subject":"Hi"}`}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Generate(context.Background(), NewGeminiDrafter(tt.gen), acmeReq)
			require.Error(t, res.Err)
			assert.Equal(t, Fallback, res.Draft())

			var svc *types.ServiceError
			assert.Equal(t, tt.service, errors.As(res.Err, &svc))
		})
	}
}

func TestParseDraft(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.Draft
		err  error
	}{
		{"object", `{"subject":"S","body":"B"}`, types.Draft{Subject: "S", Body: "B"}, nil},
		{"fenced", "```json\n{\"subject\":\"S\",\"body\":\"B\"}\n```", types.Draft{Subject: "S", Body: "B"}, nil},
		{"array", `[{"subject":"S","body":"B"}]`, types.Draft{Subject: "S", Body: "B"}, nil},
		{"empty array", `[]`, types.Draft{}, ErrEmptyDraft},
		{"blank", "  ", types.Draft{}, ErrEmptyDraft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDraft(tt.text)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
