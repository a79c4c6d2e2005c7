// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/outreach/internal/dispatch"
	"github.com/pdiddy/outreach/internal/draft"
	"github.com/pdiddy/outreach/internal/extract"
	"github.com/pdiddy/outreach/internal/gemini"
	"github.com/pdiddy/outreach/internal/outreach"
	"github.com/pdiddy/outreach/internal/search"
	"github.com/pdiddy/outreach/internal/store"
	"github.com/pdiddy/outreach/pkg/types"
)

// offline stands in for the Gemini client when no API key is configured
// and the command does not need the model.
type offline struct{}

func (offline) Generate(context.Context, string, gemini.Options) (gemini.Response, error) {
	return gemini.Response{}, types.ErrMissingAPIKey
}

// newPipeline wires the outreach pipeline from cfg. needAI makes a missing
// API key fatal.
func newPipeline(ctx context.Context, c types.Config, needAI bool) (*outreach.Pipeline, error) {
	var gen gemini.Generator = offline{}
	if c.AI.APIKey != "" || needAI {
		g, err := gemini.New(ctx, c.AI, logger)
		if err != nil {
			return nil, err
		}
		logger.Debug("gemini client ready", zap.String("model", g.Model()))
		gen = g
	}

	st, err := store.Open(c.Store)
	if err != nil {
		return nil, fmt.Errorf("opening lead store: %w", err)
	}

	deps := outreach.Deps{
		Searcher:  search.NewGeminiSearcher(gen, c.Search),
		Extractor: extract.NewGeminiExtractor(gen, logger),
		Drafter:   draft.NewGeminiDrafter(gen),
		Store:     st,
		Logger:    logger,
		Profile:   c.Profile,
		Defaults:  c.Search.Defaults,
	}
	if s := dispatch.NewSMTPSender(c.Mail); s != nil {
		deps.Sender = s
	}

	p, err := outreach.New(deps)
	if err != nil {
		st.Close()
		return nil, err
	}
	return p, nil
}
