// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gemini wraps the Google Gen AI SDK behind a small Generator
// interface shared by the search, extraction and drafting stages.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/pdiddy/outreach/internal/httputil"
	"github.com/pdiddy/outreach/pkg/types"
)

// Options selects per-call generation features.
type Options struct {
	// GoogleSearch enables the grounded web search tool. The API does not
	// allow JSON mode together with this tool.
	GoogleSearch bool

	// JSON requests an application/json response body.
	JSON bool
}

// Response is the text of the first candidate plus its grounding sources.
type Response struct {
	Text    string
	Sources []types.GroundingSource
}

// Generator sends a single prompt to a generative model. Tests supply a
// mock; Client is the production implementation.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (Response, error)
}

// Client calls the Gemini API through the genai SDK.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a Gemini client. An empty API key fails with
// types.ErrMissingAPIKey.
func New(ctx context.Context, cfg types.AIConfig, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, types.ErrMissingAPIKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	model := cfg.Model
	if model == "" {
		model = types.DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httputil.NewClient(logger),
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating GenAI client: %w", err)
	}

	return &Client{
		client:  client,
		model:   model,
		timeout: cfg.Timeout,
		logger:  logger.With(zap.String("model", model)),
	}, nil
}

// Model returns the model identifier used for every call.
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt to the model and returns the response text and
// web grounding sources. Sources without a URI are dropped.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{}
	if opts.GoogleSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	} else if opts.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return Response{}, fmt.Errorf("GenAI generate failed: %w", err)
	}

	out := Response{
		Text:    resp.Text(),
		Sources: groundingSources(resp),
	}
	c.logger.Debug("generated content",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("chars", len(out.Text)),
		zap.Int("sources", len(out.Sources)),
		zap.Bool("google_search", opts.GoogleSearch),
	)
	return out, nil
}

// groundingSources maps the first candidate's web grounding chunks to
// GroundingSources, keeping response order.
func groundingSources(resp *genai.GenerateContentResponse) []types.GroundingSource {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var sources []types.GroundingSource
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		sources = append(sources, types.GroundingSource{
			Title: chunk.Web.Title,
			URI:   chunk.Web.URI,
		})
	}
	return sources
}

// StripCodeFence removes a surrounding ``` or ```json Markdown fence that
// models sometimes add around JSON even in JSON mode.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	} else {
		text = ""
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}
