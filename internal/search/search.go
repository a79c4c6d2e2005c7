// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs the grounded web search that finds prospects for a
// set of criteria and returns the model's free text plus its web sources.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pdiddy/outreach/internal/gemini"
	"github.com/pdiddy/outreach/pkg/types"
)

// NoResultsText replaces an empty model response so callers always have
// something to show.
const NoResultsText = "No results found."

// Searcher performs the grounded search stage. Tests supply a mock;
// GeminiSearcher is the production implementation.
type Searcher interface {
	Search(ctx context.Context, c types.Criteria) (types.SearchResult, error)
}

// searchPromptTmpl asks for a plain list; JSON mode is unavailable together
// with the Google Search tool, so structuring happens in the extract stage.
var searchPromptTmpl = template.Must(template.New("search").Parse(`I need to find top-rated {{.Role}}s in the {{.Niche}} niche located in or serving {{.Location}}.

Please search the web and provide a list of {{.MinLeads}}-{{.MaxLeads}} real, active people, agencies, or businesses that fit this criteria.

For each entry, you MUST provide:
1. Name of the person or agency.
2. A brief summary of what they do or their specific focus.
3. THE ACTUAL WEBSITE URL or social media profile link.
   - IMPORTANT: Ensure the URL is the homepage or main profile (e.g., https://www.example.com), not a specific blog post or article about them.
4. PUBLIC CONTACT EMAIL if available in the search snippets (or a "Contact Us" page link).

Format the output clearly as a list.
`))

// GeminiSearcher searches through a Gemini model with Google Search
// grounding enabled.
type GeminiSearcher struct {
	Gen      gemini.Generator
	MinLeads int
	MaxLeads int
}

// NewGeminiSearcher returns a searcher using gen with the lead bounds from
// cfg. Non-positive or inverted bounds fall back to 5-7.
func NewGeminiSearcher(gen gemini.Generator, cfg types.SearchConfig) *GeminiSearcher {
	minLeads, maxLeads := cfg.MinLeads, cfg.MaxLeads
	if minLeads <= 0 {
		minLeads = 5
	}
	if maxLeads < minLeads {
		maxLeads = minLeads + 2
	}
	return &GeminiSearcher{Gen: gen, MinLeads: minLeads, MaxLeads: maxLeads}
}

// Search runs one grounded search. Any failure from the model is returned
// as a *types.ServiceError; there is no retry.
func (s *GeminiSearcher) Search(ctx context.Context, c types.Criteria) (types.SearchResult, error) {
	if c.IsEmpty() {
		return types.SearchResult{}, fmt.Errorf("criteria are empty: provide a role, niche or location")
	}

	prompt, err := renderPrompt(c, s.MinLeads, s.MaxLeads)
	if err != nil {
		return types.SearchResult{}, fmt.Errorf("rendering search prompt: %w", err)
	}

	resp, err := s.Gen.Generate(ctx, prompt, gemini.Options{GoogleSearch: true})
	if err != nil {
		return types.SearchResult{}, &types.ServiceError{Stage: "search", Err: err}
	}

	text := resp.Text
	if strings.TrimSpace(text) == "" {
		text = NoResultsText
	}
	return types.SearchResult{RawText: text, Sources: resp.Sources}, nil
}

func renderPrompt(c types.Criteria, minLeads, maxLeads int) (string, error) {
	var buf bytes.Buffer
	err := searchPromptTmpl.Execute(&buf, struct {
		types.Criteria
		MinLeads int
		MaxLeads int
	}{c, minLeads, maxLeads})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatTable writes candidates as a human-readable table to w.
func FormatTable(candidates []types.Candidate, w io.Writer) {
	if len(candidates) == 0 {
		fmt.Fprintln(w, NoResultsText)
		return
	}

	fmt.Fprintf(w, "%-4s  %-32s  %-20s  %-32s  %s\n",
		"#", "Name", "Role", "Website", "Email")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, c := range candidates {
		fmt.Fprintf(w, "%-4d  %-32s  %-20s  %-32s  %s\n",
			i, truncate(c.Name, 32), truncate(c.Role, 20), truncate(c.Website, 32), c.Email)
	}

	fmt.Fprintf(w, "\n%d candidates\n", len(candidates))
}

// FormatSources writes the grounding sources as a numbered list to w.
func FormatSources(sources []types.GroundingSource, w io.Writer) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for i, s := range sources {
		title := s.Title
		if title == "" {
			title = s.URI
		}
		fmt.Fprintf(w, "  [%d] %s  %s\n", i+1, truncate(title, 60), s.URI)
	}
}

// FormatJSON writes candidates as indented JSON to w.
func FormatJSON(candidates []types.Candidate, w io.Writer) error {
	if candidates == nil {
		candidates = []types.Candidate{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(candidates)
}

// truncate shortens s to at most max runes, never splitting a character.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
