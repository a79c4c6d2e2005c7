// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft generates personalized cold emails for saved leads.
//
// Drafting never blocks the caller: Generate wraps the outcome in a Result
// whose Draft method substitutes a fixed, editable fallback when the model
// call or its output fails.
package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/outreach/internal/gemini"
	"github.com/pdiddy/outreach/pkg/types"
)

// Fallback is the draft handed to the user when generation fails.
var Fallback = types.Draft{
	Subject: "Partnership Opportunity",
	Body:    "Error generating email draft. Please try again.",
}

// ErrEmptyDraft is returned when the model answers without an email body.
var ErrEmptyDraft = errors.New("model returned an empty draft")

// Request carries the inputs for one email.
type Request struct {
	LeadName    string
	LeadContext string
	Offer       string
	Sender      string
}

// Drafter produces an email for one lead. Tests supply a mock;
// GeminiDrafter is the production implementation.
type Drafter interface {
	Draft(ctx context.Context, req Request) (types.Draft, error)
}

// Result is the outcome of one draft attempt.
type Result struct {
	Value types.Draft
	Err   error
}

// Draft returns the generated draft, or Fallback when the attempt failed.
func (r Result) Draft() types.Draft {
	if r.Err != nil {
		return Fallback
	}
	return r.Value
}

// IsFallback reports whether Draft returns the fallback.
func (r Result) IsFallback() bool {
	return r.Err != nil
}

// Generate runs d for req and captures the outcome. It never fails; the
// caller decides via Result.Draft how an error is presented.
func Generate(ctx context.Context, d Drafter, req Request) Result {
	v, err := d.Draft(ctx, req)
	return Result{Value: v, Err: err}
}

var draftPromptTmpl = template.Must(template.New("draft").Parse(`Write a personalized, professional, and persuasive cold email.

**Sender:** {{.Sender}}
**My Offer/Value Proposition:** {{.Offer}}

**Recipient:** {{.LeadName}}
**Recipient Context (from search):** {{.LeadContext}}

**Goal:** Initiate a partnership or sales call.

**Guidelines:**
- Keep it under 150 words.
- Be direct but polite.
- Mention something specific about them (from the context) to show I did research.
- Clear Call to Action (CTA).
- Output format: JSON object with keys "subject" and "body".
`))

// GeminiDrafter asks a Gemini model in JSON mode for a subject and body.
type GeminiDrafter struct {
	Gen gemini.Generator
}

// NewGeminiDrafter returns a drafter backed by gen.
func NewGeminiDrafter(gen gemini.Generator) *GeminiDrafter {
	return &GeminiDrafter{Gen: gen}
}

// Draft calls the model once. Transport failures come back as a
// *types.ServiceError; unusable output as a parse error or ErrEmptyDraft.
func (g *GeminiDrafter) Draft(ctx context.Context, req Request) (types.Draft, error) {
	var buf bytes.Buffer
	if err := draftPromptTmpl.Execute(&buf, req); err != nil {
		return types.Draft{}, fmt.Errorf("rendering draft prompt: %w", err)
	}

	resp, err := g.Gen.Generate(ctx, buf.String(), gemini.Options{JSON: true})
	if err != nil {
		return types.Draft{}, &types.ServiceError{Stage: "draft", Err: err}
	}
	return ParseDraft(resp.Text)
}

// ParseDraft decodes a {"subject", "body"} object. A one-element array
// wrapping the object is accepted.
func ParseDraft(text string) (types.Draft, error) {
	text = gemini.StripCodeFence(text)
	if text == "" {
		return types.Draft{}, ErrEmptyDraft
	}

	var d types.Draft
	if strings.HasPrefix(text, "[") {
		var arr []types.Draft
		if err := json.Unmarshal([]byte(text), &arr); err != nil {
			return types.Draft{}, fmt.Errorf("parsing draft JSON: %w", err)
		}
		if len(arr) == 0 {
			return types.Draft{}, ErrEmptyDraft
		}
		d = arr[0]
	} else if err := json.Unmarshal([]byte(text), &d); err != nil {
		return types.Draft{}, fmt.Errorf("parsing draft JSON: %w", err)
	}

	d.Subject = strings.TrimSpace(d.Subject)
	d.Body = strings.TrimSpace(d.Body)
	if d.Body == "" {
		return types.Draft{}, ErrEmptyDraft
	}
	return d, nil
}
