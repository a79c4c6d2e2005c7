// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/pdiddy/outreach/pkg/types"
)

// extractionPromptTmpl is sent with JSON mode enabled. Sources are passed
// so the model can fill in websites whose names match a source title.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`I have the following text containing a list of businesses/people found via search, and a list of source URLs.
Please extract the entities into a JSON array of objects.

Text:
"""
{{.RawText}}
"""

Available Source URLs (use these to verify or fill in the website field if the name matches the source title):
{{.SourcesJSON}}

Output Schema:
Array of:
{
  "name": string,
  "role": string (infer from context),
  "description": string (1 sentence summary),
  "website": string (The specific URL for this entity. Ensure it starts with http:// or https:// if possible. Do not assign the same URL to everyone. If no specific URL is found, null),
  "email": string (If a specific email address is mentioned in the text, extract it here. Otherwise null)
}

Return ONLY valid JSON.
`))

// renderPrompt executes the extraction prompt template for one search result.
func renderPrompt(res types.SearchResult) (string, error) {
	sources := res.Sources
	if sources == nil {
		sources = []types.GroundingSource{}
	}
	js, err := json.Marshal(sources)
	if err != nil {
		return "", fmt.Errorf("marshaling sources: %w", err)
	}

	var buf bytes.Buffer
	err = extractionPromptTmpl.Execute(&buf, struct {
		RawText     string
		SourcesJSON string
	}{res.RawText, string(js)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
