// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export serializes saved leads for download as CSV, YAML or JSON.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/outreach/pkg/types"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat converts a case-insensitive name to a Format. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatYAML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, yaml or json)", s)
}

// ContentType returns the MIME type for downloads in format f.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatJSON:
		return "application/json"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Header is the fixed CSV column order.
var Header = []string{
	"Name", "Role", "Email", "Description", "Website",
	"Status", "Date Added", "Email Subject", "Email Body",
}

// DateLayout renders Date Added as an ISO 8601 UTC timestamp with
// millisecond precision.
const DateLayout = "2006-01-02T15:04:05.000Z"

// Quote wraps s in double quotes and doubles any quote inside it.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// CSV renders leads as CSV: an unquoted header line followed by one
// line per lead with every field quoted, joined by "\n" without a trailing
// newline. The output depends only on the input.
func CSV(leads []types.Lead) string {
	var b strings.Builder
	b.WriteString(strings.Join(Header, ","))
	for _, l := range leads {
		b.WriteByte('\n')
		for i, f := range row(l) {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Quote(f))
		}
	}
	return b.String()
}

func row(l types.Lead) []string {
	var added string
	if !l.DateAdded.IsZero() {
		added = l.DateAdded.UTC().Format(DateLayout)
	}
	return []string{
		l.Name,
		l.Role,
		l.Email,
		l.Description,
		l.SourceURL,
		string(l.Status),
		added,
		l.EmailSubject,
		l.EmailDraft,
	}
}

// Filename returns the download name for an export made at t, such as
// outreach_leads_2026-10-18.csv.
func Filename(f Format, t time.Time) string {
	if f == "" {
		f = FormatCSV
	}
	return fmt.Sprintf("outreach_leads_%s.%s", t.UTC().Format("2006-01-02"), f)
}

// Write encodes leads to w in format f.
func Write(w io.Writer, f Format, leads []types.Lead) error {
	switch f {
	case FormatCSV, "":
		_, err := io.WriteString(w, CSV(leads))
		return err
	case FormatYAML:
		return WriteYAML(w, leads)
	case FormatJSON:
		return WriteJSON(w, leads)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// WriteYAML encodes leads as a YAML sequence.
func WriteYAML(w io.Writer, leads []types.Lead) error {
	if leads == nil {
		leads = []types.Lead{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(leads); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// WriteJSON encodes leads as an indented JSON array.
func WriteJSON(w io.Writer, leads []types.Lead) error {
	if leads == nil {
		leads = []types.Lead{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(leads); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}
