// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve picks the website URL recorded for a lead, either from
// the extracted candidate or by matching the candidate name against the
// grounding sources of the search that found it.
package resolve

import (
	"strings"

	"github.com/pdiddy/outreach/pkg/types"
)

// NormalizeURL returns raw with surrounding whitespace removed and an
// "https://" prefix added when it carries no http or https scheme. An
// empty input yields "".
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return u
	}
	return "https://" + u
}

// Resolve returns the best website URL for a candidate. A non-empty website
// wins and is normalized. Otherwise sources are scanned in order and the
// URI of the first source whose title contains name (case-insensitive) is
// returned, even when that URI is empty. "" means no URL could be
// resolved, which is a valid outcome.
func Resolve(website, name string, sources []types.GroundingSource) string {
	if u := NormalizeURL(website); u != "" {
		return u
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return ""
	}

	// First title match wins; later sources are not consulted.
	for _, s := range sources {
		if s.Title == "" {
			continue
		}
		if strings.Contains(strings.ToLower(s.Title), needle) {
			return NormalizeURL(s.URI)
		}
	}
	return ""
}
