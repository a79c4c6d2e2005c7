// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/outreach/pkg/types"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "https://example.com"},
		{"https://example.com", "https://example.com"},
		{"http://example.com/about", "http://example.com/about"},
		{"HTTPS://Example.com", "HTTPS://Example.com"},
		{"  www.example.com  ", "https://www.example.com"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.in))
		})
	}
}

func TestResolve(t *testing.T) {
	sources := []types.GroundingSource{
		{Title: "Top 10 agencies in NYC", URI: "https://list.example/top10"},
		{Title: "Acme Realty Co - Homepage", URI: "acme.example"},
		{Title: "ACME REALTY CO reviews", URI: "https://reviews.example/acme"},
		{Title: "", URI: "https://untitled.example"},
	}

	tests := []struct {
		name    string
		website string
		lead    string
		sources []types.GroundingSource
		want    string
	}{
		{
			name:    "explicit website is normalized",
			website: "example.com",
			lead:    "Acme Realty Co",
			sources: sources,
			want:    "https://example.com",
		},
		{
			name:    "explicit website with scheme is unchanged",
			website: "https://example.com",
			lead:    "Acme Realty Co",
			sources: sources,
			want:    "https://example.com",
		},
		{
			name:    "first matching source wins",
			lead:    "Acme Realty Co",
			sources: sources,
			want:    "https://acme.example",
		},
		{
			name:    "match is case-insensitive",
			lead:    "acme realty",
			sources: sources[2:],
			want:    "https://reviews.example/acme",
		},
		{
			name: "first title match without a URI ends the scan",
			lead: "Acme Realty Co",
			sources: []types.GroundingSource{
				{Title: "Acme Realty Co - Homepage", URI: ""},
				{Title: "Acme Realty Co on Yelp", URI: "https://yelp.example/acme"},
			},
			want: "",
		},
		{
			name:    "no match yields empty",
			lead:    "Globex",
			sources: sources,
			want:    "",
		},
		{
			name:    "no sources yields empty",
			lead:    "Acme Realty Co",
			sources: nil,
			want:    "",
		},
		{
			name:    "empty name never matches",
			lead:    "  ",
			sources: sources,
			want:    "",
		},
		{
			name:    "whitespace website falls back to sources",
			website: "   ",
			lead:    "Acme Realty Co",
			sources: sources,
			want:    "https://acme.example",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.website, tt.lead, tt.sources))
		})
	}
}
