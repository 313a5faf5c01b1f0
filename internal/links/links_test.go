// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty input", "", nil},
		{"no links", "nothing to see here", nil},
		{
			"single link",
			"New paper: https://arxiv.org/abs/2301.00001",
			[]string{"https://arxiv.org/abs/2301.00001"},
		},
		{
			"trailing punctuation trimmed",
			"See https://arxiv.org/abs/2301.00001. Also https://doi.org/10.1145/123, ok?",
			[]string{"https://arxiv.org/abs/2301.00001", "https://doi.org/10.1145/123"},
		},
		{
			"exact duplicates removed, order kept",
			"https://a.org/x then https://b.org/y then https://a.org/x",
			[]string{"https://a.org/x", "https://b.org/y"},
		},
		{
			"near duplicates with query kept",
			"https://a.org/x?v=1 and https://a.org/x?v=2",
			[]string{"https://a.org/x?v=1", "https://a.org/x?v=2"},
		},
		{
			"angle brackets terminate the match",
			"<https://arxiv.org/abs/2301.00001>",
			[]string{"https://arxiv.org/abs/2301.00001"},
		},
		{
			"malformed surroundings never fail",
			"garbage \x00\xff https://arxiv.org/abs/2301.00001 \\broken{",
			[]string{"https://arxiv.org/abs/2301.00001"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			var urls []string
			for _, l := range got {
				urls = append(urls, l.URL)
			}
			assert.Equal(t, tt.want, urls)
		})
	}
}

func TestExtractAll_DeduplicatesAcrossEmails(t *testing.T) {
	got := ExtractAll([]string{
		"first: https://arxiv.org/abs/2301.00001",
		"second: https://arxiv.org/abs/2301.00001 and https://arxiv.org/abs/2302.99999",
	})
	require.Len(t, got, 2)
	assert.Equal(t, "https://arxiv.org/abs/2301.00001", got[0].URL)
	assert.Equal(t, "https://arxiv.org/abs/2302.99999", got[1].URL)
}

func TestFilter_Keep(t *testing.T) {
	f := NewFilter(types.LinkFilterConfig{AllowedDomains: []string{"example.edu"}})

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"arxiv abs", "https://arxiv.org/abs/2301.00001", true},
		{"arxiv subdomain", "https://export.arxiv.org/abs/2301.00001", true},
		{"scholar redirect", "https://scholar.google.com/scholar_url?url=https%3A%2F%2Farxiv.org%2Fabs%2F2301.00001", true},
		{"doi", "https://doi.org/10.1145/1234567.1234568", true},
		{"configured extra domain", "https://papers.example.edu/p/42", true},
		{"disallowed host", "https://evil.example.com/paper", false},
		{"scholar citations page", "https://scholar.google.com/citations?user=abc", false},
		{"scholar settings", "https://scholar.google.com/scholar_settings?hl=en", false},
		{"alert action param", "https://scholar.google.com/scholar?update_op=email_alert", false},
		{"unsubscribe on allowed host", "https://scholar.google.com/unsubscribe?token=x", false},
		{"tracking pixel", "https://arxiv.org/track.gif?id=1", false},
		{"image asset", "https://arxiv.org/static/logo.png", false},
		{"not a url", "://nope", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Keep(tt.url), tt.url)
		})
	}
}

func TestFilter_ApplyPreservesOrder(t *testing.T) {
	f := NewFilter(types.LinkFilterConfig{})
	in := []types.RawLink{
		{URL: "https://arxiv.org/abs/2301.00001"},
		{URL: "https://tracking.example.com/pixel.gif"},
		{URL: "https://doi.org/10.1000/x"},
	}
	got := f.Apply(in)
	require.Len(t, got, 2)
	assert.Equal(t, "https://arxiv.org/abs/2301.00001", got[0].URL)
	assert.Equal(t, "https://doi.org/10.1000/x", got[1].URL)
}
