// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package links extracts candidate paper URLs from raw email text and
// prunes the noise. The stage is pure text processing: no network I/O.
package links

import (
	"regexp"
	"strings"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

// urlPattern is deliberately permissive: scheme + anything that is not a
// URL-terminating character. Over-matching is fine because the filter
// prunes and the resolver reconciles.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)

// trailingPunctuation holds characters stripped from the end of a match;
// email prose commonly ends a link with sentence punctuation.
const trailingPunctuation = ".,;:!?)"

// Extract scans a block of text for URL-shaped tokens and returns them as
// RawLinks in order of first appearance, with exact-string duplicates
// removed. Near-duplicates (same page, different query) are kept for the
// resolver to reconcile. Malformed text never fails; empty input yields nil.
func Extract(text string) []types.RawLink {
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var out []types.RawLink
	for _, m := range matches {
		cleaned := strings.TrimRight(m, trailingPunctuation)
		if cleaned == "" || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		out = append(out, types.RawLink{SourceSpan: m, URL: cleaned})
	}
	return out
}

// ExtractAll runs Extract over a batch of text blocks (one per email),
// deduplicating by exact URL string across the whole batch.
func ExtractAll(texts []string) []types.RawLink {
	seen := make(map[string]bool)
	var out []types.RawLink
	for _, text := range texts {
		for _, link := range Extract(text) {
			if seen[link.URL] {
				continue
			}
			seen[link.URL] = true
			out = append(out, link)
		}
	}
	return out
}
