// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package links

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

// defaultAllowedDomains are the academic and redirector hosts accepted as
// paper candidates out of the box. Subdomains of an entry are accepted too.
var defaultAllowedDomains = []string{
	"arxiv.org",
	"scholar.google.com",
	"doi.org",
	"dl.acm.org",
	"openreview.net",
	"semanticscholar.org",
}

// noisePatterns reject known non-paper links even on an allowed host:
// Scholar account actions, alert management, tracking, and image assets.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)scholar\.google\.com/citations`),
	regexp.MustCompile(`(?i)scholar\.google\.com/scholar_settings`),
	regexp.MustCompile(`(?i)scholar\.google\.com/scholar_alerts`),
	regexp.MustCompile(`(?i)[?&]update_op=`),
	regexp.MustCompile(`(?i)[?&]citsig=`),
	regexp.MustCompile(`(?i)unsubscribe`),
	regexp.MustCompile(`(?i)/(?:pixel|beacon|track|open)\.(?:gif|png)`),
	regexp.MustCompile(`(?i)\.(?:png|gif|jpe?g|svg|ico|css|js)$`),
}

// Filter classifies extracted URLs as paper candidates. A URL passes when
// its host belongs to the allow-list and no noise pattern matches.
type Filter struct {
	allowed []string
}

// NewFilter builds a Filter from the built-in allow-list plus the
// configured extra domains.
func NewFilter(cfg types.LinkFilterConfig) *Filter {
	allowed := make([]string, 0, len(defaultAllowedDomains)+len(cfg.AllowedDomains))
	allowed = append(allowed, defaultAllowedDomains...)
	for _, d := range cfg.AllowedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			allowed = append(allowed, d)
		}
	}
	return &Filter{allowed: allowed}
}

// Keep reports whether the URL is a paper candidate.
func (f *Filter) Keep(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	if !f.hostAllowed(strings.ToLower(u.Hostname())) {
		return false
	}

	for _, p := range noisePatterns {
		if p.MatchString(rawURL) {
			return false
		}
	}
	return true
}

// Apply filters a slice of RawLinks, preserving order.
func (f *Filter) Apply(in []types.RawLink) []types.RawLink {
	var out []types.RawLink
	for _, link := range in {
		if f.Keep(link.URL) {
			out = append(out, link)
		}
	}
	return out
}

func (f *Filter) hostAllowed(host string) bool {
	for _, d := range f.allowed {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
