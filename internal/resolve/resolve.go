// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve canonicalizes candidate paper URLs: redirector links are
// unwrapped, redirects are followed under a hop budget, and known sources
// (arXiv, DOI) are normalized to a stable canonical identity.
package resolve

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

const defaultMaxHops = 5

// arxivIDPattern matches the numeric arXiv ID inside a path segment, with
// an optional version suffix that is dropped during normalization so
// "2301.00001" and "2301.00001v2" share one identity.
var arxivIDPattern = regexp.MustCompile(`(\d{4}\.\d{4,5})(?:v\d+)?`)

// doiPattern matches a DOI inside a URL path: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`(10\.\d{4,9}/[^\s?#]+)`)

// CandidateFilter reports whether a URL may be followed during redirect
// probing. The link filter satisfies this.
type CandidateFilter interface {
	Keep(rawURL string) bool
}

// Resolver canonicalizes URLs. The HTTP client is constructed once per run
// and shared by reference; Resolver itself holds no mutable state.
type Resolver struct {
	client *http.Client
	filter CandidateFilter
	cfg    types.ResolverConfig
}

// New builds a Resolver. client must not follow redirects itself; the
// Resolver walks them hop by hop so each hop can be checked against filter.
func New(client *http.Client, filter CandidateFilter, cfg types.ResolverConfig) *Resolver {
	return &Resolver{client: client, filter: filter, cfg: cfg}
}

// NoRedirectClient returns an HTTP client suitable for New: same transport
// and timeout semantics as a plain client, but redirects are surfaced to
// the caller instead of followed.
func NoRedirectClient(timeout types.HTTPConfig) *http.Client {
	return &http.Client{
		Timeout: timeout.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Resolve canonicalizes a single URL. Resolution failure is non-fatal: the
// returned link always carries the best-known canonical URL, and the error
// describes why no further progress was possible. Resolving an already
// canonical URL is idempotent.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (types.ResolvedLink, error) {
	current := decodeRedirector(rawURL)

	// Known sources need no network round trip.
	if link, ok := canonicalize(rawURL, current); ok {
		return link, nil
	}

	final, err := r.follow(ctx, current)
	if err != nil {
		return types.ResolvedLink{
			OriginalURL:  rawURL,
			CanonicalURL: normalizeURL(current),
		}, fmt.Errorf("resolving %s: %w", rawURL, err)
	}

	if link, ok := canonicalize(rawURL, final); ok {
		return link, nil
	}
	return types.ResolvedLink{
		OriginalURL:  rawURL,
		CanonicalURL: normalizeURL(final),
	}, nil
}

// decodeRedirector unwraps known redirector URLs without a network call.
// Google Scholar alert links embed the target in a "url" query parameter.
func decodeRedirector(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if !strings.HasSuffix(strings.ToLower(u.Hostname()), "scholar.google.com") {
		return rawURL
	}
	if u.Path != "/scholar_url" && u.Path != "/url" {
		return rawURL
	}
	target := u.Query().Get("url")
	if target == "" {
		return rawURL
	}
	if decoded, err := url.QueryUnescape(target); err == nil {
		target = decoded
	}
	if t, err := url.Parse(target); err != nil || t.Scheme == "" || t.Host == "" {
		return rawURL
	}
	return target
}

// canonicalize applies per-source identity rules to candidate. It reports
// whether a rule matched.
func canonicalize(original, candidate string) (types.ResolvedLink, bool) {
	u, err := url.Parse(candidate)
	if err != nil {
		return types.ResolvedLink{}, false
	}
	host := strings.ToLower(u.Hostname())

	// arXiv: any abs/pdf/html form maps to the abstract page.
	if host == "arxiv.org" || strings.HasSuffix(host, ".arxiv.org") {
		if m := arxivIDPattern.FindStringSubmatch(u.Path); m != nil {
			id := m[1]
			return types.ResolvedLink{
				OriginalURL:  original,
				CanonicalURL: "https://arxiv.org/abs/" + id,
				CanonicalID:  "arxiv:" + id,
			}, true
		}
	}

	// DOI: doi.org resolver links and publisher /doi/ paths.
	if host == "doi.org" || host == "dx.doi.org" || strings.Contains(u.Path, "/doi/") {
		if m := doiPattern.FindStringSubmatch(u.Path); m != nil {
			doi := strings.ToLower(strings.TrimSuffix(m[1], "/"))
			return types.ResolvedLink{
				OriginalURL:  original,
				CanonicalURL: "https://doi.org/" + doi,
				CanonicalID:  "doi:" + doi,
			}, true
		}
	}

	return types.ResolvedLink{}, false
}

// follow chases redirects hop by hop, bounded by MaxHops, checking every
// hop target against the candidate filter so the walk cannot wander into
// disallowed domains. It returns the final URL.
func (r *Resolver) follow(ctx context.Context, startURL string) (string, error) {
	maxHops := r.cfg.MaxHops
	if maxHops <= 0 {
		maxHops = defaultMaxHops
	}

	current := startURL
	visited := map[string]bool{current: true}

	for hop := 0; hop < maxHops; hop++ {
		resp, err := r.head(ctx, current)
		if err != nil {
			return current, err
		}
		loc := resp.Header.Get("Location")
		resp.Body.Close()

		if resp.StatusCode < 300 || resp.StatusCode >= 400 {
			return current, nil
		}
		if loc == "" {
			return current, nil
		}

		next, err := absoluteLocation(current, loc)
		if err != nil {
			return current, fmt.Errorf("bad redirect target %q: %w", loc, err)
		}
		// A hop into a recognized source ends the walk; the canonical rule
		// supplies the identity without fetching the page.
		if _, ok := canonicalize(next, next); ok {
			return next, nil
		}
		if r.filter != nil && !r.filter.Keep(next) {
			return current, fmt.Errorf("redirect into disallowed target %s", next)
		}
		if visited[next] {
			return current, fmt.Errorf("redirect loop at %s", next)
		}
		visited[next] = true
		current = next
	}

	return current, fmt.Errorf("exceeded %d redirect hops", maxHops)
}

// head issues a HEAD request, falling back to GET when the server rejects
// the method.
func (r *Resolver) head(ctx context.Context, target string) (*http.Response, error) {
	resp, err := r.do(ctx, http.MethodHead, target)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented {
		resp.Body.Close()
		return r.do(ctx, http.MethodGet, target)
	}
	return resp, nil
}

func (r *Resolver) do(ctx context.Context, method, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	return r.client.Do(req)
}

func absoluteLocation(base, loc string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	l, err := url.Parse(loc)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(l).String(), nil
}

// normalizeURL is the fallback canonical form for unrecognized sources:
// lower-cased, query and fragment stripped.
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(rawURL)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.ToLower(u.String())
}
