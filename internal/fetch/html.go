// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

// bodySizeCap bounds how much HTML is read per page.
const bodySizeCap = 2 << 20

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// SimpleHTML is the default fetch strategy: a plain GET plus structural
// parsing of known page layouts (arXiv, Google Scholar), with a generic
// heuristic for everything else.
type SimpleHTML struct {
	client *http.Client
	cfg    types.FetcherConfig
}

// NewSimpleHTML builds the strategy around a shared HTTP client.
func NewSimpleHTML(client *http.Client, cfg types.FetcherConfig) *SimpleHTML {
	return &SimpleHTML{client: client, cfg: cfg}
}

// Name returns the registry name.
func (s *SimpleHTML) Name() string { return "simple_html" }

// Fetch retrieves the page at the link's canonical URL and extracts
// title/authors/abstract. The error kind classifies retryability.
func (s *SimpleHTML) Fetch(ctx context.Context, link types.ResolvedLink) (*types.PaperMetadata, error) {
	pageURL := link.CanonicalURL

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, Permanent(pageURL, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		// Transport-level failures (timeouts, resets, DNS) are retryable.
		return nil, Transient(pageURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		fe := Transient(pageURL, fmt.Errorf("HTTP 429"))
		fe.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		io.Copy(io.Discard, resp.Body)
		return nil, fe
	case resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return nil, Transient(pageURL, fmt.Errorf("HTTP %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		io.Copy(io.Discard, resp.Body)
		return nil, Permanent(pageURL, fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, bodySizeCap))
	if err != nil {
		return nil, Permanent(pageURL, fmt.Errorf("parsing HTML: %w", err))
	}

	meta := s.parse(doc, pageURL)
	if meta.Title == "" {
		return nil, Permanent(pageURL, fmt.Errorf("no title found in page"))
	}
	return meta, nil
}

// parse dispatches on the page host; unrecognized layouts fall through to
// the generic heuristic.
func (s *SimpleHTML) parse(doc *goquery.Document, pageURL string) *types.PaperMetadata {
	host := ""
	if u, err := url.Parse(pageURL); err == nil {
		host = strings.ToLower(u.Hostname())
	}

	var meta *types.PaperMetadata
	switch {
	case host == "arxiv.org" || strings.HasSuffix(host, ".arxiv.org"):
		meta = parseArxiv(doc)
	case strings.HasSuffix(host, "scholar.google.com"):
		meta = parseScholar(doc)
	default:
		meta = parseGeneric(doc)
	}
	meta.SourceURL = pageURL
	return meta
}

// parseArxiv reads the arXiv abstract-page layout.
func parseArxiv(doc *goquery.Document) *types.PaperMetadata {
	meta := &types.PaperMetadata{}

	title := doc.Find("h1.title").First().Text()
	meta.Title = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(title), "Title:"))

	doc.Find("div.authors a").Each(func(_ int, sel *goquery.Selection) {
		if name := strings.TrimSpace(sel.Text()); name != "" {
			meta.Authors = append(meta.Authors, name)
		}
	})

	abstract := doc.Find("blockquote.abstract").First().Text()
	meta.Abstract = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(abstract), "Abstract:"))

	if dateline := doc.Find("div.dateline").First().Text(); dateline != "" {
		if m := yearPattern.FindString(dateline); m != "" {
			meta.Year = m
		}
	}
	return meta
}

// parseScholar reads Google Scholar result and detail layouts.
func parseScholar(doc *goquery.Document) *types.PaperMetadata {
	meta := &types.PaperMetadata{}

	for _, sel := range []string{"h3.gs_rt", "#gsc_vcd_title", "h1"} {
		if el := doc.Find(sel).First(); el.Length() > 0 {
			// Strip [PDF]/[HTML] markers Scholar prefixes to titles.
			title := regexp.MustCompile(`\[.*?\]`).ReplaceAllString(el.Text(), "")
			meta.Title = strings.TrimSpace(title)
			break
		}
	}

	if byline := doc.Find(".gs_a").First().Text(); byline != "" {
		// Byline shape: "A Author, B Author - Venue, 2023 - publisher".
		head, _, _ := strings.Cut(byline, " - ")
		for _, name := range strings.Split(head, ",") {
			if name = strings.TrimSpace(name); name != "" {
				meta.Authors = append(meta.Authors, name)
			}
		}
		if m := yearPattern.FindString(byline); m != "" {
			meta.Year = m
		}
	}

	meta.Abstract = strings.TrimSpace(doc.Find(".gs_rs").First().Text())
	return meta
}

// parseGeneric is the fallback heuristic: Highwire citation meta tags when
// present, otherwise page title plus the first prose block.
func parseGeneric(doc *goquery.Document) *types.PaperMetadata {
	meta := &types.PaperMetadata{}

	if title, ok := doc.Find(`meta[name="citation_title"]`).Attr("content"); ok {
		meta.Title = strings.TrimSpace(title)
		doc.Find(`meta[name="citation_author"]`).Each(func(_ int, sel *goquery.Selection) {
			if name, ok := sel.Attr("content"); ok && strings.TrimSpace(name) != "" {
				meta.Authors = append(meta.Authors, strings.TrimSpace(name))
			}
		})
		if abs, ok := doc.Find(`meta[name="citation_abstract"]`).Attr("content"); ok {
			meta.Abstract = strings.TrimSpace(abs)
		}
		if year, ok := doc.Find(`meta[name="citation_publication_date"]`).Attr("content"); ok {
			if m := yearPattern.FindString(year); m != "" {
				meta.Year = m
			}
		}
	}

	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	if meta.Abstract == "" {
		if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
			meta.Abstract = strings.TrimSpace(desc)
		}
	}
	if meta.Abstract == "" {
		// First paragraph long enough to be prose rather than chrome.
		doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := strings.TrimSpace(sel.Text())
			if len(text) >= 80 {
				meta.Abstract = text
				return false
			}
			return true
		})
	}
	return meta
}

// parseRetryAfter reads a Retry-After header as delay seconds or HTTP date.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
