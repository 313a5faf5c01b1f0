// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves structured paper metadata for resolved links.
// Concrete strategies live behind the Strategy interface and are selected
// by name at configuration time.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

// ErrorKind splits fetch failures into retryable and terminal.
type ErrorKind int

const (
	// KindTransient marks failures where retrying the same input may
	// succeed: timeouts, 5xx, connection resets, rate limits.
	KindTransient ErrorKind = iota

	// KindPermanent marks failures retrying cannot fix: 4xx (except 429)
	// and structurally unparsable 2xx responses.
	KindPermanent
)

func (k ErrorKind) String() string {
	if k == KindTransient {
		return "transient"
	}
	return "permanent"
}

// Error is the failure type returned by every fetch strategy.
type Error struct {
	Kind ErrorKind
	URL  string
	Err  error

	// RetryAfter carries a server-provided backoff hint (HTTP 429) that
	// the retry policy honors. Zero when no hint was given.
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Transient wraps err as a retryable fetch failure.
func Transient(url string, err error) *Error {
	return &Error{Kind: KindTransient, URL: url, Err: err}
}

// Permanent wraps err as a terminal fetch failure.
func Permanent(url string, err error) *Error {
	return &Error{Kind: KindPermanent, URL: url, Err: err}
}

// IsTransient reports whether err is a fetch error that may succeed on
// retry. Non-fetch errors are treated as permanent.
func IsTransient(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == KindTransient
}

// Strategy retrieves paper metadata for one resolved link. Implementations
// hold no mutable state beyond a shared read-only configuration and are
// safe for concurrent use.
type Strategy interface {
	// Name returns the registry name of the strategy.
	Name() string

	// Fetch retrieves the metadata. Failures are *Error values; a failure
	// never produces a metadata record.
	Fetch(ctx context.Context, link types.ResolvedLink) (*types.PaperMetadata, error)
}

// constructors is the strategy registry. Selection is a configuration-time
// lookup; an unknown name fails before any item is processed.
var constructors = map[string]func(*http.Client, types.FetcherConfig) (Strategy, error){
	"simple_html": func(client *http.Client, cfg types.FetcherConfig) (Strategy, error) {
		return NewSimpleHTML(client, cfg), nil
	},
	"docling": func(*http.Client, types.FetcherConfig) (Strategy, error) {
		return nil, errors.New("docling fetcher is not implemented; use fetcher.type=simple_html")
	},
}

// New constructs the strategy named by cfg.Type. Empty selects simple_html.
func New(client *http.Client, cfg types.FetcherConfig) (Strategy, error) {
	name := cfg.Type
	if name == "" {
		name = "simple_html"
	}
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown fetcher type %q (have %v)", name, Names())
	}
	return ctor(client, cfg)
}

// Names lists the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
