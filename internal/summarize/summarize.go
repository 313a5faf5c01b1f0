// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns paper metadata into structured Chinese-language
// summaries through a pluggable language-model strategy. Providers live
// behind the Strategy interface and are selected by name at configuration
// time.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

// ErrorKind splits summarize failures by cause.
type ErrorKind int

const (
	// KindRequestFailed marks transport or provider errors: the request
	// never produced usable output.
	KindRequestFailed ErrorKind = iota

	// KindMalformed marks output that arrived but does not match the
	// required structure after the stage's internal retries.
	KindMalformed
)

func (k ErrorKind) String() string {
	if k == KindRequestFailed {
		return "request_failed"
	}
	return "malformed_output"
}

// Error is the failure type returned by every summarize strategy.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("summarize (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// RequestFailed wraps err as a provider/transport failure.
func RequestFailed(err error) *Error {
	return &Error{Kind: KindRequestFailed, Err: err}
}

// Malformed wraps err as a structural failure of the model output.
func Malformed(err error) *Error {
	return &Error{Kind: KindMalformed, Err: err}
}

// IsMalformed reports whether err is a structural-output failure.
func IsMalformed(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindMalformed
}

// Strategy produces a structured summary from title and abstract.
// Implementations are safe for concurrent use; they share one HTTP client
// and read-only configuration.
type Strategy interface {
	// Name returns the registry name of the strategy.
	Name() string

	// Summarize requests a summary. Failures are *Error values.
	Summarize(ctx context.Context, title, abstract string) (*types.PaperSummary, error)
}

// constructors is the provider registry. An unknown provider or missing
// credentials fail here, at configuration time, never mid-batch.
var constructors = map[string]func(*http.Client, types.LLMConfig) (Strategy, error){
	"openai": func(client *http.Client, cfg types.LLMConfig) (Strategy, error) {
		return NewOpenAI(client, cfg)
	},
	"gemini": func(client *http.Client, cfg types.LLMConfig) (Strategy, error) {
		return NewGemini(client, cfg)
	},
}

// New constructs the strategy named by cfg.Provider. Empty selects openai.
func New(client *http.Client, cfg types.LLMConfig) (Strategy, error) {
	name := cfg.Provider
	if name == "" {
		name = "openai"
	}
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider %q (have %v)", name, Names())
	}
	return ctor(client, cfg)
}

// Names lists the registered provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// retryBase controls the base duration for backoff between summarize
// attempts. Tests override this to avoid real sleeps.
var retryBase = time.Second

const defaultRetries = 2

// WithRetry wraps a strategy with its internal retry budget: maxRetries
// extra attempts after the first, retrying both request failures and
// structurally invalid output. Structure is checked with Validate before
// an attempt counts as successful, so a provider that keeps returning an
// incomplete shape surfaces as malformed output, not as a summary.
// When maxRetries is not positive the default (2) is used.
func WithRetry(inner Strategy, maxRetries int) Strategy {
	if maxRetries <= 0 {
		maxRetries = defaultRetries
	}
	return &retrying{inner: inner, retries: maxRetries}
}

type retrying struct {
	inner   Strategy
	retries int
}

func (r *retrying) Name() string { return r.inner.Name() }

func (r *retrying) Summarize(ctx context.Context, title, abstract string) (*types.PaperSummary, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * retryBase
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		summary, err := r.inner.Summarize(ctx, title, abstract)
		if err != nil {
			lastErr = err
			continue
		}
		// Validate a copy: clamping is the caller's job, so the
		// original score (and its warning) must survive the check.
		scratch := *summary
		if _, err := Validate(&scratch); err != nil {
			lastErr = Malformed(err)
			continue
		}
		return summary, nil
	}
	return nil, fmt.Errorf("after %d retries: %w", r.retries, lastErr)
}
