// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

// retryBase controls the base duration for exponential backoff between
// fetch attempts. Tests override this to avoid real sleeps.
var retryBase = time.Second

const defaultAttempts = 3

// WithRetry wraps a strategy with bounded retry: at most attempts calls,
// exponential backoff with jitter between them, and only transient
// failures retried. A permanent failure is surfaced after exactly one
// attempt. When attempts is not positive the default (3) is used.
func WithRetry(inner Strategy, attempts int) Strategy {
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	return &retrying{inner: inner, attempts: attempts}
}

type retrying struct {
	inner    Strategy
	attempts int
}

func (r *retrying) Name() string { return r.inner.Name() }

func (r *retrying) Fetch(ctx context.Context, link types.ResolvedLink) (*types.PaperMetadata, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if attempt > 1 {
			if err := sleepBackoff(ctx, attempt-1, lastErr); err != nil {
				return nil, err
			}
		}

		meta, err := r.inner.Fetch(ctx, link)
		if err == nil {
			return meta, nil
		}
		if !IsTransient(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d attempts: %w", r.attempts, lastErr)
}

// sleepBackoff waits before retry n (1-based). A Retry-After hint from the
// failed attempt takes precedence over the computed backoff.
func sleepBackoff(ctx context.Context, n int, lastErr error) error {
	delay := time.Duration(math.Pow(2, float64(n-1))) * retryBase
	delay += time.Duration(rand.Int63n(int64(retryBase)/2 + 1))

	var fe *Error
	if errors.As(lastErr, &fe) && fe.RetryAfter > delay {
		delay = fe.RetryAfter
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
