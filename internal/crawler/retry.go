package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/nao1215/guidecrawl/internal/model"
)

// RetryPolicy describes exponential backoff with jitter.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// BaseDelay is the nominal delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the nominal delay.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns 3 retries starting at 500ms, capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
	}
}

// ShouldRetry reports whether a fetch that failed with err should be tried
// again after retries retries have already been made.
func (p RetryPolicy) ShouldRetry(err error, retries int) bool {
	if err == nil || retries >= p.MaxRetries {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var transportErr *model.TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Temporary()
	}
	return true
}

// Backoff returns the wait before retry number retries+1. The nominal delay
// doubles per retry up to MaxDelay; the result is uniformly drawn from the
// upper half of the nominal delay.
func (p RetryPolicy) Backoff(retries int) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(2, float64(retries))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	half := time.Duration(delay / 2)
	if half <= 0 {
		return time.Duration(delay)
	}
	return half + rand.N(half) //nolint:gosec // jitter does not need crypto randomness
}

// RetryingFetcher wraps a Fetcher with a RetryPolicy.
type RetryingFetcher struct {
	next   Fetcher
	policy RetryPolicy
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// RetryOption configures a RetryingFetcher.
type RetryOption func(*RetryingFetcher)

// WithRetryLogger sets the logger used for retry warnings.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(f *RetryingFetcher) {
		f.logger = logger
	}
}

// NewRetryingFetcher wraps next with policy.
func NewRetryingFetcher(next Fetcher, policy RetryPolicy, opts ...RetryOption) *RetryingFetcher {
	f := &RetryingFetcher{
		next:   next,
		policy: policy,
		logger: slog.Default(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch calls the wrapped fetcher until it succeeds, the policy gives up or
// ctx is done. The last error is returned.
func (f *RetryingFetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	for retries := 0; ; retries++ {
		page, err := f.next.Fetch(ctx, pageURL)
		if err == nil {
			return page, nil
		}
		if !f.policy.ShouldRetry(err, retries) {
			if retries > 0 {
				return nil, fmt.Errorf("giving up after %d retries: %w", retries, err)
			}
			return nil, err
		}

		delay := f.policy.Backoff(retries)
		f.logger.Warn("fetch failed, retrying",
			"url", pageURL,
			"attempt", retries+1,
			"max_retries", f.policy.MaxRetries,
			"delay", delay,
			"error", err,
		)
		if err := f.sleep(ctx, delay); err != nil {
			return nil, &model.TransportError{URL: pageURL, Err: err}
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
