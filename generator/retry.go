package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"time"

	openai "github.com/openai/openai-go"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = time.Second
)

// RetryPolicy retries transient generation failures with exponential
// backoff: delay = BaseDelay * 2^attempt + Jitter().
//
// The zero value retries 3 times from a 1s base with up to 1s of uniform
// jitter and sleeps on the real clock.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	// Jitter returns the random component added to each delay.
	Jitter func() time.Duration
	// Sleep waits for d. Tests swap it for a recorder.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *log.Logger
}

func (p RetryPolicy) maxRetries() int {
	if p.MaxRetries <= 0 {
		return defaultMaxRetries
	}
	return p.MaxRetries
}

// Backoff returns the delay before retry number attempt (0-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = defaultBaseDelay
	}
	jitter := p.Jitter
	if jitter == nil {
		jitter = uniformJitter
	}
	return base*time.Duration(1<<attempt) + jitter()
}

// Do calls fn until it succeeds, fails with a non-transient error, or the
// retry budget is spent. One initial call plus up to MaxRetries retries.
func (p RetryPolicy) Do(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		if attempt >= p.maxRetries() {
			return fmt.Errorf("%w: %s after %d attempts: %w", ErrRetriesExhausted, label, attempt+1, err)
		}
		delay := p.Backoff(attempt)
		logger.Printf("[retry] %s: %v, retrying in %.2fs (attempt %d/%d)", label, err, delay.Seconds(), attempt+1, p.maxRetries())
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// IsTransient reports whether err is worth retrying: network failures,
// rate limits and server errors. Auth and invalid-request errors are fatal.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMissingCredential) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return transientStatus(apiErr.StatusCode)
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return transientStatus(statusErr.StatusCode)
	}
	// Anything else is a transport failure.
	return true
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500
}

func uniformJitter() time.Duration {
	return time.Duration(rand.Float64() * float64(time.Second))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
