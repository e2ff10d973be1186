package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// RetryConfig configures the retry loop around oracle requests.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts including the first.
	MaxAttempts int

	// InitialBackoff is the wait before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait between retries.
	MaxBackoff time.Duration

	// BackoffFactor multiplies the wait after each attempt.
	BackoffFactor float64

	// JitterFactor spreads waits by up to this fraction either way so
	// parallel classifications don't hammer the endpoint in lockstep.
	JitterFactor float64
}

// DefaultRetryConfig returns the retry policy used when none is supplied.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
		JitterFactor:   0.2,
	}
}

// do runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent.
func (rc RetryConfig) do(ctx context.Context, fn func(context.Context) error) error {
	attempts := rc.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	backoff := rc.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(withJitter(backoff, rc.JitterFactor)):
		}

		backoff = nextBackoff(backoff, rc.BackoffFactor, rc.MaxBackoff)
	}

	return fmt.Errorf("oracle request failed after %d attempts: %w", attempts, lastErr)
}

// isRetryable separates transient transport failures from hard ones.
// Rate limits and server-side errors retry; auth and request-shape
// errors do not.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	// Anything else is a network-level failure.
	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// withJitter spreads the wait across [base*(1-f), base*(1+f)].
func withJitter(base time.Duration, factor float64) time.Duration {
	if factor <= 0 {
		return base
	}
	jitter := (rand.Float64()*2 - 1) * factor
	return time.Duration(float64(base) * (1.0 + jitter))
}

func nextBackoff(current time.Duration, factor float64, ceiling time.Duration) time.Duration {
	next := time.Duration(float64(current) * factor)
	if next > ceiling {
		return ceiling
	}
	return next
}
