package oracle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
		JitterFactor:   0,
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fastRetry(3).do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryRecoversFromTransient(t *testing.T) {
	calls := 0
	err := fastRetry(3).do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryStopsOnHardError(t *testing.T) {
	hard := &openai.APIError{HTTPStatusCode: 401, Message: "bad key"}
	calls := 0
	err := fastRetry(3).do(context.Background(), func(context.Context) error {
		calls++
		return hard
	})
	if !errors.Is(err, hard) {
		t.Errorf("err = %v, want the auth error unchanged", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on auth failure)", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	transient := errors.New("connection reset")
	calls := 0
	err := fastRetry(3).do(context.Background(), func(context.Context) error {
		calls++
		return transient
	})
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !errors.Is(err, transient) {
		t.Errorf("err = %v, want wrapped last error", err)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("err = %v, want attempt count in message", err)
	}
}

func TestRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	cfg := RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: time.Hour,
		MaxBackoff:     time.Hour,
		BackoffFactor:  2.0,
	}
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := cfg.do(ctx, func(context.Context) error {
		calls++
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (cancelled during backoff)", calls)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate_limit", &openai.APIError{HTTPStatusCode: 429}, true},
		{"server_error", &openai.APIError{HTTPStatusCode: 503}, true},
		{"auth_failure", &openai.APIError{HTTPStatusCode: 401}, false},
		{"bad_request", &openai.APIError{HTTPStatusCode: 400}, false},
		{"request_error_500", &openai.RequestError{HTTPStatusCode: 500}, true},
		{"request_error_404", &openai.RequestError{HTTPStatusCode: 404}, false},
		{"context_canceled", context.Canceled, false},
		{"context_deadline", context.DeadlineExceeded, false},
		{"network_failure", errors.New("dial tcp: connection refused"), true},
		{"empty_completion", errEmptyCompletion, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
