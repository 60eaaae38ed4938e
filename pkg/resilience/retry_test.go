package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", fastConfig(3), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryRecovers(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryExhausted(t *testing.T) {
	sentinel := errors.New("permanent")
	calls := 0
	err := Retry(context.Background(), "op", fastConfig(3), func() error {
		calls++
		return sentinel
	})
	if err == nil {
		t.Fatal("Retry succeeded, want failure")
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("error %v does not wrap the last failure", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, "op", fastConfig(5), func() error {
		return errors.New("always")
	})
	if err == nil {
		t.Fatal("Retry succeeded with cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error %v does not wrap context.Canceled", err)
	}
}

func TestComputeDelayBounded(t *testing.T) {
	cfg := defaultRetryConfig()
	for attempt := 1; attempt <= 20; attempt++ {
		d := computeDelay(attempt, cfg)
		if d < 0 || d > cfg.MaxDelay {
			t.Errorf("attempt %d: delay %v outside (0, %v]", attempt, d, cfg.MaxDelay)
		}
	}
}
