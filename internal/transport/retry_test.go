package transport

import (
	"testing"
	"time"
)

func TestDefaultRetryConfig_RetryableStatuses(t *testing.T) {
	t.Parallel()
	cfg := DefaultRetryConfig()
	retryable := []int{408, 429, 500, 502, 503, 504}
	for _, status := range retryable {
		if !cfg.RetryableOn(status) {
			t.Errorf("expected status %d to be retryable", status)
		}
	}
	notRetryable := []int{200, 201, 400, 401, 403, 404}
	for _, status := range notRetryable {
		if cfg.RetryableOn(status) {
			t.Errorf("expected status %d not to be retryable", status)
		}
	}
}

func TestShouldRetry_StopsAtMaxRetries(t *testing.T) {
	t.Parallel()
	cfg := &RetryConfig{MaxRetries: 2, RetryableOn: func(int) bool { return true }}
	if !cfg.ShouldRetry(0, 500) {
		t.Fatal("expected retry on first attempt")
	}
	if !cfg.ShouldRetry(1, 500) {
		t.Fatal("expected retry on second attempt")
	}
	if cfg.ShouldRetry(2, 500) {
		t.Fatal("expected no retry once MaxRetries attempts have been made")
	}
}

func TestDelay_CapsAtMaxDelay(t *testing.T) {
	t.Parallel()
	cfg := &RetryConfig{
		BaseDelay:  time.Second,
		MaxDelay:   5 * time.Second,
		Multiplier: 10,
		Jitter:     0,
	}
	d := cfg.Delay(5)
	if d != 5*time.Second {
		t.Fatalf("expected delay to cap at MaxDelay, got %v", d)
	}
}

func TestDelay_GrowsWithAttempt(t *testing.T) {
	t.Parallel()
	cfg := &RetryConfig{
		BaseDelay:  time.Second,
		MaxDelay:   time.Minute,
		Multiplier: 2,
		Jitter:     0,
	}
	d0 := cfg.Delay(0)
	d1 := cfg.Delay(1)
	if d0 != time.Second {
		t.Fatalf("expected first delay to equal BaseDelay, got %v", d0)
	}
	if d1 != 2*time.Second {
		t.Fatalf("expected delay to double on second attempt, got %v", d1)
	}
}
