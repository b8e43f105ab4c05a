package githubapi

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicy_DelayGrowsAndCaps(t *testing.T) {
	t.Parallel()

	p := RetryPolicy{BaseDelay: time.Second, MaxDelay: 3 * time.Second}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 3 * time.Second},
		{5, 3 * time.Second},
	}
	for _, tc := range cases {
		if got := p.Delay(tc.attempt); got != tc.want {
			t.Fatalf("Delay(%d)=%s, want %s", tc.attempt, got, tc.want)
		}
	}
}

func TestRetryPolicy_DoExhaustsAndWraps(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Retryable: func(error) bool { return true }}

	calls := 0
	var sleeps []time.Duration
	sleep := func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}

	err := p.Do(context.Background(), sleep, func() error {
		calls++
		return boom
	})

	var te *TransientError
	if !errors.As(err, &te) {
		t.Fatalf("err=%v, want *TransientError", err)
	}
	if te.Attempts != 3 {
		t.Fatalf("Attempts=%d, want 3", te.Attempts)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want it to wrap the underlying error", err)
	}
	if calls != 3 {
		t.Fatalf("calls=%d, want 3", calls)
	}
	if len(sleeps) != 2 {
		t.Fatalf("sleeps=%v, want delays between attempts only", sleeps)
	}
}

func TestRetryPolicy_DoStopsOnNonRetryable(t *testing.T) {
	t.Parallel()

	fatal := errors.New("bad request")
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Retryable: func(err error) bool { return !errors.Is(err, fatal) }}

	calls := 0
	err := p.Do(context.Background(), func(context.Context, time.Duration) error { return nil }, func() error {
		calls++
		return fatal
	})

	if !errors.Is(err, fatal) {
		t.Fatalf("err=%v, want the original error unwrapped", err)
	}
	var te *TransientError
	if errors.As(err, &te) {
		t.Fatalf("err=%v, want no TransientError wrapping for non-retryable failures", err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d, want 1", calls)
	}
}

func TestRetryPolicy_DoSucceedsMidway(t *testing.T) {
	t.Parallel()

	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Retryable: func(error) bool { return true }}

	calls := 0
	err := p.Do(context.Background(), func(context.Context, time.Duration) error { return nil }, func() error {
		calls++
		if calls < 2 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls=%d, want 2", calls)
	}
}
