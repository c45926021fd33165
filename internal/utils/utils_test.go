package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	if err := WaitFor(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := WaitFor(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("zero wait must still honour a cancelled context, got %v", err)
	}
}

func TestBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	cases := map[int]time.Duration{
		0: base,
		1: base,
		2: 200 * time.Millisecond,
		3: 400 * time.Millisecond,
		5: time.Second,
	}
	for attempt, want := range cases {
		if got := Backoff(base, time.Second, attempt); got != want {
			t.Fatalf("attempt %d: expected %s, got %s", attempt, want, got)
		}
	}
}
