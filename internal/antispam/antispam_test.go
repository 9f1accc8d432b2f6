package antispam

import (
	"testing"
	"time"
)

func limiterAt(start time.Time) (*Limiter, *time.Time) {
	clock := start
	l := NewLimiter()
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestTripsOnMessageAfterLimit(t *testing.T) {
	t.Parallel()

	l, clock := limiterAt(time.Unix(1000, 0))

	// 5 allowed messages within 9 seconds, trip on the 6th.
	for i := 0; i < 5; i++ {
		if l.Check(100, 7, 5, 10*time.Second) {
			t.Fatalf("limiter tripped on allowed message %d", i+1)
		}
		*clock = clock.Add(time.Second)
	}
	if !l.Check(100, 7, 5, 10*time.Second) {
		t.Fatalf("expected limiter to trip on message 6")
	}
}

func TestSpacedMessagesNeverTrip(t *testing.T) {
	t.Parallel()

	l, clock := limiterAt(time.Unix(1000, 0))

	// 5 messages spaced 3 seconds apart over 15 seconds: old entries expire.
	for i := 0; i < 5; i++ {
		if l.Check(100, 7, 4, 10*time.Second) {
			t.Fatalf("limiter tripped on spaced message %d", i+1)
		}
		*clock = clock.Add(3 * time.Second)
	}
}

func TestWindowsArePerChatAndUser(t *testing.T) {
	t.Parallel()

	l, _ := limiterAt(time.Unix(1000, 0))

	for i := 0; i < 3; i++ {
		l.Check(100, 7, 2, 10*time.Second)
	}
	if l.Check(100, 8, 2, 10*time.Second) {
		t.Fatalf("other user's window polluted")
	}
	if l.Check(200, 7, 2, 10*time.Second) {
		t.Fatalf("other chat's window polluted")
	}
}

func TestResetClearsWindowImmediately(t *testing.T) {
	t.Parallel()

	l, _ := limiterAt(time.Unix(1000, 0))

	for i := 0; i < 4; i++ {
		l.Check(100, 7, 3, 10*time.Second)
	}
	l.Reset(100, 7)

	if l.Check(100, 7, 3, 10*time.Second) {
		t.Fatalf("expected fresh window after reset")
	}
}
