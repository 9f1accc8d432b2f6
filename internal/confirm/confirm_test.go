package confirm

import (
	"testing"
	"time"
)

func TestConfirmWithoutStartReportsNothingPending(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	if _, ok := tr.Confirm(7); ok {
		t.Fatalf("expected confirm without start to report nothing pending")
	}
}

func TestThreeConfirmationsThenConsumed(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Start(7)

	for want := 1; want <= Threshold; want++ {
		got, ok := tr.Confirm(7)
		if !ok {
			t.Fatalf("expected pending state on confirmation %d", want)
		}
		if got != want {
			t.Fatalf("expected progress %d, got %d", want, got)
		}
	}

	// The caller consumes the state on reaching the threshold.
	tr.Clear(7)
	if _, ok := tr.Confirm(7); ok {
		t.Fatalf("expected consumed state to reject further confirmations")
	}
}

func TestStartOverwritesPendingProgress(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Start(7)
	tr.Confirm(7)
	tr.Confirm(7)

	tr.Start(7)
	if got, ok := tr.Confirm(7); !ok || got != 1 {
		t.Fatalf("expected fresh progress after restart, got %d (%v)", got, ok)
	}
}

func TestAbandonedConfirmationExpires(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	clock := time.Unix(1000, 0)
	tr.now = func() time.Time { return clock }

	tr.Start(7)
	clock = clock.Add(TTL + time.Second)

	if _, ok := tr.Confirm(7); ok {
		t.Fatalf("expected expired confirmation to be dropped")
	}
}

func TestActorsAreIndependent(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Start(1)
	tr.Start(2)
	tr.Confirm(1)

	if got, ok := tr.Confirm(2); !ok || got != 1 {
		t.Fatalf("expected independent progress for second actor, got %d (%v)", got, ok)
	}
}
