// Package confirm implements the stepwise confirmation gate in front of the
// vocabulary export. An actor has at most one pending confirmation; starting
// a new one overwrites whatever was pending.
package confirm

import (
	"sync"
	"time"
)

const (
	// Threshold is how many confirmations consume a pending state.
	Threshold = 3
	// TTL bounds abandoned confirmations so they cannot pile up in memory.
	TTL = 10 * time.Minute
)

type pending struct {
	progress  int
	startedAt time.Time
}

type Tracker struct {
	mu      sync.Mutex
	pending map[int64]*pending
	now     func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		pending: map[int64]*pending{},
		now:     time.Now,
	}
}

// Start resets the actor to a fresh pending confirmation, unconditionally.
func (t *Tracker) Start(actorID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[actorID] = &pending{startedAt: t.now()}
}

// Confirm advances the actor's pending confirmation and returns the new
// progress. The second return is false when nothing is pending, which guards
// against stray confirmations.
func (t *Tracker) Confirm(actorID int64) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.pending[actorID]
	if !ok {
		return 0, false
	}
	if t.now().Sub(p.startedAt) > TTL {
		delete(t.pending, actorID)
		return 0, false
	}
	p.progress++
	return p.progress, true
}

// Clear consumes the actor's pending state.
func (t *Tracker) Clear(actorID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, actorID)
}
