// Package antispam implements the sliding-window message-rate limiter. State
// is in-memory only: spam bursts are a short-horizon phenomenon, so losing
// windows on restart is acceptable.
package antispam

import (
	"fmt"
	"sync"
	"time"
)

type Limiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		windows: map[string][]time.Time{},
		now:     time.Now,
	}
}

// Check records the current message and reports whether the sender now
// exceeds maxMessages within the trailing window. The current message counts,
// so the limiter trips on message number maxMessages+1.
func (l *Limiter) Check(chatID, userID int64, maxMessages int, window time.Duration) bool {
	key := windowKey(chatID, userID)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.windows[key][:0]
	for _, ts := range l.windows[key] {
		if now.Sub(ts) < window {
			recent = append(recent, ts)
		}
	}
	recent = append(recent, now)
	l.windows[key] = recent
	return len(recent) > maxMessages
}

// Reset drops the sender's window, so an already-penalized burst does not
// keep tripping the limiter.
func (l *Limiter) Reset(chatID, userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, windowKey(chatID, userID))
}

func windowKey(chatID, userID int64) string {
	return fmt.Sprintf("%d:%d", chatID, userID)
}
