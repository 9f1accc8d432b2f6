// Package stats tracks per-chat moderation counters. Counters are advisory:
// they are incremented in their own critical section, independent of the
// action they describe.
package stats

import (
	"strconv"
	"sync"

	"github.com/modguard/modguard/internal/store"
)

const (
	DeletedMessages = "deleted_messages"
	WarnsGiven      = "warns_given"
	Mutes           = "mutes"
	Bans            = "bans"
	Kicks           = "kicks"
	SpamBlocked     = "spam_blocked"
	LinksBlocked    = "links_blocked"
)

// Counters is the fixed set reported for every chat, zero-filled when absent.
var Counters = []string{
	DeletedMessages,
	WarnsGiven,
	Mutes,
	Bans,
	Kicks,
	SpamBlocked,
	LinksBlocked,
}

type Tracker struct {
	mu sync.Mutex
	kv *store.Store
}

func NewTracker(kv *store.Store) *Tracker {
	return &Tracker{kv: kv}
}

func (t *Tracker) Increment(chatID int64, name string) {
	t.IncrementBy(chatID, name, 1)
}

func (t *Tracker) IncrementBy(chatID int64, name string, n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	chat := strconv.FormatInt(chatID, 10)
	current := asInt64(t.kv.GetPath(int64(0), chat, name))
	t.kv.SetPath(current+n, chat, name)
}

func (t *Tracker) Get(chatID int64) map[string]int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	chat := strconv.FormatInt(chatID, 10)
	out := make(map[string]int64, len(Counters))
	for _, name := range Counters {
		out[name] = asInt64(t.kv.GetPath(int64(0), chat, name))
	}
	return out
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
