// Package admins keeps the globally privileged actor roster. Membership here
// supersedes any per-chat status, including in private chats.
package admins

import (
	"sort"
	"sync"

	"github.com/modguard/modguard/internal/store"
)

const rosterKey = "admins"

type Roster struct {
	mu sync.Mutex
	kv *store.Store
}

func NewRoster(kv *store.Store) *Roster {
	return &Roster{kv: kv}
}

// Add enrolls userID. Returns false when the user is already on the roster,
// which callers surface as an "already enrolled" outcome rather than an error.
func (r *Roster) Add(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.load()
	for _, id := range ids {
		if id == userID {
			return false
		}
	}
	r.kv.Set(rosterKey, append(ids, userID))
	return true
}

func (r *Roster) Remove(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.load()
	for i, id := range ids {
		if id == userID {
			r.kv.Set(rosterKey, append(ids[:i], ids[i+1:]...))
			return true
		}
	}
	return false
}

func (r *Roster) Has(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.load() {
		if id == userID {
			return true
		}
	}
	return false
}

func (r *Roster) List() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.load()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Roster) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.load())
}

func (r *Roster) load() []int64 {
	var ids []int64
	r.kv.Decode(rosterKey, &ids)
	return ids
}
