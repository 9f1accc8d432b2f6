// Package warns keeps the per-(chat,user) infraction ledger. The list length
// is the current warn count; escalation against the chat's limit is the
// caller's job and happens exactly once per added warn.
package warns

import (
	"fmt"
	"sync"
	"time"

	"github.com/modguard/modguard/internal/store"
)

type Record struct {
	Reason string    `json:"reason"`
	By     int64     `json:"by"`
	Date   time.Time `json:"date"`
}

type Ledger struct {
	mu  sync.Mutex
	kv  *store.Store
	now func() time.Time
}

func NewLedger(kv *store.Store) *Ledger {
	return &Ledger{kv: kv, now: time.Now}
}

// Add appends a warn and returns the resulting count.
func (l *Ledger) Add(chatID, userID int64, reason string, by int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey(chatID, userID)
	records := l.load(key)
	records = append(records, Record{Reason: reason, By: by, Date: l.now()})
	l.kv.Set(key, records)
	return len(records)
}

// Remove drops the warn at index; a negative index means the most recent.
// Returns false on an empty list or an out-of-range index.
func (l *Ledger) Remove(chatID, userID int64, index int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey(chatID, userID)
	records := l.load(key)
	if len(records) == 0 {
		return false
	}
	if index < 0 {
		index = len(records) - 1
	}
	if index >= len(records) {
		return false
	}
	records = append(records[:index], records[index+1:]...)
	l.kv.Set(key, records)
	return true
}

// RemoveLast drops the most recent warn.
func (l *Ledger) RemoveLast(chatID, userID int64) bool {
	return l.Remove(chatID, userID, -1)
}

// Clear deletes the whole list and returns how many warns it held.
func (l *Ledger) Clear(chatID, userID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey(chatID, userID)
	count := len(l.load(key))
	l.kv.Delete(key)
	return count
}

func (l *Ledger) List(chatID, userID int64) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ledgerKey(chatID, userID))
}

func (l *Ledger) Count(chatID, userID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.load(ledgerKey(chatID, userID)))
}

func (l *Ledger) load(key string) []Record {
	var records []Record
	l.kv.Decode(key, &records)
	return records
}

func ledgerKey(chatID, userID int64) string {
	return fmt.Sprintf("%d:%d", chatID, userID)
}
