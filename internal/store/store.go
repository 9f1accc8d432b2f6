// Package store implements the file-backed key-value documents underlying all
// chat-scoped state. Every mutation rewrites the whole backing file through an
// atomic rename, so a crash can lose at most the last write, never corrupt the
// file.
package store

import (
	"bytes"
	"encoding/json"
	"os"
	"sync"

	"github.com/natefinch/atomic"
	log "github.com/sirupsen/logrus"
)

type Store struct {
	path string

	mu   sync.Mutex
	data map[string]any

	log *log.Entry
}

// Open loads the document at path. A missing file yields an empty store; a
// malformed one is logged and replaced by an empty store on the next write.
// Only genuinely unreadable setups should be treated as fatal by the caller,
// and Open never is.
func Open(path string) *Store {
	s := &Store{
		path: path,
		data: map[string]any{},
		log:  log.WithField("context", "store").WithField("path", path),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithField("error", err.Error()).Warn("cant read store file, starting empty")
		}
		return s
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		s.log.WithField("error", err.Error()).Warn("malformed store file, starting empty")
		s.data = map[string]any{}
	}
	return s
}

func (s *Store) Get(key string, def any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.data[key]; ok {
		return v
	}
	return def
}

// Decode reads the value under key into out via a JSON round trip, so values
// written in-process and values loaded from disk decode identically. Returns
// false when the key is absent or the value does not fit out.
func (s *Store) Decode(key string, out any) bool {
	s.mu.Lock()
	v, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.persist()
}

func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return false
	}
	delete(s.data, key)
	s.persist()
	return true
}

// GetPath walks nested maps along keys, returning def when any segment is
// missing or not a map.
func (s *Store) GetPath(def any, keys ...string) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cur any = s.data
	for _, key := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return def
		}
		cur, ok = m[key]
		if !ok {
			return def
		}
	}
	return cur
}

// SetPath stores value at the nested path, creating intermediate maps on
// demand. Existing non-map intermediates are replaced.
func (s *Store) SetPath(value any, keys ...string) {
	if len(keys) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.data
	for _, key := range keys[:len(keys)-1] {
		next, ok := m[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[key] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = value
	s.persist()
}

// Snapshot returns a deep copy of the whole store.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(s.data)
	if err != nil {
		s.log.WithField("error", err.Error()).Error("cant snapshot store")
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		s.log.WithField("error", err.Error()).Error("cant snapshot store")
		return map[string]any{}
	}
	return out
}

// persist rewrites the backing file. Callers hold s.mu. A failed write keeps
// the in-memory state authoritative until the next successful write.
func (s *Store) persist() {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		s.log.WithField("error", err.Error()).Error("cant marshal store")
		return
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(raw)); err != nil {
		s.log.WithField("error", err.Error()).Error("cant persist store")
	}
}
