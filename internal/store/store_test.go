package store

import (
	"os"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.json")
	return Open(path), path
}

func TestGetSetDelete(t *testing.T) {
	t.Parallel()

	s, _ := tempStore(t)

	if got := s.Get("missing", "fallback"); got != "fallback" {
		t.Fatalf("expected default for missing key, got %v", got)
	}

	s.Set("greeting", "hello")
	if got := s.Get("greeting", nil); got != "hello" {
		t.Fatalf("unexpected value: %v", got)
	}

	if !s.Delete("greeting") {
		t.Fatalf("expected delete to report existing key")
	}
	if s.Delete("greeting") {
		t.Fatalf("expected delete of absent key to report false")
	}
}

func TestPersistAcrossReopen(t *testing.T) {
	t.Parallel()

	s, path := tempStore(t)
	s.Set("chat", map[string]any{"max_warns": 5})

	reopened := Open(path)
	var settings map[string]int
	if !reopened.Decode("chat", &settings) {
		t.Fatalf("expected decodable value after reopen")
	}
	if settings["max_warns"] != 5 {
		t.Fatalf("unexpected settings after reopen: %v", settings)
	}
}

func TestMalformedFileFallsBackToEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s := Open(path)
	if got := s.Get("anything", nil); got != nil {
		t.Fatalf("expected empty store after malformed load, got %v", got)
	}

	// The store must stay writable after recovery.
	s.Set("key", "value")
	if got := Open(path).Get("key", nil); got != "value" {
		t.Fatalf("expected recovered store to persist, got %v", got)
	}
}

func TestNestedPaths(t *testing.T) {
	t.Parallel()

	s, _ := tempStore(t)

	if got := s.GetPath(0, "100", "bans"); got != 0 {
		t.Fatalf("expected default on missing path, got %v", got)
	}

	s.SetPath(3, "100", "bans")
	s.SetPath(7, "100", "kicks")
	s.SetPath(1, "200", "bans")

	if got := s.GetPath(0, "100", "bans"); got != 3 {
		t.Fatalf("unexpected nested value: %v", got)
	}
	if got := s.GetPath(0, "100", "kicks"); got != 7 {
		t.Fatalf("sibling path clobbered: %v", got)
	}
	if got := s.GetPath(0, "200", "bans"); got != 1 {
		t.Fatalf("unexpected nested value for second chat: %v", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	s, _ := tempStore(t)
	s.Set("a", "original")

	snap := s.Snapshot()
	snap["a"] = "mutated"

	if got := s.Get("a", nil); got != "original" {
		t.Fatalf("snapshot mutation leaked into store: %v", got)
	}
}

func TestLockRejectsSecondHolder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	defer func() { _ = first.Release() }()

	if _, err := AcquireLock(dir); err == nil {
		t.Fatalf("expected second lock acquisition to fail")
	}

	if err := first.Release(); err != nil {
		t.Fatalf("release lock: %v", err)
	}
	second, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("expected lock to be available after release: %v", err)
	}
	_ = second.Release()
}
