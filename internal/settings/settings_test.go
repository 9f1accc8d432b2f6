package settings

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/modguard/modguard/internal/store"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	return New(store.Open(path)), path
}

func TestDefaultsApplyWithoutOverrides(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)

	if got := s.Int(100, KeyMaxWarns); got != 3 {
		t.Fatalf("unexpected default max_warns: %d", got)
	}
	if !s.Bool(100, KeyAntispamEnabled) {
		t.Fatalf("expected antispam enabled by default")
	}
	if s.Get(100, "no_such_key") != nil {
		t.Fatalf("expected nil for unknown key")
	}
}

func TestOverridesWinAndSurviveReopen(t *testing.T) {
	t.Parallel()

	s, path := newStore(t)
	s.Set(100, KeyMaxWarns, 5)
	s.Set(100, KeyAntilinkEnabled, true)

	if got := s.Int(100, KeyMaxWarns); got != 5 {
		t.Fatalf("override not applied: %d", got)
	}
	// Other chats stay on defaults.
	if got := s.Int(200, KeyMaxWarns); got != 3 {
		t.Fatalf("override leaked into other chat: %d", got)
	}

	reopened := New(store.Open(path))
	if got := reopened.Int(100, KeyMaxWarns); got != 5 {
		t.Fatalf("override lost on reopen: %d", got)
	}
	if !reopened.Bool(100, KeyAntilinkEnabled) {
		t.Fatalf("bool override lost on reopen")
	}
}

func TestGetAllMergesAndResetReverts(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	s.Set(100, KeyMaxWarns, 7)

	effective := s.GetAll(100)
	if len(effective) != len(Defaults) {
		t.Fatalf("expected every default key present, got %d of %d", len(effective), len(Defaults))
	}
	if effective[KeyMaxWarns] != 7 {
		t.Fatalf("override missing from GetAll: %v", effective[KeyMaxWarns])
	}
	if effective[KeyAntispamMessages] != Defaults[KeyAntispamMessages] {
		t.Fatalf("default missing from GetAll: %v", effective[KeyAntispamMessages])
	}

	s.Reset(100)
	if !reflect.DeepEqual(s.GetAll(100), Defaults) {
		t.Fatalf("expected raw defaults after reset, got %v", s.GetAll(100))
	}
}
