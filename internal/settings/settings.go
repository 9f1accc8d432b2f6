// Package settings is the per-chat policy overlay. Storage holds only
// overrides; every read falls through to the fixed defaults.
package settings

import (
	"strconv"
	"sync"

	"github.com/modguard/modguard/internal/store"
)

const (
	KeyMaxWarns         = "max_warns"
	KeyWarnExpireDays   = "warn_expire_days"
	KeyAntispamEnabled  = "antispam_enabled"
	KeyAntispamMessages = "antispam_messages"
	KeyAntispamSeconds  = "antispam_seconds"
	KeyAntilinkEnabled  = "antilink_enabled"
	KeyWelcomeEnabled   = "welcome_enabled"
	KeyWelcomeMessage   = "welcome_message"
	KeyGoodbyeEnabled   = "goodbye_enabled"
	KeyGoodbyeMessage   = "goodbye_message"
)

var Defaults = map[string]any{
	KeyMaxWarns:         3,
	KeyWarnExpireDays:   30,
	KeyAntispamEnabled:  true,
	KeyAntispamMessages: 5,
	KeyAntispamSeconds:  10,
	KeyAntilinkEnabled:  false,
	KeyWelcomeEnabled:   false,
	KeyWelcomeMessage:   "👋 Welcome, {user}!",
	KeyGoodbyeEnabled:   false,
	KeyGoodbyeMessage:   "👋 {user} left the chat",
}

type Store struct {
	mu sync.Mutex
	kv *store.Store
}

func New(kv *store.Store) *Store {
	return &Store{kv: kv}
}

// Get returns the effective value for key, or nil for unknown keys.
func (s *Store) Get(chatID int64, key string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.overrides(chatID)[key]; ok {
		return v
	}
	return Defaults[key]
}

func (s *Store) Set(chatID int64, key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	overrides := s.overrides(chatID)
	overrides[key] = value
	s.kv.Set(chatKey(chatID), overrides)
}

// GetAll returns every default key with overrides applied on top.
func (s *Store) GetAll(chatID int64) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	effective := make(map[string]any, len(Defaults))
	for k, v := range Defaults {
		effective[k] = v
	}
	for k, v := range s.overrides(chatID) {
		effective[k] = v
	}
	return effective
}

// Reset drops the chat's override record, reverting it to defaults.
func (s *Store) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv.Delete(chatKey(chatID))
}

func (s *Store) Int(chatID int64, key string) int {
	return asInt(s.Get(chatID, key))
}

func (s *Store) Bool(chatID int64, key string) bool {
	v, _ := s.Get(chatID, key).(bool)
	return v
}

func (s *Store) Text(chatID int64, key string) string {
	v, _ := s.Get(chatID, key).(string)
	return v
}

func (s *Store) overrides(chatID int64) map[string]any {
	overrides := map[string]any{}
	s.kv.Decode(chatKey(chatID), &overrides)
	return overrides
}

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// asInt normalizes the numeric shapes a JSON round trip can produce.
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
