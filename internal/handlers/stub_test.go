package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"

	"github.com/modguard/modguard/internal/admins"
	"github.com/modguard/modguard/internal/antispam"
	"github.com/modguard/modguard/internal/confirm"
	"github.com/modguard/modguard/internal/platform"
	"github.com/modguard/modguard/internal/roles"
	"github.com/modguard/modguard/internal/settings"
	"github.com/modguard/modguard/internal/stats"
	"github.com/modguard/modguard/internal/store"
	"github.com/modguard/modguard/internal/triggers"
	"github.com/modguard/modguard/internal/warns"
)

type fakePlatform struct {
	members map[int64]platform.Member

	deleted  []int
	banned   []int64
	unbanned []int64
	muted    []int64
	unmuted  []int64
	sent      []string
	replies   []string
	documents []string

	failDelete bool
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{members: map[int64]platform.Member{}}
}

func (f *fakePlatform) GetMember(_ context.Context, _, userID int64) (platform.Member, error) {
	if m, ok := f.members[userID]; ok {
		return m, nil
	}
	return platform.Member{UserID: userID, Status: platform.StatusMember}, nil
}

func (f *fakePlatform) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	if f.failDelete {
		return errors.New("not enough rights")
	}
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakePlatform) BanMember(_ context.Context, _, userID int64) error {
	f.banned = append(f.banned, userID)
	return nil
}

func (f *fakePlatform) UnbanMember(_ context.Context, _, userID int64, _ bool) error {
	f.unbanned = append(f.unbanned, userID)
	return nil
}

func (f *fakePlatform) MuteMember(_ context.Context, _, userID int64, _ time.Time) error {
	f.muted = append(f.muted, userID)
	return nil
}

func (f *fakePlatform) UnmuteMember(_ context.Context, _, userID int64) error {
	f.unmuted = append(f.unmuted, userID)
	return nil
}

func (f *fakePlatform) SendMessage(_ context.Context, _ int64, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakePlatform) ReplyTo(_ context.Context, _ int64, _ int, text string) error {
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakePlatform) SendDocument(_ context.Context, _ int64, name string, data []byte, _ string) error {
	f.documents = append(f.documents, name+":"+string(data))
	return nil
}

func (f *fakePlatform) PinMessage(_ context.Context, _ int64, _ int) error  { return nil }
func (f *fakePlatform) UnpinMessage(_ context.Context, _ int64) error       { return nil }
func (f *fakePlatform) MemberCount(_ context.Context, _ int64) (int, error) { return 2, nil }

type fakeService struct {
	platform platform.ChatPlatform
}

func (s *fakeService) GetBot() *api.BotAPI             { return nil }
func (s *fakeService) GetPlatform() platform.ChatPlatform { return s.platform }

func newTestDeps(t *testing.T, p *fakePlatform) *Deps {
	t.Helper()
	dir, err := os.MkdirTemp("", "handlers")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	roster := admins.NewRoster(store.Open(filepath.Join(dir, "admins.json")))
	return &Deps{
		Service:  &fakeService{platform: p},
		Roles:    roles.NewResolver(roster, p),
		Admins:   roster,
		Settings: settings.New(store.Open(filepath.Join(dir, "settings.json"))),
		Warns:    warns.NewLedger(store.Open(filepath.Join(dir, "warns.json"))),
		Stats:    stats.NewTracker(store.Open(filepath.Join(dir, "stats.json"))),
		Triggers: triggers.Load(filepath.Join(dir, "trigger.txt")),
		Limiter:  antispam.NewLimiter(),
		Confirm:  confirm.NewTracker(),
	}
}

func groupChat(id int64) *api.Chat {
	return &api.Chat{ID: id, Type: "supergroup", Title: "test group"}
}

// commandUpdate builds an update whose message parses as a bot command.
func commandUpdate(chat *api.Chat, from *api.User, text string, replyTo *api.User) *api.Update {
	cmdLen := len(text)
	for i, r := range text {
		if r == ' ' {
			cmdLen = i
			break
		}
	}
	msg := &api.Message{
		MessageID: 100,
		Chat:      *chat,
		From:      from,
		Date:      int(time.Now().Unix()),
		Text:      text,
		Entities:  []api.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}
	if replyTo != nil {
		msg.ReplyToMessage = &api.Message{MessageID: 99, Chat: *chat, From: replyTo}
	}
	return &api.Update{Message: msg}
}

func textUpdate(chat *api.Chat, from *api.User, text string) *api.Update {
	return &api.Update{Message: &api.Message{
		MessageID: 200,
		Chat:      *chat,
		From:      from,
		Date:      int(time.Now().Unix()),
		Text:      text,
	}}
}
