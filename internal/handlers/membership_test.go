package handlers

import (
	"context"
	"testing"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/modguard/modguard/internal/settings"
)

func joinUpdate(chat *api.Chat, joined ...api.User) *api.Update {
	return &api.Update{Message: &api.Message{
		MessageID:      300,
		Chat:           *chat,
		From:           &joined[0],
		Date:           int(time.Now().Unix()),
		NewChatMembers: joined,
	}}
}

func TestWelcomeDisabledByDefault(t *testing.T) {
	t.Parallel()

	p := newFakePlatform()
	deps := newTestDeps(t, p)
	h := NewMembership(deps)

	chat := groupChat(-100500)
	u := joinUpdate(chat, api.User{ID: 42, FirstName: "New"})
	if _, err := h.Handle(context.Background(), u, chat, &api.User{ID: 42}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(p.sent) != 0 {
		t.Fatalf("no greeting expected, got %v", p.sent)
	}
}

func TestWelcomeSubstitutesTemplate(t *testing.T) {
	t.Parallel()

	p := newFakePlatform()
	deps := newTestDeps(t, p)
	deps.Settings.Set(-100500, settings.KeyWelcomeEnabled, true)
	deps.Settings.Set(-100500, settings.KeyWelcomeMessage, "Hello {user}, this is {chat}")
	h := NewMembership(deps)

	chat := groupChat(-100500)
	u := joinUpdate(chat, api.User{ID: 42, UserName: "newcomer"})
	if _, err := h.Handle(context.Background(), u, chat, &api.User{ID: 42}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(p.sent) != 1 {
		t.Fatalf("expected one greeting, got %d", len(p.sent))
	}
	if want := "Hello @newcomer, this is test group"; p.sent[0] != want {
		t.Errorf("greeting = %q, want %q", p.sent[0], want)
	}
}

func TestBotsAreNotGreeted(t *testing.T) {
	t.Parallel()

	p := newFakePlatform()
	deps := newTestDeps(t, p)
	deps.Settings.Set(-100500, settings.KeyWelcomeEnabled, true)
	h := NewMembership(deps)

	chat := groupChat(-100500)
	u := joinUpdate(chat, api.User{ID: 43, IsBot: true, UserName: "somebot"})
	if _, err := h.Handle(context.Background(), u, chat, &api.User{ID: 43}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(p.sent) != 0 {
		t.Fatalf("bots must not be greeted, got %v", p.sent)
	}
}

func TestGoodbyeWhenEnabled(t *testing.T) {
	t.Parallel()

	p := newFakePlatform()
	deps := newTestDeps(t, p)
	deps.Settings.Set(-100500, settings.KeyGoodbyeEnabled, true)
	h := NewMembership(deps)

	chat := groupChat(-100500)
	left := &api.User{ID: 44, UserName: "leaver"}
	u := &api.Update{Message: &api.Message{
		MessageID:      301,
		Chat:           *chat,
		From:           left,
		Date:           int(time.Now().Unix()),
		LeftChatMember: left,
	}}
	if _, err := h.Handle(context.Background(), u, chat, left); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(p.sent) != 1 {
		t.Fatalf("expected one goodbye, got %d", len(p.sent))
	}
}
