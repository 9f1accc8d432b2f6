package handlers

import (
	"context"
	"strings"
	"testing"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/modguard/modguard/internal/platform"
	"github.com/modguard/modguard/internal/settings"
	"github.com/modguard/modguard/internal/stats"
)

func TestSetMaxWarnsValidatesRange(t *testing.T) {
	t.Parallel()

	p := newFakePlatform()
	deps := newTestDeps(t, p)
	deps.Admins.Add(1)
	h := NewChatOps(deps)

	chat := groupChat(-100500)
	admin := &api.User{ID: 1}
	ctx := context.Background()

	for _, bad := range []string{"/setmaxwarns", "/setmaxwarns 0", "/setmaxwarns 11", "/setmaxwarns lots"} {
		if _, err := h.Handle(ctx, commandUpdate(chat, admin, bad, nil), chat, admin); err != nil {
			t.Fatalf("%s: %v", bad, err)
		}
		if got := deps.Settings.Int(chat.ID, settings.KeyMaxWarns); got != 3 {
			t.Fatalf("%s: max_warns changed to %d", bad, got)
		}
	}

	if _, err := h.Handle(ctx, commandUpdate(chat, admin, "/setmaxwarns 5", nil), chat, admin); err != nil {
		t.Fatalf("setmaxwarns 5: %v", err)
	}
	if got := deps.Settings.Int(chat.ID, settings.KeyMaxWarns); got != 5 {
		t.Errorf("max_warns = %d, want 5", got)
	}
}

func TestSetWelcomeEnablesGreeting(t *testing.T) {
	t.Parallel()

	p := newFakePlatform()
	deps := newTestDeps(t, p)
	deps.Admins.Add(1)
	h := NewChatOps(deps)

	chat := groupChat(-100500)
	admin := &api.User{ID: 1}

	u := commandUpdate(chat, admin, "/setwelcome Hello {user}, welcome to {chat}!", nil)
	if _, err := h.Handle(context.Background(), u, chat, admin); err != nil {
		t.Fatalf("setwelcome: %v", err)
	}
	if !deps.Settings.Bool(chat.ID, settings.KeyWelcomeEnabled) {
		t.Error("welcome should be enabled after /setwelcome")
	}
	if got := deps.Settings.Text(chat.ID, settings.KeyWelcomeMessage); !strings.Contains(got, "{user}") {
		t.Errorf("welcome template = %q", got)
	}
}

func TestUserInfoShowsWarnCount(t *testing.T) {
	t.Parallel()

	p := newFakePlatform()
	deps := newTestDeps(t, p)
	deps.Admins.Add(1)
	h := NewChatOps(deps)

	chat := groupChat(-100500)
	admin := &api.User{ID: 1}
	subject := &api.User{ID: 42}
	p.members[subject.ID] = platform.Member{UserID: subject.ID, Status: platform.StatusMember, UserName: "subject"}
	deps.Warns.Add(chat.ID, subject.ID, "spam", admin.ID)

	if _, err := h.Handle(context.Background(), commandUpdate(chat, admin, "/userinfo", subject), chat, admin); err != nil {
		t.Fatalf("userinfo: %v", err)
	}
	reply := p.replies[len(p.replies)-1]
	for _, want := range []string{"@subject", "1/3", "member"} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply missing %q: %s", want, reply)
		}
	}
}

func TestStatsReportsAllCounters(t *testing.T) {
	t.Parallel()

	p := newFakePlatform()
	deps := newTestDeps(t, p)
	deps.Admins.Add(1)
	h := NewChatOps(deps)

	chat := groupChat(-100500)
	admin := &api.User{ID: 1}
	deps.Stats.Increment(chat.ID, stats.Bans)

	if _, err := h.Handle(context.Background(), commandUpdate(chat, admin, "/stats", nil), chat, admin); err != nil {
		t.Fatalf("stats: %v", err)
	}
	reply := p.replies[len(p.replies)-1]
	if !strings.Contains(reply, "bans: 1") {
		t.Errorf("reply missing incremented counter: %s", reply)
	}
	// untouched counters still show as zero
	if !strings.Contains(reply, "kicks: 0") {
		t.Errorf("reply missing zero-filled counter: %s", reply)
	}
}
