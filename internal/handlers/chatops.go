package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/modguard/modguard/internal/platform"
	"github.com/modguard/modguard/internal/settings"
	"github.com/modguard/modguard/internal/stats"
)

const (
	cbShowStats      = "show_stats"
	cbShowSettings   = "show_settings"
	cbToggleAntispam = "toggle_antispam"
	cbToggleAntilink = "toggle_antilink"
	cbToggleWelcome  = "toggle_welcome"

	clearMaxMessages   = 100
	clearConcurrency   = 4
	clearSummaryLinger = 3 * time.Second
)

// ChatOps handles chat housekeeping: info queries, stats, bulk deletion,
// pinning and the settings panel.
type ChatOps struct {
	deps *Deps
}

func NewChatOps(deps *Deps) *ChatOps {
	return &ChatOps{deps: deps}
}

func (h *ChatOps) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u.CallbackQuery != nil {
		return h.handleCallback(ctx, u.CallbackQuery)
	}
	if u.Message == nil || chat == nil || user == nil || !u.Message.IsCommand() {
		return true, nil
	}
	m := u.Message

	switch m.Command() {
	case "userinfo", "chatinfo", "stats", "clear", "pin", "unpin", "settings", "setmaxwarns", "setwelcome":
	default:
		return true, nil
	}

	p := h.deps.Service.GetPlatform()
	if !isGroup(chat) {
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "This command only works in groups.")
	}
	if verdict := h.deps.Roles.RequireChatAdmin(ctx, chat.ID, user.ID, false); !verdict.Allow() {
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, denialText(verdict))
	}

	switch m.Command() {
	case "userinfo":
		target := user
		if t, err := extractTarget(m, nil); err == nil {
			target = t
		}
		member, err := p.GetMember(ctx, chat.ID, target.ID)
		if err != nil {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "Could not look up that user.")
		}
		warnCount := h.deps.Warns.Count(chat.ID, target.ID)
		maxWarns := h.deps.Settings.Int(chat.ID, settings.KeyMaxWarns)
		lines := []string{
			fmt.Sprintf("👤 %s", memberDisplay(member)),
			fmt.Sprintf("ID: %d", member.UserID),
			fmt.Sprintf("Status: %s", member.Status),
			fmt.Sprintf("Warnings: %d/%d", warnCount, maxWarns),
		}
		if h.deps.Admins.Has(target.ID) {
			lines = append(lines, "Bot admin: yes")
		}
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, strings.Join(lines, "\n"))

	case "chatinfo":
		count, err := p.MemberCount(ctx, chat.ID)
		if err != nil {
			return false, err
		}
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, strings.Join([]string{
			fmt.Sprintf("💬 %s", chat.Title),
			fmt.Sprintf("ID: %d", chat.ID),
			fmt.Sprintf("Type: %s", chat.Type),
			fmt.Sprintf("Members: %d", count),
		}, "\n"))

	case "stats":
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, h.renderStats(chat.ID))

	case "clear":
		n, err := strconv.Atoi(strings.TrimSpace(m.CommandArguments()))
		if err != nil || n < 1 || n > clearMaxMessages {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("Usage: /clear <1..%d>", clearMaxMessages))
		}
		return false, h.clearMessages(ctx, chat.ID, m.MessageID, n)

	case "pin":
		if m.ReplyToMessage == nil {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "Reply to the message you want to pin.")
		}
		if err := p.PinMessage(ctx, chat.ID, m.ReplyToMessage.MessageID); err != nil {
			return false, err
		}
		return false, nil

	case "unpin":
		return false, p.UnpinMessage(ctx, chat.ID)

	case "settings":
		msg := api.NewMessage(chat.ID, h.renderSettings(chat.ID))
		kb := h.settingsKeyboard(chat.ID)
		msg.ReplyMarkup = kb
		_, err := h.deps.Service.GetBot().Send(msg)
		return false, err

	case "setmaxwarns":
		n, err := strconv.Atoi(strings.TrimSpace(m.CommandArguments()))
		if err != nil || n < 1 || n > 10 {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "Usage: /setmaxwarns <1..10>")
		}
		h.deps.Settings.Set(chat.ID, settings.KeyMaxWarns, n)
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("Members are now banned after %d warnings.", n))

	case "setwelcome":
		text := strings.TrimSpace(m.CommandArguments())
		if text == "" {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "Usage: /setwelcome <text>, {user} and {chat} are substituted.")
		}
		h.deps.Settings.Set(chat.ID, settings.KeyWelcomeMessage, text)
		h.deps.Settings.Set(chat.ID, settings.KeyWelcomeEnabled, true)
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "Welcome message updated and enabled.")
	}
	return true, nil
}

func (h *ChatOps) handleCallback(ctx context.Context, cq *api.CallbackQuery) (bool, error) {
	switch cq.Data {
	case cbShowStats, cbShowSettings, cbToggleAntispam, cbToggleAntilink, cbToggleWelcome:
	default:
		return true, nil
	}
	if cq.Message == nil {
		return false, nil
	}
	b := h.deps.Service.GetBot()
	chatID := cq.Message.Chat.ID

	if verdict := h.deps.Roles.RequireChatAdmin(ctx, chatID, cq.From.ID, cq.Message.Chat.IsPrivate()); !verdict.Allow() {
		_, _ = b.Request(api.NewCallback(cq.ID, "No access"))
		return false, nil
	}

	switch cq.Data {
	case cbToggleAntispam:
		h.deps.Settings.Set(chatID, settings.KeyAntispamEnabled, !h.deps.Settings.Bool(chatID, settings.KeyAntispamEnabled))
	case cbToggleAntilink:
		h.deps.Settings.Set(chatID, settings.KeyAntilinkEnabled, !h.deps.Settings.Bool(chatID, settings.KeyAntilinkEnabled))
	case cbToggleWelcome:
		h.deps.Settings.Set(chatID, settings.KeyWelcomeEnabled, !h.deps.Settings.Bool(chatID, settings.KeyWelcomeEnabled))
	}

	var text string
	if cq.Data == cbShowStats {
		text = h.renderStats(chatID)
	} else {
		text = h.renderSettings(chatID)
	}
	edit := api.NewEditMessageText(chatID, cq.Message.MessageID, text)
	kb := h.settingsKeyboard(chatID)
	edit.ReplyMarkup = &kb
	if _, err := b.Send(edit); err != nil {
		return false, err
	}
	_, _ = b.Request(api.NewCallback(cq.ID, ""))
	return false, nil
}

// clearMessages removes the n messages preceding the command, then the
// command itself, and leaves a short-lived summary. Individual deletions may
// fail for messages older than the platform allows; those are skipped.
func (h *ChatOps) clearMessages(ctx context.Context, chatID int64, commandID, n int) error {
	p := h.deps.Service.GetPlatform()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(clearConcurrency)
	deleted := make([]bool, n)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := p.DeleteMessage(gctx, chatID, commandID-1-i); err == nil {
				deleted[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	removed := 0
	for _, ok := range deleted {
		if ok {
			removed++
		}
	}
	h.deps.Stats.IncrementBy(chatID, stats.DeletedMessages, int64(removed))
	_ = p.DeleteMessage(ctx, chatID, commandID)

	sent, err := h.deps.Service.GetBot().Send(api.NewMessage(chatID, fmt.Sprintf("🧹 Deleted %d messages.", removed)))
	if err != nil {
		return err
	}
	time.AfterFunc(clearSummaryLinger, func() {
		_ = p.DeleteMessage(context.Background(), chatID, sent.MessageID)
	})
	h.getLogEntry().WithFields(log.Fields{"chat_id": chatID, "requested": n, "deleted": removed}).Info("bulk delete")
	return nil
}

func (h *ChatOps) renderStats(chatID int64) string {
	counters := h.deps.Stats.Get(chatID)
	lines := make([]string, 0, len(stats.Counters)+1)
	lines = append(lines, "📊 Chat statistics:")
	for _, name := range stats.Counters {
		lines = append(lines, fmt.Sprintf("• %s: %d", strings.ReplaceAll(name, "_", " "), counters[name]))
	}
	return strings.Join(lines, "\n")
}

func (h *ChatOps) renderSettings(chatID int64) string {
	s := h.deps.Settings
	return strings.Join([]string{
		"⚙️ Chat settings:",
		fmt.Sprintf("• Max warnings: %d", s.Int(chatID, settings.KeyMaxWarns)),
		fmt.Sprintf("• Warn expiry: %d days", s.Int(chatID, settings.KeyWarnExpireDays)),
		fmt.Sprintf("• Antispam: %s (%d msgs / %ds)", onOff(s.Bool(chatID, settings.KeyAntispamEnabled)),
			s.Int(chatID, settings.KeyAntispamMessages), s.Int(chatID, settings.KeyAntispamSeconds)),
		fmt.Sprintf("• Antilink: %s", onOff(s.Bool(chatID, settings.KeyAntilinkEnabled))),
		fmt.Sprintf("• Welcome: %s", onOff(s.Bool(chatID, settings.KeyWelcomeEnabled))),
		fmt.Sprintf("• Goodbye: %s", onOff(s.Bool(chatID, settings.KeyGoodbyeEnabled))),
	}, "\n")
}

func (h *ChatOps) settingsKeyboard(chatID int64) api.InlineKeyboardMarkup {
	s := h.deps.Settings
	return api.NewInlineKeyboardMarkup(
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData(fmt.Sprintf("%s Antispam", toggleEmoji(s.Bool(chatID, settings.KeyAntispamEnabled))), cbToggleAntispam),
			api.NewInlineKeyboardButtonData(fmt.Sprintf("%s Antilink", toggleEmoji(s.Bool(chatID, settings.KeyAntilinkEnabled))), cbToggleAntilink),
		),
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData(fmt.Sprintf("%s Welcome", toggleEmoji(s.Bool(chatID, settings.KeyWelcomeEnabled))), cbToggleWelcome),
			api.NewInlineKeyboardButtonData("📊 Stats", cbShowStats),
			api.NewInlineKeyboardButtonData("⚙️ Settings", cbShowSettings),
		),
	)
}

func memberDisplay(m platform.Member) string {
	if m.UserName != "" {
		return "@" + m.UserName
	}
	name := strings.TrimSpace(m.FirstName + " " + m.LastName)
	if name == "" {
		return strconv.FormatInt(m.UserID, 10)
	}
	return name
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func toggleEmoji(b bool) string {
	if b {
		return "✅"
	}
	return "❌"
}

func (h *ChatOps) getLogEntry() *log.Entry {
	return log.WithField("context", "chatops")
}
