package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/modguard/modguard/internal/observability"
	"github.com/modguard/modguard/internal/settings"
	"github.com/modguard/modguard/internal/stats"
)

const defaultMuteDuration = time.Hour

// Moderation carries the manual punishment commands: warns with automatic
// ban escalation, mutes, bans and kicks.
type Moderation struct {
	deps *Deps
}

func NewModeration(deps *Deps) *Moderation {
	return &Moderation{deps: deps}
}

func (h *Moderation) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u.Message == nil || chat == nil || user == nil || !u.Message.IsCommand() {
		return true, nil
	}
	m := u.Message

	switch m.Command() {
	case "warn", "unwarn", "warns", "clearwarns", "mute", "unmute", "ban", "unban", "kick":
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

	target, err := extractTarget(m, func(chatID, userID int64) (*api.User, error) {
		member, err := p.GetMember(ctx, chatID, userID)
		if err != nil {
			return nil, err
		}
		return &api.User{ID: member.UserID, FirstName: member.FirstName, LastName: member.LastName, UserName: member.UserName, IsBot: member.IsBot}, nil
	})
	if err != nil {
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "Reply to a user or pass their ID.")
	}

	switch m.Command() {
	case "warn", "mute", "ban", "kick":
		// admins punish, they are not punished
		if h.deps.Admins.Has(target.ID) || h.deps.Roles.IsChatAdmin(ctx, chat.ID, target.ID) {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "Admins cannot be targeted.")
		}
	}

	switch m.Command() {
	case "warn":
		reason := commandReason(m)
		if reason == "" {
			reason = "no reason given"
		}
		count := h.deps.Warns.Add(chat.ID, target.ID, reason, user.ID)
		h.deps.Stats.Increment(chat.ID, stats.WarnsGiven)
		maxWarns := h.deps.Settings.Int(chat.ID, settings.KeyMaxWarns)
		observability.AuditEvent("warn",
			zap.Int64("chat_id", chat.ID),
			zap.Int64("user_id", target.ID),
			zap.Int64("by", user.ID),
			zap.String("reason", reason),
			zap.Int("count", count),
		)
		if count >= maxWarns {
			if err := p.BanMember(ctx, chat.ID, target.ID); err != nil {
				return false, err
			}
			h.deps.Stats.Increment(chat.ID, stats.Bans)
			observability.ActionTaken("ban")
			observability.AuditEvent("auto_ban",
				zap.Int64("chat_id", chat.ID),
				zap.Int64("user_id", target.ID),
				zap.Int("warns", count),
			)
			h.getLogEntry().WithFields(log.Fields{"chat_id": chat.ID, "user_id": target.ID, "warns": count}).Info("warn limit reached, banned")
			return false, p.SendMessage(ctx, chat.ID,
				fmt.Sprintf("🚫 %s reached %d/%d warnings and was banned.", userDisplay(target), count, maxWarns))
		}
		observability.ActionTaken("warn")
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID,
			fmt.Sprintf("⚠️ %s warned (%d/%d). Reason: %s", userDisplay(target), count, maxWarns, reason))

	case "unwarn":
		if !h.deps.Warns.RemoveLast(chat.ID, target.ID) {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("%s has no warnings.", userDisplay(target)))
		}
		count := h.deps.Warns.Count(chat.ID, target.ID)
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID,
			fmt.Sprintf("Removed the last warning. %s now has %d.", userDisplay(target), count))

	case "warns":
		records := h.deps.Warns.List(chat.ID, target.ID)
		if len(records) == 0 {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("%s has no warnings.", userDisplay(target)))
		}
		maxWarns := h.deps.Settings.Int(chat.ID, settings.KeyMaxWarns)
		lines := make([]string, 0, len(records)+1)
		lines = append(lines, fmt.Sprintf("Warnings for %s (%d/%d):", userDisplay(target), len(records), maxWarns))
		for i, r := range records {
			when := r.Date.Format("02.01.2006")
			lines = append(lines, fmt.Sprintf("%d. %s — %s", i+1, when, r.Reason))
		}
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, strings.Join(lines, "\n"))

	case "clearwarns":
		removed := h.deps.Warns.Clear(chat.ID, target.ID)
		if removed == 0 {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("%s has no warnings.", userDisplay(target)))
		}
		observability.AuditEvent("warns_cleared",
			zap.Int64("chat_id", chat.ID),
			zap.Int64("user_id", target.ID),
			zap.Int64("by", user.ID),
			zap.Int("removed", removed),
		)
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID,
			fmt.Sprintf("Cleared %d warnings for %s.", removed, userDisplay(target)))

	case "mute":
		duration := defaultMuteDuration
		args := strings.Fields(m.CommandArguments())
		if len(args) > 0 {
			if d, err := parseDuration(args[len(args)-1]); err == nil {
				duration = d
			}
		}
		if err := p.MuteMember(ctx, chat.ID, target.ID, time.Now().Add(duration)); err != nil {
			return false, err
		}
		h.deps.Stats.Increment(chat.ID, stats.Mutes)
		observability.ActionTaken("mute")
		observability.AuditEvent("mute",
			zap.Int64("chat_id", chat.ID),
			zap.Int64("user_id", target.ID),
			zap.Int64("by", user.ID),
			zap.Duration("duration", duration),
		)
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID,
			fmt.Sprintf("🔇 %s muted for %s.", userDisplay(target), formatDuration(duration)))

	case "unmute":
		if err := p.UnmuteMember(ctx, chat.ID, target.ID); err != nil {
			return false, err
		}
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("🔊 %s unmuted.", userDisplay(target)))

	case "ban":
		if err := p.BanMember(ctx, chat.ID, target.ID); err != nil {
			return false, err
		}
		h.deps.Stats.Increment(chat.ID, stats.Bans)
		observability.ActionTaken("ban")
		observability.AuditEvent("ban",
			zap.Int64("chat_id", chat.ID),
			zap.Int64("user_id", target.ID),
			zap.Int64("by", user.ID),
		)
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("🚫 %s banned.", userDisplay(target)))

	case "unban":
		if err := p.UnbanMember(ctx, chat.ID, target.ID, true); err != nil {
			return false, err
		}
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("%s unbanned.", userDisplay(target)))

	case "kick":
		if err := p.BanMember(ctx, chat.ID, target.ID); err != nil {
			return false, err
		}
		// unban right away so they may return via invite link
		if err := p.UnbanMember(ctx, chat.ID, target.ID, false); err != nil {
			return false, err
		}
		h.deps.Stats.Increment(chat.ID, stats.Kicks)
		observability.ActionTaken("kick")
		observability.AuditEvent("kick",
			zap.Int64("chat_id", chat.ID),
			zap.Int64("user_id", target.ID),
			zap.Int64("by", user.ID),
		)
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("👢 %s kicked.", userDisplay(target)))
	}
	return true, nil
}

// commandReason strips the numeric target ID, when present, off the command
// arguments and returns the rest as the free-text reason.
func commandReason(m *api.Message) string {
	args := strings.Fields(m.CommandArguments())
	if m.ReplyToMessage == nil && len(args) > 0 {
		if _, err := strconv.ParseInt(args[0], 10, 64); err == nil {
			args = args[1:]
		}
	}
	return strings.TrimSpace(strings.Join(args, " "))
}

func (h *Moderation) getLogEntry() *log.Entry {
	return log.WithField("context", "moderation")
}
