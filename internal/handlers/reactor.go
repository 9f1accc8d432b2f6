package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/modguard/modguard/internal/config"
	"github.com/modguard/modguard/internal/observability"
	"github.com/modguard/modguard/internal/settings"
	"github.com/modguard/modguard/internal/stats"
	"github.com/modguard/modguard/internal/triggers"
)

// Reactor inspects every free-text group message: spam throttling first,
// then link filtering, then the forbidden-word list. Admins are exempt from
// all three. The pipeline acts on the first rule that matches.
type Reactor struct {
	deps *Deps
}

func NewReactor(deps *Deps) *Reactor {
	return &Reactor{deps: deps}
}

func (r *Reactor) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u.Message == nil || chat == nil || user == nil || !isGroup(chat) {
		return true, nil
	}
	m := u.Message
	if m.IsCommand() || user.IsBot {
		return true, nil
	}
	text := m.Text
	if text == "" {
		text = m.Caption
	}
	if text == "" {
		return true, nil
	}

	observability.MessageInspected()
	p := r.deps.Service.GetPlatform()

	// liveness ping, anyone may ask
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "bot", "бот":
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "🤖 At your service.")
	}

	if r.deps.Admins.Has(user.ID) || r.deps.Roles.IsChatAdmin(ctx, chat.ID, user.ID) {
		return true, nil
	}

	s := r.deps.Settings
	if s.Bool(chat.ID, settings.KeyAntispamEnabled) {
		window := time.Duration(s.Int(chat.ID, settings.KeyAntispamSeconds)) * time.Second
		if r.deps.Limiter.Check(chat.ID, user.ID, s.Int(chat.ID, settings.KeyAntispamMessages), window) {
			return false, r.punishSpam(ctx, chat, user, m)
		}
	}

	if s.Bool(chat.ID, settings.KeyAntilinkEnabled) && hasLinks(text) {
		if err := p.DeleteMessage(ctx, chat.ID, m.MessageID); err != nil {
			return false, r.reportNoRights(ctx, chat.ID, err)
		}
		r.deps.Stats.Increment(chat.ID, stats.LinksBlocked)
		r.deps.Stats.Increment(chat.ID, stats.DeletedMessages)
		observability.ActionTaken("link_delete")
		observability.AuditEvent("link_deleted",
			zap.Int64("chat_id", chat.ID),
			zap.Int64("user_id", user.ID),
		)
		return false, p.SendMessage(ctx, chat.ID, fmt.Sprintf("🔗 %s, links are not allowed here.", userDisplay(user)))
	}

	if matches := r.deps.Triggers.FindAll(text); len(matches) > 0 {
		if err := p.DeleteMessage(ctx, chat.ID, m.MessageID); err != nil {
			return false, r.reportNoRights(ctx, chat.ID, err)
		}
		r.deps.Stats.Increment(chat.ID, stats.DeletedMessages)
		observability.ActionTaken("word_delete")
		censored := make([]string, 0, len(matches))
		for _, w := range matches {
			censored = append(censored, triggers.Censor(w))
		}
		observability.AuditEvent("word_deleted",
			zap.Int64("chat_id", chat.ID),
			zap.Int64("user_id", user.ID),
			zap.Strings("words", censored),
		)
		r.getLogEntry().WithFields(log.Fields{"chat_id": chat.ID, "user_id": user.ID, "words": censored}).Info("message deleted")
		return false, p.SendMessage(ctx, chat.ID,
			fmt.Sprintf("🚯 %s, watch your language: %s", userDisplay(user), strings.Join(censored, ", ")))
	}

	return true, nil
}

func (r *Reactor) punishSpam(ctx context.Context, chat *api.Chat, user *api.User, m *api.Message) error {
	p := r.deps.Service.GetPlatform()
	if err := p.DeleteMessage(ctx, chat.ID, m.MessageID); err != nil {
		return r.reportNoRights(ctx, chat.ID, err)
	}
	muteFor := config.Get().AntiSpam.MuteDuration
	if err := p.MuteMember(ctx, chat.ID, user.ID, time.Now().Add(muteFor)); err != nil {
		return err
	}
	r.deps.Limiter.Reset(chat.ID, user.ID)
	r.deps.Stats.Increment(chat.ID, stats.SpamBlocked)
	r.deps.Stats.Increment(chat.ID, stats.Mutes)
	observability.ActionTaken("spam_mute")
	observability.AuditEvent("spam_muted",
		zap.Int64("chat_id", chat.ID),
		zap.Int64("user_id", user.ID),
		zap.Duration("duration", muteFor),
	)
	r.getLogEntry().WithFields(log.Fields{"chat_id": chat.ID, "user_id": user.ID}).Info("spam muted")
	return p.SendMessage(ctx, chat.ID,
		fmt.Sprintf("🤫 %s is muted for %s for flooding.", userDisplay(user), formatDuration(muteFor)))
}

// reportNoRights tells the chat the bot lacks deletion rights instead of
// failing the whole pipeline.
func (r *Reactor) reportNoRights(ctx context.Context, chatID int64, cause error) error {
	r.getLogEntry().WithField("error", cause.Error()).Warn("delete failed")
	return r.deps.Service.GetPlatform().SendMessage(ctx, chatID,
		"I need the \"Delete messages\" admin right to do my job here.")
}

func (r *Reactor) getLogEntry() *log.Entry {
	return log.WithField("context", "reactor")
}
