package handlers

import (
	"context"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/modguard/modguard/internal/settings"
)

// Membership greets joining members and sees leaving ones off, when the chat
// has those messages enabled. Bots are never greeted.
type Membership struct {
	deps *Deps
}

func NewMembership(deps *Deps) *Membership {
	return &Membership{deps: deps}
}

func (h *Membership) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u.Message == nil || chat == nil || !isGroup(chat) {
		return true, nil
	}
	m := u.Message
	p := h.deps.Service.GetPlatform()

	if len(m.NewChatMembers) > 0 && h.deps.Settings.Bool(chat.ID, settings.KeyWelcomeEnabled) {
		template := h.deps.Settings.Text(chat.ID, settings.KeyWelcomeMessage)
		for i := range m.NewChatMembers {
			joined := &m.NewChatMembers[i]
			if joined.IsBot {
				continue
			}
			if err := p.SendMessage(ctx, chat.ID, renderTemplate(template, joined, chat)); err != nil {
				h.getLogEntry().WithField("error", err.Error()).Warn("welcome failed")
			}
		}
		return false, nil
	}

	if m.LeftChatMember != nil && h.deps.Settings.Bool(chat.ID, settings.KeyGoodbyeEnabled) {
		left := m.LeftChatMember
		if left.IsBot {
			return false, nil
		}
		template := h.deps.Settings.Text(chat.ID, settings.KeyGoodbyeMessage)
		if err := p.SendMessage(ctx, chat.ID, renderTemplate(template, left, chat)); err != nil {
			h.getLogEntry().WithField("error", err.Error()).Warn("goodbye failed")
		}
		return false, nil
	}
	return true, nil
}

func renderTemplate(template string, u *api.User, chat *api.Chat) string {
	out := strings.ReplaceAll(template, "{user}", userDisplay(u))
	return strings.ReplaceAll(out, "{chat}", chat.Title)
}

func (h *Membership) getLogEntry() *log.Entry {
	return log.WithField("context", "membership")
}
