package handlers

import (
	"context"
	"fmt"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/modguard/modguard/internal/confirm"
	"github.com/modguard/modguard/internal/triggers"
)

// Vocabulary manages the forbidden-word list. The list itself is global, the
// commands are chat-admin gated; the full export additionally demands the
// three-step confirmation so a fat-fingered command cannot leak the list.
type Vocabulary struct {
	deps *Deps
}

func NewVocabulary(deps *Deps) *Vocabulary {
	return &Vocabulary{deps: deps}
}

func (v *Vocabulary) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u.Message == nil || chat == nil || user == nil || !u.Message.IsCommand() {
		return true, nil
	}
	m := u.Message
	p := v.deps.Service.GetPlatform()

	switch m.Command() {
	case "addword":
		if verdict := v.deps.Roles.RequireChatAdmin(ctx, chat.ID, user.ID, isPrivate(chat)); !verdict.Allow() {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, denialText(verdict))
		}
		word := strings.TrimSpace(m.CommandArguments())
		if word == "" {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "Usage: /addword <word>")
		}
		if len([]rune(word)) > triggers.MaxWordLength {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("Word is too long (max %d characters).", triggers.MaxWordLength))
		}
		if !v.deps.Triggers.Add(word) {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "That word is already on the list.")
		}
		v.getLogEntry().WithFields(log.Fields{"word": triggers.Censor(word), "by": user.ID}).Info("word added")
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("Added. The list now has %d words.", v.deps.Triggers.Count()))

	case "addwords":
		if verdict := v.deps.Roles.RequireChatAdmin(ctx, chat.ID, user.ID, isPrivate(chat)); !verdict.Allow() {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, denialText(verdict))
		}
		raw := strings.Split(m.CommandArguments(), ",")
		words := make([]string, 0, len(raw))
		for _, w := range raw {
			w = strings.TrimSpace(w)
			if w == "" || len([]rune(w)) > triggers.MaxWordLength {
				continue
			}
			words = append(words, w)
		}
		if len(words) == 0 {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "Usage: /addwords <word1, word2, …>")
		}
		added := v.deps.Triggers.AddMany(words)
		v.getLogEntry().WithFields(log.Fields{"added": added, "by": user.ID}).Info("words added")
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID,
			fmt.Sprintf("Added %d new words (%d were duplicates). The list now has %d words.",
				added, len(words)-added, v.deps.Triggers.Count()))

	case "delword":
		if verdict := v.deps.Roles.RequireChatAdmin(ctx, chat.ID, user.ID, isPrivate(chat)); !verdict.Allow() {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, denialText(verdict))
		}
		word := strings.TrimSpace(m.CommandArguments())
		if word == "" {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "Usage: /delword <word>")
		}
		if !v.deps.Triggers.Remove(word) {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "That word is not on the list.")
		}
		v.getLogEntry().WithFields(log.Fields{"word": triggers.Censor(word), "by": user.ID}).Info("word removed")
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("Removed. The list now has %d words.", v.deps.Triggers.Count()))

	case "clearwords":
		if verdict := v.deps.Roles.RequireCreator(ctx, chat.ID, user.ID, isPrivate(chat)); !verdict.Allow() {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, denialText(verdict))
		}
		removed := v.deps.Triggers.Clear()
		v.getLogEntry().WithFields(log.Fields{"removed": removed, "by": user.ID}).Warn("word list cleared")
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("Cleared %d words.", removed))

	case "listwords":
		if verdict := v.deps.Roles.RequireChatAdmin(ctx, chat.ID, user.ID, isPrivate(chat)); !verdict.Allow() {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, denialText(verdict))
		}
		if v.deps.Triggers.IsEmpty() {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "The word list is empty.")
		}
		v.deps.Confirm.Start(user.ID)
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID,
			fmt.Sprintf("⚠️ This exports the full list of %d forbidden words as a file. Send /confirm %d times to proceed.",
				v.deps.Triggers.Count(), confirm.Threshold))

	case "confirm":
		progress, ok := v.deps.Confirm.Confirm(user.ID)
		if !ok {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "Nothing to confirm. Start with /listwords.")
		}
		if progress < confirm.Threshold {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("Confirmation %d/%d. Send /confirm again.", progress, confirm.Threshold))
		}
		v.deps.Confirm.Clear(user.ID)
		data := []byte(strings.Join(v.deps.Triggers.List(), "\n") + "\n")
		v.getLogEntry().WithFields(log.Fields{"words": v.deps.Triggers.Count(), "by": user.ID}).Info("word list exported")
		return false, p.SendDocument(ctx, chat.ID, "words.txt", data,
			fmt.Sprintf("Forbidden word list (%d entries).", v.deps.Triggers.Count()))
	}
	return true, nil
}

func (v *Vocabulary) getLogEntry() *log.Entry {
	return log.WithField("context", "vocabulary")
}
