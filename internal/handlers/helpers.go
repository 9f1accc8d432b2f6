package handlers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"

	errs "github.com/modguard/modguard/internal/errors"
	"github.com/modguard/modguard/internal/roles"
)

var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://\S+`),
	regexp.MustCompile(`(?i)\bt\.me/\S+`),
	regexp.MustCompile(`(?i)\btelegram\.me/\S+`),
}

// hasLinks reports whether the text contains an URL or a Telegram invite link.
func hasLinks(text string) bool {
	for _, re := range linkPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var durationRe = regexp.MustCompile(`^(\d+)([mhdw])$`)

// parseDuration understands the short mute syntax: 30m, 2h, 7d, 1w.
func parseDuration(s string) (time.Duration, error) {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, errors.Wrapf(errs.ErrValidation, "duration %q", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, errors.Wrapf(errs.ErrValidation, "duration %q", s)
	}
	unit := map[string]time.Duration{
		"m": time.Minute,
		"h": time.Hour,
		"d": 24 * time.Hour,
		"w": 7 * 24 * time.Hour,
	}[m[2]]
	return time.Duration(n) * unit, nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= 7*24*time.Hour && d%(7*24*time.Hour) == 0:
		return fmt.Sprintf("%dw", d/(7*24*time.Hour))
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		return fmt.Sprintf("%dd", d/(24*time.Hour))
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	default:
		return fmt.Sprintf("%dm", d/time.Minute)
	}
}

func userDisplay(u *api.User) string {
	if u == nil {
		return "unknown"
	}
	if u.UserName != "" {
		return "@" + u.UserName
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return strconv.FormatInt(u.ID, 10)
	}
	return name
}

func isGroup(chat *api.Chat) bool {
	return chat != nil && (chat.IsGroup() || chat.IsSuperGroup())
}

func isPrivate(chat *api.Chat) bool {
	return chat != nil && chat.IsPrivate()
}

// denialText maps a guard verdict to the message shown to the caller.
// An empty string means stay silent.
func denialText(v roles.Verdict) string {
	switch v {
	case roles.DeniedAnonymous:
		return "Anonymous admins cannot use this command."
	case roles.DeniedPrivate:
		return "This command only works in groups."
	case roles.Denied:
		return "You are not allowed to do that."
	default:
		return ""
	}
}

// extractTarget resolves the user a moderation command should act on:
// the replied-to message author, a numeric ID argument, or a text mention.
func extractTarget(msg *api.Message, lookup func(chatID, userID int64) (*api.User, error)) (*api.User, error) {
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		return msg.ReplyToMessage.From, nil
	}
	args := strings.Fields(msg.CommandArguments())
	if len(args) > 0 {
		if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
			if lookup != nil {
				if u, err := lookup(msg.Chat.ID, id); err == nil && u != nil {
					return u, nil
				}
			}
			return &api.User{ID: id}, nil
		}
	}
	for _, e := range msg.Entities {
		if e.Type == "text_mention" && e.User != nil {
			return e.User, nil
		}
	}
	return nil, errs.ErrNoTarget
}
