package handlers

import (
	"context"
	"fmt"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/modguard/modguard/internal/config"
)

const (
	cbHelpAdd     = "help_add"
	cbHelpDel     = "help_del"
	cbAllCommands = "all_commands"
	cbBackMain    = "back_main"
)

// Admin handles the bot-admin roster and the help menu.
type Admin struct {
	deps *Deps
}

func NewAdmin(deps *Deps) *Admin {
	return &Admin{deps: deps}
}

func (a *Admin) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u.CallbackQuery != nil {
		return a.handleCallback(ctx, u.CallbackQuery)
	}
	if u.Message == nil || chat == nil || user == nil || !u.Message.IsCommand() {
		return true, nil
	}
	m := u.Message
	p := a.deps.Service.GetPlatform()

	switch m.Command() {
	case "myid":
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("Your ID: %d", user.ID))

	case "addowner":
		secret := config.Get().OwnerSecret
		if secret == "" || m.CommandArguments() != secret {
			// wrong or unset secret gets no reaction at all
			return false, nil
		}
		if a.deps.Admins.Add(user.ID) {
			a.getLogEntry().WithField("user_id", user.ID).Info("owner added via secret")
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "You are now a bot admin.")
		}
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "You are already a bot admin.")

	case "addadmin":
		if v := a.deps.Roles.RequireBotAdmin(ctx, chat.ID, user.ID, isPrivate(chat)); !v.Allow() {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, denialText(v))
		}
		target, err := extractTarget(m, a.memberLookup(ctx))
		if err != nil {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "Reply to a user or pass their ID.")
		}
		if !a.deps.Admins.Add(target.ID) {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("%s is already a bot admin.", userDisplay(target)))
		}
		a.getLogEntry().WithFields(log.Fields{"user_id": target.ID, "by": user.ID}).Info("bot admin added")
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("%s is now a bot admin.", userDisplay(target)))

	case "removeadmin":
		if v := a.deps.Roles.RequireBotAdmin(ctx, chat.ID, user.ID, isPrivate(chat)); !v.Allow() {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, denialText(v))
		}
		target, err := extractTarget(m, a.memberLookup(ctx))
		if err != nil {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "Reply to a user or pass their ID.")
		}
		if target.ID == user.ID {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "You cannot remove yourself.")
		}
		if !a.deps.Admins.Remove(target.ID) {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("%s is not a bot admin.", userDisplay(target)))
		}
		a.getLogEntry().WithFields(log.Fields{"user_id": target.ID, "by": user.ID}).Info("bot admin removed")
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, fmt.Sprintf("%s removed from bot admins.", userDisplay(target)))

	case "listadmins":
		if v := a.deps.Roles.RequireBotAdmin(ctx, chat.ID, user.ID, isPrivate(chat)); !v.Allow() {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, denialText(v))
		}
		ids := a.deps.Admins.List()
		if len(ids) == 0 {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, "No bot admins configured.")
		}
		lines := make([]string, 0, len(ids)+1)
		lines = append(lines, "Bot admins:")
		for _, id := range ids {
			lines = append(lines, fmt.Sprintf("• %d", id))
		}
		return false, p.ReplyTo(ctx, chat.ID, m.MessageID, strings.Join(lines, "\n"))

	case "start", "help":
		if v := a.deps.Roles.RequireBotAdmin(ctx, chat.ID, user.ID, isPrivate(chat)); !v.Allow() {
			if isPrivate(chat) {
				return false, p.SendMessage(ctx, chat.ID, "Hi! Add me to a group and give me admin rights to start moderating.")
			}
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, denialText(v))
		}
		msg := api.NewMessage(chat.ID, mainMenuText)
		msg.ReplyMarkup = mainMenuKeyboard()
		_, err := a.deps.Service.GetBot().Send(msg)
		return false, err

	case "commands":
		if v := a.deps.Roles.RequireBotAdmin(ctx, chat.ID, user.ID, isPrivate(chat)); !v.Allow() {
			return false, p.ReplyTo(ctx, chat.ID, m.MessageID, denialText(v))
		}
		return false, p.SendMessage(ctx, chat.ID, allCommandsText)
	}
	return true, nil
}

func (a *Admin) handleCallback(ctx context.Context, cq *api.CallbackQuery) (bool, error) {
	switch cq.Data {
	case cbHelpAdd, cbHelpDel, cbAllCommands, cbBackMain:
	default:
		return true, nil
	}
	if cq.Message == nil {
		return false, nil
	}
	b := a.deps.Service.GetBot()
	chatID := cq.Message.Chat.ID

	if v := a.deps.Roles.RequireBotAdmin(ctx, chatID, cq.From.ID, cq.Message.Chat.IsPrivate()); !v.Allow() {
		_, _ = b.Request(api.NewCallback(cq.ID, "No access"))
		return false, nil
	}

	var text string
	switch cq.Data {
	case cbHelpAdd:
		text = helpAddText
	case cbHelpDel:
		text = helpDelText
	case cbAllCommands:
		text = allCommandsText
	case cbBackMain:
		text = mainMenuText
	}

	edit := api.NewEditMessageText(chatID, cq.Message.MessageID, text)
	if cq.Data == cbBackMain {
		kb := mainMenuKeyboard()
		edit.ReplyMarkup = &kb
	} else {
		kb := backKeyboard()
		edit.ReplyMarkup = &kb
	}
	if _, err := b.Send(edit); err != nil {
		return false, err
	}
	_, _ = b.Request(api.NewCallback(cq.ID, ""))
	return false, nil
}

func (a *Admin) memberLookup(ctx context.Context) func(chatID, userID int64) (*api.User, error) {
	return func(chatID, userID int64) (*api.User, error) {
		member, err := a.deps.Service.GetPlatform().GetMember(ctx, chatID, userID)
		if err != nil {
			return nil, err
		}
		return &api.User{
			ID:        member.UserID,
			FirstName: member.FirstName,
			LastName:  member.LastName,
			UserName:  member.UserName,
			IsBot:     member.IsBot,
		}, nil
	}
}

func mainMenuKeyboard() api.InlineKeyboardMarkup {
	return api.NewInlineKeyboardMarkup(
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData("➕ Adding words", cbHelpAdd),
			api.NewInlineKeyboardButtonData("➖ Removing words", cbHelpDel),
		),
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData("📋 All commands", cbAllCommands),
		),
	)
}

func backKeyboard() api.InlineKeyboardMarkup {
	return api.NewInlineKeyboardMarkup(
		api.NewInlineKeyboardRow(
			api.NewInlineKeyboardButtonData("⬅️ Back", cbBackMain),
		),
	)
}

const mainMenuText = `🛡 modguard

I delete messages with forbidden words, throttle spammers and keep track of warnings.

Pick a topic below or use /commands for the full list.`

const helpAddText = `➕ Adding forbidden words

/addword <word> — add a single word
/addwords <w1, w2, …> — add several, comma separated
/listwords — export the current list (requires /confirm ×3)`

const helpDelText = `➖ Removing forbidden words

/delword <word> — remove a single word
/clearwords — wipe the whole list (chat creator only)`

const allCommandsText = `📋 Commands

Vocabulary:
/addword /addwords /delword /clearwords /listwords /confirm

Moderation:
/warn /unwarn /warns /clearwarns /mute /unmute /ban /unban /kick

Chat:
/userinfo /chatinfo /stats /clear /pin /unpin
/settings /setmaxwarns /setwelcome

Roster:
/myid /addadmin /removeadmin /listadmins`

func (a *Admin) getLogEntry() *log.Entry {
	return log.WithField("context", "admin")
}
