// Package telegram adapts the Telegram Bot API to the platform capability
// interface the moderation core consumes.
package telegram

import (
	"context"
	"fmt"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"

	errs "github.com/modguard/modguard/internal/errors"
	"github.com/modguard/modguard/internal/platform"
)

type Platform struct {
	bot *api.BotAPI
}

var _ platform.ChatPlatform = (*Platform)(nil)

func New(bot *api.BotAPI) *Platform {
	return &Platform{bot: bot}
}

func (p *Platform) GetMember(ctx context.Context, chatID, userID int64) (platform.Member, error) {
	_ = ctx
	chatMember, err := p.bot.GetChatMember(api.GetChatMemberConfig{
		ChatConfigWithUser: api.ChatConfigWithUser{
			UserID: userID,
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
		},
	})
	if err != nil {
		return platform.Member{}, transportErr("get chat member", err)
	}
	member := platform.Member{
		UserID: userID,
		Status: platform.MemberStatus(chatMember.Status),
	}
	if chatMember.User != nil {
		member.UserID = chatMember.User.ID
		member.FirstName = chatMember.User.FirstName
		member.LastName = chatMember.User.LastName
		member.UserName = chatMember.User.UserName
		member.IsBot = chatMember.User.IsBot
	}
	return member, nil
}

func (p *Platform) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_ = ctx
	if _, err := p.bot.Request(api.NewDeleteMessage(chatID, messageID)); err != nil {
		return transportErr("delete message", err)
	}
	return nil
}

func (p *Platform) BanMember(ctx context.Context, chatID, userID int64) error {
	_ = ctx
	config := api.BanChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
	}
	if _, err := p.bot.Request(config); err != nil {
		return transportErr("ban member", err)
	}
	return nil
}

func (p *Platform) UnbanMember(ctx context.Context, chatID, userID int64, onlyIfBanned bool) error {
	_ = ctx
	config := api.UnbanChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
		OnlyIfBanned: onlyIfBanned,
	}
	if _, err := p.bot.Request(config); err != nil {
		return transportErr("unban member", err)
	}
	return nil
}

func (p *Platform) MuteMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	_ = ctx
	config := api.RestrictChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
		Permissions: &api.ChatPermissions{
			CanSendMessages:       false,
			CanSendOtherMessages:  false,
			CanAddWebPagePreviews: false,
		},
	}
	if !until.IsZero() {
		config.UntilDate = until.Unix()
	}
	if _, err := p.bot.Request(config); err != nil {
		return transportErr("restrict member", err)
	}
	return nil
}

func (p *Platform) UnmuteMember(ctx context.Context, chatID, userID int64) error {
	_ = ctx
	config := api.RestrictChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
		Permissions: &api.ChatPermissions{
			CanSendMessages:       true,
			CanSendOtherMessages:  true,
			CanAddWebPagePreviews: true,
		},
	}
	if _, err := p.bot.Request(config); err != nil {
		return transportErr("unrestrict member", err)
	}
	return nil
}

func (p *Platform) SendMessage(ctx context.Context, chatID int64, text string) error {
	_ = ctx
	if _, err := p.bot.Send(api.NewMessage(chatID, text)); err != nil {
		return transportErr("send message", err)
	}
	return nil
}

func (p *Platform) ReplyTo(ctx context.Context, chatID int64, messageID int, text string) error {
	_ = ctx
	msg := api.NewMessage(chatID, text)
	msg.ReplyParameters = api.ReplyParameters{
		MessageID:                messageID,
		ChatID:                   chatID,
		AllowSendingWithoutReply: true,
	}
	if _, err := p.bot.Send(msg); err != nil {
		return transportErr("reply to message", err)
	}
	return nil
}

func (p *Platform) SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	_ = ctx
	doc := api.NewDocument(chatID, api.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	if _, err := p.bot.Send(doc); err != nil {
		return transportErr("send document", err)
	}
	return nil
}

func (p *Platform) PinMessage(ctx context.Context, chatID int64, messageID int) error {
	_ = ctx
	config := api.PinChatMessageConfig{
		BaseChatMessage: api.BaseChatMessage{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			MessageID:  messageID,
		},
	}
	if _, err := p.bot.Request(config); err != nil {
		return transportErr("pin message", err)
	}
	return nil
}

func (p *Platform) UnpinMessage(ctx context.Context, chatID int64) error {
	_ = ctx
	config := api.UnpinChatMessageConfig{
		BaseChatMessage: api.BaseChatMessage{
			ChatConfig: api.ChatConfig{ChatID: chatID},
		},
	}
	if _, err := p.bot.Request(config); err != nil {
		return transportErr("unpin message", err)
	}
	return nil
}

func (p *Platform) MemberCount(ctx context.Context, chatID int64) (int, error) {
	_ = ctx
	count, err := p.bot.GetChatMembersCount(api.ChatMemberCountConfig{
		ChatConfig: api.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return 0, transportErr("get member count", err)
	}
	return count, nil
}

// transportErr tags the failure so callers can match it with errors.Is while
// keeping the underlying cause readable.
func transportErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, errs.ErrTransport, err)
}
