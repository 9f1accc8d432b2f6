// Package platform defines the capability boundary to the external chat
// platform. The moderation core consumes this interface; the telegram
// subpackage implements it. None of these calls are retried by the core:
// failures surface to the requester.
package platform

import (
	"context"
	"time"
)

type MemberStatus string

const (
	StatusCreator       MemberStatus = "creator"
	StatusAdministrator MemberStatus = "administrator"
	StatusMember        MemberStatus = "member"
	StatusRestricted    MemberStatus = "restricted"
	StatusLeft          MemberStatus = "left"
	StatusKicked        MemberStatus = "kicked"
)

// IsAdmin reports whether the status carries chat-admin authority.
func (s MemberStatus) IsAdmin() bool {
	return s == StatusCreator || s == StatusAdministrator
}

type Member struct {
	UserID    int64
	Status    MemberStatus
	FirstName string
	LastName  string
	UserName  string
	IsBot     bool
}

// MemberLookup is the slice of the platform the role resolver needs.
type MemberLookup interface {
	GetMember(ctx context.Context, chatID, userID int64) (Member, error)
}

type ChatPlatform interface {
	MemberLookup

	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	BanMember(ctx context.Context, chatID, userID int64) error
	UnbanMember(ctx context.Context, chatID, userID int64, onlyIfBanned bool) error
	// MuteMember restricts the member from sending anything until the given
	// instant; a zero time mutes indefinitely.
	MuteMember(ctx context.Context, chatID, userID int64, until time.Time) error
	UnmuteMember(ctx context.Context, chatID, userID int64) error
	SendMessage(ctx context.Context, chatID int64, text string) error
	ReplyTo(ctx context.Context, chatID int64, messageID int, text string) error
	SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error
	PinMessage(ctx context.Context, chatID int64, messageID int) error
	UnpinMessage(ctx context.Context, chatID int64) error
	MemberCount(ctx context.Context, chatID int64) (int, error)
}
