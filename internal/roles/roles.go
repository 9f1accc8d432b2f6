// Package roles classifies actors into authorization tiers and provides the
// guards command handlers call before acting. Any member-lookup failure is
// treated as "not privileged": deny by default on uncertainty.
package roles

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/modguard/modguard/internal/admins"
	"github.com/modguard/modguard/internal/platform"
)

// AnonymousAdminID is the sentinel identity the platform substitutes when a
// chat admin posts anonymously. Every anonymized admin in every chat shares
// this single ID, so it proves chat-admin authority but cannot identify the
// actual person. Anywhere a creator-only or bot-admin-only distinction is
// needed, the sentinel is unresolvable and must be denied.
const AnonymousAdminID int64 = 1087968824

type Tier int

const (
	TierMember Tier = iota
	TierChatAdmin
	TierAnonymousAdmin
	TierGlobalAdmin
)

func (t Tier) String() string {
	switch t {
	case TierGlobalAdmin:
		return "global_admin"
	case TierAnonymousAdmin:
		return "anonymous_admin"
	case TierChatAdmin:
		return "chat_admin"
	default:
		return "member"
	}
}

// Verdict is a guard's decision plus enough detail for the caller to phrase
// the denial.
type Verdict int

const (
	Allowed Verdict = iota
	// Denied: the actor simply lacks the required tier.
	Denied
	// DeniedAnonymous: the anonymous-admin sentinel cannot satisfy this
	// guard; the actor must disable anonymity.
	DeniedAnonymous
	// DeniedPrivate: the guard requires a group context.
	DeniedPrivate
)

func (v Verdict) Allow() bool {
	return v == Allowed
}

type Resolver struct {
	roster  *admins.Roster
	members platform.MemberLookup
	log     *log.Entry
}

func NewResolver(roster *admins.Roster, members platform.MemberLookup) *Resolver {
	return &Resolver{
		roster:  roster,
		members: members,
		log:     log.WithField("context", "roles"),
	}
}

// Resolve returns the actor's tier in the given chat context.
func (r *Resolver) Resolve(ctx context.Context, chatID, userID int64, private bool) Tier {
	if r.roster.Has(userID) {
		return TierGlobalAdmin
	}
	if userID == AnonymousAdminID {
		return TierAnonymousAdmin
	}
	if !private && r.IsChatAdmin(ctx, chatID, userID) {
		return TierChatAdmin
	}
	return TierMember
}

// IsChatAdmin reports whether the platform sees the user as creator or
// administrator of the chat. Lookup failures count as "no".
func (r *Resolver) IsChatAdmin(ctx context.Context, chatID, userID int64) bool {
	member, err := r.members.GetMember(ctx, chatID, userID)
	if err != nil {
		r.log.WithField("error", err.Error()).Debug("member lookup failed, denying")
		return false
	}
	return member.Status.IsAdmin()
}

// IsCreator reports whether the user created the chat. Lookup failures count
// as "no".
func (r *Resolver) IsCreator(ctx context.Context, chatID, userID int64) bool {
	member, err := r.members.GetMember(ctx, chatID, userID)
	if err != nil {
		r.log.WithField("error", err.Error()).Debug("member lookup failed, denying")
		return false
	}
	return member.Status == platform.StatusCreator
}

// RequireBotAdmin allows only roster members. The anonymous sentinel is
// unresolvable here: it cannot be matched against the roster.
func (r *Resolver) RequireBotAdmin(ctx context.Context, chatID, userID int64, private bool) Verdict {
	_ = ctx
	_ = chatID
	_ = private
	if r.roster.Has(userID) {
		return Allowed
	}
	if userID == AnonymousAdminID {
		return DeniedAnonymous
	}
	return Denied
}

// RequireChatAdmin allows roster members anywhere, the anonymous sentinel
// (an anonymized poster is necessarily a chat admin), and platform-confirmed
// chat admins in group context.
func (r *Resolver) RequireChatAdmin(ctx context.Context, chatID, userID int64, private bool) Verdict {
	if r.roster.Has(userID) {
		return Allowed
	}
	if userID == AnonymousAdminID {
		return Allowed
	}
	if private {
		return DeniedPrivate
	}
	if r.IsChatAdmin(ctx, chatID, userID) {
		return Allowed
	}
	return Denied
}

// RequireCreator allows roster members anywhere and the chat creator in group
// context. The anonymous sentinel is unresolvable: being a chat admin does
// not prove creatorship.
func (r *Resolver) RequireCreator(ctx context.Context, chatID, userID int64, private bool) Verdict {
	if r.roster.Has(userID) {
		return Allowed
	}
	if userID == AnonymousAdminID {
		return DeniedAnonymous
	}
	if private {
		return DeniedPrivate
	}
	if r.IsCreator(ctx, chatID, userID) {
		return Allowed
	}
	return Denied
}
