package handlers

import (
	"github.com/modguard/modguard/internal/admins"
	"github.com/modguard/modguard/internal/antispam"
	"github.com/modguard/modguard/internal/bot"
	"github.com/modguard/modguard/internal/confirm"
	"github.com/modguard/modguard/internal/roles"
	"github.com/modguard/modguard/internal/settings"
	"github.com/modguard/modguard/internal/stats"
	"github.com/modguard/modguard/internal/triggers"
	"github.com/modguard/modguard/internal/warns"
)

// Deps carries the moderation components, constructed once at startup and
// passed by reference into every handler. No handler owns another's storage.
type Deps struct {
	Service  bot.Service
	Roles    *roles.Resolver
	Admins   *admins.Roster
	Settings *settings.Store
	Warns    *warns.Ledger
	Stats    *stats.Tracker
	Triggers *triggers.Index
	Limiter  *antispam.Limiter
	Confirm  *confirm.Tracker
}
