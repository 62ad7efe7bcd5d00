package types

import (
	"errors"

	"github.com/uptrace/bun"
)

var (
	// ErrThresholdOutOfRange is returned when an alert threshold is outside
	// the accepted 1-90 day range.
	ErrThresholdOutOfRange = errors.New("alert threshold must be between 1 and 90 days")
	// ErrNoRolesSelected is returned when a role update contains no roles.
	ErrNoRolesSelected = errors.New("at least one role must be selected")
)

// Alert threshold bounds accepted by the threshold command.
const (
	MinAlertThreshold = 1
	MaxAlertThreshold = 90
)

// GuildSettings holds the per-guild alert configuration. A guild gets a row
// on its first configuration command; individual fields upsert independently
// and are never clobbered back to defaults by an unrelated update.
type GuildSettings struct {
	bun.BaseModel `bun:"table:guild_settings"`

	GuildID         uint64   `bun:"guild_id,pk"`
	ReportChannelID uint64   `bun:"report_channel_id,nullzero"`
	RoleIDs         []uint64 `bun:"role_ids,array"`
	AlertThreshold  int      `bun:"alert_threshold,notnull"`
	Timezone        string   `bun:"timezone,notnull,default:'UTC'"`
}

// Configured reports whether alerts are enabled for the guild. Alerts stay
// suppressed until a report channel has been set.
func (s *GuildSettings) Configured() bool {
	return s != nil && s.ReportChannelID != 0
}

// ValidateThreshold checks that a threshold value is within the accepted
// range before any mutation happens.
func ValidateThreshold(days int) error {
	if days < MinAlertThreshold || days > MaxAlertThreshold {
		return ErrThresholdOutOfRange
	}

	return nil
}
