// Package constants holds the command names, custom IDs and display limits
// shared across the bot's handlers.
package constants

import "time"

const (
	// Commands.
	ChannelSetCommandName    = "channelset"
	RoleSetCommandName       = "roleset"
	ThresholdSetCommandName  = "thresholdset"
	CheckSettingsCommandName = "checksettings"
	ListInactiveCommandName  = "listinactive"
	ListActiveCommandName    = "listactive"
	MyStatsCommandName       = "mystats"
	PurgeActivityCommandName = "purgeactivity"

	// Pagination.
	PrevButtonCustomID = "page_prev"
	NextButtonCustomID = "page_next"
	ListPageSize       = 15
	PaginationTimeout  = 10 * time.Minute

	// Role ping configuration accepts up to five roles per guild.
	MaxAlertRoles = 5

	// Purge window bounds in days.
	MinPurgeDays = 1
	MaxPurgeDays = 3650
)
