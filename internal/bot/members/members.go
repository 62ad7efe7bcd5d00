// Package members adapts the gateway member cache to the tracker's member
// source. Listings compare the cache against the activity store, so cache
// completeness depends on member chunking being enabled on the client.
package members

import (
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/vigilo-bot/vigilo/internal/tracker"
)

// CacheSource reads guild members from the client's gateway cache.
type CacheSource struct {
	client bot.Client
}

// NewCacheSource creates a member source over the given client.
func NewCacheSource(client bot.Client) *CacheSource {
	return &CacheSource{client: client}
}

// GuildMembers returns the cached non-bot members of a guild.
func (s *CacheSource) GuildMembers(guildID uint64) []tracker.Member {
	var result []tracker.Member

	s.client.Caches().MembersForEach(snowflake.ID(guildID), func(member discord.Member) {
		if member.User.Bot || member.User.System {
			return
		}

		result = append(result, tracker.Member{
			UserID:      uint64(member.User.ID),
			DisplayName: member.EffectiveName(),
		})
	})

	return result
}
