// Package pagination drives the paged member listings. Each listing message
// gets a session holding an immutable snapshot of its entries; component
// interactions only move the page index over that snapshot.
package pagination

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/vigilo-bot/vigilo/internal/bot/constants"
	"github.com/vigilo-bot/vigilo/internal/bot/views"
	"go.uber.org/zap"
)

// Session is the view model behind one paginated message. Title, Lines and
// PageSize never change after creation; only the page index moves, guarded
// by the session's own lock so concurrent button presses on the same message
// stay consistent.
type Session struct {
	OwnerID   snowflake.ID
	Title     string
	Lines     []string
	PageSize  int
	CreatedAt time.Time

	mu   sync.Mutex
	page int
}

// NewSession creates a session showing the first page of the given lines.
func NewSession(ownerID snowflake.ID, title string, lines []string) *Session {
	return &Session{
		OwnerID:   ownerID,
		Title:     title,
		Lines:     lines,
		PageSize:  constants.ListPageSize,
		CreatedAt: time.Now(),
	}
}

// PageCount returns the number of pages, at least one even when empty.
func (s *Session) PageCount() int {
	if len(s.Lines) == 0 {
		return 1
	}

	return (len(s.Lines) + s.PageSize - 1) / s.PageSize
}

// PageLines returns the lines visible on the given page.
func (s *Session) PageLines(page int) []string {
	start := page * s.PageSize
	if start >= len(s.Lines) {
		return nil
	}

	end := min(start+s.PageSize, len(s.Lines))

	return s.Lines[start:end]
}

// Expired reports whether the session has passed its interaction deadline.
func (s *Session) Expired(now time.Time) bool {
	return now.Sub(s.CreatedAt) > constants.PaginationTimeout
}

// Page returns the current page index.
func (s *Session) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.page
}

// Next moves to the following page, clamped to the last one, and returns the
// resulting index.
func (s *Session) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page < s.PageCount()-1 {
		s.page++
	}

	return s.page
}

// Prev moves to the preceding page, clamped to the first one, and returns the
// resulting index.
func (s *Session) Prev() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page > 0 {
		s.page--
	}

	return s.page
}

// Embed renders the given page of the session.
func (s *Session) Embed(page int) discord.Embed {
	lines := s.PageLines(page)

	body := "None"
	if len(lines) > 0 {
		body = strings.Join(lines, "\n")
	}

	return views.NewEmbed(s.Title, views.InfoEmbedColor).
		SetDescription(body).
		AddField("Page", fmt.Sprintf("%d / %d", page+1, s.PageCount()), true).
		AddField("Total", fmt.Sprintf("%d", len(s.Lines)), true).
		Build()
}

// Components renders the prev/next controls for the given page. Disabled
// renders both buttons greyed out for expired sessions.
func (s *Session) Components(page int, disabled bool) discord.ContainerComponent {
	return discord.NewActionRow(
		discord.NewSecondaryButton("◀", constants.PrevButtonCustomID).
			WithDisabled(disabled || page == 0),
		discord.NewSecondaryButton("▶", constants.NextButtonCustomID).
			WithDisabled(disabled || page >= s.PageCount()-1),
	)
}

// Manager tracks the live pagination sessions keyed by message ID.
type Manager struct {
	mu       sync.Mutex
	sessions map[snowflake.ID]*Session
	logger   *zap.Logger
}

// NewManager creates an empty pagination manager.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[snowflake.ID]*Session),
		logger:   logger.Named("pagination"),
	}
}

// Track registers a session for the message it was posted as. Expired
// sessions are swept on the way in so the map never grows unbounded.
func (m *Manager) Track(messageID snowflake.ID, session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
		}
	}

	m.sessions[messageID] = session
}

// Handle processes a prev/next button press. It returns false when the
// interaction does not belong to a tracked listing message.
func (m *Manager) Handle(event *events.ComponentInteractionCreate) bool {
	customID := event.Data.CustomID()
	if customID != constants.PrevButtonCustomID && customID != constants.NextButtonCustomID {
		return false
	}

	m.mu.Lock()
	session, ok := m.sessions[event.Message.ID]
	m.mu.Unlock()

	if !ok {
		return false
	}

	if event.User().ID != session.OwnerID {
		m.respondError(event, "Only the member who requested this listing can page through it.")
		return true
	}

	if session.Expired(time.Now()) {
		m.mu.Lock()
		delete(m.sessions, event.Message.ID)
		m.mu.Unlock()

		// Disable the controls so the stale message stops inviting clicks.
		page := session.Page()

		if err := event.UpdateMessage(discord.NewMessageUpdateBuilder().
			SetEmbeds(session.Embed(page)).
			SetContainerComponents(session.Components(page, true)).
			Build()); err != nil {
			m.logger.Error("Failed to disable expired listing", zap.Error(err))
		}

		return true
	}

	var page int
	if customID == constants.NextButtonCustomID {
		page = session.Next()
	} else {
		page = session.Prev()
	}

	if err := event.UpdateMessage(discord.NewMessageUpdateBuilder().
		SetEmbeds(session.Embed(page)).
		SetContainerComponents(session.Components(page, false)).
		Build()); err != nil {
		m.logger.Error("Failed to update listing page", zap.Error(err))
	}

	return true
}

func (m *Manager) respondError(event *events.ComponentInteractionCreate, text string) {
	if err := event.CreateMessage(discord.NewMessageCreateBuilder().
		SetEmbeds(views.ErrorEmbed(text)).
		SetEphemeral(true).
		Build()); err != nil {
		m.logger.Error("Failed to send pagination error", zap.Error(err))
	}
}
