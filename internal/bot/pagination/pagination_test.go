package pagination_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vigilo-bot/vigilo/internal/bot/constants"
	"github.com/vigilo-bot/vigilo/internal/bot/pagination"
)

func makeLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("member-%d", i)
	}

	return lines
}

func TestSessionPageCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines int
		want  int
	}{
		{name: "empty listing still has one page", lines: 0, want: 1},
		{name: "partial page", lines: 7, want: 1},
		{name: "exact page boundary", lines: constants.ListPageSize, want: 1},
		{name: "one past the boundary", lines: constants.ListPageSize + 1, want: 2},
		{name: "several pages", lines: constants.ListPageSize*3 + 2, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := pagination.NewSession(1, "Inactive Members", makeLines(tt.lines))
			assert.Equal(t, tt.want, s.PageCount())
		})
	}
}

func TestSessionPageLines(t *testing.T) {
	t.Parallel()

	s := pagination.NewSession(1, "Inactive Members", makeLines(constants.ListPageSize+4))

	first := s.PageLines(0)
	assert.Len(t, first, constants.ListPageSize)
	assert.Equal(t, "member-0", first[0])

	second := s.PageLines(1)
	assert.Len(t, second, 4)
	assert.Equal(t, fmt.Sprintf("member-%d", constants.ListPageSize), second[0])

	assert.Empty(t, s.PageLines(2))
}

func TestSessionExpired(t *testing.T) {
	t.Parallel()

	s := pagination.NewSession(1, "Active Members", makeLines(3))

	assert.False(t, s.Expired(s.CreatedAt.Add(constants.PaginationTimeout-time.Second)))
	assert.True(t, s.Expired(s.CreatedAt.Add(constants.PaginationTimeout+time.Second)))
}

func TestSessionNavigation(t *testing.T) {
	t.Parallel()

	s := pagination.NewSession(1, "Inactive Members", makeLines(constants.ListPageSize*3))

	assert.Equal(t, 0, s.Prev(), "first page clamps downward")
	assert.Equal(t, 1, s.Next())
	assert.Equal(t, 2, s.Next())
	assert.Equal(t, 2, s.Next(), "last page clamps upward")
	assert.Equal(t, 1, s.Prev())
	assert.Equal(t, 1, s.Page())
}

func TestSessionNavigationConcurrent(t *testing.T) {
	t.Parallel()

	s := pagination.NewSession(1, "Inactive Members", makeLines(constants.ListPageSize*4))

	// Simultaneous button presses on the same message must leave the index
	// inside the page bounds.
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func(forward bool) {
			defer wg.Done()

			for j := 0; j < 50; j++ {
				var page int
				if forward {
					page = s.Next()
				} else {
					page = s.Prev()
				}

				assert.GreaterOrEqual(t, page, 0)
				assert.Less(t, page, s.PageCount())
				assert.NotEmpty(t, s.Embed(s.Page()).Description)
			}
		}(i%2 == 0)
	}

	wg.Wait()

	assert.GreaterOrEqual(t, s.Page(), 0)
	assert.Less(t, s.Page(), s.PageCount())
}

func TestSessionEmbed(t *testing.T) {
	t.Parallel()

	t.Run("empty listing renders placeholder", func(t *testing.T) {
		t.Parallel()

		embed := pagination.NewSession(1, "Inactive Members", nil).Embed(0)
		assert.Equal(t, "None", embed.Description)
	})

	t.Run("page indicator counts from one", func(t *testing.T) {
		t.Parallel()

		s := pagination.NewSession(1, "Inactive Members", makeLines(constants.ListPageSize*2))
		embed := s.Embed(1)

		assert.Contains(t, embed.Description, fmt.Sprintf("member-%d", constants.ListPageSize))
		assert.Equal(t, "2 / 2", embed.Fields[0].Value)
	})
}
