package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vigilo-bot/vigilo/internal/database/types"
)

func TestValidateThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		days    int
		wantErr error
	}{
		{name: "below minimum", days: 0, wantErr: types.ErrThresholdOutOfRange},
		{name: "negative", days: -3, wantErr: types.ErrThresholdOutOfRange},
		{name: "minimum accepted", days: types.MinAlertThreshold},
		{name: "maximum accepted", days: types.MaxAlertThreshold},
		{name: "above maximum", days: types.MaxAlertThreshold + 1, wantErr: types.ErrThresholdOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := types.ValidateThreshold(tt.days)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGuildSettingsConfigured(t *testing.T) {
	t.Parallel()

	var missing *types.GuildSettings

	assert.False(t, missing.Configured())
	assert.False(t, (&types.GuildSettings{GuildID: 1}).Configured())
	assert.True(t, (&types.GuildSettings{GuildID: 1, ReportChannelID: 42}).Configured())
}
