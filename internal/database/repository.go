package database

import (
	"github.com/uptrace/bun"
	"github.com/vigilo-bot/vigilo/internal/database/models"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	activity *models.ActivityModel
	setting  *models.SettingModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		activity: models.NewActivity(db, logger),
		setting:  models.NewSetting(db, logger),
	}
}

// Activity returns the user activity model repository.
func (r *Repository) Activity() *models.ActivityModel {
	return r.activity
}

// Setting returns the guild settings model repository.
func (r *Repository) Setting() *models.SettingModel {
	return r.setting
}
