package repository

import (
	"errors"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	FindByUserID(userID string) (*model.Settings, error)
	Upsert(settings *model.Settings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// FindByUserID falls back to the defaults when the user has never saved
// settings. The defaults are not persisted until the first update.
func (r *settingsRepository) FindByUserID(userID string) (*model.Settings, error) {
	var settings model.Settings
	err := r.db.Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults := model.DefaultSettings(userID)
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Upsert(settings *model.Settings) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(settings).Error
	if err != nil {
		logger.Error("Failed to upsert settings in database", err, map[string]interface{}{
			"user_id": settings.UserID,
		})
		return err
	}

	logger.Debug("Settings saved in database", map[string]interface{}{
		"user_id": settings.UserID,
	})
	return nil
}
