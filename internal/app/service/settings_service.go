package service

import (
	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/internal/app/repository"
	"github.com/MauroRinelli/Solship/internal/events"
	"github.com/MauroRinelli/Solship/pkg/logger"
)

type SettingsService interface {
	GetSettings(userID string) (*model.Settings, error)
	UpdateSettings(userID string, settings *model.Settings) (*model.Settings, error)
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
	bus          *events.Bus
}

func NewSettingsService(settingsRepo repository.SettingsRepository, bus *events.Bus) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		bus:          bus,
	}
}

func (s *settingsService) GetSettings(userID string) (*model.Settings, error) {
	settings, err := s.settingsRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch settings", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return settings, nil
}

// UpdateSettings overwrites the user's settings, filling any blank field
// with its default value.
func (s *settingsService) UpdateSettings(userID string, settings *model.Settings) (*model.Settings, error) {
	logger.Info("Updating settings", map[string]interface{}{
		"user_id": userID,
	})

	settings.UserID = userID
	defaults := model.DefaultSettings(userID)
	if settings.Theme == "" {
		settings.Theme = defaults.Theme
	}
	if settings.Currency == "" {
		settings.Currency = defaults.Currency
	}
	if settings.WeightUnit == "" {
		settings.WeightUnit = defaults.WeightUnit
	}
	if settings.DimensionUnit == "" {
		settings.DimensionUnit = defaults.DimensionUnit
	}

	if err := s.settingsRepo.Upsert(settings); err != nil {
		logger.Error("Failed to update settings", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	s.bus.Publish(events.Event{
		Entity: events.EntitySettings,
		Action: events.ActionUpdated,
		UserID: userID,
	})

	logger.Info("Settings updated successfully", map[string]interface{}{
		"user_id": userID,
	})
	return settings, nil
}
