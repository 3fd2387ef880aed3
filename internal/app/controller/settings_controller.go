package controller

import (
	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/internal/app/service"
	"github.com/MauroRinelli/Solship/internal/errors"
	"github.com/MauroRinelli/Solship/internal/middleware"
	"github.com/gin-gonic/gin"
)

type SettingsController struct {
	settingsService service.SettingsService
}

func NewSettingsController(settingsService service.SettingsService) *SettingsController {
	return &SettingsController{
		settingsService: settingsService,
	}
}

type UpdateSettingsRequest struct {
	Theme         string `json:"theme"`
	Currency      string `json:"currency"`
	WeightUnit    string `json:"weightUnit"`
	DimensionUnit string `json:"dimensionUnit"`
}

// GetSettings returns the caller's preferences, defaults if never saved.
// GET /api/settings
func (ctrl *SettingsController) GetSettings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	settings, err := ctrl.settingsService.GetSettings(userID)
	if err != nil {
		log.Error("Failed to fetch settings", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "Failed to fetch settings")
		return
	}

	respondOK(c, settings)
}

// UpdateSettings overwrites the caller's preferences.
// PUT /api/settings
func (ctrl *SettingsController) UpdateSettings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid settings request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request data")
		return
	}

	settings, err := ctrl.settingsService.UpdateSettings(userID, &model.Settings{
		Theme:         req.Theme,
		Currency:      req.Currency,
		WeightUnit:    req.WeightUnit,
		DimensionUnit: req.DimensionUnit,
	})
	if err != nil {
		log.Error("Failed to update settings", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "Failed to update settings")
		return
	}

	respondOK(c, settings)
}
