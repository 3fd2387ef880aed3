package db

import (
	"errors"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/pkg/logger"
	"github.com/MauroRinelli/Solship/pkg/util"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Destination{},
		&model.Shipment{},
		&model.Settings{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedDemoUser(DB); err != nil {
		logger.Error("Failed to seed demo user", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// seedDemoUser ensures the fallback identity used by unauthenticated
// requests exists.
func seedDemoUser(db *gorm.DB) error {
	var existing model.User
	err := db.First(&existing, "id = ?", model.DemoUserID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := util.HashPassword("demo")
	if err != nil {
		return err
	}

	demo := model.User{
		ID:           model.DemoUserID,
		Email:        "demo@solship.local",
		PasswordHash: hash,
		Name:         "Demo User",
	}
	if err := db.Create(&demo).Error; err != nil {
		return err
	}

	settings := model.DefaultSettings(model.DemoUserID)
	if err := db.Create(&settings).Error; err != nil {
		return err
	}

	logger.Info("Demo user seeded", map[string]interface{}{
		"user_id": model.DemoUserID,
	})
	return nil
}
