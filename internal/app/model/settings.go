package model

import "time"

// Settings holds per-user display preferences. One row per user.
type Settings struct {
	UserID        string    `gorm:"primaryKey;size:36" json:"-"`
	Theme         string    `gorm:"size:20" json:"theme"`
	Currency      string    `gorm:"size:3" json:"currency"`
	WeightUnit    string    `gorm:"size:10" json:"weightUnit"`
	DimensionUnit string    `gorm:"size:10" json:"dimensionUnit"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

func (Settings) TableName() string {
	return "settings"
}

// DefaultSettings returns the settings a new user starts with.
func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:        userID,
		Theme:         "light",
		Currency:      "EUR",
		WeightUnit:    "kg",
		DimensionUnit: "cm",
	}
}
