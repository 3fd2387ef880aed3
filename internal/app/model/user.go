package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DemoUserID is the fixed identity used when no (or an invalid) bearer token
// is presented. Seeded during migration; explicitly not production-hardened.
const DemoUserID = "00000000-0000-0000-0000-000000000001"

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Name         string    `gorm:"size:100" json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
