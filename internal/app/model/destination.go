package model

import (
	"strings"
	"time"

	"github.com/MauroRinelli/Solship/pkg/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultCountry is applied when a destination is created without one.
const DefaultCountry = "Italy"

// Address is stored flattened into the destinations table but serialized as
// a nested object, matching the wire format the frontend expects.
type Address struct {
	Street  string `gorm:"size:255" json:"street"`
	City    string `gorm:"size:100" json:"city"`
	State   string `gorm:"size:100" json:"state"`
	ZipCode string `gorm:"size:10;column:zip_code" json:"zipCode"`
	Country string `gorm:"size:100" json:"country"`
}

type Destination struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;not null;index" json:"-"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Company    string    `gorm:"size:255" json:"company"`
	Address    Address   `gorm:"embedded" json:"address"`
	Phone      string    `gorm:"size:30" json:"phone"`
	Email      string    `gorm:"size:255" json:"email"`
	Notes      string    `gorm:"type:text" json:"notes"`
	UsageCount int       `gorm:"not null;default:0" json:"usageCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Shipments []Shipment `gorm:"foreignKey:DestinationID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (Destination) TableName() string {
	return "destinations"
}

func (d *Destination) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Address.Country == "" {
		d.Address.Country = DefaultCountry
	}
	return nil
}

// Validate checks field-level constraints and returns a map of field name to
// error message. An empty map means the destination is valid.
func (d *Destination) Validate() map[string]string {
	errs := map[string]string{}

	if !validator.Required(d.Name) {
		errs["name"] = "name is required"
	}
	if !validator.Email(d.Email) {
		errs["email"] = "invalid email"
	}
	if !validator.Phone(d.Phone) {
		errs["phone"] = "invalid phone number"
	}
	if !validator.ZipCode(d.Address.ZipCode) {
		errs["zipCode"] = "invalid zip code"
	}

	return errs
}

// FullAddress joins the non-empty address parts with commas.
func (d *Destination) FullAddress() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{
		d.Address.Street,
		d.Address.City,
		d.Address.State,
		d.Address.ZipCode,
		d.Address.Country,
	} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// DisplayName returns "Name (Company)" when a company is set.
func (d *Destination) DisplayName() string {
	if d.Company != "" {
		return d.Name + " (" + d.Company + ")"
	}
	return d.Name
}
