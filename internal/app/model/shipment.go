package model

import (
	"math"
	"time"

	"github.com/MauroRinelli/Solship/pkg/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShipmentStatus string

const (
	StatusPending        ShipmentStatus = "pending"
	StatusInTransit      ShipmentStatus = "in-transit"
	StatusOutForDelivery ShipmentStatus = "out-for-delivery"
	StatusDelivered      ShipmentStatus = "delivered"
	StatusFailedDelivery ShipmentStatus = "failed-delivery"
	StatusCancelled      ShipmentStatus = "cancelled"
	StatusReturned       ShipmentStatus = "returned"
)

// ShipmentStatuses lists every accepted status value. The data layer accepts
// any of them at any time; transition validation is not its job.
var ShipmentStatuses = []ShipmentStatus{
	StatusPending,
	StatusInTransit,
	StatusOutForDelivery,
	StatusDelivered,
	StatusFailedDelivery,
	StatusCancelled,
	StatusReturned,
}

// Valid reports whether s is one of the known status values.
func (s ShipmentStatus) Valid() bool {
	for _, known := range ShipmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Label returns the human-readable status label shown in the UI.
func (s ShipmentStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInTransit:
		return "In Transit"
	case StatusOutForDelivery:
		return "Out for Delivery"
	case StatusDelivered:
		return "Delivered"
	case StatusFailedDelivery:
		return "Failed Delivery"
	case StatusCancelled:
		return "Cancelled"
	case StatusReturned:
		return "Returned"
	default:
		return string(s)
	}
}

// Dimensions are stored flattened but serialized nested, like Address.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `gorm:"size:10;column:dimension_unit" json:"unit"`
}

type Shipment struct {
	ID               string         `gorm:"primaryKey;size:36" json:"id"`
	UserID           string         `gorm:"size:36;not null;index" json:"-"`
	DestinationID    string         `gorm:"size:36;not null;index" json:"destinationId"`
	TrackingNumber   string         `gorm:"size:100;not null" json:"trackingNumber"`
	Carrier          string         `gorm:"size:100;not null" json:"carrier"`
	Status           ShipmentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ShipDate         time.Time      `gorm:"type:date;not null" json:"shipDate"`
	ExpectedDelivery *time.Time     `gorm:"type:date" json:"expectedDelivery,omitempty"`
	ActualDelivery   *time.Time     `gorm:"type:date" json:"actualDelivery,omitempty"`
	Weight           float64        `json:"weight"`
	WeightUnit       string         `gorm:"size:10" json:"weightUnit"`
	Dimensions       Dimensions     `gorm:"embedded" json:"dimensions"`
	Cost             float64        `json:"cost"`
	Currency         string         `gorm:"size:3" json:"currency"`
	Items            string         `gorm:"type:text" json:"items"`
	Notes            string         `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`

	Destination *Destination `gorm:"foreignKey:DestinationID" json:"destination,omitempty"`
}

func (Shipment) TableName() string {
	return "shipments"
}

func (s *Shipment) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	if s.ShipDate.IsZero() {
		s.ShipDate = time.Now().Truncate(24 * time.Hour)
	}
	if s.WeightUnit == "" {
		s.WeightUnit = "kg"
	}
	if s.Dimensions.Unit == "" {
		s.Dimensions.Unit = "cm"
	}
	if s.Currency == "" {
		s.Currency = "EUR"
	}
	return nil
}

// Validate checks field-level constraints and returns a map of field name to
// error message. An empty map means the shipment is valid.
func (s *Shipment) Validate() map[string]string {
	errs := map[string]string{}

	if !validator.Required(s.TrackingNumber) {
		errs["trackingNumber"] = "tracking number is required"
	}
	if !validator.Required(s.Carrier) {
		errs["carrier"] = "carrier is required"
	}
	if !validator.Required(s.DestinationID) {
		errs["destinationId"] = "destination is required"
	}
	if s.Status != "" && !s.Status.Valid() {
		errs["status"] = "unknown status"
	}
	if !validator.NonNegative(s.Weight) {
		errs["weight"] = "weight cannot be negative"
	}
	if !validator.NonNegative(s.Cost) {
		errs["cost"] = "cost cannot be negative"
	}

	return errs
}

// IsActive reports whether the shipment is still moving.
func (s *Shipment) IsActive() bool {
	return s.Status == StatusPending || s.Status == StatusInTransit || s.Status == StatusOutForDelivery
}

// IsDelivered reports whether the shipment reached its destination.
func (s *Shipment) IsDelivered() bool {
	return s.Status == StatusDelivered
}

// IsLate reports whether the expected delivery date has passed without the
// shipment being delivered.
func (s *Shipment) IsLate() bool {
	if s.ExpectedDelivery == nil || s.Status == StatusDelivered {
		return false
	}
	return time.Now().After(*s.ExpectedDelivery)
}

// DaysInTransit returns the number of days between the ship date and the
// actual delivery, or until now for undelivered shipments.
func (s *Shipment) DaysInTransit() int {
	if s.ShipDate.IsZero() {
		return 0
	}
	end := time.Now()
	if s.ActualDelivery != nil {
		end = *s.ActualDelivery
	}
	diff := end.Sub(s.ShipDate)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// Volume returns length * width * height in the dimension unit.
func (s *Shipment) Volume() float64 {
	return s.Dimensions.Length * s.Dimensions.Width * s.Dimensions.Height
}
