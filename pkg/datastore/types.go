package datastore

import (
	"math"
	"strings"
	"time"

	"github.com/MauroRinelli/Solship/pkg/validator"
)

// The wire format matches the REST API, so APIStore can decode responses
// directly and LocalStore snapshots stay interchangeable with server ones.

const (
	StatusPending        = "pending"
	StatusInTransit      = "in-transit"
	StatusOutForDelivery = "out-for-delivery"
	StatusDelivered      = "delivered"
	StatusFailedDelivery = "failed-delivery"
	StatusCancelled      = "cancelled"
	StatusReturned       = "returned"
)

var statusLabels = map[string]string{
	StatusPending:        "Pending",
	StatusInTransit:      "In Transit",
	StatusOutForDelivery: "Out for Delivery",
	StatusDelivered:      "Delivered",
	StatusFailedDelivery: "Failed Delivery",
	StatusCancelled:      "Cancelled",
	StatusReturned:       "Returned",
}

// ValidStatus reports whether s is a known shipment status.
func ValidStatus(s string) bool {
	_, ok := statusLabels[s]
	return ok
}

// StatusLabel returns the human-readable label for a status value.
func StatusLabel(s string) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return s
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type Destination struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Company    string    `json:"company"`
	Address    Address   `json:"address"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Notes      string    `json:"notes"`
	UsageCount int       `json:"usageCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (d *Destination) ApplyDefaults() {
	if d.Address.Country == "" {
		d.Address.Country = "Italy"
	}
}

// Validate returns per-field error messages; empty means valid.
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

type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

type Shipment struct {
	ID               string     `json:"id"`
	DestinationID    string     `json:"destinationId"`
	TrackingNumber   string     `json:"trackingNumber"`
	Carrier          string     `json:"carrier"`
	Status           string     `json:"status"`
	ShipDate         time.Time  `json:"shipDate"`
	ExpectedDelivery *time.Time `json:"expectedDelivery,omitempty"`
	ActualDelivery   *time.Time `json:"actualDelivery,omitempty"`
	Weight           float64    `json:"weight"`
	WeightUnit       string     `json:"weightUnit"`
	Dimensions       Dimensions `json:"dimensions"`
	Cost             float64    `json:"cost"`
	Currency         string     `json:"currency"`
	Items            string     `json:"items"`
	Notes            string     `json:"notes"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`

	Destination *Destination `json:"destination,omitempty"`
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (s *Shipment) ApplyDefaults() {
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
}

// Validate returns per-field error messages; empty means valid.
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
	if s.Status != "" && !ValidStatus(s.Status) {
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

// IsLate reports whether the expected delivery date has passed without
// delivery.
func (s *Shipment) IsLate() bool {
	if s.ExpectedDelivery == nil || s.Status == StatusDelivered {
		return false
	}
	return time.Now().After(*s.ExpectedDelivery)
}

// DaysInTransit returns days between ship date and delivery, or until now
// for undelivered shipments.
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

type Settings struct {
	Theme         string `json:"theme"`
	Currency      string `json:"currency"`
	WeightUnit    string `json:"weightUnit"`
	DimensionUnit string `json:"dimensionUnit"`
}

// DefaultSettings returns the initial preference set.
func DefaultSettings() Settings {
	return Settings{
		Theme:         "light",
		Currency:      "EUR",
		WeightUnit:    "kg",
		DimensionUnit: "cm",
	}
}

// Stats is the dashboard aggregate. Field semantics match the server's
// /api/shipments/stats response.
type Stats struct {
	TotalDestinations  int64            `json:"totalDestinations"`
	TotalShipments     int64            `json:"totalShipments"`
	ShipmentsThisMonth int64            `json:"shipmentsThisMonth"`
	ShipmentsThisWeek  int64            `json:"shipmentsThisWeek"`
	ActiveShipments    int64            `json:"activeShipments"`
	DeliveredShipments int64            `json:"deliveredShipments"`
	TotalCost          float64          `json:"totalCost"`
	CostThisMonth      float64          `json:"costThisMonth"`
	AvgCost            float64          `json:"avgCost"`
	StatusCounts       map[string]int64 `json:"statusCounts"`
	CarrierCounts      map[string]int64 `json:"carrierCounts"`
}

// SnapshotVersion tags exported snapshots.
const SnapshotVersion = "1.0"

// Snapshot is the export/import container. Nil sections in imported data
// are no-ops for that section.
type Snapshot struct {
	Destinations []Destination `json:"destinations"`
	Shipments    []Shipment    `json:"shipments"`
	Settings     *Settings     `json:"settings,omitempty"`
	ExportDate   time.Time     `json:"exportDate"`
	Version      string        `json:"version"`
}
