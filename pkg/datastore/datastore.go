// Package datastore provides the client-side data access service: CRUD,
// search, sort, filter, statistics, and snapshot import/export over two
// interchangeable backends. LocalStore keeps everything in a key-value
// blob store; APIStore delegates to the remote REST API.
package datastore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no record has the requested ID.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a delete would orphan dependent
	// records and force was not set.
	ErrConflict = errors.New("record is still referenced")

	// ErrInvalidSnapshot is returned for import payloads that are not a
	// snapshot.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrUnknownKind is returned for an EntityKind the store does not know.
	ErrUnknownKind = errors.New("unknown entity kind")
)

// EntityKind names an exportable collection.
type EntityKind string

const (
	KindDestinations EntityKind = "destinations"
	KindShipments    EntityKind = "shipments"
)

// DestinationPatch is a partial update; nil fields are left unchanged.
type DestinationPatch struct {
	Name    *string `json:"name,omitempty"`
	Company *string `json:"company,omitempty"`
	Street  *string `json:"street,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	ZipCode *string `json:"zipCode,omitempty"`
	Country *string `json:"country,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// ShipmentPatch is a partial update; nil fields are left unchanged.
type ShipmentPatch struct {
	DestinationID    *string     `json:"destinationId,omitempty"`
	TrackingNumber   *string     `json:"trackingNumber,omitempty"`
	Carrier          *string     `json:"carrier,omitempty"`
	Status           *string     `json:"status,omitempty"`
	ShipDate         *string     `json:"shipDate,omitempty"`
	ExpectedDelivery *string     `json:"expectedDelivery,omitempty"`
	ActualDelivery   *string     `json:"actualDelivery,omitempty"`
	Weight           *float64    `json:"weight,omitempty"`
	WeightUnit       *string     `json:"weightUnit,omitempty"`
	Dimensions       *Dimensions `json:"dimensions,omitempty"`
	Cost             *float64    `json:"cost,omitempty"`
	Currency         *string     `json:"currency,omitempty"`
	Items            *string     `json:"items,omitempty"`
	Notes            *string     `json:"notes,omitempty"`
}

// Store is the contract both backends implement. The store performs no
// field validation; callers validate records before handing them over.
type Store interface {
	Destinations(ctx context.Context) ([]Destination, error)
	Destination(ctx context.Context, id string) (*Destination, error)
	// CreateDestination assigns a fresh ID and both timestamps.
	CreateDestination(ctx context.Context, destination *Destination) (*Destination, error)
	// UpdateDestination merges the patch onto the stored record,
	// preserving its ID and refreshing the update timestamp.
	UpdateDestination(ctx context.Context, id string, patch DestinationPatch) (*Destination, error)
	// DeleteDestination refuses to remove a destination that shipments
	// still reference unless force is set; forcing also removes those
	// shipments.
	DeleteDestination(ctx context.Context, id string, force bool) error
	// SearchDestinations matches a case-insensitive substring over name,
	// company, city, street, email, and phone digits. An empty or
	// whitespace query returns all records.
	SearchDestinations(ctx context.Context, query string) ([]Destination, error)

	Shipments(ctx context.Context) ([]Shipment, error)
	Shipment(ctx context.Context, id string) (*Shipment, error)
	CreateShipment(ctx context.Context, shipment *Shipment) (*Shipment, error)
	UpdateShipment(ctx context.Context, id string, patch ShipmentPatch) (*Shipment, error)
	DeleteShipment(ctx context.Context, id string) error
	// SearchShipments matches over tracking number, carrier, status, and
	// items.
	SearchShipments(ctx context.Context, query string) ([]Shipment, error)

	Settings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, settings *Settings) error

	Stats(ctx context.Context) (*Stats, error)

	Export(ctx context.Context) (*Snapshot, error)
	Import(ctx context.Context, snapshot *Snapshot) error
	// ExportCSV renders one collection as comma-separated text.
	ExportCSV(ctx context.Context, kind EntityKind) (string, error)
}
