package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShipmentValidate(t *testing.T) {
	s := &Shipment{
		TrackingNumber: "TRK12345678",
		Carrier:        "DHL",
		DestinationID:  "dest-1",
	}
	assert.Empty(t, s.Validate())

	s = &Shipment{}
	errs := s.Validate()
	assert.Contains(t, errs, "trackingNumber")
	assert.Contains(t, errs, "carrier")
	assert.Contains(t, errs, "destinationId")

	s = &Shipment{
		TrackingNumber: "TRK12345678",
		Carrier:        "DHL",
		DestinationID:  "dest-1",
		Weight:         -1,
		Cost:           -5,
	}
	errs = s.Validate()
	assert.Contains(t, errs, "weight")
	assert.Contains(t, errs, "cost")
}

func TestShipmentStatusValid(t *testing.T) {
	for _, st := range ShipmentStatuses {
		assert.True(t, st.Valid(), string(st))
	}
	assert.False(t, ShipmentStatus("lost-in-space").Valid())
}

func TestShipmentIsActive(t *testing.T) {
	for status, active := range map[ShipmentStatus]bool{
		StatusPending:        true,
		StatusInTransit:      true,
		StatusOutForDelivery: true,
		StatusDelivered:      false,
		StatusCancelled:      false,
		StatusFailedDelivery: false,
		StatusReturned:       false,
	} {
		s := &Shipment{Status: status}
		assert.Equal(t, active, s.IsActive(), string(status))
	}
}

func TestShipmentIsLate(t *testing.T) {
	past := time.Now().AddDate(0, 0, -3)
	future := time.Now().AddDate(0, 0, 3)

	s := &Shipment{Status: StatusInTransit, ExpectedDelivery: &past}
	assert.True(t, s.IsLate())

	s = &Shipment{Status: StatusInTransit, ExpectedDelivery: &future}
	assert.False(t, s.IsLate())

	// Delivered shipments are never late, even past the expected date.
	s = &Shipment{Status: StatusDelivered, ExpectedDelivery: &past}
	assert.False(t, s.IsLate())

	s = &Shipment{Status: StatusInTransit}
	assert.False(t, s.IsLate(), "no expected date means not late")
}

func TestShipmentDaysInTransit(t *testing.T) {
	shipped := time.Now().AddDate(0, 0, -10)
	delivered := shipped.Add(4 * 24 * time.Hour)

	s := &Shipment{ShipDate: shipped, ActualDelivery: &delivered}
	assert.Equal(t, 4, s.DaysInTransit())

	// A partial day still counts as a day in transit.
	delivered = shipped.Add(3*24*time.Hour + 6*time.Hour)
	s = &Shipment{ShipDate: shipped, ActualDelivery: &delivered}
	assert.Equal(t, 4, s.DaysInTransit())

	s = &Shipment{}
	assert.Equal(t, 0, s.DaysInTransit())
}

func TestShipmentVolume(t *testing.T) {
	s := &Shipment{Dimensions: Dimensions{Length: 2, Width: 3, Height: 4, Unit: "cm"}}
	assert.Equal(t, 24.0, s.Volume())
}
