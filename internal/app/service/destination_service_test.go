package service

import (
	"errors"
	"testing"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/internal/app/repository"
	"github.com/MauroRinelli/Solship/internal/db"
	"github.com/MauroRinelli/Solship/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDestinationServiceTest(t *testing.T) (DestinationService, ShipmentService, *gorm.DB) {
	gormDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(gormDB) })

	bus := events.NewBus()
	destinationRepo := repository.NewDestinationRepository(gormDB)
	shipmentRepo := repository.NewShipmentRepository(gormDB)

	return NewDestinationService(destinationRepo, bus),
		NewShipmentService(shipmentRepo, destinationRepo, bus),
		gormDB
}

func validDestination() *model.Destination {
	return &model.Destination{
		Name: "Mario Rossi",
		Address: model.Address{
			Street:  "Via Roma 1",
			City:    "Milano",
			ZipCode: "20100",
		},
		Email: "mario@example.com",
		Phone: "+39 02 1234567",
	}
}

func TestDestinationService_CreateAndGet(t *testing.T) {
	svc, _, _ := setupDestinationServiceTest(t)

	dest := validDestination()
	require.NoError(t, svc.CreateDestination(model.DemoUserID, dest))
	require.NotEmpty(t, dest.ID)

	found, err := svc.GetDestination(dest.ID, model.DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, "Mario Rossi", found.Name)
	assert.Equal(t, model.DefaultCountry, found.Address.Country)
}

func TestDestinationService_CreateRejectsInvalid(t *testing.T) {
	svc, _, _ := setupDestinationServiceTest(t)

	dest := validDestination()
	dest.Name = ""
	dest.Email = "not-an-email"

	err := svc.CreateDestination(model.DemoUserID, dest)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "name")
	assert.Contains(t, validationErr.Fields, "email")
}

func TestDestinationService_GetUnknownReturnsNotFound(t *testing.T) {
	svc, _, _ := setupDestinationServiceTest(t)

	_, err := svc.GetDestination("missing-id", model.DemoUserID)
	assert.ErrorIs(t, err, ErrDestinationNotFound)
}

func TestDestinationService_UpdatePartial(t *testing.T) {
	svc, _, _ := setupDestinationServiceTest(t)

	dest := validDestination()
	require.NoError(t, svc.CreateDestination(model.DemoUserID, dest))

	updated, err := svc.UpdateDestination(dest.ID, model.DemoUserID, map[string]interface{}{
		"city":    "Napoli",
		"company": "ACME Srl",
	})
	require.NoError(t, err)
	assert.Equal(t, "Napoli", updated.Address.City)
	assert.Equal(t, "ACME Srl", updated.Company)
	assert.Equal(t, "Mario Rossi", updated.Name)
}

func TestDestinationService_UpdateRejectsInvalidMerge(t *testing.T) {
	svc, _, _ := setupDestinationServiceTest(t)

	dest := validDestination()
	require.NoError(t, svc.CreateDestination(model.DemoUserID, dest))

	_, err := svc.UpdateDestination(dest.ID, model.DemoUserID, map[string]interface{}{
		"zip_code": "abc",
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestDestinationService_DeleteBlockedByShipments(t *testing.T) {
	destSvc, shipSvc, _ := setupDestinationServiceTest(t)

	dest := validDestination()
	require.NoError(t, destSvc.CreateDestination(model.DemoUserID, dest))

	shipment := &model.Shipment{
		DestinationID:  dest.ID,
		TrackingNumber: "TRK12345678",
		Carrier:        "ACME Express",
	}
	require.NoError(t, shipSvc.CreateShipment(model.DemoUserID, shipment))

	err := destSvc.DeleteDestination(dest.ID, model.DemoUserID)
	assert.ErrorIs(t, err, ErrDestinationInUse)

	// Once the shipment is gone the destination can be removed.
	require.NoError(t, shipSvc.DeleteShipment(shipment.ID, model.DemoUserID))
	require.NoError(t, destSvc.DeleteDestination(dest.ID, model.DemoUserID))

	_, err = destSvc.GetDestination(dest.ID, model.DemoUserID)
	assert.ErrorIs(t, err, ErrDestinationNotFound)
}

func TestDestinationService_DeleteUnknownReturnsNotFound(t *testing.T) {
	svc, _, _ := setupDestinationServiceTest(t)

	err := svc.DeleteDestination("missing-id", model.DemoUserID)
	assert.ErrorIs(t, err, ErrDestinationNotFound)
}

func TestDestinationService_SearchEmptyQueryReturnsAll(t *testing.T) {
	svc, _, _ := setupDestinationServiceTest(t)

	require.NoError(t, svc.CreateDestination(model.DemoUserID, validDestination()))

	second := validDestination()
	second.Name = "Luigi Verdi"
	second.Email = "luigi@example.com"
	require.NoError(t, svc.CreateDestination(model.DemoUserID, second))

	all, err := svc.SearchDestinations(model.DemoUserID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Whitespace-only queries behave the same as empty ones.
	all, err = svc.SearchDestinations(model.DemoUserID, "   ")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	matched, err := svc.SearchDestinations(model.DemoUserID, "luigi")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Luigi Verdi", matched[0].Name)
}

func TestValidationErrorUnwrapsSentinel(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"name": "name is required"}}
	assert.True(t, errors.Is(err, ErrValidationFailed))
}
