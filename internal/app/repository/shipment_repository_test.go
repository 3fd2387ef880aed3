package repository

import (
	"testing"
	"time"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupShipmentRepoTest(t *testing.T) (ShipmentRepository, *model.Destination, *gorm.DB) {
	gormDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(gormDB) })

	dest := &model.Destination{
		UserID: model.DemoUserID,
		Name:   "Mario Rossi",
		Address: model.Address{
			Street:  "Via Roma 1",
			City:    "Milano",
			ZipCode: "20100",
		},
	}
	require.NoError(t, gormDB.Create(dest).Error)

	return NewShipmentRepository(gormDB), dest, gormDB
}

func seedShipment(t *testing.T, repo ShipmentRepository, destID string, status model.ShipmentStatus, cost float64) *model.Shipment {
	shipment := &model.Shipment{
		UserID:         model.DemoUserID,
		DestinationID:  destID,
		TrackingNumber: "TRK" + string(status),
		Carrier:        "ACME Express",
		Status:         status,
		Cost:           cost,
	}
	require.NoError(t, repo.Create(shipment))
	return shipment
}

func TestShipmentRepository_CreateAssignsDefaults(t *testing.T) {
	repo, dest, _ := setupShipmentRepoTest(t)

	shipment := &model.Shipment{
		UserID:         model.DemoUserID,
		DestinationID:  dest.ID,
		TrackingNumber: "TRK12345678",
		Carrier:        "ACME Express",
	}
	require.NoError(t, repo.Create(shipment))

	assert.NotEmpty(t, shipment.ID)
	assert.Equal(t, model.StatusPending, shipment.Status)
	assert.Equal(t, "kg", shipment.WeightUnit)
	assert.Equal(t, "cm", shipment.Dimensions.Unit)
	assert.Equal(t, "EUR", shipment.Currency)
	assert.False(t, shipment.ShipDate.IsZero())
}

func TestShipmentRepository_FindAllPreloadsDestination(t *testing.T) {
	repo, dest, _ := setupShipmentRepoTest(t)

	seedShipment(t, repo, dest.ID, model.StatusPending, 10)

	shipments, err := repo.FindAll(model.DemoUserID)
	require.NoError(t, err)
	require.Len(t, shipments, 1)
	require.NotNil(t, shipments[0].Destination)
	assert.Equal(t, "Mario Rossi", shipments[0].Destination.Name)
}

func TestShipmentRepository_FindByIDScopedToUser(t *testing.T) {
	repo, dest, _ := setupShipmentRepoTest(t)

	created := seedShipment(t, repo, dest.ID, model.StatusPending, 10)

	found, err := repo.FindByID(created.ID, model.DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, created.TrackingNumber, found.TrackingNumber)

	_, err = repo.FindByID(created.ID, "other-user")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestShipmentRepository_Patch(t *testing.T) {
	repo, dest, _ := setupShipmentRepoTest(t)

	created := seedShipment(t, repo, dest.ID, model.StatusPending, 10)

	delivered := time.Now().Truncate(24 * time.Hour)
	err := repo.Patch(created.ID, model.DemoUserID, map[string]interface{}{
		"status":          string(model.StatusDelivered),
		"actual_delivery": delivered,
	})
	require.NoError(t, err)

	found, err := repo.FindByID(created.ID, model.DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, found.Status)
	require.NotNil(t, found.ActualDelivery)

	err = repo.Patch("missing-id", model.DemoUserID, map[string]interface{}{"carrier": "Other"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestShipmentRepository_Delete(t *testing.T) {
	repo, dest, _ := setupShipmentRepoTest(t)

	created := seedShipment(t, repo, dest.ID, model.StatusPending, 10)

	require.NoError(t, repo.Delete(created.ID, model.DemoUserID))
	assert.ErrorIs(t, repo.Delete(created.ID, model.DemoUserID), gorm.ErrRecordNotFound)
}

func TestShipmentRepository_SearchMatchesDestinationName(t *testing.T) {
	repo, dest, _ := setupShipmentRepoTest(t)

	seedShipment(t, repo, dest.ID, model.StatusPending, 10)

	results, err := repo.Search(model.DemoUserID, "rossi")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = repo.Search(model.DemoUserID, "acme")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = repo.Search(model.DemoUserID, "no-such-thing")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestShipmentRepository_Stats(t *testing.T) {
	repo, dest, _ := setupShipmentRepoTest(t)

	seedShipment(t, repo, dest.ID, model.StatusDelivered, 100)
	seedShipment(t, repo, dest.ID, model.StatusPending, 50)
	seedShipment(t, repo, dest.ID, model.StatusInTransit, 0)

	stats, err := repo.Stats(model.DemoUserID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.TotalDestinations)
	assert.Equal(t, int64(3), stats.TotalShipments)
	assert.Equal(t, int64(2), stats.ActiveShipments)
	assert.Equal(t, int64(1), stats.DeliveredShipments)
	assert.Equal(t, int64(3), stats.ShipmentsThisWeek)
	assert.InDelta(t, 150.0, stats.TotalCost, 0.001)
	assert.InDelta(t, 50.0, stats.AvgCost, 0.001)
	assert.Equal(t, int64(1), stats.StatusCounts["delivered"])
	assert.Equal(t, int64(1), stats.StatusCounts["pending"])
	assert.Equal(t, int64(3), stats.CarrierCounts["ACME Express"])
}

func TestShipmentRepository_StatsEmpty(t *testing.T) {
	repo, _, _ := setupShipmentRepoTest(t)

	stats, err := repo.Stats(model.DemoUserID)
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.TotalShipments)
	assert.Equal(t, int64(0), stats.ActiveShipments)
	assert.Equal(t, 0.0, stats.TotalCost)
	assert.Empty(t, stats.StatusCounts)
}
