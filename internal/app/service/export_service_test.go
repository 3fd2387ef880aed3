package service

import (
	"strings"
	"testing"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/internal/app/repository"
	"github.com/MauroRinelli/Solship/internal/db"
	"github.com/MauroRinelli/Solship/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupExportServiceTest(t *testing.T) (ExportService, DestinationService, ShipmentService) {
	gormDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(gormDB) })

	bus := events.NewBus()
	destinationRepo := repository.NewDestinationRepository(gormDB)
	shipmentRepo := repository.NewShipmentRepository(gormDB)
	settingsRepo := repository.NewSettingsRepository(gormDB)

	return NewExportService(destinationRepo, shipmentRepo, settingsRepo, bus),
		NewDestinationService(destinationRepo, bus),
		NewShipmentService(shipmentRepo, destinationRepo, bus)
}

func TestExportService_SnapshotRoundTrip(t *testing.T) {
	exportSvc, destSvc, shipSvc := setupExportServiceTest(t)

	dest := validDestination()
	require.NoError(t, destSvc.CreateDestination(model.DemoUserID, dest))

	shipment := validShipment(dest.ID)
	require.NoError(t, shipSvc.CreateShipment(model.DemoUserID, shipment))

	snapshot, err := exportSvc.ExportSnapshot(model.DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, model.SnapshotVersion, snapshot.Version)
	assert.False(t, snapshot.ExportDate.IsZero())
	require.Len(t, snapshot.Destinations, 1)
	require.Len(t, snapshot.Shipments, 1)
	require.NotNil(t, snapshot.Settings)

	// Importing the snapshot back must reproduce the same record set.
	summary, err := exportSvc.ImportSnapshot(model.DemoUserID, snapshot)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Destinations)
	assert.Equal(t, 1, summary.Shipments)

	destinations, err := destSvc.GetDestinations(model.DemoUserID)
	require.NoError(t, err)
	require.Len(t, destinations, 1)
	assert.Equal(t, dest.ID, destinations[0].ID)

	shipments, err := shipSvc.GetShipments(model.DemoUserID)
	require.NoError(t, err)
	require.Len(t, shipments, 1)
	assert.Equal(t, shipment.ID, shipments[0].ID)
}

func TestExportService_ImportToleratesPartialSnapshot(t *testing.T) {
	exportSvc, destSvc, shipSvc := setupExportServiceTest(t)

	dest := validDestination()
	require.NoError(t, destSvc.CreateDestination(model.DemoUserID, dest))
	require.NoError(t, shipSvc.CreateShipment(model.DemoUserID, validShipment(dest.ID)))

	// A settings-only snapshot must leave destinations and shipments alone.
	summary, err := exportSvc.ImportSnapshot(model.DemoUserID, &model.Snapshot{
		Settings: &model.Settings{Theme: "dark"},
		Version:  model.SnapshotVersion,
	})
	require.NoError(t, err)
	assert.True(t, summary.Settings)
	assert.Zero(t, summary.Destinations)

	destinations, err := destSvc.GetDestinations(model.DemoUserID)
	require.NoError(t, err)
	assert.Len(t, destinations, 1)

	shipments, err := shipSvc.GetShipments(model.DemoUserID)
	require.NoError(t, err)
	assert.Len(t, shipments, 1)
}

func TestExportService_ImportRejectsBadInput(t *testing.T) {
	exportSvc, _, _ := setupExportServiceTest(t)

	_, err := exportSvc.ImportSnapshot(model.DemoUserID, nil)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = exportSvc.ImportSnapshot(model.DemoUserID, &model.Snapshot{Version: "9.9"})
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestExportService_CSVQuotesSpecialCharacters(t *testing.T) {
	exportSvc, destSvc, _ := setupExportServiceTest(t)

	dest := validDestination()
	dest.Name = "Smith, John"
	dest.Company = `The "Big" Co`
	require.NoError(t, destSvc.CreateDestination(model.DemoUserID, dest))

	out, err := exportSvc.ExportCSV(model.DemoUserID, EntityDestinations)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(destinationCSVHeader, ","), lines[0])
	assert.Contains(t, lines[1], `"Smith, John"`)
	assert.Contains(t, lines[1], `"The ""Big"" Co"`)
}

func TestExportService_CSVEmptyYieldsEmptyString(t *testing.T) {
	exportSvc, _, _ := setupExportServiceTest(t)

	out, err := exportSvc.ExportCSV(model.DemoUserID, EntityShipments)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExportService_CSVUnknownEntity(t *testing.T) {
	exportSvc, _, _ := setupExportServiceTest(t)

	_, err := exportSvc.ExportCSV(model.DemoUserID, "parcels")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestExportService_XLSX(t *testing.T) {
	exportSvc, destSvc, _ := setupExportServiceTest(t)

	require.NoError(t, destSvc.CreateDestination(model.DemoUserID, validDestination()))

	f, err := exportSvc.ExportXLSX(model.DemoUserID, EntityDestinations)
	require.NoError(t, err)

	name, err := f.GetCellValue("Destinations", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Mario Rossi", name)
}
