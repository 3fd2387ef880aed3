package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/internal/app/repository"
	"github.com/MauroRinelli/Solship/internal/events"
	"github.com/MauroRinelli/Solship/pkg/logger"
	"github.com/xuri/excelize/v2"
)

var (
	ErrInvalidSnapshot    = errors.New("invalid snapshot")
	ErrUnknownEntity      = errors.New("unknown entity type")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

const (
	EntityDestinations = "destinations"
	EntityShipments    = "shipments"
)

var destinationCSVHeader = []string{
	"ID", "Name", "Company", "Street", "City", "State", "ZipCode", "Country", "Phone", "Email", "Notes",
}

var shipmentCSVHeader = []string{
	"ID", "TrackingNumber", "Carrier", "Status", "ShipDate", "ExpectedDelivery", "Destination", "Cost",
}

type ExportService interface {
	ExportSnapshot(userID string) (*model.Snapshot, error)
	ImportSnapshot(userID string, snapshot *model.Snapshot) (*ImportSummary, error)
	ExportCSV(userID, entity string) (string, error)
	ExportXLSX(userID, entity string) (*excelize.File, error)
}

// ImportSummary reports how many records each snapshot section contributed.
type ImportSummary struct {
	Destinations int  `json:"destinations"`
	Shipments    int  `json:"shipments"`
	Settings     bool `json:"settings"`
}

type exportService struct {
	destinationRepo repository.DestinationRepository
	shipmentRepo    repository.ShipmentRepository
	settingsRepo    repository.SettingsRepository
	bus             *events.Bus
}

func NewExportService(
	destinationRepo repository.DestinationRepository,
	shipmentRepo repository.ShipmentRepository,
	settingsRepo repository.SettingsRepository,
	bus *events.Bus,
) ExportService {
	return &exportService{
		destinationRepo: destinationRepo,
		shipmentRepo:    shipmentRepo,
		settingsRepo:    settingsRepo,
		bus:             bus,
	}
}

func (s *exportService) ExportSnapshot(userID string) (*model.Snapshot, error) {
	logger.Info("Exporting data snapshot", map[string]interface{}{
		"user_id": userID,
	})

	destinations, err := s.destinationRepo.FindAll(userID)
	if err != nil {
		return nil, err
	}
	shipments, err := s.shipmentRepo.FindAll(userID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settingsRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	// The preloaded destination is redundant inside a snapshot; the
	// destinations section already carries every record.
	for i := range shipments {
		shipments[i].Destination = nil
	}

	snapshot := &model.Snapshot{
		Destinations: destinations,
		Shipments:    shipments,
		Settings:     settings,
		ExportDate:   time.Now(),
		Version:      model.SnapshotVersion,
	}

	logger.Info("Snapshot exported", map[string]interface{}{
		"user_id":      userID,
		"destinations": len(destinations),
		"shipments":    len(shipments),
	})
	return snapshot, nil
}

// ImportSnapshot replaces the user's records with the snapshot contents.
// Sections missing from the snapshot are left untouched, so a
// destinations-only snapshot keeps the existing shipments (unless those
// shipments reference destinations the snapshot no longer contains, which
// the foreign key rejects).
func (s *exportService) ImportSnapshot(userID string, snapshot *model.Snapshot) (*ImportSummary, error) {
	if snapshot == nil {
		return nil, ErrInvalidSnapshot
	}
	if snapshot.Version != "" && snapshot.Version != model.SnapshotVersion {
		logger.Warn("Snapshot version not supported", map[string]interface{}{
			"version": snapshot.Version,
		})
		return nil, ErrUnsupportedVersion
	}

	logger.Info("Importing data snapshot", map[string]interface{}{
		"user_id":      userID,
		"destinations": len(snapshot.Destinations),
		"shipments":    len(snapshot.Shipments),
	})

	summary := &ImportSummary{}

	if snapshot.Shipments != nil || snapshot.Destinations != nil {
		if err := s.shipmentRepo.DeleteAll(userID); err != nil {
			return nil, err
		}
	}

	if snapshot.Destinations != nil {
		if err := s.destinationRepo.DeleteAll(userID); err != nil {
			return nil, err
		}
		destinations := snapshot.Destinations
		for i := range destinations {
			destinations[i].UserID = userID
		}
		if err := s.destinationRepo.CreateBatch(destinations); err != nil {
			return nil, err
		}
		summary.Destinations = len(destinations)
	}

	if snapshot.Shipments != nil {
		shipments := snapshot.Shipments
		for i := range shipments {
			shipments[i].UserID = userID
			shipments[i].Destination = nil
		}
		if err := s.shipmentRepo.CreateBatch(shipments); err != nil {
			return nil, err
		}
		summary.Shipments = len(shipments)
	}

	if snapshot.Settings != nil {
		settings := *snapshot.Settings
		settings.UserID = userID
		if err := s.settingsRepo.Upsert(&settings); err != nil {
			return nil, err
		}
		summary.Settings = true
	}

	s.bus.Publish(events.Event{
		Entity: events.EntityShipments,
		Action: events.ActionImported,
		UserID: userID,
	})

	logger.Info("Snapshot imported", map[string]interface{}{
		"user_id":      userID,
		"destinations": summary.Destinations,
		"shipments":    summary.Shipments,
	})
	return summary, nil
}

// ExportCSV renders the entity's records as comma-separated text with a
// fixed header order. An empty record set yields an empty string.
func (s *exportService) ExportCSV(userID, entity string) (string, error) {
	header, rows, err := s.tabulate(userID, entity)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(header); err != nil {
		return "", err
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return strings.TrimSuffix(sb.String(), "\n"), nil
}

// ExportXLSX renders the same table as a spreadsheet with one sheet named
// after the entity.
func (s *exportService) ExportXLSX(userID, entity string) (*excelize.File, error) {
	header, rows, err := s.tabulate(userID, entity)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := strings.ToUpper(entity[:1]) + entity[1:]
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, title := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for rowIdx, row := range rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	logger.Debug("Spreadsheet export built", map[string]interface{}{
		"user_id": userID,
		"entity":  entity,
		"rows":    len(rows),
	})
	return f, nil
}

func (s *exportService) tabulate(userID, entity string) ([]string, [][]string, error) {
	switch entity {
	case EntityDestinations:
		destinations, err := s.destinationRepo.FindAll(userID)
		if err != nil {
			return nil, nil, err
		}
		rows := make([][]string, 0, len(destinations))
		for _, d := range destinations {
			rows = append(rows, []string{
				d.ID,
				d.Name,
				d.Company,
				d.Address.Street,
				d.Address.City,
				d.Address.State,
				d.Address.ZipCode,
				d.Address.Country,
				d.Phone,
				d.Email,
				d.Notes,
			})
		}
		return destinationCSVHeader, rows, nil

	case EntityShipments:
		shipments, err := s.shipmentRepo.FindAll(userID)
		if err != nil {
			return nil, nil, err
		}
		rows := make([][]string, 0, len(shipments))
		for _, sh := range shipments {
			destinationName := ""
			if sh.Destination != nil {
				destinationName = sh.Destination.Name
			}
			rows = append(rows, []string{
				sh.ID,
				sh.TrackingNumber,
				sh.Carrier,
				string(sh.Status),
				formatDate(&sh.ShipDate),
				formatDate(sh.ExpectedDelivery),
				destinationName,
				strconv.FormatFloat(sh.Cost, 'f', 2, 64),
			})
		}
		return shipmentCSVHeader, rows, nil
	}

	return nil, nil, fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
