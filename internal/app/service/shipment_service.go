package service

import (
	"errors"
	"strings"
	"time"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/internal/app/repository"
	"github.com/MauroRinelli/Solship/internal/events"
	"github.com/MauroRinelli/Solship/pkg/logger"
	"gorm.io/gorm"
)

var ErrShipmentNotFound = errors.New("shipment not found")

type ShipmentService interface {
	GetShipments(userID string) ([]model.Shipment, error)
	GetShipment(id, userID string) (*model.Shipment, error)
	CreateShipment(userID string, shipment *model.Shipment) error
	UpdateShipment(id, userID string, fields map[string]interface{}) (*model.Shipment, error)
	DeleteShipment(id, userID string) error
	SearchShipments(userID, query string) ([]model.Shipment, error)
	GetStats(userID string) (*model.ShipmentStats, error)
}

type shipmentService struct {
	shipmentRepo    repository.ShipmentRepository
	destinationRepo repository.DestinationRepository
	bus             *events.Bus
}

func NewShipmentService(
	shipmentRepo repository.ShipmentRepository,
	destinationRepo repository.DestinationRepository,
	bus *events.Bus,
) ShipmentService {
	return &shipmentService{
		shipmentRepo:    shipmentRepo,
		destinationRepo: destinationRepo,
		bus:             bus,
	}
}

func (s *shipmentService) GetShipments(userID string) ([]model.Shipment, error) {
	logger.Debug("Fetching shipments", map[string]interface{}{
		"user_id": userID,
	})

	shipments, err := s.shipmentRepo.FindAll(userID)
	if err != nil {
		logger.Error("Failed to fetch shipments", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return shipments, nil
}

func (s *shipmentService) GetShipment(id, userID string) (*model.Shipment, error) {
	shipment, err := s.shipmentRepo.FindByID(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Shipment not found", map[string]interface{}{
				"shipment_id": id,
			})
			return nil, ErrShipmentNotFound
		}
		logger.Error("Failed to fetch shipment", err, map[string]interface{}{
			"shipment_id": id,
		})
		return nil, err
	}
	return shipment, nil
}

// CreateShipment validates the shipment, verifies the destination exists,
// and bumps the destination usage counter on success.
func (s *shipmentService) CreateShipment(userID string, shipment *model.Shipment) error {
	logger.Info("Creating shipment", map[string]interface{}{
		"user_id":         userID,
		"tracking_number": shipment.TrackingNumber,
		"destination_id":  shipment.DestinationID,
	})

	shipment.UserID = userID

	if fields := shipment.Validate(); len(fields) > 0 {
		logger.Warn("Shipment validation failed", map[string]interface{}{
			"user_id": userID,
			"fields":  fields,
		})
		return &ValidationError{Fields: fields}
	}

	if _, err := s.destinationRepo.FindByID(shipment.DestinationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Shipment references unknown destination", map[string]interface{}{
				"destination_id": shipment.DestinationID,
			})
			return ErrDestinationNotFound
		}
		return err
	}

	// Delivered-on-arrival shipments get their delivery date stamped once.
	if shipment.Status == model.StatusDelivered && shipment.ActualDelivery == nil {
		now := time.Now()
		shipment.ActualDelivery = &now
	}

	if err := s.shipmentRepo.Create(shipment); err != nil {
		logger.Error("Failed to create shipment", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	if err := s.destinationRepo.IncrementUsage(shipment.DestinationID, userID); err != nil {
		logger.Warn("Failed to increment destination usage", map[string]interface{}{
			"destination_id": shipment.DestinationID,
			"error":          err.Error(),
		})
	}

	s.bus.Publish(events.Event{
		Entity: events.EntityShipments,
		Action: events.ActionCreated,
		UserID: userID,
	})

	logger.Info("Shipment created successfully", map[string]interface{}{
		"shipment_id": shipment.ID,
		"user_id":     userID,
	})
	return nil
}

// UpdateShipment applies a partial update. When the status moves to
// delivered and no delivery date is recorded yet, the current time is
// stamped; an already recorded delivery date is never overwritten.
func (s *shipmentService) UpdateShipment(id, userID string, fields map[string]interface{}) (*model.Shipment, error) {
	logger.Info("Updating shipment", map[string]interface{}{
		"shipment_id": id,
		"user_id":     userID,
	})

	existing, err := s.GetShipment(id, userID)
	if err != nil {
		return nil, err
	}

	if status, ok := fields["status"].(string); ok {
		if !model.ShipmentStatus(status).Valid() {
			return nil, &ValidationError{Fields: map[string]string{"status": "unknown status"}}
		}
		if model.ShipmentStatus(status) == model.StatusDelivered &&
			existing.ActualDelivery == nil && fields["actual_delivery"] == nil {
			fields["actual_delivery"] = time.Now()
			logger.Debug("Stamping delivery date on status change", map[string]interface{}{
				"shipment_id": id,
			})
		}
	}

	if destinationID, ok := fields["destination_id"].(string); ok && destinationID != existing.DestinationID {
		if _, err := s.destinationRepo.FindByID(destinationID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDestinationNotFound
			}
			return nil, err
		}
	}

	if err := s.shipmentRepo.Patch(id, userID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentNotFound
		}
		logger.Error("Failed to update shipment", err, map[string]interface{}{
			"shipment_id": id,
		})
		return nil, err
	}

	updated, err := s.shipmentRepo.FindByID(id, userID)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(events.Event{
		Entity: events.EntityShipments,
		Action: events.ActionUpdated,
		UserID: userID,
	})

	logger.Info("Shipment updated successfully", map[string]interface{}{
		"shipment_id": id,
		"status":      updated.Status,
	})
	return updated, nil
}

func (s *shipmentService) DeleteShipment(id, userID string) error {
	logger.Info("Deleting shipment", map[string]interface{}{
		"shipment_id": id,
		"user_id":     userID,
	})

	if err := s.shipmentRepo.Delete(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Shipment not found for deletion", map[string]interface{}{
				"shipment_id": id,
			})
			return ErrShipmentNotFound
		}
		logger.Error("Failed to delete shipment", err, map[string]interface{}{
			"shipment_id": id,
		})
		return err
	}

	s.bus.Publish(events.Event{
		Entity: events.EntityShipments,
		Action: events.ActionDeleted,
		UserID: userID,
	})

	logger.Info("Shipment deleted successfully", map[string]interface{}{
		"shipment_id": id,
	})
	return nil
}

func (s *shipmentService) SearchShipments(userID, query string) ([]model.Shipment, error) {
	// A blank query means "everything", whitespace included.
	query = strings.TrimSpace(query)
	if query == "" {
		return s.GetShipments(userID)
	}

	shipments, err := s.shipmentRepo.Search(userID, query)
	if err != nil {
		logger.Error("Failed to search shipments", err, map[string]interface{}{
			"user_id": userID,
			"query":   query,
		})
		return nil, err
	}
	return shipments, nil
}

func (s *shipmentService) GetStats(userID string) (*model.ShipmentStats, error) {
	logger.Debug("Computing shipment stats", map[string]interface{}{
		"user_id": userID,
	})

	stats, err := s.shipmentRepo.Stats(userID)
	if err != nil {
		logger.Error("Failed to compute shipment stats", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return stats, nil
}
