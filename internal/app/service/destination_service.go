package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/internal/app/repository"
	"github.com/MauroRinelli/Solship/internal/events"
	"github.com/MauroRinelli/Solship/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrDestinationNotFound = errors.New("destination not found")
	ErrDestinationInUse    = errors.New("destination has associated shipments")
	ErrValidationFailed    = errors.New("validation failed")
)

// ValidationError carries the per-field messages produced by a model's
// Validate method alongside the ErrValidationFailed sentinel.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

type DestinationService interface {
	GetDestinations(userID string) ([]model.Destination, error)
	GetDestination(id, userID string) (*model.Destination, error)
	CreateDestination(userID string, destination *model.Destination) error
	UpdateDestination(id, userID string, fields map[string]interface{}) (*model.Destination, error)
	DeleteDestination(id, userID string) error
	SearchDestinations(userID, query string) ([]model.Destination, error)
}

type destinationService struct {
	destinationRepo repository.DestinationRepository
	bus             *events.Bus
}

func NewDestinationService(destinationRepo repository.DestinationRepository, bus *events.Bus) DestinationService {
	return &destinationService{
		destinationRepo: destinationRepo,
		bus:             bus,
	}
}

func (s *destinationService) GetDestinations(userID string) ([]model.Destination, error) {
	logger.Debug("Fetching destinations", map[string]interface{}{
		"user_id": userID,
	})

	destinations, err := s.destinationRepo.FindAll(userID)
	if err != nil {
		logger.Error("Failed to fetch destinations", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return destinations, nil
}

func (s *destinationService) GetDestination(id, userID string) (*model.Destination, error) {
	destination, err := s.destinationRepo.FindByID(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Destination not found", map[string]interface{}{
				"destination_id": id,
			})
			return nil, ErrDestinationNotFound
		}
		logger.Error("Failed to fetch destination", err, map[string]interface{}{
			"destination_id": id,
		})
		return nil, err
	}
	return destination, nil
}

func (s *destinationService) CreateDestination(userID string, destination *model.Destination) error {
	logger.Info("Creating destination", map[string]interface{}{
		"user_id": userID,
		"name":    destination.Name,
	})

	destination.UserID = userID

	if fields := destination.Validate(); len(fields) > 0 {
		logger.Warn("Destination validation failed", map[string]interface{}{
			"user_id": userID,
			"fields":  fields,
		})
		return &ValidationError{Fields: fields}
	}

	if err := s.destinationRepo.Create(destination); err != nil {
		logger.Error("Failed to create destination", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	s.bus.Publish(events.Event{
		Entity: events.EntityDestinations,
		Action: events.ActionCreated,
		UserID: userID,
	})

	logger.Info("Destination created successfully", map[string]interface{}{
		"destination_id": destination.ID,
		"user_id":        userID,
	})
	return nil
}

// UpdateDestination applies a partial update and returns the refreshed
// record. Unknown IDs map to ErrDestinationNotFound.
func (s *destinationService) UpdateDestination(id, userID string, fields map[string]interface{}) (*model.Destination, error) {
	logger.Info("Updating destination", map[string]interface{}{
		"destination_id": id,
		"user_id":        userID,
	})

	existing, err := s.GetDestination(id, userID)
	if err != nil {
		return nil, err
	}

	merged := *existing
	applyDestinationFields(&merged, fields)
	if fieldErrs := merged.Validate(); len(fieldErrs) > 0 {
		logger.Warn("Destination validation failed", map[string]interface{}{
			"destination_id": id,
			"fields":         fieldErrs,
		})
		return nil, &ValidationError{Fields: fieldErrs}
	}

	if err := s.destinationRepo.Patch(id, userID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDestinationNotFound
		}
		logger.Error("Failed to update destination", err, map[string]interface{}{
			"destination_id": id,
		})
		return nil, err
	}

	updated, err := s.destinationRepo.FindByID(id, userID)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(events.Event{
		Entity: events.EntityDestinations,
		Action: events.ActionUpdated,
		UserID: userID,
	})

	logger.Info("Destination updated successfully", map[string]interface{}{
		"destination_id": id,
	})
	return updated, nil
}

// DeleteDestination refuses to remove a destination that still has
// shipments pointing at it.
func (s *destinationService) DeleteDestination(id, userID string) error {
	logger.Info("Deleting destination", map[string]interface{}{
		"destination_id": id,
		"user_id":        userID,
	})

	if _, err := s.GetDestination(id, userID); err != nil {
		return err
	}

	count, err := s.destinationRepo.CountShipments(id, userID)
	if err != nil {
		logger.Error("Failed to count destination shipments", err, map[string]interface{}{
			"destination_id": id,
		})
		return err
	}
	if count > 0 {
		logger.Warn("Destination delete blocked by associated shipments", map[string]interface{}{
			"destination_id": id,
			"shipments":      count,
		})
		return ErrDestinationInUse
	}

	if err := s.destinationRepo.Delete(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDestinationNotFound
		}
		logger.Error("Failed to delete destination", err, map[string]interface{}{
			"destination_id": id,
		})
		return err
	}

	s.bus.Publish(events.Event{
		Entity: events.EntityDestinations,
		Action: events.ActionDeleted,
		UserID: userID,
	})

	logger.Info("Destination deleted successfully", map[string]interface{}{
		"destination_id": id,
	})
	return nil
}

func (s *destinationService) SearchDestinations(userID, query string) ([]model.Destination, error) {
	// A blank query means "everything", whitespace included.
	query = strings.TrimSpace(query)
	if query == "" {
		return s.GetDestinations(userID)
	}

	destinations, err := s.destinationRepo.Search(userID, query)
	if err != nil {
		logger.Error("Failed to search destinations", err, map[string]interface{}{
			"user_id": userID,
			"query":   query,
		})
		return nil, err
	}
	return destinations, nil
}

// applyDestinationFields mirrors a column-keyed patch onto the in-memory
// model so the merged record can be validated before writing.
func applyDestinationFields(d *model.Destination, fields map[string]interface{}) {
	for column, value := range fields {
		str, _ := value.(string)
		switch column {
		case "name":
			d.Name = str
		case "company":
			d.Company = str
		case "street":
			d.Address.Street = str
		case "city":
			d.Address.City = str
		case "state":
			d.Address.State = str
		case "zip_code":
			d.Address.ZipCode = str
		case "country":
			d.Address.Country = str
		case "phone":
			d.Phone = str
		case "email":
			d.Email = str
		case "notes":
			d.Notes = str
		}
	}
}
