package repository

import (
	"strings"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/pkg/logger"
	"gorm.io/gorm"
)

type DestinationRepository interface {
	FindAll(userID string) ([]model.Destination, error)
	FindByID(id, userID string) (*model.Destination, error)
	Create(destination *model.Destination) error
	Patch(id, userID string, fields map[string]interface{}) error
	Delete(id, userID string) error
	Search(userID, query string) ([]model.Destination, error)
	CountShipments(id, userID string) (int64, error)
	IncrementUsage(id, userID string) error
	Count(userID string) (int64, error)
	DeleteAll(userID string) error
	CreateBatch(destinations []model.Destination) error
}

type destinationRepository struct {
	db *gorm.DB
}

func NewDestinationRepository(db *gorm.DB) DestinationRepository {
	return &destinationRepository{db: db}
}

func (r *destinationRepository) FindAll(userID string) ([]model.Destination, error) {
	var destinations []model.Destination
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&destinations).Error
	if err != nil {
		logger.Error("Failed to find destinations in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Destinations found in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(destinations),
	})
	return destinations, nil
}

func (r *destinationRepository) FindByID(id, userID string) (*model.Destination, error) {
	var destination model.Destination
	err := r.db.Where("id = ? AND user_id = ?", id, userID).
		First(&destination).Error
	if err != nil {
		return nil, err
	}
	return &destination, nil
}

func (r *destinationRepository) Create(destination *model.Destination) error {
	if err := r.db.Create(destination).Error; err != nil {
		logger.Error("Failed to create destination in database", err, map[string]interface{}{
			"user_id": destination.UserID,
			"name":    destination.Name,
		})
		return err
	}

	logger.Debug("Destination created in database", map[string]interface{}{
		"destination_id": destination.ID,
		"user_id":        destination.UserID,
	})
	return nil
}

// Patch applies a dynamic partial update built from only the supplied
// columns. GORM refreshes updated_at as part of the statement.
func (r *destinationRepository) Patch(id, userID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	res := r.db.Model(&model.Destination{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if res.Error != nil {
		logger.Error("Failed to update destination in database", res.Error, map[string]interface{}{
			"destination_id": id,
			"user_id":        userID,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Destination updated in database", map[string]interface{}{
		"destination_id": id,
		"fields":         len(fields),
	})
	return nil
}

func (r *destinationRepository) Delete(id, userID string) error {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Destination{})
	if res.Error != nil {
		logger.Error("Failed to delete destination from database", res.Error, map[string]interface{}{
			"destination_id": id,
			"user_id":        userID,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Destination deleted from database", map[string]interface{}{
		"destination_id": id,
	})
	return nil
}

// Search matches a case-insensitive substring over the fixed destination
// field set: name, company, city, street, email and phone.
func (r *destinationRepository) Search(userID, query string) ([]model.Destination, error) {
	term := "%" + strings.ToLower(query) + "%"

	var destinations []model.Destination
	err := r.db.Where("user_id = ?", userID).
		Where(`LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(city) LIKE ?
			OR LOWER(street) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?`,
			term, term, term, term, term, term).
		Order("created_at DESC").
		Find(&destinations).Error
	if err != nil {
		logger.Error("Failed to search destinations in database", err, map[string]interface{}{
			"user_id": userID,
			"query":   query,
		})
		return nil, err
	}

	logger.Debug("Destinations searched in database", map[string]interface{}{
		"user_id": userID,
		"query":   query,
		"count":   len(destinations),
	})
	return destinations, nil
}

func (r *destinationRepository) CountShipments(id, userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Shipment{}).
		Where("destination_id = ? AND user_id = ?", id, userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *destinationRepository) IncrementUsage(id, userID string) error {
	return r.db.Model(&model.Destination{}).
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error
}

func (r *destinationRepository) Count(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Destination{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// DeleteAll removes every destination belonging to the user. Callers must
// clear the user's shipments first or the foreign key will reject it.
func (r *destinationRepository) DeleteAll(userID string) error {
	res := r.db.Where("user_id = ?", userID).Delete(&model.Destination{})
	if res.Error != nil {
		logger.Error("Failed to delete user destinations", res.Error, map[string]interface{}{
			"user_id": userID,
		})
		return res.Error
	}

	logger.Debug("User destinations deleted", map[string]interface{}{
		"user_id": userID,
		"count":   res.RowsAffected,
	})
	return nil
}

func (r *destinationRepository) CreateBatch(destinations []model.Destination) error {
	if len(destinations) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(destinations, 100).Error; err != nil {
		logger.Error("Failed to batch create destinations", err, map[string]interface{}{
			"count": len(destinations),
		})
		return err
	}
	return nil
}
