package repository

import (
	"strings"
	"time"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/pkg/logger"
	"gorm.io/gorm"
)

type ShipmentRepository interface {
	FindAll(userID string) ([]model.Shipment, error)
	FindByID(id, userID string) (*model.Shipment, error)
	Create(shipment *model.Shipment) error
	Patch(id, userID string, fields map[string]interface{}) error
	Delete(id, userID string) error
	Search(userID, query string) ([]model.Shipment, error)
	Stats(userID string) (*model.ShipmentStats, error)
	DeleteAll(userID string) error
	CreateBatch(shipments []model.Shipment) error
}

type shipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) ShipmentRepository {
	return &shipmentRepository{db: db}
}

func (r *shipmentRepository) FindAll(userID string) ([]model.Shipment, error) {
	var shipments []model.Shipment
	err := r.db.Preload("Destination").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&shipments).Error
	if err != nil {
		logger.Error("Failed to find shipments in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Shipments found in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(shipments),
	})
	return shipments, nil
}

func (r *shipmentRepository) FindByID(id, userID string) (*model.Shipment, error) {
	var shipment model.Shipment
	err := r.db.Preload("Destination").
		Where("id = ? AND user_id = ?", id, userID).
		First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *shipmentRepository) Create(shipment *model.Shipment) error {
	if err := r.db.Create(shipment).Error; err != nil {
		logger.Error("Failed to create shipment in database", err, map[string]interface{}{
			"user_id":         shipment.UserID,
			"tracking_number": shipment.TrackingNumber,
			"destination_id":  shipment.DestinationID,
		})
		return err
	}

	logger.Debug("Shipment created in database", map[string]interface{}{
		"shipment_id":     shipment.ID,
		"user_id":         shipment.UserID,
		"tracking_number": shipment.TrackingNumber,
	})
	return nil
}

// Patch applies a dynamic partial update built from only the supplied
// columns. GORM refreshes updated_at as part of the statement.
func (r *shipmentRepository) Patch(id, userID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	res := r.db.Model(&model.Shipment{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if res.Error != nil {
		logger.Error("Failed to update shipment in database", res.Error, map[string]interface{}{
			"shipment_id": id,
			"user_id":     userID,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Shipment updated in database", map[string]interface{}{
		"shipment_id": id,
		"fields":      len(fields),
	})
	return nil
}

func (r *shipmentRepository) Delete(id, userID string) error {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Shipment{})
	if res.Error != nil {
		logger.Error("Failed to delete shipment from database", res.Error, map[string]interface{}{
			"shipment_id": id,
			"user_id":     userID,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Shipment deleted from database", map[string]interface{}{
		"shipment_id": id,
	})
	return nil
}

// DeleteAll removes every shipment belonging to the user. Used by snapshot
// import before loading the replacement records.
func (r *shipmentRepository) DeleteAll(userID string) error {
	res := r.db.Where("user_id = ?", userID).Delete(&model.Shipment{})
	if res.Error != nil {
		logger.Error("Failed to delete user shipments", res.Error, map[string]interface{}{
			"user_id": userID,
		})
		return res.Error
	}

	logger.Debug("User shipments deleted", map[string]interface{}{
		"user_id": userID,
		"count":   res.RowsAffected,
	})
	return nil
}

func (r *shipmentRepository) CreateBatch(shipments []model.Shipment) error {
	if len(shipments) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(shipments, 100).Error; err != nil {
		logger.Error("Failed to batch create shipments", err, map[string]interface{}{
			"count": len(shipments),
		})
		return err
	}
	return nil
}

// Search matches a case-insensitive substring over the fixed shipment field
// set (tracking number, carrier, status, items) plus the destination name.
func (r *shipmentRepository) Search(userID, query string) ([]model.Shipment, error) {
	term := "%" + strings.ToLower(query) + "%"

	var shipments []model.Shipment
	err := r.db.Preload("Destination").
		Joins("LEFT JOIN destinations ON destinations.id = shipments.destination_id").
		Where("shipments.user_id = ?", userID).
		Where(`LOWER(shipments.tracking_number) LIKE ? OR LOWER(shipments.carrier) LIKE ?
			OR LOWER(shipments.status) LIKE ? OR LOWER(shipments.items) LIKE ?
			OR LOWER(destinations.name) LIKE ?`,
			term, term, term, term, term).
		Order("shipments.created_at DESC").
		Find(&shipments).Error
	if err != nil {
		logger.Error("Failed to search shipments in database", err, map[string]interface{}{
			"user_id": userID,
			"query":   query,
		})
		return nil, err
	}

	logger.Debug("Shipments searched in database", map[string]interface{}{
		"user_id": userID,
		"query":   query,
		"count":   len(shipments),
	})
	return shipments, nil
}

// Stats computes the dashboard aggregate with a single conditional-sum query
// plus the two per-key breakdowns.
func (r *shipmentRepository) Stats(userID string) (*model.ShipmentStats, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	weekStart := now.Add(-7 * 24 * time.Hour)

	var agg struct {
		Total         int64
		Active        int64
		Delivered     int64
		ThisMonth     int64
		ThisWeek      int64
		TotalCost     float64
		CostThisMonth float64
		AvgCost       float64
	}
	err := r.db.Model(&model.Shipment{}).
		Select(`COUNT(*) as total,
			COALESCE(SUM(CASE WHEN status IN ('pending', 'in-transit') THEN 1 ELSE 0 END), 0) as active,
			COALESCE(SUM(CASE WHEN status = 'delivered' THEN 1 ELSE 0 END), 0) as delivered,
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) as this_month,
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) as this_week,
			COALESCE(SUM(cost), 0) as total_cost,
			COALESCE(SUM(CASE WHEN created_at >= ? THEN cost ELSE 0 END), 0) as cost_this_month,
			COALESCE(AVG(cost), 0) as avg_cost`,
			monthStart, weekStart, monthStart).
		Where("user_id = ?", userID).
		Scan(&agg).Error
	if err != nil {
		logger.Error("Failed to aggregate shipment stats", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	statusCounts, err := r.countBy("status", userID)
	if err != nil {
		return nil, err
	}
	carrierCounts, err := r.countBy("carrier", userID)
	if err != nil {
		return nil, err
	}

	var totalDestinations int64
	if err := r.db.Model(&model.Destination{}).
		Where("user_id = ?", userID).
		Count(&totalDestinations).Error; err != nil {
		return nil, err
	}

	stats := &model.ShipmentStats{
		TotalDestinations:  totalDestinations,
		TotalShipments:     agg.Total,
		ShipmentsThisMonth: agg.ThisMonth,
		ShipmentsThisWeek:  agg.ThisWeek,
		ActiveShipments:    agg.Active,
		DeliveredShipments: agg.Delivered,
		TotalCost:          agg.TotalCost,
		CostThisMonth:      agg.CostThisMonth,
		AvgCost:            agg.AvgCost,
		StatusCounts:       statusCounts,
		CarrierCounts:      carrierCounts,
	}

	logger.Debug("Shipment stats aggregated", map[string]interface{}{
		"user_id":         userID,
		"total_shipments": stats.TotalShipments,
		"total_cost":      stats.TotalCost,
	})
	return stats, nil
}

func (r *shipmentRepository) countBy(column, userID string) (map[string]int64, error) {
	rows := []struct {
		Key   string
		Count int64
	}{}
	err := r.db.Model(&model.Shipment{}).
		Select(column+" as key, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to count shipments by "+column, err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}
