package controller

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/internal/app/service"
	"github.com/MauroRinelli/Solship/internal/errors"
	"github.com/MauroRinelli/Solship/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ShipmentController struct {
	shipmentService service.ShipmentService
}

func NewShipmentController(shipmentService service.ShipmentService) *ShipmentController {
	return &ShipmentController{
		shipmentService: shipmentService,
	}
}

type CreateShipmentRequest struct {
	DestinationID    string           `json:"destinationId" binding:"required"`
	TrackingNumber   string           `json:"trackingNumber" binding:"required"`
	Carrier          string           `json:"carrier" binding:"required"`
	Status           string           `json:"status"`
	ShipDate         string           `json:"shipDate"`
	ExpectedDelivery string           `json:"expectedDelivery"`
	Weight           float64          `json:"weight"`
	WeightUnit       string           `json:"weightUnit"`
	Dimensions       model.Dimensions `json:"dimensions"`
	Cost             float64          `json:"cost"`
	Currency         string           `json:"currency"`
	Items            string           `json:"items"`
	Notes            string           `json:"notes"`
}

// UpdateShipmentRequest uses pointer fields so absent keys are
// distinguishable from explicit empty values.
type UpdateShipmentRequest struct {
	DestinationID    *string  `json:"destinationId"`
	TrackingNumber   *string  `json:"trackingNumber"`
	Carrier          *string  `json:"carrier"`
	Status           *string  `json:"status"`
	ShipDate         *string  `json:"shipDate"`
	ExpectedDelivery *string  `json:"expectedDelivery"`
	ActualDelivery   *string  `json:"actualDelivery"`
	Weight           *float64 `json:"weight"`
	WeightUnit       *string  `json:"weightUnit"`
	Cost             *float64 `json:"cost"`
	Currency         *string  `json:"currency"`
	Items            *string  `json:"items"`
	Notes            *string  `json:"notes"`
}

const dateLayout = "2006-01-02"

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

func (req *UpdateShipmentRequest) fields() (map[string]interface{}, map[string]string) {
	fields := map[string]interface{}{}
	fieldErrs := map[string]string{}

	setStr := func(column string, value *string) {
		if value != nil {
			fields[column] = *value
		}
	}
	setDate := func(column, name string, value *string) {
		if value == nil {
			return
		}
		if *value == "" {
			fields[column] = nil
			return
		}
		parsed, err := parseDate(*value)
		if err != nil {
			fieldErrs[name] = "invalid date, expected YYYY-MM-DD"
			return
		}
		fields[column] = parsed
	}

	setStr("destination_id", req.DestinationID)
	setStr("tracking_number", req.TrackingNumber)
	setStr("carrier", req.Carrier)
	setStr("status", req.Status)
	setDate("ship_date", "shipDate", req.ShipDate)
	setDate("expected_delivery", "expectedDelivery", req.ExpectedDelivery)
	setDate("actual_delivery", "actualDelivery", req.ActualDelivery)
	setStr("weight_unit", req.WeightUnit)
	setStr("currency", req.Currency)
	setStr("items", req.Items)
	setStr("notes", req.Notes)
	if req.Weight != nil {
		fields["weight"] = *req.Weight
	}
	if req.Cost != nil {
		fields["cost"] = *req.Cost
	}

	return fields, fieldErrs
}

// ListShipments returns the caller's shipments, optionally filtered by the
// q search parameter.
// GET /api/shipments
func (ctrl *ShipmentController) ListShipments(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	shipments, err := ctrl.shipmentService.SearchShipments(userID, c.Query("q"))
	if err != nil {
		log.Error("Failed to fetch shipments", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "Failed to fetch shipments")
		return
	}

	respondOK(c, shipments)
}

// GetShipment returns one shipment by ID.
// GET /api/shipments/:id
func (ctrl *ShipmentController) GetShipment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)
	id := c.Param("id")

	shipment, err := ctrl.shipmentService.GetShipment(id, userID)
	if err != nil {
		if stderrors.Is(err, service.ErrShipmentNotFound) {
			errors.NotFound(c, errors.ShipmentNotFound, "Shipment not found")
			return
		}
		log.Error("Failed to fetch shipment", err, map[string]interface{}{
			"shipment_id": id,
		})
		errors.InternalError(c, "Failed to fetch shipment")
		return
	}

	respondOK(c, shipment)
}

// CreateShipment creates a new shipment.
// POST /api/shipments
func (ctrl *ShipmentController) CreateShipment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create shipment request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request data")
		return
	}

	shipment := &model.Shipment{
		DestinationID:  req.DestinationID,
		TrackingNumber: req.TrackingNumber,
		Carrier:        req.Carrier,
		Status:         model.ShipmentStatus(req.Status),
		Weight:         req.Weight,
		WeightUnit:     req.WeightUnit,
		Dimensions:     req.Dimensions,
		Cost:           req.Cost,
		Currency:       req.Currency,
		Items:          req.Items,
		Notes:          req.Notes,
	}

	fieldErrs := map[string]string{}
	if req.ShipDate != "" {
		parsed, err := parseDate(req.ShipDate)
		if err != nil {
			fieldErrs["shipDate"] = "invalid date, expected YYYY-MM-DD"
		} else {
			shipment.ShipDate = parsed
		}
	}
	if req.ExpectedDelivery != "" {
		parsed, err := parseDate(req.ExpectedDelivery)
		if err != nil {
			fieldErrs["expectedDelivery"] = "invalid date, expected YYYY-MM-DD"
		} else {
			shipment.ExpectedDelivery = &parsed
		}
	}
	if len(fieldErrs) > 0 {
		errors.RespondWithValidationError(c, fieldErrs)
		return
	}

	if err := ctrl.shipmentService.CreateShipment(userID, shipment); err != nil {
		if stderrors.Is(err, service.ErrDestinationNotFound) {
			errors.NotFound(c, errors.DestinationNotFound, "Destination not found")
			return
		}
		var validationErr *service.ValidationError
		if stderrors.As(err, &validationErr) {
			errors.RespondWithValidationError(c, validationErr.Fields)
			return
		}
		log.Error("Failed to create shipment", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.RespondWithDBError(c, err, "shipment")
		return
	}

	respondCreated(c, shipment, "Shipment created successfully")
}

// UpdateShipment partially updates a shipment.
// PUT /api/shipments/:id
func (ctrl *ShipmentController) UpdateShipment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)
	id := c.Param("id")

	var req UpdateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update shipment request", map[string]interface{}{
			"shipment_id": id,
			"error":       err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request data")
		return
	}

	fields, fieldErrs := req.fields()
	if len(fieldErrs) > 0 {
		errors.RespondWithValidationError(c, fieldErrs)
		return
	}

	shipment, err := ctrl.shipmentService.UpdateShipment(id, userID, fields)
	if err != nil {
		if stderrors.Is(err, service.ErrShipmentNotFound) {
			errors.NotFound(c, errors.ShipmentNotFound, "Shipment not found")
			return
		}
		if stderrors.Is(err, service.ErrDestinationNotFound) {
			errors.NotFound(c, errors.DestinationNotFound, "Destination not found")
			return
		}
		var validationErr *service.ValidationError
		if stderrors.As(err, &validationErr) {
			errors.RespondWithValidationError(c, validationErr.Fields)
			return
		}
		log.Error("Failed to update shipment", err, map[string]interface{}{
			"shipment_id": id,
		})
		errors.RespondWithDBError(c, err, "shipment")
		return
	}

	respondOK(c, shipment)
}

// DeleteShipment removes a shipment.
// DELETE /api/shipments/:id
func (ctrl *ShipmentController) DeleteShipment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)
	id := c.Param("id")

	if err := ctrl.shipmentService.DeleteShipment(id, userID); err != nil {
		if stderrors.Is(err, service.ErrShipmentNotFound) {
			errors.NotFound(c, errors.ShipmentNotFound, "Shipment not found")
			return
		}
		log.Error("Failed to delete shipment", err, map[string]interface{}{
			"shipment_id": id,
		})
		errors.InternalError(c, "Failed to delete shipment")
		return
	}

	respondMessage(c, "Shipment deleted successfully")
}

// GetStats returns the dashboard aggregate.
// GET /api/shipments/stats
func (ctrl *ShipmentController) GetStats(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	stats, err := ctrl.shipmentService.GetStats(userID)
	if err != nil {
		log.Error("Failed to compute stats", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.RespondWithError(c, http.StatusInternalServerError, errors.InternalDatabaseError,
			"Failed to compute statistics")
		return
	}

	respondOK(c, stats)
}
