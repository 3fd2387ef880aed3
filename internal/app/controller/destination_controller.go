package controller

import (
	stderrors "errors"
	"net/http"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/internal/app/service"
	"github.com/MauroRinelli/Solship/internal/errors"
	"github.com/MauroRinelli/Solship/internal/middleware"
	"github.com/gin-gonic/gin"
)

type DestinationController struct {
	destinationService service.DestinationService
}

func NewDestinationController(destinationService service.DestinationService) *DestinationController {
	return &DestinationController{
		destinationService: destinationService,
	}
}

type CreateDestinationRequest struct {
	Name    string        `json:"name" binding:"required"`
	Company string        `json:"company"`
	Address model.Address `json:"address"`
	Phone   string        `json:"phone"`
	Email   string        `json:"email"`
	Notes   string        `json:"notes"`
}

// UpdateDestinationRequest uses pointer fields so absent keys are
// distinguishable from explicit empty values.
type UpdateDestinationRequest struct {
	Name    *string `json:"name"`
	Company *string `json:"company"`
	Street  *string `json:"street"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	ZipCode *string `json:"zipCode"`
	Country *string `json:"country"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Notes   *string `json:"notes"`
}

func (req *UpdateDestinationRequest) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	set := func(column string, value *string) {
		if value != nil {
			fields[column] = *value
		}
	}
	set("name", req.Name)
	set("company", req.Company)
	set("street", req.Street)
	set("city", req.City)
	set("state", req.State)
	set("zip_code", req.ZipCode)
	set("country", req.Country)
	set("phone", req.Phone)
	set("email", req.Email)
	set("notes", req.Notes)
	return fields
}

// ListDestinations returns the caller's destinations, optionally filtered
// by the q search parameter.
// GET /api/destinations
func (ctrl *DestinationController) ListDestinations(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	destinations, err := ctrl.destinationService.SearchDestinations(userID, c.Query("q"))
	if err != nil {
		log.Error("Failed to fetch destinations", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "Failed to fetch destinations")
		return
	}

	respondOK(c, destinations)
}

// GetDestination returns one destination by ID.
// GET /api/destinations/:id
func (ctrl *DestinationController) GetDestination(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)
	id := c.Param("id")

	destination, err := ctrl.destinationService.GetDestination(id, userID)
	if err != nil {
		if stderrors.Is(err, service.ErrDestinationNotFound) {
			errors.NotFound(c, errors.DestinationNotFound, "Destination not found")
			return
		}
		log.Error("Failed to fetch destination", err, map[string]interface{}{
			"destination_id": id,
		})
		errors.InternalError(c, "Failed to fetch destination")
		return
	}

	respondOK(c, destination)
}

// CreateDestination creates a new destination.
// POST /api/destinations
func (ctrl *DestinationController) CreateDestination(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req CreateDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create destination request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request data")
		return
	}

	destination := &model.Destination{
		Name:    req.Name,
		Company: req.Company,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
		Notes:   req.Notes,
	}

	if err := ctrl.destinationService.CreateDestination(userID, destination); err != nil {
		var validationErr *service.ValidationError
		if stderrors.As(err, &validationErr) {
			errors.RespondWithValidationError(c, validationErr.Fields)
			return
		}
		log.Error("Failed to create destination", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.RespondWithDBError(c, err, "destination")
		return
	}

	respondCreated(c, destination, "Destination created successfully")
}

// UpdateDestination partially updates a destination.
// PUT /api/destinations/:id
func (ctrl *DestinationController) UpdateDestination(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)
	id := c.Param("id")

	var req UpdateDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update destination request", map[string]interface{}{
			"destination_id": id,
			"error":          err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request data")
		return
	}

	destination, err := ctrl.destinationService.UpdateDestination(id, userID, req.fields())
	if err != nil {
		if stderrors.Is(err, service.ErrDestinationNotFound) {
			errors.NotFound(c, errors.DestinationNotFound, "Destination not found")
			return
		}
		var validationErr *service.ValidationError
		if stderrors.As(err, &validationErr) {
			errors.RespondWithValidationError(c, validationErr.Fields)
			return
		}
		log.Error("Failed to update destination", err, map[string]interface{}{
			"destination_id": id,
		})
		errors.RespondWithDBError(c, err, "destination")
		return
	}

	respondOK(c, destination)
}

// DeleteDestination removes a destination unless shipments still reference
// it, which maps to a 400.
// DELETE /api/destinations/:id
func (ctrl *DestinationController) DeleteDestination(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)
	id := c.Param("id")

	if err := ctrl.destinationService.DeleteDestination(id, userID); err != nil {
		if stderrors.Is(err, service.ErrDestinationNotFound) {
			errors.NotFound(c, errors.DestinationNotFound, "Destination not found")
			return
		}
		if stderrors.Is(err, service.ErrDestinationInUse) {
			errors.RespondWithError(c, http.StatusBadRequest, errors.DestinationInUse,
				"Cannot delete destination with associated shipments")
			return
		}
		log.Error("Failed to delete destination", err, map[string]interface{}{
			"destination_id": id,
		})
		// Catches the FK restrict violation when a shipment raced the
		// service-level reference check.
		errors.RespondWithDBError(c, err, "destination")
		return
	}

	respondMessage(c, "Destination deleted successfully")
}
