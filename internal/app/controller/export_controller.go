package controller

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/internal/app/service"
	"github.com/MauroRinelli/Solship/internal/errors"
	"github.com/MauroRinelli/Solship/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ExportController struct {
	exportService service.ExportService
}

func NewExportController(exportService service.ExportService) *ExportController {
	return &ExportController{
		exportService: exportService,
	}
}

// ExportData returns a full JSON snapshot of the caller's data.
// GET /api/export
func (ctrl *ExportController) ExportData(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	snapshot, err := ctrl.exportService.ExportSnapshot(userID)
	if err != nil {
		log.Error("Failed to export snapshot", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "Failed to export data")
		return
	}

	respondOK(c, snapshot)
}

// ImportData loads a snapshot, replacing the sections it contains.
// POST /api/import
func (ctrl *ExportController) ImportData(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var snapshot model.Snapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		log.Warn("Invalid import payload", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		errors.BadRequest(c, errors.SnapshotInvalid, "Invalid snapshot data")
		return
	}

	summary, err := ctrl.exportService.ImportSnapshot(userID, &snapshot)
	if err != nil {
		if stderrors.Is(err, service.ErrInvalidSnapshot) ||
			stderrors.Is(err, service.ErrUnsupportedVersion) {
			errors.BadRequest(c, errors.SnapshotInvalid, err.Error())
			return
		}
		log.Error("Failed to import snapshot", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "Failed to import data")
		return
	}

	respondOK(c, summary)
}

// ExportCSV streams the entity's records as a CSV download.
// GET /api/export/:entity/csv
func (ctrl *ExportController) ExportCSV(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)
	entity := c.Param("entity")

	out, err := ctrl.exportService.ExportCSV(userID, entity)
	if err != nil {
		if stderrors.Is(err, service.ErrUnknownEntity) {
			errors.BadRequest(c, errors.ValidationInvalidInput, "Unknown entity type")
			return
		}
		log.Error("Failed to export CSV", err, map[string]interface{}{
			"user_id": userID,
			"entity":  entity,
		})
		errors.InternalError(c, "Failed to export CSV")
		return
	}

	filename := fmt.Sprintf("%s-%s.csv", entity, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(out))
}

// ExportXLSX streams the entity's records as a spreadsheet download.
// GET /api/export/:entity/xlsx
func (ctrl *ExportController) ExportXLSX(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)
	entity := c.Param("entity")

	f, err := ctrl.exportService.ExportXLSX(userID, entity)
	if err != nil {
		if stderrors.Is(err, service.ErrUnknownEntity) {
			errors.BadRequest(c, errors.ValidationInvalidInput, "Unknown entity type")
			return
		}
		log.Error("Failed to export spreadsheet", err, map[string]interface{}{
			"user_id": userID,
			"entity":  entity,
		})
		errors.InternalError(c, "Failed to export spreadsheet")
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", entity, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		log.Error("Failed to write spreadsheet response", err, map[string]interface{}{
			"user_id": userID,
		})
	}
}
