package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the failure half of the API envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RespondWithError writes the standard failure envelope.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error:   errorCode,
		Message: message,
	})
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// RespondWithDBError classifies a database error through ParseError and
// writes the matching failure envelope.
func RespondWithDBError(c *gin.Context, err error, context string) {
	info := ParseError(err, context)
	RespondWithError(c, statusForCode(info.Code), info.Code, info.Message)
}

func statusForCode(code string) int {
	switch code {
	case DestinationNotFound, ShipmentNotFound, ResourceNotFound:
		return http.StatusNotFound
	case DestinationInUse, ValidationRequired, ValidationInvalidInput:
		return http.StatusBadRequest
	case AuthEmailAlreadyExists, ResourceAlreadyExists, ResourceConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ValidationErrorResponse carries per-field validation messages.
type ValidationErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Success: false,
		Error:   ValidationInvalidInput,
		Message: "invalid input",
		Fields:  fields,
	})
}
