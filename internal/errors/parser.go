package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a user-facing message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts a database error into an ErrorInfo. Postgres errors
// are matched on message text, the same strings the driver surfaces through
// GORM; context names the entity being operated on ("destination",
// "shipment", ...) so not-found and conflict messages can be specific.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "internal server error"}
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundInfo(context)
	}

	// Unique constraint violation (23505)
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
		if strings.Contains(errStr, "email") {
			return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "email is already registered"}
		}
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "resource already exists"}
	}

	// Foreign key constraint violation (23503)
	if strings.Contains(errStr, "foreign key constraint") {
		if strings.Contains(errStr, "still referenced") || strings.Contains(errStr, "restrict") {
			return ErrorInfo{
				Code:    DestinationInUse,
				Message: "cannot delete destination with associated shipments",
			}
		}
		return ErrorInfo{Code: ResourceNotFound, Message: "referenced resource does not exist"}
	}

	// Not-null constraint violation (23502)
	if strings.Contains(errStr, "null value") && strings.Contains(errStr, "not-null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "a required field is missing"}
	}

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{Code: InternalDatabaseError, Message: "database is unavailable, try again later"}
	}

	return ErrorInfo{Code: InternalServerError, Message: "internal server error"}
}

func notFoundInfo(context string) ErrorInfo {
	switch {
	case strings.Contains(context, "destination"):
		return ErrorInfo{Code: DestinationNotFound, Message: "Destination not found"}
	case strings.Contains(context, "shipment"):
		return ErrorInfo{Code: ShipmentNotFound, Message: "Shipment not found"}
	default:
		return ErrorInfo{Code: ResourceNotFound, Message: "Resource not found"}
	}
}
