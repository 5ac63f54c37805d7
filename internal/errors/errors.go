package errors

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/agricoop/api/internal/middleware"
	"github.com/stwalsh4118/agricoop/api/internal/services"
)

// Error code constants for standardized error responses
const (
	ErrNotFound       = "NOT_FOUND"
	ErrBadRequest     = "BAD_REQUEST"
	ErrInternalServer = "INTERNAL_SERVER_ERROR"
	ErrValidation     = "VALIDATION_ERROR"
	ErrUnauthorized   = "UNAUTHORIZED"
	ErrForbidden      = "FORBIDDEN"
	ErrConflict       = "CONFLICT"
)

// dateLayout is the calendar date layout accepted in request bodies.
const dateLayout = "2006-01-02"

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// NotFound returns a 404 Not Found error response.
// It logs a warning and sends a JSON response with the error details.
func NotFound(c *gin.Context, message string) {
	log := middleware.GetLogger(c)
	requestID := middleware.GetRequestID(c)

	if log != nil {
		log.Warn("Resource not found", map[string]interface{}{
			"message":    message,
			"request_id": requestID,
			"path":       c.Request.URL.Path,
		})
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error: ErrorDetail{
			Code:      ErrNotFound,
			Message:   message,
			RequestID: requestID,
		},
	})
}

// BadRequest returns a 400 Bad Request error response with optional details.
// It logs a warning and sends a JSON response with the error details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	log := middleware.GetLogger(c)
	requestID := middleware.GetRequestID(c)

	logFields := map[string]interface{}{
		"message":    message,
		"request_id": requestID,
		"path":       c.Request.URL.Path,
	}
	if details != nil {
		logFields["details"] = details
	}

	if log != nil {
		log.Warn("Bad request", logFields)
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:      ErrBadRequest,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	})
}

// Unauthorized returns a 401 response. Used when credentials are missing or invalid.
func Unauthorized(c *gin.Context, message string) {
	abortWith(c, http.StatusUnauthorized, ErrUnauthorized, message, "Unauthorized")
}

// Forbidden returns a 403 response for an authenticated actor lacking a capability.
func Forbidden(c *gin.Context, message string) {
	abortWith(c, http.StatusForbidden, ErrForbidden, message, "Forbidden")
}

// Conflict returns a 409 response when a write collides with existing data.
func Conflict(c *gin.Context, message string) {
	abortWith(c, http.StatusConflict, ErrConflict, message, "Conflict")
}

// ServiceValidation returns a 400 VALIDATION_ERROR for a rule enforced by the
// service layer rather than by request binding.
func ServiceValidation(c *gin.Context, message string) {
	abortWith(c, http.StatusBadRequest, ErrValidation, message, "Validation error")
}

func abortWith(c *gin.Context, status int, code, message, logMessage string) {
	log := middleware.GetLogger(c)
	requestID := middleware.GetRequestID(c)

	if log != nil {
		log.Warn(logMessage, map[string]interface{}{
			"message":    message,
			"request_id": requestID,
			"path":       c.Request.URL.Path,
		})
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	})
}

// FromService writes the response matching a service-layer error. Unknown
// errors become a 500 with a generic message.
func FromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		ServiceValidation(c, err.Error())
	case errors.Is(err, services.ErrUnauthenticated):
		Unauthorized(c, "Authentication required")
	case errors.Is(err, services.ErrForbidden):
		Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		Conflict(c, err.Error())
	default:
		InternalServerError(c, "An unexpected error occurred", err)
	}
}

// InternalServerError returns a 500 Internal Server Error response.
// It logs the error with full context and sends a generic error message to the client.
// The actual error details are not exposed to the client for security reasons.
func InternalServerError(c *gin.Context, message string, err error) {
	log := middleware.GetLogger(c)
	requestID := middleware.GetRequestID(c)

	logFields := map[string]interface{}{
		"message":    message,
		"request_id": requestID,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
	}

	if log != nil {
		log.Error("Internal server error", err, logFields)
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{
			Code:      ErrInternalServer,
			Message:   message,
			RequestID: requestID,
		},
	})
}

// ValidationError returns a 400 Bad Request error response with field-specific validation errors.
// It parses the validation errors from the validator library and formats them for the client.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	log := middleware.GetLogger(c)
	requestID := middleware.GetRequestID(c)

	// Convert validation errors to a map of field -> error message
	details := make(map[string]interface{})
	for _, err := range validationErrors {
		field := err.Field()
		details[field] = formatValidationError(err)
	}

	if log != nil {
		log.Warn("Validation error", map[string]interface{}{
			"request_id": requestID,
			"path":       c.Request.URL.Path,
			"fields":     details,
		})
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:      ErrValidation,
			Message:   "Validation failed for one or more fields",
			Details:   details,
			RequestID: requestID,
		},
	})
}

// formatValidationError converts a validator.FieldError to a human-readable
// message. Only the tags used by the request types get a dedicated wording.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Must be at least " + err.Param()
	case "max":
		if err.Kind() == reflect.String {
			return "Must be at most " + err.Param() + " characters long"
		}
		return "Must be at most " + err.Param()
	case "gt":
		return "Must be greater than " + err.Param()
	case "oneof":
		return "Must be one of: " + err.Param()
	case "datetime":
		if err.Param() == dateLayout {
			return "Must be a date formatted as YYYY-MM-DD"
		}
		return "Must be a date matching the layout " + err.Param()
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
