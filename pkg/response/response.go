package response

import (
	"errors"
	"log"
	"net/http"
	"sync/atomic"

	"anoa.com/learnhub/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// Body is the envelope every endpoint answers with.
type Body struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Data    any                   `json:"data,omitempty"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
	Debug   string                `json:"debug,omitempty"`
}

var debug atomic.Bool

// SetDebug toggles inclusion of raw error chains in error bodies. Only meant
// for APP_ENV=development and set once at startup.
func SetDebug(enabled bool) {
	debug.Store(enabled)
}

// Success writes a successful envelope.
func Success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Body{Success: true, Message: message, Data: data})
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperror.MapErrorToStatus(err), ErrorBody(err))
}

// ErrorBody builds the envelope for err without writing it.
func ErrorBody(err error) Body {
	code := apperror.MapErrorToStatus(err)
	body := Body{Success: false, Message: publicMessage(err, code)}

	var verr *apperror.ValidationError
	if errors.As(err, &verr) {
		body.Message = "Validation failed"
		body.Errors = verr.Fields
	}

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	if debug.Load() {
		body.Debug = err.Error()
	}

	return body
}

func publicMessage(err error, code int) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}

	switch code {
	case http.StatusInternalServerError:
		return "internal server error"
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusUnauthorized:
		return "Authentication required"
	case http.StatusForbidden:
		return "Access denied"
	case http.StatusTooManyRequests:
		return "Too many requests, please try again later"
	}
	return err.Error()
}
