// Package respond turns service errors into JSON error responses
package respond

import (
	"errors"
	"net/http"

	"iskacare/clinic-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serverError = "Server error. Please try again."

// StatusFor maps an error kind to the HTTP status returned for it
func StatusFor(k service.Kind) int {
	switch k {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindDeliveryFailed, service.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Error writes err as a JSON error response. Errors that are not service
// errors are logged and replaced with a generic message.
func Error(c *gin.Context, err error) {
	requestID := c.GetString("requestID")

	var e *service.Error
	if !errors.As(err, &e) {
		zap.L().Error("Unhandled error", zap.Error(err), zap.String("requestID", requestID))

		c.JSON(http.StatusInternalServerError, gin.H{
			"message":   serverError,
			"requestID": requestID,
		})
		return
	}

	c.JSON(StatusFor(e.Kind), gin.H{
		"message":   e.Message,
		"requestID": requestID,
	})
}

// BadBody replies to a request whose body could not be bound or was larger
// than the body size limit
func BadBody(c *gin.Context, err error) {
	requestID := c.GetString("requestID")

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"message":   "Request body size exceeds limit",
			"requestID": requestID,
		})
		return
	}

	zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))

	c.JSON(http.StatusBadRequest, gin.H{
		"message":   "Invalid request body",
		"requestID": requestID,
	})
}
