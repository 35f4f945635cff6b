// Package root contains endpoints that are not tied to a resource
package root

import (
	"net/http"

	"iskacare/clinic-api/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Heartbeat reports whether the server and its database are reachable
func Heartbeat(c *gin.Context, d *internal.Deps) {
	sqlDB, err := d.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}

	if err != nil {
		zap.L().Error("Database is unreachable", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
		c.Status(http.StatusServiceUnavailable)
		return
	}

	c.Status(http.StatusOK)
}
