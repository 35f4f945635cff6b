package middleware

import (
	"net/http"
	"slices"

	"iskacare/clinic-api/internal/model"

	"github.com/gin-gonic/gin"
)

// RequireRole only lets through accounts holding one of roles. It must run
// after the JWT middleware.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := model.Role(c.GetString("role"))

		if !slices.Contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message":   "Access denied",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}
