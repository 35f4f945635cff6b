package auth

import (
	"net/http"

	"iskacare/clinic-api/app/respond"
	"iskacare/clinic-api/internal"

	"github.com/gin-gonic/gin"
)

// Me returns the account behind the session token
func Me(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	acc, err := d.Auth.Account(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": acc,
	})
}
