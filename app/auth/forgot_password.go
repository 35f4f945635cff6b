package auth

import (
	"net/http"

	"iskacare/clinic-api/app/respond"
	"iskacare/clinic-api/internal"

	"github.com/gin-gonic/gin"
)

func ForgotPassword(c *gin.Context, d *internal.Deps) {
	var data emailBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadBody(c, err)
		return
	}

	ttl, err := d.Auth.RequestPasswordReset(c.Request.Context(), data.Email)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Password reset code sent to your email",
		"expiresIn": ttl,
	})
}

func ResendReset(c *gin.Context, d *internal.Deps) {
	var data emailBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadBody(c, err)
		return
	}

	ttl, err := d.Auth.ResendPasswordReset(c.Request.Context(), data.Email)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "A new password reset code has been sent to your email",
		"expiresIn": ttl,
	})
}
