// Package auth contains the registration, login and password reset endpoints
package auth

import (
	"net/http"

	"iskacare/clinic-api/app/respond"
	"iskacare/clinic-api/internal"

	"github.com/gin-gonic/gin"
)

type emailBody struct {
	Email string `json:"email"`
}

// SendVerification mails a registration code to a new address
func SendVerification(c *gin.Context, d *internal.Deps) {
	var data emailBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadBody(c, err)
		return
	}

	ttl, err := d.Auth.RequestEmailVerification(c.Request.Context(), data.Email)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Verification code sent to your email",
		"expiresIn": ttl,
	})
}

func ResendVerification(c *gin.Context, d *internal.Deps) {
	var data emailBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadBody(c, err)
		return
	}

	ttl, err := d.Auth.ResendEmailVerification(c.Request.Context(), data.Email)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "A new verification code has been sent to your email",
		"expiresIn": ttl,
	})
}
