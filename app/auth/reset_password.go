package auth

import (
	"net/http"

	"iskacare/clinic-api/app/respond"
	"iskacare/clinic-api/internal"

	"github.com/gin-gonic/gin"
)

type resetPasswordBody struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func ResetPassword(c *gin.Context, d *internal.Deps) {
	var data resetPasswordBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadBody(c, err)
		return
	}

	if err := d.Auth.ResetPassword(c.Request.Context(), data.Email, data.Code, data.NewPassword); err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successfully. You can now login with your new password.",
	})
}
