package auth

import (
	"net/http"

	"iskacare/clinic-api/app/respond"
	"iskacare/clinic-api/internal"

	"github.com/gin-gonic/gin"
)

type verifyCodeBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func VerifyCode(c *gin.Context, d *internal.Deps) {
	var data verifyCodeBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadBody(c, err)
		return
	}

	if err := d.Auth.ConfirmEmailCode(c.Request.Context(), data.Email, data.Code); err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Code verified successfully",
	})
}
