package auth

import (
	"net/http"

	"iskacare/clinic-api/app/respond"
	"iskacare/clinic-api/internal"
	"iskacare/clinic-api/internal/model"
	"iskacare/clinic-api/internal/service"

	"github.com/gin-gonic/gin"
)

type registerBody struct {
	Email            string `json:"email"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	Role             string `json:"role"`
	VerificationCode string `json:"verificationCode"`
}

func Register(c *gin.Context, d *internal.Deps) {
	var data registerBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadBody(c, err)
		return
	}

	acc, err := d.Auth.CompleteRegistration(c.Request.Context(), service.RegisterInput{
		Email:    data.Email,
		Username: data.Username,
		Password: data.Password,
		Role:     model.Role(data.Role),
		Code:     data.VerificationCode,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"user":    acc,
	})
}
