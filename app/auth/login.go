package auth

import (
	"net/http"

	"iskacare/clinic-api/app/respond"
	"iskacare/clinic-api/internal"

	"github.com/gin-gonic/gin"
)

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func Login(c *gin.Context, d *internal.Deps) {
	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadBody(c, err)
		return
	}

	res, err := d.Auth.Login(c.Request.Context(), data.Username, data.Password)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("auth_token", res.Token, int(d.Tokens.TTL().Seconds()), "/", "", c.Request.TLS != nil, true)

	c.JSON(http.StatusOK, gin.H{
		"token": res.Token,
		"user":  res.Account,
	})
}
