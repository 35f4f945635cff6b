package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const siteverifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

type turnstileResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

type TurnstileConfig struct {
	Enabled bool
	Secret  string
	// VerifyURL overrides the Cloudflare siteverify endpoint
	VerifyURL string
	Client    *http.Client
}

// NewTurnstileMiddleware checks the TurnstileToken header against Cloudflare
// before letting a request through. It is a no-op when disabled.
func NewTurnstileMiddleware(cfg TurnstileConfig) gin.HandlerFunc {
	if cfg.VerifyURL == "" {
		cfg.VerifyURL = siteverifyURL
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		requestID := c.GetString("requestID")

		token := c.GetHeader("TurnstileToken")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"message":   "Missing or invalid turnstile token",
				"requestID": requestID,
			})
			return
		}

		ok, err := verifyTurnstile(c.Request.Context(), cfg, token, c.ClientIP())
		if err != nil {
			zap.L().Error("Failed to verify turnstile token", zap.Error(err), zap.String("requestID", requestID))
		}

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":   "Unauthorized",
				"requestID": requestID,
			})
			return
		}

		c.Next()
	}
}

func verifyTurnstile(ctx context.Context, cfg TurnstileConfig, token, ip string) (bool, error) {
	body, err := json.Marshal(gin.H{
		"secret":   cfg.Secret,
		"response": token,
		"remoteip": ip,
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.VerifyURL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := cfg.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("siteverify request failed, %w", err)
	}
	defer resp.Body.Close()

	var res turnstileResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return false, fmt.Errorf("failed to decode siteverify response, %w", err)
	}

	if !res.Success {
		zap.L().Debug("Turnstile rejected token", zap.Strings("error_codes", res.ErrorCodes))
	}

	return res.Success, nil
}
