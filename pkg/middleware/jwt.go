package middleware

import (
	"errors"
	"net/http"
	"strings"

	"iskacare/clinic-api/internal/store"
	"iskacare/clinic-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewJWTMiddleware rejects requests without a valid session token. The token
// is read from the Authorization header, falling back to the auth_token
// cookie. On success userID and role are set on the context.
func NewJWTMiddleware(tokens *security.TokenIssuer, accounts *store.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":   "Authorization token missing",
				"requestID": requestID,
			})
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			msg := "Authorization token invalid"
			if errors.Is(err, security.ErrTokenExpired) {
				msg = "Authorization token expired. Please log in again"
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":   msg,
				"requestID": requestID,
			})

			zap.L().Debug("Rejected token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		// The account may have been removed after the token was issued
		acc, err := accounts.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrAccountNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"message":   "Authorization token invalid",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"message":   "Server error. Please try again.",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check if account exists", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		if !acc.IsVerified {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":   "Please verify your email before logging in",
				"requestID": requestID,
			})
			return
		}

		c.Set("userID", acc.ID)
		c.Set("role", string(acc.Role))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}

		return ""
	}

	token, err := c.Cookie("auth_token")
	if err != nil {
		return ""
	}

	return token
}
