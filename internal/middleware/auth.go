package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ndudarev/carpool-backend/pkg/utils"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		// First try to get token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// If not found in header, try query parameter (for WebSocket)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(403, gin.H{"error": "Authorization header or token query parameter required"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateAccessToken(tokenString)
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrTokenExpired):
				c.JSON(403, gin.H{"error": "Token expired or not yet valid"})
			case errors.Is(err, utils.ErrRefreshToken):
				c.JSON(403, gin.H{"error": "Cannot use refresh token"})
			default:
				c.JSON(403, gin.H{"error": "Could not validate credentials"})
			}
			c.Abort()
			return
		}

		c.Set("userId", claims.UserID)
		c.Next()
	}
}
