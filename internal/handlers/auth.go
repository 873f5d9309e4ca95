package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ndudarev/carpool-backend/internal/config"
	"github.com/ndudarev/carpool-backend/internal/models"
	"github.com/ndudarev/carpool-backend/internal/services"
	"github.com/ndudarev/carpool-backend/pkg/utils"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func issueTokenPair(c *gin.Context, cfg config.Config, userID uint) (*utils.TokenPair, bool) {
	pair, err := utils.GenerateTokenPair(userID, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to generate token"})
		return nil, false
	}

	if err := services.StoreRefreshToken(c.Request.Context(), userID, pair.RefreshTokenID, cfg.RefreshTokenTTL); err != nil {
		c.JSON(500, gin.H{"error": "Failed to store refresh token"})
		return nil, false
	}

	return pair, true
}

// Login exchanges email+password for an access/refresh token pair
func Login(db *gorm.DB, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if result := db.Where("email = ?", input.Email).First(&user); result.Error != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		pair, ok := issueTokenPair(c, cfg, user.ID)
		if !ok {
			return
		}

		c.JSON(200, pair)
	}
}

// RefreshToken rotates a refresh token into a new token pair
func RefreshToken(db *gorm.DB, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RefreshInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		claims, err := utils.ValidateRefreshToken(input.RefreshToken)
		if err != nil {
			c.JSON(403, gin.H{"error": "Could not validate credentials"})
			return
		}

		active, err := services.IsRefreshTokenActive(c.Request.Context(), claims.JTI)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to check refresh token"})
			return
		}
		if !active {
			c.JSON(403, gin.H{"error": "Refresh token has been revoked"})
			return
		}

		var user models.User
		if result := db.First(&user, claims.UserID); result.Error != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		// Rotate: the presented token is spent regardless of what follows
		if err := services.RevokeRefreshToken(c.Request.Context(), claims.UserID, claims.JTI); err != nil {
			c.JSON(500, gin.H{"error": "Failed to revoke refresh token"})
			return
		}

		pair, ok := issueTokenPair(c, cfg, user.ID)
		if !ok {
			return
		}

		c.JSON(200, pair)
	}
}
