package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ndudarev/carpool-backend/internal/models"
	"github.com/ndudarev/carpool-backend/internal/services"
)

type RegisterInput struct {
	Email     string     `json:"email" binding:"required,email"`
	Password  string     `json:"password" binding:"required,min=6"`
	FirstName string     `json:"firstName" binding:"required"`
	LastName  string     `json:"lastName" binding:"required"`
	Birthday  *time.Time `json:"birthday"`
}

// Register creates a new user account
func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var existing int64
		if err := db.Model(&models.User{}).Where("email = ?", input.Email).Count(&existing).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to check email"})
			return
		}
		if existing > 0 {
			c.JSON(409, gin.H{"error": "Cannot use this email address"})
			return
		}

		user := models.User{
			Email:     input.Email,
			Password:  input.Password,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Birthday:  input.Birthday,
		}
		if err := user.HashPassword(); err != nil {
			c.JSON(500, gin.H{"error": "Failed to hash password"})
			return
		}

		if result := db.Create(&user); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to create user"})
			return
		}

		c.JSON(201, privateProfile(&user))
	}
}

func privateProfile(user *models.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"birthday":  user.Birthday,
		"rating":    user.Rating,
		"avatarUrl": user.AvatarURL,
		"vehicles":  user.Vehicles,
	}
}

// GetProfile retrieves the current user's profile with their vehicles
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.Preload("Vehicles").First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, privateProfile(&user))
	}
}

// UpdateProfile applies a partial update to the current user's info
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			FirstName *string    `json:"firstName"`
			LastName  *string    `json:"lastName"`
			Birthday  *time.Time `json:"birthday"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		// Update fields individually to handle empty strings properly
		if input.FirstName != nil {
			user.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			user.LastName = *input.LastName
		}
		if input.Birthday != nil {
			user.Birthday = input.Birthday
		}

		if err := db.Save(&user).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update profile"})
			return
		}

		c.JSON(200, privateProfile(&user))
	}
}

// DeleteProfile removes the current user's account. Owned vehicles, rides
// and bookings go with it.
func DeleteProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		if err := db.Transaction(func(tx *gorm.DB) error {
			var rideIDs []uint
			if err := tx.Model(&models.Ride{}).Where("driver_id = ?", userId).
				Pluck("id", &rideIDs).Error; err != nil {
				return err
			}
			if len(rideIDs) > 0 {
				if err := tx.Where("ride_id IN ?", rideIDs).Delete(&models.Booking{}).Error; err != nil {
					return err
				}
				if err := tx.Where("ride_id IN ?", rideIDs).Delete(&models.Message{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("passenger_id = ?", userId).Delete(&models.Booking{}).Error; err != nil {
				return err
			}
			if err := tx.Where("driver_id = ?", userId).Delete(&models.Ride{}).Error; err != nil {
				return err
			}
			if err := tx.Where("owner_id = ?", userId).Delete(&models.Vehicle{}).Error; err != nil {
				return err
			}
			return tx.Delete(&user).Error
		}); err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete user"})
			return
		}

		if err := services.RevokeUserTokens(c.Request.Context(), userId); err != nil {
			c.JSON(500, gin.H{"error": "Failed to revoke sessions"})
			return
		}

		c.Status(204)
	}
}

// ResetPassword sets a new password for the current user and revokes all of
// their refresh tokens
func ResetPassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Password string `json:"password" binding:"required,min=6"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		user.Password = input.Password
		if err := user.HashPassword(); err != nil {
			c.JSON(500, gin.H{"error": "Failed to hash password"})
			return
		}

		if err := db.Save(&user).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update password"})
			return
		}

		if err := services.RevokeUserTokens(c.Request.Context(), userId); err != nil {
			c.JSON(500, gin.H{"error": "Failed to revoke sessions"})
			return
		}

		c.JSON(200, privateProfile(&user))
	}
}

// GetUser returns another user's public profile with their upcoming rides
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")

		var user models.User
		if err := db.Preload("Rides", "departure_at > ?", time.Now()).
			First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "User not found"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to fetch user"})
			return
		}

		c.JSON(200, gin.H{
			"id":        user.ID,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"rating":    user.Rating,
			"avatarUrl": user.AvatarURL,
			"rides":     user.Rides,
		})
	}
}

// UploadAvatar stores a new profile picture for the current user
func UploadAvatar(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		file, err := c.FormFile("avatar")
		if err != nil {
			c.JSON(400, gin.H{"error": "Avatar file is required"})
			return
		}

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		url, err := services.UploadImage(file, "avatars")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to upload avatar"})
			return
		}

		user.AvatarURL = url
		if err := db.Save(&user).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update profile"})
			return
		}

		c.JSON(200, gin.H{"avatarUrl": url})
	}
}
