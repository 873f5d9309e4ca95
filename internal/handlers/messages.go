package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ndudarev/carpool-backend/internal/models"
	"github.com/ndudarev/carpool-backend/internal/services"
)

// rideParticipant reports whether the user is the ride's driver or holds a
// booking on it.
func rideParticipant(db *gorm.DB, ride *models.Ride, userID uint) (bool, error) {
	if ride.DriverID == userID {
		return true, nil
	}
	var count int64
	err := db.Model(&models.Booking{}).
		Where("ride_id = ? AND passenger_id = ?", ride.ID, userID).
		Count(&count).Error
	return count > 0, err
}

// SendMessage stores a ride message and pushes it to the recipient
func SendMessage(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			RideID      uint   `json:"rideId" binding:"required"`
			RecipientID uint   `json:"recipientId" binding:"required"`
			Body        string `json:"body" binding:"required,max=1000"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var ride models.Ride
		if err := db.First(&ride, input.RideID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}

		ok, err := rideParticipant(db, &ride, userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to check ride"})
			return
		}
		if !ok {
			c.JSON(403, gin.H{"error": "Not a participant of this ride"})
			return
		}

		recipientOK, err := rideParticipant(db, &ride, input.RecipientID)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to check ride"})
			return
		}
		if !recipientOK {
			c.JSON(400, gin.H{"error": "Recipient is not a participant of this ride"})
			return
		}

		message := models.Message{
			SenderID:    userId,
			RecipientID: input.RecipientID,
			RideID:      input.RideID,
			Body:        input.Body,
		}

		if err := db.Create(&message).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to send message"})
			return
		}

		if hub != nil {
			hub.SendChatMessage(&message)
		}

		c.JSON(201, message)
	}
}

// GetRideMessages lists the caller's conversation on a ride
func GetRideMessages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		rideID := c.Param("id")

		var ride models.Ride
		if err := db.First(&ride, rideID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}

		ok, err := rideParticipant(db, &ride, userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to check ride"})
			return
		}
		if !ok {
			c.JSON(403, gin.H{"error": "Not a participant of this ride"})
			return
		}

		var messages []models.Message
		if err := db.Where("ride_id = ? AND (sender_id = ? OR recipient_id = ?)",
			ride.ID, userId, userId).
			Preload("Sender").
			Order("created_at ASC").
			Find(&messages).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch messages"})
			return
		}

		c.JSON(200, messages)
	}
}
