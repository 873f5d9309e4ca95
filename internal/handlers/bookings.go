package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ndudarev/carpool-backend/internal/models"
	"github.com/ndudarev/carpool-backend/internal/services"
)

// CreateBooking requests seats on a ride for the current user
func CreateBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			RideID uint `json:"rideId" binding:"required"`
			Seats  int  `json:"seats" binding:"required,min=1"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := services.BookRide(db, input.RideID, userId, input.Seats)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrRideNotFound):
				c.JSON(404, gin.H{"error": err.Error()})
			case errors.Is(err, services.ErrOwnRide),
				errors.Is(err, services.ErrRideExpired),
				errors.Is(err, services.ErrAlreadyBooked),
				errors.Is(err, services.ErrNotEnoughSeats):
				c.JSON(400, gin.H{"error": err.Error()})
			default:
				c.JSON(500, gin.H{"error": "Failed to create booking"})
			}
			return
		}

		c.JSON(201, booking)
	}
}

// GetMyBookings lists the current user's bookings with their rides
func GetMyBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var bookings []models.Booking
		if err := db.Where("passenger_id = ?", userId).
			Preload("Ride").
			Preload("Ride.Driver").
			Preload("Ride.Vehicle").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, bookings)
	}
}

// DeleteBooking cancels one of the current user's bookings
func DeleteBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		bookingId := c.Param("id")

		var booking models.Booking
		if err := db.Where("passenger_id = ?", userId).First(&booking, bookingId).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		if err := db.Delete(&booking).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete booking"})
			return
		}

		c.Status(204)
	}
}
