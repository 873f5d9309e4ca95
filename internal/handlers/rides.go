package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ndudarev/carpool-backend/internal/models"
	"github.com/ndudarev/carpool-backend/internal/services"
)

type RideCreateInput struct {
	Departure    string    `json:"departure" binding:"required"`
	Arrival      string    `json:"arrival" binding:"required"`
	DepartureAt  time.Time `json:"departureAt" binding:"required"`
	ArrivalAt    time.Time `json:"arrivalAt" binding:"required"`
	Seats        int       `json:"seats" binding:"required,min=1,max=4"`
	Price        int       `json:"price" binding:"min=0"`
	WithApproval *bool     `json:"withApproval"`
	Comment      string    `json:"comment" binding:"max=255"`
	VehicleID    *uint     `json:"vehicleId"`
}

// CreateRide posts a new ride with the current user as driver
func CreateRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input RideCreateInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.DepartureAt.Before(time.Now()) {
			c.JSON(400, gin.H{"error": "Ride departure must be in the future"})
			return
		}
		if input.ArrivalAt.Before(input.DepartureAt) {
			c.JSON(400, gin.H{"error": "Ride arrival must be after departure"})
			return
		}

		// A referenced vehicle must belong to the driver
		if input.VehicleID != nil {
			var count int64
			if err := db.Model(&models.Vehicle{}).
				Where("id = ? AND owner_id = ?", *input.VehicleID, userId).
				Count(&count).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to check vehicle"})
				return
			}
			if count == 0 {
				c.JSON(400, gin.H{"error": "User vehicle not found"})
				return
			}
		}

		withApproval := true
		if input.WithApproval != nil {
			withApproval = *input.WithApproval
		}

		ride := models.Ride{
			DriverID:     userId,
			VehicleID:    input.VehicleID,
			Departure:    input.Departure,
			Arrival:      input.Arrival,
			DepartureAt:  input.DepartureAt,
			ArrivalAt:    input.ArrivalAt,
			Seats:        input.Seats,
			Price:        input.Price,
			WithApproval: withApproval,
			Comment:      input.Comment,
		}

		if err := db.Create(&ride).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create ride"})
			return
		}

		c.JSON(201, ride)
	}
}

// SearchRides finds upcoming rides, optionally filtered by route labels
func SearchRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		departure := c.Query("departure")
		arrival := c.Query("arrival")

		var rides []models.Ride
		query := db.Preload("Driver").Preload("Vehicle").
			Where("departure_at > ?", time.Now()).
			Order("departure_at ASC")

		if departure != "" {
			query = query.Where("LOWER(departure) LIKE LOWER(?)", "%"+strings.ToLower(departure)+"%")
		}
		if arrival != "" {
			query = query.Where("LOWER(arrival) LIKE LOWER(?)", "%"+strings.ToLower(arrival)+"%")
		}

		if err := query.Find(&rides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rides"})
			return
		}

		c.JSON(200, rides)
	}
}

// GetMyRides lists rides where the current user is the driver
func GetMyRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var rides []models.Ride
		if err := db.Where("driver_id = ?", userId).
			Preload("Vehicle").
			Order("departure_at DESC").
			Find(&rides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rides"})
			return
		}

		c.JSON(200, rides)
	}
}

// GetRide returns one ride with its driver, vehicle and free seat count
func GetRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID := c.Param("id")

		var ride models.Ride
		if err := db.Preload("Driver").Preload("Vehicle").First(&ride, rideID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}

		freeSeats, err := services.FreeSeats(db, &ride)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to compute free seats"})
			return
		}

		c.JSON(200, gin.H{
			"ride":      ride,
			"freeSeats": freeSeats,
		})
	}
}

func currentUserRide(c *gin.Context, db *gorm.DB, rideID string) (*models.Ride, bool) {
	userId := c.GetUint("userId")

	var ride models.Ride
	if err := db.First(&ride, rideID).Error; err != nil {
		c.JSON(404, gin.H{"error": "Ride not found"})
		return nil, false
	}
	if ride.DriverID != userId {
		c.JSON(403, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return &ride, true
}

// UpdateRide applies a partial update to a ride owned by the caller
func UpdateRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Departure    *string    `json:"departure"`
			Arrival      *string    `json:"arrival"`
			DepartureAt  *time.Time `json:"departureAt"`
			ArrivalAt    *time.Time `json:"arrivalAt"`
			Price        *int       `json:"price"`
			WithApproval *bool      `json:"withApproval"`
			Comment      *string    `json:"comment"`
			VehicleID    *uint      `json:"vehicleId"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		ride, ok := currentUserRide(c, db, c.Param("id"))
		if !ok {
			return
		}

		if input.Departure != nil {
			ride.Departure = *input.Departure
		}
		if input.Arrival != nil {
			ride.Arrival = *input.Arrival
		}
		if input.DepartureAt != nil {
			ride.DepartureAt = *input.DepartureAt
		}
		if input.ArrivalAt != nil {
			ride.ArrivalAt = *input.ArrivalAt
		}
		if input.DepartureAt != nil || input.ArrivalAt != nil {
			if ride.DepartureAt.Before(time.Now()) {
				c.JSON(400, gin.H{"error": "Ride departure must be in the future"})
				return
			}
			if ride.ArrivalAt.Before(ride.DepartureAt) {
				c.JSON(400, gin.H{"error": "Ride arrival must be after departure"})
				return
			}
		}
		if input.Price != nil {
			if *input.Price < 0 {
				c.JSON(400, gin.H{"error": "Price cannot be negative"})
				return
			}
			ride.Price = *input.Price
		}
		if input.WithApproval != nil {
			ride.WithApproval = *input.WithApproval
		}
		if input.Comment != nil {
			ride.Comment = *input.Comment
		}
		if input.VehicleID != nil {
			var count int64
			if err := db.Model(&models.Vehicle{}).
				Where("id = ? AND owner_id = ?", *input.VehicleID, userId).
				Count(&count).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to check vehicle"})
				return
			}
			if count == 0 {
				c.JSON(400, gin.H{"error": "User vehicle not found"})
				return
			}
			ride.VehicleID = input.VehicleID
		}

		if err := db.Save(ride).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update ride"})
			return
		}

		c.JSON(200, ride)
	}
}

// DeleteRide removes a ride owned by the caller together with its bookings
func DeleteRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ride, ok := currentUserRide(c, db, c.Param("id"))
		if !ok {
			return
		}

		if err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("ride_id = ?", ride.ID).Delete(&models.Booking{}).Error; err != nil {
				return err
			}
			if err := tx.Where("ride_id = ?", ride.ID).Delete(&models.Message{}).Error; err != nil {
				return err
			}
			return tx.Delete(ride).Error
		}); err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete ride"})
			return
		}

		c.Status(204)
	}
}

// GetRideBookings lists the bookings on one of the caller's rides
func GetRideBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ride, ok := currentUserRide(c, db, c.Param("id"))
		if !ok {
			return
		}

		var bookings []models.Booking
		if err := db.Where("ride_id = ?", ride.ID).
			Preload("Passenger").
			Order("filled_at ASC").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, bookings)
	}
}

// ApproveBooking approves a pending booking on one of the caller's rides
func ApproveBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var rideID, bookingID uint
		if err := parseUintParam(c, "id", &rideID); err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride id"})
			return
		}
		if err := parseUintParam(c, "bookingId", &bookingID); err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking id"})
			return
		}

		booking, err := services.ApproveBooking(db, userId, rideID, bookingID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrRideNotFound), errors.Is(err, services.ErrBookingNotFound):
				c.JSON(404, gin.H{"error": err.Error()})
			case errors.Is(err, services.ErrNotRideOwner):
				c.JSON(403, gin.H{"error": err.Error()})
			case errors.Is(err, services.ErrAlreadyApproved), errors.Is(err, services.ErrNotEnoughSeats):
				c.JSON(400, gin.H{"error": err.Error()})
			default:
				c.JSON(500, gin.H{"error": "Failed to approve booking"})
			}
			return
		}

		c.JSON(200, booking)
	}
}
