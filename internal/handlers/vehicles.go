package handlers

import (
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ndudarev/carpool-backend/internal/models"
)

// Russian registration plate: letter, three digits, two letters, region code.
// Cyrillic and the look-alike Latin letters are both accepted.
var regPlatePattern = regexp.MustCompile(`^[АВЕКМНОРСТУХABEKMHOPCTYX]\d{3}[АВЕКМНОРСТУХABEKMHOPCTYX]{2}\d{2,3}$`)

type VehicleCreateInput struct {
	Make             string    `json:"make" binding:"required"`
	Model            string    `json:"model" binding:"required"`
	Color            string    `json:"color" binding:"required"`
	RegistrationDate time.Time `json:"registrationDate" binding:"required"`
	RegPlate         *string   `json:"regPlate"`
	Type             string    `json:"type" binding:"required,oneof=sedan coupe hatchback suv van"`
	Seats            int       `json:"seats" binding:"required,min=1,max=5"`
}

// CreateVehicle registers a vehicle owned by the current user
func CreateVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input VehicleCreateInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.RegPlate != nil && !regPlatePattern.MatchString(*input.RegPlate) {
			c.JSON(400, gin.H{"error": "Invalid registration plate"})
			return
		}

		vehicle := models.Vehicle{
			OwnerID:          userId,
			Make:             input.Make,
			VehicleModel:     input.Model,
			Color:            input.Color,
			RegistrationDate: input.RegistrationDate,
			RegPlate:         input.RegPlate,
			Type:             models.VehicleType(input.Type),
			Seats:            input.Seats,
		}

		if err := db.Create(&vehicle).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create vehicle"})
			return
		}

		c.JSON(201, vehicle)
	}
}

// GetVehicles lists the current user's vehicles
func GetVehicles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var vehicles []models.Vehicle
		if err := db.Where("owner_id = ?", userId).Find(&vehicles).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch vehicles"})
			return
		}

		c.JSON(200, vehicles)
	}
}

func currentUserVehicle(c *gin.Context, db *gorm.DB) (*models.Vehicle, bool) {
	userId := c.GetUint("userId")
	vehicleID := c.Param("id")

	var vehicle models.Vehicle
	if err := db.First(&vehicle, vehicleID).Error; err != nil {
		c.JSON(404, gin.H{"error": "Vehicle not found"})
		return nil, false
	}
	if vehicle.OwnerID != userId {
		c.JSON(403, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return &vehicle, true
}

// UpdateVehicle applies a partial update to a vehicle owned by the caller
func UpdateVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Make             *string    `json:"make"`
			Model            *string    `json:"model"`
			Color            *string    `json:"color"`
			RegistrationDate *time.Time `json:"registrationDate"`
			RegPlate         *string    `json:"regPlate"`
			Type             *string    `json:"type"`
			Seats            *int       `json:"seats"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		vehicle, ok := currentUserVehicle(c, db)
		if !ok {
			return
		}

		if input.Make != nil {
			vehicle.Make = *input.Make
		}
		if input.Model != nil {
			vehicle.VehicleModel = *input.Model
		}
		if input.Color != nil {
			vehicle.Color = *input.Color
		}
		if input.RegistrationDate != nil {
			vehicle.RegistrationDate = *input.RegistrationDate
		}
		if input.RegPlate != nil {
			if !regPlatePattern.MatchString(*input.RegPlate) {
				c.JSON(400, gin.H{"error": "Invalid registration plate"})
				return
			}
			vehicle.RegPlate = input.RegPlate
		}
		if input.Type != nil {
			vehicleType := models.VehicleType(*input.Type)
			if !vehicleType.IsValid() {
				c.JSON(400, gin.H{"error": "Invalid vehicle type"})
				return
			}
			vehicle.Type = vehicleType
		}
		if input.Seats != nil {
			if *input.Seats < 1 || *input.Seats > 5 {
				c.JSON(400, gin.H{"error": "Seats must be between 1 and 5"})
				return
			}
			vehicle.Seats = *input.Seats
		}

		if err := db.Save(vehicle).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update vehicle"})
			return
		}

		c.JSON(200, vehicle)
	}
}

// DeleteVehicle removes a vehicle owned by the caller. Rides referencing it
// keep running with their vehicle reference cleared.
func DeleteVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		vehicle, ok := currentUserVehicle(c, db)
		if !ok {
			return
		}

		if err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Ride{}).
				Where("vehicle_id = ?", vehicle.ID).
				Update("vehicle_id", nil).Error; err != nil {
				return err
			}
			return tx.Delete(vehicle).Error
		}); err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete vehicle"})
			return
		}

		c.Status(204)
	}
}
