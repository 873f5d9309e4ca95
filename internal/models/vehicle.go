package models

import (
	"time"

	"gorm.io/gorm"
)

type VehicleType string

const (
	VehicleTypeSedan     VehicleType = "sedan"
	VehicleTypeCoupe     VehicleType = "coupe"
	VehicleTypeHatchback VehicleType = "hatchback"
	VehicleTypeSUV       VehicleType = "suv"
	VehicleTypeVan       VehicleType = "van"
)

func (t VehicleType) IsValid() bool {
	switch t {
	case VehicleTypeSedan, VehicleTypeCoupe, VehicleTypeHatchback, VehicleTypeSUV, VehicleTypeVan:
		return true
	}
	return false
}

type Vehicle struct {
	gorm.Model
	OwnerID          uint        `json:"ownerId" gorm:"not null;index"`
	Owner            *User       `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Make             string      `json:"make" gorm:"not null"`
	VehicleModel     string      `json:"model" gorm:"column:vehicle_model;not null"`
	Color            string      `json:"color" gorm:"not null"`
	RegistrationDate time.Time   `json:"registrationDate" gorm:"not null"`
	RegPlate         *string     `json:"regPlate"`
	Type             VehicleType `json:"type" gorm:"not null"`
	Seats            int         `json:"seats" gorm:"not null"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}
