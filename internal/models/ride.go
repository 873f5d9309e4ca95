package models

import (
	"time"

	"gorm.io/gorm"
)

type Ride struct {
	gorm.Model
	DriverID     uint      `json:"driverId" gorm:"not null;index"`
	Driver       *User     `json:"driver,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	VehicleID    *uint     `json:"vehicleId"`
	Vehicle      *Vehicle  `json:"vehicle,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Departure    string    `json:"departure" gorm:"not null;index"`
	Arrival      string    `json:"arrival" gorm:"not null;index"`
	DepartureAt  time.Time `json:"departureAt" gorm:"not null"`
	ArrivalAt    time.Time `json:"arrivalAt" gorm:"not null"`
	Seats        int       `json:"seats" gorm:"not null"`
	Price        int       `json:"price" gorm:"not null"`
	WithApproval bool      `json:"withApproval" gorm:"not null"`
	Comment      string    `json:"comment" gorm:"size:255"`

	Bookings []Booking `json:"bookings,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

func (Ride) TableName() string {
	return "rides"
}

// Expired reports whether the ride can no longer be booked.
func (r *Ride) Expired(now time.Time) bool {
	return now.After(r.DepartureAt)
}
