package models

import (
	"time"

	"gorm.io/gorm"
)

type Booking struct {
	gorm.Model
	RideID      uint       `json:"rideId" gorm:"not null;index"`
	Ride        *Ride      `json:"ride,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	PassengerID uint       `json:"passengerId" gorm:"not null;index"`
	Passenger   *User      `json:"passenger,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Seats       int        `json:"seats" gorm:"not null"`
	Approved    bool       `json:"approved" gorm:"not null;default:false"`
	FilledAt    time.Time  `json:"filledAt" gorm:"not null"`
	ApprovedAt  *time.Time `json:"approvedAt"`
}

func (Booking) TableName() string {
	return "bookings"
}
