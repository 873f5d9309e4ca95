package models

import (
	"gorm.io/gorm"
)

type Message struct {
	gorm.Model
	SenderID    uint   `json:"senderId" gorm:"not null;index"`
	Sender      *User  `json:"sender,omitempty"`
	RecipientID uint   `json:"recipientId" gorm:"not null;index"`
	Recipient   *User  `json:"-"`
	RideID      uint   `json:"rideId" gorm:"not null;index"`
	Ride        *Ride  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Body        string `json:"body" gorm:"size:1000;not null"`
}

func (Message) TableName() string {
	return "messages"
}
