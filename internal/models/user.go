package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email        string     `json:"email" gorm:"column:email;unique;not null"`
	Password     string     `json:"-" gorm:"-"` // Temporary field for password handling
	PasswordHash string     `json:"-" gorm:"column:password_hash;not null"`
	FirstName    string     `json:"firstName" gorm:"column:first_name;not null"`
	LastName     string     `json:"lastName" gorm:"column:last_name;not null"`
	Birthday     *time.Time `json:"birthday" gorm:"column:birthday"`
	Rating       float64    `json:"rating" gorm:"column:rating;default:0"`
	AvatarURL    string     `json:"avatarUrl" gorm:"column:avatar_url"`

	Vehicles []Vehicle `json:"vehicles,omitempty" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Rides    []Ride    `json:"rides,omitempty" gorm:"foreignKey:DriverID;constraint:OnDelete:CASCADE"`
	Bookings []Booking `json:"bookings,omitempty" gorm:"foreignKey:PassengerID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
