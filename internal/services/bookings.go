package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ndudarev/carpool-backend/internal/models"
)

var (
	ErrRideNotFound    = errors.New("ride not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrOwnRide         = errors.New("cannot book own ride")
	ErrRideExpired     = errors.New("ride has expired")
	ErrAlreadyBooked   = errors.New("booking from this user already exists")
	ErrNotEnoughSeats  = errors.New("not enough free seats")
	ErrNotRideOwner    = errors.New("ride belongs to another driver")
	ErrAlreadyApproved = errors.New("booking already approved")
	ErrSeatAccounting  = errors.New("approved seats exceed ride capacity")
)

// lockRide loads the ride under a row lock so that concurrent booking
// requests serialize on the capacity check. SQLite (used in tests) has no
// FOR UPDATE; its transactions serialize writes on their own.
func lockRide(tx *gorm.DB, rideID uint) (*models.Ride, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var ride models.Ride
	if err := q.First(&ride, rideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	return &ride, nil
}

// ApprovedSeats sums the seats across approved bookings of the ride.
func ApprovedSeats(db *gorm.DB, rideID uint) (int, error) {
	var total int
	err := db.Model(&models.Booking{}).
		Select("COALESCE(SUM(seats), 0)").
		Where("ride_id = ? AND approved = ?", rideID, true).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// FreeSeats reports how many seats on the ride are still open.
func FreeSeats(db *gorm.DB, ride *models.Ride) (int, error) {
	approved, err := ApprovedSeats(db, ride.ID)
	if err != nil {
		return 0, err
	}
	free := ride.Seats - approved
	if free < 0 {
		return 0, ErrSeatAccounting
	}
	return free, nil
}

// BookRide runs the booking eligibility checks and creates the booking.
// The ride row stays locked for the whole check-then-insert sequence.
func BookRide(db *gorm.DB, rideID, passengerID uint, seats int) (*models.Booking, error) {
	var booking *models.Booking

	err := db.Transaction(func(tx *gorm.DB) error {
		ride, err := lockRide(tx, rideID)
		if err != nil {
			return err
		}

		if ride.DriverID == passengerID {
			return ErrOwnRide
		}
		if ride.Expired(time.Now()) {
			return ErrRideExpired
		}

		var existing int64
		if err := tx.Model(&models.Booking{}).
			Where("ride_id = ? AND passenger_id = ?", rideID, passengerID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyBooked
		}

		free, err := FreeSeats(tx, ride)
		if err != nil {
			return err
		}
		if seats > free {
			return ErrNotEnoughSeats
		}

		booking = &models.Booking{
			RideID:      rideID,
			PassengerID: passengerID,
			Seats:       seats,
			FilledAt:    time.Now(),
		}
		if !ride.WithApproval {
			now := time.Now()
			booking.Approved = true
			booking.ApprovedAt = &now
		}

		return tx.Create(booking).Error
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// ApproveBooking marks a pending booking approved on behalf of the ride's
// driver. Capacity is re-checked here: approving must never push the
// approved seat total past the ride's capacity, even if other bookings were
// approved after this one was filed.
func ApproveBooking(db *gorm.DB, driverID, rideID, bookingID uint) (*models.Booking, error) {
	var booking models.Booking

	err := db.Transaction(func(tx *gorm.DB) error {
		ride, err := lockRide(tx, rideID)
		if err != nil {
			return err
		}
		if ride.DriverID != driverID {
			return ErrNotRideOwner
		}

		if err := tx.Where("ride_id = ?", rideID).First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if booking.Approved {
			return ErrAlreadyApproved
		}

		free, err := FreeSeats(tx, ride)
		if err != nil {
			return err
		}
		if booking.Seats > free {
			return ErrNotEnoughSeats
		}

		now := time.Now()
		booking.Approved = true
		booking.ApprovedAt = &now
		return tx.Save(&booking).Error
	})
	if err != nil {
		return nil, err
	}

	return &booking, nil
}
