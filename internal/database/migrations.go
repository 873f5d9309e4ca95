package database

import (
	"gorm.io/gorm"

	"github.com/ndudarev/carpool-backend/internal/models"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.Ride{},
		&models.Booking{},
		&models.Message{},
	)
	if err != nil {
		return err
	}

	// AutoMigrate does not rewrite delete rules on existing foreign keys,
	// so enforce the cascade policy explicitly. Postgres only.
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	constraints := []struct {
		table, name, sql string
	}{
		{"vehicles", "fk_users_vehicles",
			"FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE"},
		{"rides", "fk_users_rides",
			"FOREIGN KEY (driver_id) REFERENCES users(id) ON DELETE CASCADE"},
		{"rides", "fk_rides_vehicle",
			"FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE SET NULL"},
		{"bookings", "fk_rides_bookings",
			"FOREIGN KEY (ride_id) REFERENCES rides(id) ON DELETE CASCADE"},
		{"bookings", "fk_users_bookings",
			"FOREIGN KEY (passenger_id) REFERENCES users(id) ON DELETE CASCADE"},
		{"messages", "fk_rides_messages",
			"FOREIGN KEY (ride_id) REFERENCES rides(id) ON DELETE CASCADE"},
	}

	for _, c := range constraints {
		db.Exec("ALTER TABLE " + c.table + " DROP CONSTRAINT IF EXISTS " + c.name)
		if err := db.Exec("ALTER TABLE " + c.table + " ADD CONSTRAINT " + c.name + " " + c.sql).Error; err != nil {
			return err
		}
	}

	// gorm omits zero-value fields that carry a tag default, so the
	// with_approval default is set on the column instead.
	if err := db.Exec(`ALTER TABLE rides ALTER COLUMN with_approval SET DEFAULT true`).Error; err != nil {
		return err
	}

	// Vehicle categories are a closed set
	db.Exec(`ALTER TABLE vehicles DROP CONSTRAINT IF EXISTS vehicles_type_check`)
	if err := db.Exec(`ALTER TABLE vehicles ADD CONSTRAINT vehicles_type_check CHECK (type IN ('sedan', 'coupe', 'hatchback', 'suv', 'van'))`).Error; err != nil {
		return err
	}

	return nil
}
