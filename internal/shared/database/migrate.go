package database

import (
	"fmt"

	"propdesk/internal/bookings"
	"propdesk/internal/events"
	"propdesk/internal/sequence"
	"propdesk/internal/users"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns, then applies
// the constraints AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to enable uuid-ossp: %w", err)
	}

	err := db.AutoMigrate(
		&users.User{},
		&events.Event{},
		&bookings.Booking{},
		&bookings.Payment{},
		&sequence.ReferenceSequence{},
	)
	if err != nil {
		return err
	}

	return MigrateConstraints(db)
}
