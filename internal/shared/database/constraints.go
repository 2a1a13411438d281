package database

import (
	"fmt"

	"gorm.io/gorm"
)

// constraint pairs a name with the statement that adds it when missing
type constraint struct {
	name  string
	table string
	ddl   string
}

var bookingConstraints = []constraint{
	{
		name:  "chk_bookings_balance",
		table: "bookings",
		ddl:   "ALTER TABLE bookings ADD CONSTRAINT chk_bookings_balance CHECK (amount_paid + remaining_amount = total_amount)",
	},
	{
		name:  "fk_payments_booking",
		table: "payments",
		ddl:   "ALTER TABLE payments ADD CONSTRAINT fk_payments_booking FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE RESTRICT",
	},
	{
		name:  "fk_bookings_event",
		table: "bookings",
		ddl:   "ALTER TABLE bookings ADD CONSTRAINT fk_bookings_event FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE RESTRICT",
	},
}

var bookingIndexes = []string{
	// capacity checks sum guests of live bookings per event
	`CREATE INDEX IF NOT EXISTS idx_bookings_event_status ON bookings (event_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_booking_created ON payments (booking_id, created_at)`,
}

// MigrateConstraints adds the ledger and referential constraints
func MigrateConstraints(db *gorm.DB) error {
	for _, c := range bookingConstraints {
		var exists bool
		err := db.Raw(
			`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ? AND conrelid = ?::regclass)`,
			c.name, c.table,
		).Scan(&exists).Error
		if err != nil {
			return fmt.Errorf("failed to inspect constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		if err := db.Exec(c.ddl).Error; err != nil {
			return fmt.Errorf("failed to add constraint %s: %w", c.name, err)
		}
	}

	for _, ddl := range bookingIndexes {
		if err := db.Exec(ddl).Error; err != nil {
			return err
		}
	}

	return nil
}
