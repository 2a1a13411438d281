// Package sequence hands out gap-free, monotonically increasing numbers for
// human readable references (BK-000001, PAY-000001).
package sequence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

const (
	Booking = "booking"
	Payment = "payment"
)

// Reference prefixes per sequence name
var prefixes = map[string]string{
	Booking: "BK",
	Payment: "PAY",
}

// ReferenceSequence is one named counter.
type ReferenceSequence struct {
	Name  string `gorm:"primaryKey;size:50" json:"name"`
	Value int64  `gorm:"not null;default:0;check:value >= 0" json:"value"`
}

func (ReferenceSequence) TableName() string {
	return "reference_sequences"
}

const nextSQL = `
INSERT INTO reference_sequences (name, value) VALUES (?, 1)
ON CONFLICT (name) DO UPDATE SET value = reference_sequences.value + 1
RETURNING value`

// Next increments the named counter and returns its new value. Run it on the
// caller's transaction handle: the row stays locked until that transaction
// ends, so two transactions can never observe the same value.
func Next(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	var value int64
	if err := tx.WithContext(ctx).Raw(nextSQL, name).Scan(&value).Error; err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", name, err)
	}
	if value == 0 {
		return 0, fmt.Errorf("sequence %s returned no value", name)
	}
	return value, nil
}

// Format renders value as a reference for the named sequence, e.g. BK-000042.
func Format(name string, value int64) string {
	prefix, ok := prefixes[name]
	if !ok {
		prefix = "REF"
	}
	return fmt.Sprintf("%s-%06d", prefix, value)
}

// NextReference combines Next and Format.
func NextReference(ctx context.Context, tx *gorm.DB, name string) (string, error) {
	value, err := Next(ctx, tx, name)
	if err != nil {
		return "", err
	}
	return Format(name, value), nil
}
