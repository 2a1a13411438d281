package events

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// IsValid checks if the event status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Event is a bookable occurrence with a fixed guest capacity.
// Price is per guest in minor currency units.
type Event struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:255"`
	Description string    `json:"description" gorm:"type:text"`
	Venue       string    `json:"venue" gorm:"size:255"`
	StartDate   time.Time `json:"start_date" gorm:"not null;index"`
	Capacity    int       `json:"capacity" gorm:"not null;check:capacity > 0"`
	Price       int64     `json:"price" gorm:"not null;check:price >= 0"`
	IsPublic    bool      `json:"is_public" gorm:"not null;default:false"`
	Status      Status    `json:"status" gorm:"type:varchar(20);not null;default:'draft';check:status IN ('draft','active','cancelled','completed')"`

	CreatedBy *uuid.UUID `json:"created_by,omitempty" gorm:"type:uuid"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

// IsBookable reports whether the public portal may take bookings for e
func (e *Event) IsBookable() bool {
	return e.IsPublic && e.Status == StatusActive
}

type CreateEventRequest struct {
	Name        string    `json:"name" validate:"required,min=3,max=255"`
	Description string    `json:"description" validate:"max=2000"`
	Venue       string    `json:"venue" validate:"max=255"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	Capacity    int       `json:"capacity" validate:"required,min=1,max=100000"`
	Price       int64     `json:"price" validate:"gte=0"`
	IsPublic    bool      `json:"isPublic"`
	Status      string    `json:"status" validate:"omitempty,oneof=draft active cancelled completed"`
}

type EventResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	StartDate   time.Time `json:"start_date"`
	Capacity    int       `json:"capacity"`
	Price       int64     `json:"price"`
	IsPublic    bool      `json:"is_public"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToResponse converts Event to EventResponse
func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:          e.ID.String(),
		Name:        e.Name,
		Description: e.Description,
		Venue:       e.Venue,
		StartDate:   e.StartDate,
		Capacity:    e.Capacity,
		Price:       e.Price,
		IsPublic:    e.IsPublic,
		Status:      e.Status,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
