package domain

import (
	"time"

	"github.com/google/uuid"
)

// Service is a bookable offering of an organization
type Service struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Description    *string
	Duration       int // minutes
	Price          float64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Staff is a member of an organization who can be assigned to appointments
type Staff struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
