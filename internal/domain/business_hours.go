package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// BusinessHours operating window of an organization for one day of week (0 = Sunday)
type BusinessHours struct {
	OrganizationID uuid.UUID
	DayOfWeek      int
	OpensAt        types.TimeString
	ClosesAt       types.TimeString
	IsClosed       bool
}

// DayWindow resolved operating window for a concrete weekday
type DayWindow struct {
	Weekday  time.Weekday
	OpensAt  types.TimeString
	ClosesAt types.TimeString
	IsClosed bool
	// IsDefault true when no business_hours row existed and the fallback window applied
	IsDefault bool
}
