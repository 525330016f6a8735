package domain

import "time"

// Default booking settings
const (
	DefaultSlotStepMinutes = 30
	DefaultOpensAt         = "09:00"
	DefaultClosesAt        = "18:00"
	DefaultTimezone        = "UTC"
)

// DefaultClosedDays дни недели, закрытые при отсутствии строки business_hours
var DefaultClosedDays = []time.Weekday{time.Sunday}

// Business validation constants
const (
	MaxAppointmentDurationMinutes = 24 * 60
	MaxNotesLength                = 1000
	MaxCustomerNameLength         = 200
	MaxIdempotencyKeyLength       = 128
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
