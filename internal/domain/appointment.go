package domain

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// transitions legal edges of the appointment state machine
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

// BlockingStatuses statuses that occupy a staff member's calendar
var BlockingStatuses = []AppointmentStatus{StatusPending, StatusConfirmed}

// AllStatuses every known status
var AllStatuses = []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow}

// IsValid true for a known status
func (s AppointmentStatus) IsValid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsTerminal true for completed, cancelled and no_show
func (s AppointmentStatus) IsTerminal() bool {
	_, hasEdges := transitions[s]
	return s.IsValid() && !hasEdges
}

// IsBlocking true when the appointment occupies its time range
func (s AppointmentStatus) IsBlocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransition reports whether from -> to is a legal edge.
// Re-entering the same status is not an edge; callers treat it as a no-op.
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment is a reservation of a service for a customer
type Appointment struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	CustomerID     uuid.UUID
	ServiceID      uuid.UUID
	StaffID        *uuid.UUID
	ScheduledAt    time.Time
	Duration       int     // minutes, copied from the service at creation
	Price          float64 // copied from the service at creation
	Status         AppointmentStatus
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EndsAt end of the half-open interval [ScheduledAt, EndsAt)
func (a *Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.Duration) * time.Minute)
}

// Overlaps half-open interval overlap: touching endpoints do not conflict
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return Overlaps(a.ScheduledAt, a.EndsAt(), start, end)
}

// CanBeRescheduled only appointments that still occupy the calendar can move
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status.IsBlocking()
}

// AggregatesApplied true when a transition already touched customer aggregates
func (a *Appointment) AggregatesApplied() bool {
	return a.Status == StatusCompleted || a.Status == StatusNoShow
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// AppointmentsFilter filter for listing appointments of an organization
type AppointmentsFilter struct {
	From    *time.Time
	To      *time.Time
	Status  *AppointmentStatus
	StaffID *uuid.UUID
}

// OverlapQuery interval lookup used by the conflict gate
type OverlapQuery struct {
	StaffID              *uuid.UUID // nil: any appointment of the organization
	Start                time.Time
	End                  time.Time
	ExcludeAppointmentID *uuid.UUID
}

// DayStats per-status counters and revenue for one day
type DayStats struct {
	Date      time.Time
	Total     int
	Pending   int
	Confirmed int
	Completed int
	Cancelled int
	NoShow    int
	Revenue   float64 // confirmed + completed
}
