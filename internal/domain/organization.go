package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrganizationStatus subscription state of a tenant
type OrganizationStatus string

const (
	OrganizationActive   OrganizationStatus = "active"
	OrganizationTrial    OrganizationStatus = "trial"
	OrganizationInactive OrganizationStatus = "inactive"
)

// Organization is a tenant: a business that owns services, staff, customers and appointments
type Organization struct {
	ID          uuid.UUID
	Slug        string
	Name        string
	Status      OrganizationStatus
	TrialEndsAt *time.Time
	Plan        string
	Timezone    *string
	Email       *string
	Phone       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanAcceptBookings reports whether the organization may take new bookings at now.
// A trial without an end date is open-ended.
func (o *Organization) CanAcceptBookings(now time.Time) (bool, Reason) {
	switch o.Status {
	case OrganizationActive:
		return true, ReasonNone
	case OrganizationTrial:
		if o.TrialEndsAt != nil && o.TrialEndsAt.Before(now) {
			return false, ReasonTrialExpired
		}
		return true, ReasonNone
	default:
		return false, ReasonOrganizationInactive
	}
}

// Location returns the organization time zone, or fallback when it is unset or unknown
func (o *Organization) Location(fallback *time.Location) *time.Location {
	if o.Timezone == nil || *o.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(*o.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}
