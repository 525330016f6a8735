package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer of an organization. TotalVisits, TotalSpent, NoShows and LastVisitAt are
// written only by appointment status transitions.
type Customer struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Phone          *string
	Email          *string
	TotalVisits    int
	TotalSpent     float64
	NoShows        int
	LastVisitAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CustomerContact identifying data supplied with a booking
type CustomerContact struct {
	Name  string
	Phone *string
	Email *string
}

// HasChannel true when at least one identifying channel is present.
// Whitespace-only values do not count.
func (c CustomerContact) HasChannel() bool {
	return present(c.Phone) || present(c.Email)
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
