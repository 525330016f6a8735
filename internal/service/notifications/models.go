package notifications

import (
	"time"

	"github.com/google/uuid"
)

// EventPayload тело события в outbox (JSON)
type EventPayload struct {
	EventID        uuid.UUID  `json:"eventId"`
	EventType      string     `json:"eventType"`
	OrganizationID uuid.UUID  `json:"organizationId"`
	AppointmentID  uuid.UUID  `json:"appointmentId"`
	CustomerID     uuid.UUID  `json:"customerId"`
	ServiceID      uuid.UUID  `json:"serviceId"`
	StaffID        *uuid.UUID `json:"staffId,omitempty"`
	Status         string     `json:"status"`
	ScheduledAt    time.Time  `json:"scheduledAt"`
	EndsAt         time.Time  `json:"endsAt"`
	Price          float64    `json:"price"`
	OccurredAt     time.Time  `json:"occurredAt"`
}
