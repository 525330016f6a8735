package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationChannel delivery channel
type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelWhatsApp NotificationChannel = "whatsapp"
)

// NotificationStatus delivery state
type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationSent      NotificationStatus = "sent"
	NotificationFailed    NotificationStatus = "failed"
	NotificationCancelled NotificationStatus = "cancelled"
)

// NotificationTemplate message kind
type NotificationTemplate string

const (
	TemplateBookingReceived NotificationTemplate = "booking_received"
	TemplateConfirmation    NotificationTemplate = "confirmation"
	TemplateReminder24h     NotificationTemplate = "reminder_24h"
	TemplateReminder2h      NotificationTemplate = "reminder_2h"
	TemplateFeedback        NotificationTemplate = "feedback"
	TemplateNoShow          NotificationTemplate = "no_show"
	TemplateCancellation    NotificationTemplate = "cancellation"
	TemplateRescheduled     NotificationTemplate = "rescheduled"
)

// Notification queued outbound message
type Notification struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	AppointmentID  *uuid.UUID
	CustomerID     *uuid.UUID
	Channel        NotificationChannel
	Template       NotificationTemplate
	RecipientEmail *string
	RecipientPhone *string
	Subject        *string
	Message        string
	Status         NotificationStatus
	ErrorMessage   *string
	RetryCount     int
	ScheduledFor   time.Time
	SentAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AppointmentEventKind lifecycle event that produces notifications and outbox records
type AppointmentEventKind string

const (
	EventAppointmentCreated     AppointmentEventKind = "appointment.created"
	EventAppointmentConfirmed   AppointmentEventKind = "appointment.confirmed"
	EventAppointmentCompleted   AppointmentEventKind = "appointment.completed"
	EventAppointmentCancelled   AppointmentEventKind = "appointment.cancelled"
	EventAppointmentNoShow      AppointmentEventKind = "appointment.no_show"
	EventAppointmentRescheduled AppointmentEventKind = "appointment.rescheduled"
)

// EventKindForStatus event emitted when an appointment enters status
func EventKindForStatus(status AppointmentStatus) AppointmentEventKind {
	switch status {
	case StatusConfirmed:
		return EventAppointmentConfirmed
	case StatusCompleted:
		return EventAppointmentCompleted
	case StatusCancelled:
		return EventAppointmentCancelled
	case StatusNoShow:
		return EventAppointmentNoShow
	default:
		return EventAppointmentCreated
	}
}

// AppointmentEvent everything needed to render notifications for an appointment change
type AppointmentEvent struct {
	Kind         AppointmentEventKind
	Appointment  *Appointment
	Customer     *Customer
	Organization *Organization
	ServiceName  string
	OccurredAt   time.Time
}

// OutboxEvent integration event stored in the same transaction as the change
type OutboxEvent struct {
	ID             int64
	EventID        uuid.UUID
	OrganizationID uuid.UUID
	AggregateID    uuid.UUID
	EventType      string
	Payload        []byte
	CreatedAt      time.Time
	PublishedAt    *time.Time
}
