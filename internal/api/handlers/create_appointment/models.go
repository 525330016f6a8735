package create_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	ServiceID   uuid.UUID       `json:"serviceId"`
	StaffID     *uuid.UUID      `json:"staffId,omitempty"`
	ScheduledAt time.Time       `json:"scheduledAt"` // RFC3339 с зоной
	Notes       *string         `json:"notes,omitempty"`
	Customer    CustomerRequest `json:"customer"`
	// только кабинет
	CustomerID *uuid.UUID `json:"customerId,omitempty"`
	Status     *string    `json:"status,omitempty"`
}

// CustomerRequest контакт клиента
type CustomerRequest struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}

// CreateAppointmentResponse HTTP response model
type CreateAppointmentResponse struct {
	Appointment *models.AppointmentResponse `json:"appointment"`
	Customer    CustomerResponse            `json:"customer"`
	Replayed    bool                        `json:"replayed"`
}

// CustomerResponse клиент записи
type CustomerResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone *string   `json:"phone,omitempty"`
	Email *string   `json:"email,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(origin createAppointment.Origin, idempotencyKey string) *createAppointment.Request {
	return &createAppointment.Request{
		Origin:         origin,
		IdempotencyKey: idempotencyKey,
		ServiceID:      r.ServiceID,
		StaffID:        r.StaffID,
		StartsAt:       r.ScheduledAt,
		Notes:          r.Notes,
		CustomerID:     r.CustomerID,
		Customer: domain.CustomerContact{
			Name:  r.Customer.Name,
			Phone: r.Customer.Phone,
			Email: r.Customer.Email,
		},
		Status: r.Status,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *CreateAppointmentResponse {
	return &CreateAppointmentResponse{
		Appointment: models.FromDomainAppointment(resp.Appointment),
		Customer: CustomerResponse{
			ID:    resp.Customer.ID,
			Name:  resp.Customer.Name,
			Phone: resp.Customer.Phone,
			Email: resp.Customer.Email,
		},
		Replayed: resp.Replayed,
	}
}
