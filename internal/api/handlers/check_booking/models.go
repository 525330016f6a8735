package check_booking

import (
	"time"

	"github.com/google/uuid"

	checkBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/check_booking"
)

// CheckBookingRequest HTTP request model
type CheckBookingRequest struct {
	OrganizationID       uuid.UUID  `json:"organizationId"`
	StaffID              *uuid.UUID `json:"staffId,omitempty"`
	ScheduledAt          time.Time  `json:"scheduledAt"`
	Duration             int        `json:"duration"`
	ExcludeAppointmentID *uuid.UUID `json:"excludeAppointmentId,omitempty"`
}

// CheckBookingResponse HTTP response model
type CheckBookingResponse struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CheckBookingRequest) ToUseCaseRequest() *checkBooking.Request {
	return &checkBooking.Request{
		OrganizationID:       r.OrganizationID,
		StaffID:              r.StaffID,
		ScheduledAt:          r.ScheduledAt,
		Duration:             r.Duration,
		ExcludeAppointmentID: r.ExcludeAppointmentID,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkBooking.Response) *CheckBookingResponse {
	return &CheckBookingResponse{
		Available: resp.Available,
		Reason:    resp.Reason,
		Message:   resp.Message,
	}
}
