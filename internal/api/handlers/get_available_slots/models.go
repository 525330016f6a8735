package get_available_slots

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	listAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/list_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string      `json:"date"`
	ServiceID       uuid.UUID   `json:"serviceId"`
	StaffID         *uuid.UUID  `json:"staffId,omitempty"`
	DurationMinutes int         `json:"durationMinutes"`
	Timezone        string      `json:"timezone"`
	IsClosed        bool        `json:"isClosed"`
	Slots           []time.Time `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *listAvailableSlots.Response) *AvailableSlotsResponse {
	slots := resp.Slots
	if slots == nil {
		slots = []time.Time{}
	}

	return &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		ServiceID:       resp.ServiceID,
		StaffID:         resp.StaffID,
		DurationMinutes: resp.DurationMinutes,
		Timezone:        resp.Timezone,
		IsClosed:        resp.IsClosed,
		Slots:           slots,
	}
}
