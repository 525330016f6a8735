package reschedule_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	rescheduleAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	StaffID     *uuid.UUID `json:"staffId,omitempty"`
	ClearStaff  bool       `json:"clearStaff,omitempty"`
}

// RescheduleResponse HTTP response model
type RescheduleResponse struct {
	Appointment *models.AppointmentResponse `json:"appointment"`
	Changed     bool                        `json:"changed"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleRequest) ToUseCaseRequest(appointmentID uuid.UUID) *rescheduleAppointment.Request {
	return &rescheduleAppointment.Request{
		AppointmentID: appointmentID,
		StartsAt:      r.ScheduledAt,
		StaffID:       r.StaffID,
		ClearStaff:    r.ClearStaff,
	}
}
