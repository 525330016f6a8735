package reschedule_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// Request модель запроса на перенос записи.
// Не заданные StartsAt и StaffID остаются прежними; ClearStaff снимает сотрудника.
type Request struct {
	Scope         tenant.Scope
	AppointmentID uuid.UUID
	StartsAt      *time.Time
	StaffID       *uuid.UUID
	ClearStaff    bool
}

// Response модель ответа. Changed=false, если время и сотрудник не изменились.
type Response struct {
	Appointment *domain.Appointment
	Rejected    *domain.BookingCheck
	Changed     bool
}
