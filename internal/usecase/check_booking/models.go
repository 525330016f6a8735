package check_booking

import (
	"time"

	"github.com/google/uuid"
)

// Request проверка слота без создания записи
type Request struct {
	OrganizationID       uuid.UUID
	StaffID              *uuid.UUID
	ScheduledAt          time.Time
	Duration             int // минуты
	ExcludeAppointmentID *uuid.UUID
}

// Response решение conflict gate
type Response struct {
	Available bool
	Reason    string
	Message   string
}
