package conflictgate

import (
	"time"

	"github.com/google/uuid"
)

// Request проверка слота
type Request struct {
	StaffID  *uuid.UUID
	StartsAt time.Time
	Duration int // минуты
	// ExcludeAppointmentID собственная запись при переносе
	ExcludeAppointmentID *uuid.UUID
}

// EndsAt конец полуоткрытого интервала
func (r Request) EndsAt() time.Time {
	return r.StartsAt.Add(time.Duration(r.Duration) * time.Minute)
}
