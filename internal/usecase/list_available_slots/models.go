package list_available_slots

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	Scope     tenant.Scope
	ServiceID uuid.UUID
	Date      time.Time  // календарная дата в часовом поясе организации (время игнорируется)
	StaffID   *uuid.UUID // nil - любой сотрудник
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            time.Time
	ServiceID       uuid.UUID
	StaffID         *uuid.UUID
	DurationMinutes int
	Timezone        string
	IsClosed        bool
	Slots           []time.Time // начала слотов по возрастанию
}
