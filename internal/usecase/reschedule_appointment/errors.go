package reschedule_appointment

import (
	"errors"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrCannotReschedule возвращается для записей в конечном статусе
	ErrCannotReschedule = errors.New("only pending or confirmed appointments can be rescheduled")

	// ErrStatusConflict возвращается, когда статус записи изменился во время переноса
	ErrStatusConflict = errors.New("appointment status changed concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)

type rejection struct {
	check *domain.BookingCheck
}

func (r *rejection) Error() string {
	return "reschedule_appointment: rejected: " + string(r.check.Reason)
}
