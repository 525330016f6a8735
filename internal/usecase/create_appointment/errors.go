package create_appointment

import (
	"errors"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrIdempotencyKeyReused возвращается, когда ключ уже использован с другим телом запроса
	ErrIdempotencyKeyReused = errors.New("idempotency key reused with a different request")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)

// rejection прерывает транзакцию, чтобы отказ не оставил ни одной записи в хранилище
// (включая ключ идемпотентности)
type rejection struct {
	check *domain.BookingCheck
}

func (r *rejection) Error() string {
	return "create_appointment: rejected: " + string(r.check.Reason)
}

func reject(check *domain.BookingCheck) error {
	return &rejection{check: check}
}
