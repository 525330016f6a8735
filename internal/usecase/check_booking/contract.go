package check_booking

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/conflictgate"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// ConflictGate интерфейс проверки слота
type ConflictGate interface {
	Check(ctx context.Context, scope tenant.Scope, req conflictgate.Request) (*domain.BookingCheck, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
