package reschedule_appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/conflictgate"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Appointment, error)
	Reschedule(ctx context.Context, scope tenant.Scope, a *domain.Appointment) (*domain.Appointment, error)
}

// ConflictGate интерфейс проверки слота
type ConflictGate interface {
	Check(ctx context.Context, scope tenant.Scope, req conflictgate.Request) (*domain.BookingCheck, error)
}

// EventPublisher ставит уведомления и событие outbox
type EventPublisher interface {
	PublishEvent(ctx context.Context, scope tenant.Scope, kind domain.AppointmentEventKind, appt *domain.Appointment, customer *domain.Customer) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
