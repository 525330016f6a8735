package create_appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/idempotency"
	"github.com/m04kA/SMC-AppointmentService/internal/service/conflictgate"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, scope tenant.Scope, a *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Appointment, error)
}

// CatalogRepository интерфейс каталога услуг
type CatalogRepository interface {
	GetService(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Service, error)
}

// CustomerRepository интерфейс репозитория клиентов
type CustomerRepository interface {
	GetByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Customer, error)
	FindOrCreate(ctx context.Context, scope tenant.Scope, contact domain.CustomerContact) (*domain.Customer, error)
}

// IdempotencyRepository интерфейс ключей идемпотентности
type IdempotencyRepository interface {
	Lock(ctx context.Context, scope tenant.Scope, key, requestHash string) (*idempotency.Record, error)
	Finalize(ctx context.Context, scope tenant.Scope, key string, appointmentID uuid.UUID) error
}

// ConflictGate интерфейс проверки слота
type ConflictGate interface {
	Check(ctx context.Context, scope tenant.Scope, req conflictgate.Request) (*domain.BookingCheck, error)
}

// EventPublisher ставит уведомления и событие outbox (appointments.Service)
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

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
