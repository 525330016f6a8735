package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Appointment, error)
	List(ctx context.Context, scope tenant.Scope, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, scope tenant.Scope, id uuid.UUID, from, to domain.AppointmentStatus) error
	Delete(ctx context.Context, scope tenant.Scope, id uuid.UUID) error
	DayStats(ctx context.Context, scope tenant.Scope, from, to time.Time) (*domain.DayStats, error)
}

// CustomerRepository интерфейс репозитория клиентов
type CustomerRepository interface {
	GetByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Customer, error)
	ApplyNoShow(ctx context.Context, scope tenant.Scope, id uuid.UUID) error
	ApplyCompletion(ctx context.Context, scope tenant.Scope, id uuid.UUID, price float64, visitedAt time.Time) error
}

// OrganizationRepository интерфейс репозитория организаций
type OrganizationRepository interface {
	Get(ctx context.Context, scope tenant.Scope) (*domain.Organization, error)
}

// ServiceRepository интерфейс каталога услуг
type ServiceRepository interface {
	GetService(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Service, error)
}

// NotificationRepository интерфейс очереди уведомлений
type NotificationRepository interface {
	CancelPendingForAppointment(ctx context.Context, scope tenant.Scope, appointmentID uuid.UUID, templates []domain.NotificationTemplate) (int64, error)
	Cancel(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Notification, error)
}

// EventPublisher ставит уведомления и событие outbox (notifications.Service)
type EventPublisher interface {
	Publish(ctx context.Context, scope tenant.Scope, event domain.AppointmentEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics учёт переходов статуса
type Metrics interface {
	RecordStatusTransition(from, to string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
