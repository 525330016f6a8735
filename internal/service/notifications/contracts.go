package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// NotificationRepository интерфейс очереди уведомлений
type NotificationRepository interface {
	EnqueueBatch(ctx context.Context, scope tenant.Scope, notifications []*domain.Notification) error
	CancelPendingForAppointment(ctx context.Context, scope tenant.Scope, appointmentID uuid.UUID, templates []domain.NotificationTemplate) (int64, error)
}

// OutboxRepository интерфейс transactional outbox
type OutboxRepository interface {
	Add(ctx context.Context, scope tenant.Scope, event *domain.OutboxEvent) error
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
