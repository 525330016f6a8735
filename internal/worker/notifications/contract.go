package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

type NotificationRepository interface {
	FetchDue(ctx context.Context, now time.Time, limit int) ([]*domain.Notification, error)
	FetchDueScoped(ctx context.Context, scope tenant.Scope, now time.Time, limit int) ([]*domain.Notification, error)
	LockPending(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkRetry(ctx context.Context, id uuid.UUID, retryCount int, nextAttemptAt time.Time, errMsg string) error
	MarkFailed(ctx context.Context, id uuid.UUID, retryCount int, errMsg string) error
}

// Sender доставка по одному каналу
type Sender interface {
	Send(ctx context.Context, n *domain.Notification) error
}

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type Metrics interface {
	RecordNotification(channel, result string)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type TimeProvider interface {
	Now() time.Time
}

type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
