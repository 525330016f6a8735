package cancel_notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

type NotificationService interface {
	CancelNotification(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*models.NotificationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
