package dispatch_notifications

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/worker/notifications"
)

type Dispatcher interface {
	RunOnce(ctx context.Context, req notifications.DispatchRequest) (*notifications.DispatchResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
