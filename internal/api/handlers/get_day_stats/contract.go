package get_day_stats

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

type AppointmentService interface {
	DayStats(ctx context.Context, scope tenant.Scope, date time.Time) (*models.DayStatsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
