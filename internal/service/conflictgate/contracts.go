package conflictgate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// OrganizationRepository интерфейс репозитория организаций
type OrganizationRepository interface {
	Get(ctx context.Context, scope tenant.Scope) (*domain.Organization, error)
}

// StaffRepository интерфейс каталога сотрудников
type StaffRepository interface {
	GetStaff(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Staff, error)
	CountActiveStaff(ctx context.Context, scope tenant.Scope) (int, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	ListOverlapping(ctx context.Context, scope tenant.Scope, q domain.OverlapQuery) ([]*domain.Appointment, error)
}

// BusinessHoursRepository интерфейс репозитория рабочих часов
type BusinessHoursRepository interface {
	GetForWeekday(ctx context.Context, scope tenant.Scope, weekday time.Weekday) (*domain.BusinessHours, error)
}

// WindowResolver окно работы на день недели (availability.Calculator)
type WindowResolver interface {
	Window(weekday time.Weekday, hours *domain.BusinessHours) domain.DayWindow
}

// Metrics учёт решений
type Metrics interface {
	RecordBookingCheck(reason string)
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
