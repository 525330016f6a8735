package list_available_slots

import (
	"context"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// OrganizationRepository интерфейс репозитория организаций
type OrganizationRepository interface {
	Get(ctx context.Context, scope tenant.Scope) (*domain.Organization, error)
}

// CatalogRepository интерфейс каталога услуг и сотрудников
type CatalogRepository interface {
	GetService(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Service, error)
	GetStaff(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Staff, error)
	CountActiveStaff(ctx context.Context, scope tenant.Scope) (int, error)
}

// BusinessHoursRepository интерфейс репозитория рабочих часов
type BusinessHoursRepository interface {
	GetForWeekday(ctx context.Context, scope tenant.Scope, weekday time.Weekday) (*domain.BusinessHours, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	ListOverlapping(ctx context.Context, scope tenant.Scope, q domain.OverlapQuery) ([]*domain.Appointment, error)
}

// Calculator генератор слотов (availability.Calculator)
type Calculator interface {
	Window(weekday time.Weekday, hours *domain.BusinessHours) domain.DayWindow
	Candidates(date time.Time, loc *time.Location, window domain.DayWindow, duration int, now time.Time) iter.Seq[time.Time]
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
