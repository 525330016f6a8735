package tenants

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// OrganizationRepository интерфейс репозитория организаций
type OrganizationRepository interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Organization, error)
}

// CatalogRepository интерфейс каталога услуг и сотрудников
type CatalogRepository interface {
	ListActiveServices(ctx context.Context, scope tenant.Scope) ([]*domain.Service, error)
	ListActiveStaff(ctx context.Context, scope tenant.Scope) ([]*domain.Staff, error)
}

// BusinessHoursRepository интерфейс репозитория рабочих часов
type BusinessHoursRepository interface {
	ListByOrganization(ctx context.Context, scope tenant.Scope) ([]*domain.BusinessHours, error)
}

// Cache кеш организаций по slug (cache.Tiered)
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
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
