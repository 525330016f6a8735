package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// Resolution организация, найденная по slug, и её доступность для записи на момент запроса
type Resolution struct {
	Organization *domain.Organization
	Scope        tenant.Scope
	Bookable     bool
	Reason       domain.Reason
}

// CachedOrganization представление организации в кеше
type CachedOrganization struct {
	ID          uuid.UUID  `json:"id"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	TrialEndsAt *time.Time `json:"trialEndsAt,omitempty"`
	Plan        string     `json:"plan"`
	Timezone    *string    `json:"timezone,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
}

// ToCached конвертирует domain модель для кеша
func ToCached(o *domain.Organization) CachedOrganization {
	return CachedOrganization{
		ID:          o.ID,
		Slug:        o.Slug,
		Name:        o.Name,
		Status:      string(o.Status),
		TrialEndsAt: o.TrialEndsAt,
		Plan:        o.Plan,
		Timezone:    o.Timezone,
		Email:       o.Email,
		Phone:       o.Phone,
	}
}

// ToDomain конвертирует запись кеша в domain модель
func (c CachedOrganization) ToDomain() *domain.Organization {
	return &domain.Organization{
		ID:          c.ID,
		Slug:        c.Slug,
		Name:        c.Name,
		Status:      domain.OrganizationStatus(c.Status),
		TrialEndsAt: c.TrialEndsAt,
		Plan:        c.Plan,
		Timezone:    c.Timezone,
		Email:       c.Email,
		Phone:       c.Phone,
	}
}

// PublicProfileResponse публичная страница организации
type PublicProfileResponse struct {
	ID            uuid.UUID               `json:"id"`
	Slug          string                  `json:"slug"`
	Name          string                  `json:"name"`
	Timezone      string                  `json:"timezone"`
	Phone         *string                 `json:"phone,omitempty"`
	Email         *string                 `json:"email,omitempty"`
	Services      []ServiceResponse       `json:"services"`
	Staff         []StaffResponse         `json:"staff"`
	BusinessHours []BusinessHoursResponse `json:"businessHours"`
}

// ServiceResponse активная услуга
type ServiceResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	DurationMinutes int       `json:"durationMinutes"`
	Price           float64   `json:"price"`
}

// StaffResponse активный сотрудник
type StaffResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// BusinessHoursResponse рабочие часы на день недели
type BusinessHoursResponse struct {
	DayOfWeek int    `json:"dayOfWeek"` // 0 = воскресенье
	OpensAt   string `json:"opensAt"`
	ClosesAt  string `json:"closesAt"`
	IsClosed  bool   `json:"isClosed"`
}
