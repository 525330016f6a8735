package tenants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	orgRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/organization"
	"github.com/m04kA/SMC-AppointmentService/internal/service/tenants/models"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

const (
	slugKeyPrefix = "org:slug:"
	maxSlugLength = 100
)

// Service разрешение организации по slug публичного URL.
// Кеш хранит организацию, а не решение о записи: доступность считается на каждый запрос.
type Service struct {
	orgRepo         OrganizationRepository
	catalogRepo     CatalogRepository
	hoursRepo       BusinessHoursRepository
	cache           Cache
	cacheTTL        time.Duration
	defaultTimezone string
	timeProvider    TimeProvider
	logger          Logger
}

// NewService cache может быть nil - тогда каждый запрос идёт в хранилище
func NewService(
	orgRepo OrganizationRepository,
	catalogRepo CatalogRepository,
	hoursRepo BusinessHoursRepository,
	cache Cache,
	cacheTTL time.Duration,
	defaultTimezone string,
	logger Logger,
) *Service {
	return &Service{
		orgRepo:         orgRepo,
		catalogRepo:     catalogRepo,
		hoursRepo:       hoursRepo,
		cache:           cache,
		cacheTTL:        cacheTTL,
		defaultTimezone: defaultTimezone,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// ResolveBySlug находит организацию и проверяет, принимает ли она записи сейчас
func (s *Service) ResolveBySlug(ctx context.Context, slug string) (*models.Resolution, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" || len(slug) > maxSlugLength {
		return nil, ErrInvalidSlug
	}

	org, err := s.organizationBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	scope, err := tenant.NewScope(org.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: ResolveBySlug - build scope: %w", ErrInternal, err)
	}

	bookable, reason := org.CanAcceptBookings(s.timeProvider.Now())
	return &models.Resolution{
		Organization: org,
		Scope:        scope,
		Bookable:     bookable,
		Reason:       reason,
	}, nil
}

// Invalidate удаляет организацию из кеша (после изменения статуса)
func (s *Service) Invalidate(ctx context.Context, slug string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, slugKeyPrefix+strings.ToLower(slug))
}

// GetPublicProfile организация с активными услугами, сотрудниками и расписанием
func (s *Service) GetPublicProfile(ctx context.Context, res *models.Resolution) (*models.PublicProfileResponse, error) {
	org := res.Organization

	services, err := s.catalogRepo.ListActiveServices(ctx, res.Scope)
	if err != nil {
		s.logger.Error("GetPublicProfile: failed to list services for org=%s: %v", org.ID, err)
		return nil, fmt.Errorf("%w: GetPublicProfile - list services: %w", ErrInternal, err)
	}

	staff, err := s.catalogRepo.ListActiveStaff(ctx, res.Scope)
	if err != nil {
		s.logger.Error("GetPublicProfile: failed to list staff for org=%s: %v", org.ID, err)
		return nil, fmt.Errorf("%w: GetPublicProfile - list staff: %w", ErrInternal, err)
	}

	hours, err := s.hoursRepo.ListByOrganization(ctx, res.Scope)
	if err != nil {
		s.logger.Error("GetPublicProfile: failed to list business hours for org=%s: %v", org.ID, err)
		return nil, fmt.Errorf("%w: GetPublicProfile - list business hours: %w", ErrInternal, err)
	}

	timezone := s.defaultTimezone
	if org.Timezone != nil && *org.Timezone != "" {
		timezone = *org.Timezone
	}

	resp := &models.PublicProfileResponse{
		ID:            org.ID,
		Slug:          org.Slug,
		Name:          org.Name,
		Timezone:      timezone,
		Phone:         org.Phone,
		Email:         org.Email,
		Services:      make([]models.ServiceResponse, 0, len(services)),
		Staff:         make([]models.StaffResponse, 0, len(staff)),
		BusinessHours: make([]models.BusinessHoursResponse, 0, len(hours)),
	}

	for _, svc := range services {
		resp.Services = append(resp.Services, models.ServiceResponse{
			ID:              svc.ID,
			Name:            svc.Name,
			Description:     svc.Description,
			DurationMinutes: svc.Duration,
			Price:           svc.Price,
		})
	}
	for _, st := range staff {
		resp.Staff = append(resp.Staff, models.StaffResponse{ID: st.ID, Name: st.Name})
	}
	for _, h := range hours {
		resp.BusinessHours = append(resp.BusinessHours, models.BusinessHoursResponse{
			DayOfWeek: h.DayOfWeek,
			OpensAt:   h.OpensAt.String(),
			ClosesAt:  h.ClosesAt.String(),
			IsClosed:  h.IsClosed,
		})
	}

	return resp, nil
}

// organizationBySlug L1/L2 кеш, затем хранилище. Ошибки кеша не прерывают запрос.
func (s *Service) organizationBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	key := slugKeyPrefix + slug

	if s.cache != nil {
		raw, found, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("ResolveBySlug: cache get failed for slug=%s: %v", slug, err)
		}
		if found {
			var cached models.CachedOrganization
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached.ToDomain(), nil
			}
			s.logger.Warn("ResolveBySlug: corrupted cache entry for slug=%s", slug)
		}
	}

	org, err := s.orgRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, orgRepo.ErrOrganizationNotFound) {
			s.logger.Warn("ResolveBySlug: organization slug=%s not found", slug)
			return nil, ErrOrganizationNotFound
		}
		s.logger.Error("ResolveBySlug: repository error for slug=%s: %v", slug, err)
		return nil, fmt.Errorf("%w: ResolveBySlug - repository error: %w", ErrInternal, err)
	}

	if s.cache != nil {
		raw, err := json.Marshal(models.ToCached(org))
		if err == nil {
			err = s.cache.Set(ctx, key, raw, s.cacheTTL)
		}
		if err != nil {
			s.logger.Warn("ResolveBySlug: cache set failed for slug=%s: %v", slug, err)
		}
	}

	return org, nil
}
