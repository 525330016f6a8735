package tenants

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/cache"
	redisCache "github.com/m04kA/SMC-AppointmentService/internal/infra/cache/redis"
	ristrettoCache "github.com/m04kA/SMC-AppointmentService/internal/infra/cache/ristretto"
	orgRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/organization"
	"github.com/m04kA/SMC-AppointmentService/internal/service/tenants/models"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type mockOrgRepo struct{ mock.Mock }

func (m *mockOrgRepo) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

type mockCatalogRepo struct{ mock.Mock }

func (m *mockCatalogRepo) ListActiveServices(ctx context.Context, scope tenant.Scope) ([]*domain.Service, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]*domain.Service), args.Error(1)
}

func (m *mockCatalogRepo) ListActiveStaff(ctx context.Context, scope tenant.Scope) ([]*domain.Staff, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]*domain.Staff), args.Error(1)
}

type mockHoursRepo struct{ mock.Mock }

func (m *mockHoursRepo) ListByOrganization(ctx context.Context, scope tenant.Scope) ([]*domain.BusinessHours, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]*domain.BusinessHours), args.Error(1)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

func newTieredCache(t *testing.T) (*cache.Tiered, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	l1, err := ristrettoCache.New(1 << 20)
	require.NoError(t, err)
	t.Cleanup(l1.Close)

	return cache.NewTiered(l1, redisCache.New(rdb, "appointments"), time.Minute), mr
}

func TestResolveBySlug_CachesOrganization(t *testing.T) {
	tiered, mr := newTieredCache(t)
	org := &domain.Organization{ID: uuid.New(), Slug: "barber", Name: "Barber", Status: domain.OrganizationActive}

	orgs := &mockOrgRepo{}
	orgs.On("GetBySlug", mock.Anything, "barber").Return(org, nil).Once()

	svc := NewService(orgs, &mockCatalogRepo{}, &mockHoursRepo{}, tiered, 5*time.Minute, "UTC", logger.Nop())

	res, err := svc.ResolveBySlug(context.Background(), " Barber ")
	require.NoError(t, err)
	assert.True(t, res.Bookable)
	assert.Equal(t, org.ID, res.Scope.OrganizationID())
	assert.True(t, mr.Exists("appointments:org:slug:barber"))

	res, err = svc.ResolveBySlug(context.Background(), "barber")
	require.NoError(t, err)
	assert.Equal(t, org.ID, res.Organization.ID)
	assert.Equal(t, "Barber", res.Organization.Name)

	orgs.AssertNumberOfCalls(t, "GetBySlug", 1)
}

func TestResolveBySlug_BookabilityEvaluatedPerRequest(t *testing.T) {
	tiered, _ := newTieredCache(t)
	trialEnds := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	org := &domain.Organization{ID: uuid.New(), Slug: "nails", Status: domain.OrganizationTrial, TrialEndsAt: &trialEnds}

	orgs := &mockOrgRepo{}
	orgs.On("GetBySlug", mock.Anything, "nails").Return(org, nil).Once()

	svc := NewService(orgs, &mockCatalogRepo{}, &mockHoursRepo{}, tiered, time.Hour, "UTC", logger.Nop())

	svc.timeProvider = fixedTime{now: trialEnds.Add(-time.Hour)}
	res, err := svc.ResolveBySlug(context.Background(), "nails")
	require.NoError(t, err)
	assert.True(t, res.Bookable)

	svc.timeProvider = fixedTime{now: trialEnds.Add(time.Hour)}
	res, err = svc.ResolveBySlug(context.Background(), "nails")
	require.NoError(t, err)
	assert.False(t, res.Bookable)
	assert.Equal(t, domain.ReasonTrialExpired, res.Reason)
}

func TestResolveBySlug_Errors(t *testing.T) {
	orgs := &mockOrgRepo{}
	orgs.On("GetBySlug", mock.Anything, "ghost").Return(nil, orgRepo.ErrOrganizationNotFound)
	orgs.On("GetBySlug", mock.Anything, "broken").Return(nil, errors.New("connection refused"))

	svc := NewService(orgs, &mockCatalogRepo{}, &mockHoursRepo{}, nil, 0, "UTC", logger.Nop())

	_, err := svc.ResolveBySlug(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidSlug)

	_, err = svc.ResolveBySlug(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrOrganizationNotFound)

	_, err = svc.ResolveBySlug(context.Background(), "broken")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestResolveBySlug_RedisDownFallsBackToStore(t *testing.T) {
	tiered, mr := newTieredCache(t)
	mr.Close()

	org := &domain.Organization{ID: uuid.New(), Slug: "spa", Status: domain.OrganizationActive}
	orgs := &mockOrgRepo{}
	orgs.On("GetBySlug", mock.Anything, "spa").Return(org, nil)

	svc := NewService(orgs, &mockCatalogRepo{}, &mockHoursRepo{}, tiered, time.Minute, "UTC", logger.Nop())

	res, err := svc.ResolveBySlug(context.Background(), "spa")
	require.NoError(t, err)
	assert.Equal(t, org.ID, res.Organization.ID)
}

func TestGetPublicProfile(t *testing.T) {
	orgID := uuid.New()
	scope, err := tenant.NewScope(orgID)
	require.NoError(t, err)

	catalog := &mockCatalogRepo{}
	catalog.On("ListActiveServices", mock.Anything, scope).
		Return([]*domain.Service{{ID: uuid.New(), Name: "Corte", Duration: 30, Price: 40}}, nil)
	catalog.On("ListActiveStaff", mock.Anything, scope).
		Return([]*domain.Staff{{ID: uuid.New(), Name: "Anna"}}, nil)

	hours := &mockHoursRepo{}
	hours.On("ListByOrganization", mock.Anything, scope).
		Return([]*domain.BusinessHours{{DayOfWeek: 1, OpensAt: "09:00", ClosesAt: "17:00"}}, nil)

	svc := NewService(&mockOrgRepo{}, catalog, hours, nil, 0, "America/Sao_Paulo", logger.Nop())

	resp, err := svc.GetPublicProfile(context.Background(), &models.Resolution{
		Organization: &domain.Organization{ID: orgID, Slug: "barber", Name: "Barber"},
		Scope:        scope,
		Bookable:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, "America/Sao_Paulo", resp.Timezone)
	require.Len(t, resp.Services, 1)
	assert.Equal(t, 30, resp.Services[0].DurationMinutes)
	require.Len(t, resp.Staff, 1)
	require.Len(t, resp.BusinessHours, 1)
	assert.Equal(t, "09:00", resp.BusinessHours[0].OpensAt)
}
