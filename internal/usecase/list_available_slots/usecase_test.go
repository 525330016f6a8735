package list_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bhRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/businesshours"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type stubStore struct {
	org          *domain.Organization
	service      *domain.Service
	staff        map[uuid.UUID]*domain.Staff
	hours        map[time.Weekday]*domain.BusinessHours
	appointments []*domain.Appointment
	lastQuery    domain.OverlapQuery
}

func (s *stubStore) Get(context.Context, tenant.Scope) (*domain.Organization, error) {
	return s.org, nil
}

func (s *stubStore) GetService(_ context.Context, _ tenant.Scope, id uuid.UUID) (*domain.Service, error) {
	if s.service == nil || s.service.ID != id {
		return nil, catalogRepo.ErrServiceNotFound
	}
	return s.service, nil
}

func (s *stubStore) GetStaff(_ context.Context, _ tenant.Scope, id uuid.UUID) (*domain.Staff, error) {
	st, ok := s.staff[id]
	if !ok {
		return nil, catalogRepo.ErrStaffNotFound
	}
	return st, nil
}

func (s *stubStore) CountActiveStaff(context.Context, tenant.Scope) (int, error) {
	count := 0
	for _, st := range s.staff {
		if st.IsActive {
			count++
		}
	}
	return count, nil
}

func (s *stubStore) GetForWeekday(_ context.Context, _ tenant.Scope, weekday time.Weekday) (*domain.BusinessHours, error) {
	h, ok := s.hours[weekday]
	if !ok {
		return nil, bhRepo.ErrHoursNotFound
	}
	return h, nil
}

func (s *stubStore) ListOverlapping(_ context.Context, _ tenant.Scope, q domain.OverlapQuery) ([]*domain.Appointment, error) {
	s.lastQuery = q
	var out []*domain.Appointment
	for _, a := range s.appointments {
		if !a.Status.IsBlocking() || !a.Overlaps(q.Start, q.End) {
			continue
		}
		if q.StaffID != nil && (a.StaffID == nil || *a.StaffID != *q.StaffID) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

// 10 марта 2025 - понедельник
var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*UseCase, *stubStore, tenant.Scope, uuid.UUID) {
	t.Helper()

	orgID := uuid.New()
	scope, err := tenant.NewScope(orgID)
	require.NoError(t, err)

	staffID := uuid.New()
	store := &stubStore{
		org:     &domain.Organization{ID: orgID, Status: domain.OrganizationActive},
		service: &domain.Service{ID: uuid.New(), OrganizationID: orgID, Duration: 60, IsActive: true},
		staff: map[uuid.UUID]*domain.Staff{
			staffID:    {ID: staffID, IsActive: true},
			uuid.New(): {IsActive: true},
		},
		hours: map[time.Weekday]*domain.BusinessHours{
			time.Monday: {DayOfWeek: 1, OpensAt: "09:00", ClosesAt: "17:00"},
		},
	}
	store.appointments = []*domain.Appointment{{
		ID:          uuid.New(),
		StaffID:     &staffID,
		ScheduledAt: monday.Add(10 * time.Hour),
		Duration:    60,
		Status:      domain.StatusConfirmed,
	}}

	uc := NewUseCase(store, store, store, store, availability.NewCalculator(availability.Settings{}), time.UTC, logger.Nop())
	uc.timeProvider = fixedTime{now: monday.AddDate(0, 0, -1)}

	return uc, store, scope, staffID
}

func TestExecute_StaffSlotsSkipBusyTime(t *testing.T) {
	uc, store, scope, staffID := setup(t)

	resp, err := uc.Execute(context.Background(), &Request{Scope: scope, ServiceID: store.service.ID, Date: monday, StaffID: &staffID})
	require.NoError(t, err)

	// 09:00..16:00 с шагом 30 минут = 15 кандидатов, 09:30, 10:00 и 10:30 пересекаются с 10:00-11:00
	assert.Len(t, resp.Slots, 12)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Contains(t, resp.Slots, monday.Add(9*time.Hour))
	assert.Contains(t, resp.Slots, monday.Add(11*time.Hour))
	assert.NotContains(t, resp.Slots, monday.Add(10*time.Hour+30*time.Minute))
	assert.Equal(t, monday.Add(16*time.Hour), resp.Slots[len(resp.Slots)-1])

	assert.Equal(t, monday, store.lastQuery.Start)
	assert.Equal(t, monday.AddDate(0, 0, 1), store.lastQuery.End)
}

func TestExecute_PoolHasFreeStaff(t *testing.T) {
	uc, store, scope, _ := setup(t)

	resp, err := uc.Execute(context.Background(), &Request{Scope: scope, ServiceID: store.service.ID, Date: monday})
	require.NoError(t, err)
	assert.Len(t, resp.Slots, 15)
}

func TestExecute_ClosedDay(t *testing.T) {
	uc, store, scope, _ := setup(t)
	sunday := monday.AddDate(0, 0, 6)

	resp, err := uc.Execute(context.Background(), &Request{Scope: scope, ServiceID: store.service.ID, Date: sunday})
	require.NoError(t, err)
	assert.True(t, resp.IsClosed)
	assert.NotNil(t, resp.Slots)
	assert.Empty(t, resp.Slots)
}

func TestExecute_Errors(t *testing.T) {
	t.Run("inactive organization", func(t *testing.T) {
		uc, store, scope, _ := setup(t)
		store.org.Status = domain.OrganizationInactive

		_, err := uc.Execute(context.Background(), &Request{Scope: scope, ServiceID: store.service.ID, Date: monday})
		assert.ErrorIs(t, err, ErrOrganizationInactive)
	})

	t.Run("trial expired", func(t *testing.T) {
		uc, store, scope, _ := setup(t)
		ended := monday.AddDate(0, 0, -3)
		store.org.Status = domain.OrganizationTrial
		store.org.TrialEndsAt = &ended

		_, err := uc.Execute(context.Background(), &Request{Scope: scope, ServiceID: store.service.ID, Date: monday})
		assert.ErrorIs(t, err, ErrTrialExpired)
	})

	t.Run("inactive service", func(t *testing.T) {
		uc, store, scope, _ := setup(t)
		store.service.IsActive = false

		_, err := uc.Execute(context.Background(), &Request{Scope: scope, ServiceID: store.service.ID, Date: monday})
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("unknown staff", func(t *testing.T) {
		uc, store, scope, _ := setup(t)
		other := uuid.New()

		_, err := uc.Execute(context.Background(), &Request{Scope: scope, ServiceID: store.service.ID, Date: monday, StaffID: &other})
		assert.ErrorIs(t, err, ErrStaffNotFound)
	})

	t.Run("missing scope", func(t *testing.T) {
		uc, store, _, _ := setup(t)

		_, err := uc.Execute(context.Background(), &Request{ServiceID: store.service.ID, Date: monday})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
