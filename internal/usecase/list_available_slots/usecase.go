package list_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bhRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/businesshours"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	orgRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/organization"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability"
)

// UseCase use case для получения доступных слотов. Ничего не резервирует.
type UseCase struct {
	orgRepo         OrganizationRepository
	catalogRepo     CatalogRepository
	hoursRepo       BusinessHoursRepository
	appointmentRepo AppointmentRepository
	calculator      Calculator
	defaultLocation *time.Location
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	orgRepo OrganizationRepository,
	catalogRepo CatalogRepository,
	hoursRepo BusinessHoursRepository,
	appointmentRepo AppointmentRepository,
	calculator Calculator,
	defaultLocation *time.Location,
	logger Logger,
) *UseCase {
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return &UseCase{
		orgRepo:         orgRepo,
		catalogRepo:     catalogRepo,
		hoursRepo:       hoursRepo,
		appointmentRepo: appointmentRepo,
		calculator:      calculator,
		defaultLocation: defaultLocation,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ListAvailableSlots: org=%s, service=%s, date=%s, staff=%v",
		req.Scope.OrganizationID(), req.ServiceID, req.Date.Format(domain.DateFormat), req.StaffID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ListAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Организация и её статус
	org, err := uc.orgRepo.Get(ctx, req.Scope)
	if err != nil {
		if errors.Is(err, orgRepo.ErrOrganizationNotFound) {
			uc.logger.Warn("ListAvailableSlots: organization id=%s not found", req.Scope.OrganizationID())
			return nil, ErrOrganizationNotFound
		}
		uc.logger.Error("ListAvailableSlots: failed to get organization id=%s: %v", req.Scope.OrganizationID(), err)
		return nil, fmt.Errorf("%w: failed to get organization: %w", ErrInternal, err)
	}

	if ok, reason := org.CanAcceptBookings(now); !ok {
		uc.logger.Warn("ListAvailableSlots: organization id=%s cannot accept bookings: %s", org.ID, reason)
		if reason == domain.ReasonTrialExpired {
			return nil, ErrTrialExpired
		}
		return nil, ErrOrganizationInactive
	}

	// 3. Услуга (её длительность определяет слот)
	service, err := uc.catalogRepo.GetService(ctx, req.Scope, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("ListAvailableSlots: service id=%s not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("ListAvailableSlots: failed to get service id=%s: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %w", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("ListAvailableSlots: service id=%s is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 4. Ёмкость: один сотрудник или весь пул
	capacity, err := uc.capacity(ctx, req)
	if err != nil {
		return nil, err
	}

	// 5. Рабочее окно дня
	loc := org.Location(uc.defaultLocation)
	y, m, d := req.Date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)

	hours, err := uc.hoursRepo.GetForWeekday(ctx, req.Scope, day.Weekday())
	if err != nil && !errors.Is(err, bhRepo.ErrHoursNotFound) {
		uc.logger.Error("ListAvailableSlots: failed to get business hours: %v", err)
		return nil, fmt.Errorf("%w: failed to get business hours: %w", ErrInternal, err)
	}
	window := uc.calculator.Window(day.Weekday(), hours)

	resp := &Response{
		Date:            day,
		ServiceID:       service.ID,
		StaffID:         req.StaffID,
		DurationMinutes: service.Duration,
		Timezone:        loc.String(),
		IsClosed:        window.IsClosed,
		Slots:           []time.Time{},
	}

	if window.IsClosed {
		uc.logger.Info("ListAvailableSlots: organization id=%s is closed on %s", org.ID, day.Format(domain.DateFormat))
		return resp, nil
	}

	// 6. Занятые интервалы дня
	busy, err := uc.appointmentRepo.ListOverlapping(ctx, req.Scope, domain.OverlapQuery{
		StaffID: req.StaffID,
		Start:   day,
		End:     day.AddDate(0, 0, 1),
	})
	if err != nil {
		uc.logger.Error("ListAvailableSlots: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
	}

	// 7. Кандидаты по сетке минус занятые
	candidates := uc.calculator.Candidates(day, loc, window, service.Duration, now)
	for start := range availability.WithoutOccupied(candidates, service.Duration, busy, capacity) {
		resp.Slots = append(resp.Slots, start)
	}

	uc.logger.Info("ListAvailableSlots: generated %d slots for org=%s, service=%s, date=%s",
		len(resp.Slots), org.ID, service.ID, day.Format(domain.DateFormat))

	return resp, nil
}

func (uc *UseCase) capacity(ctx context.Context, req *Request) (int, error) {
	if req.StaffID != nil {
		staff, err := uc.catalogRepo.GetStaff(ctx, req.Scope, *req.StaffID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrStaffNotFound) {
				uc.logger.Warn("ListAvailableSlots: staff id=%s not found", *req.StaffID)
				return 0, ErrStaffNotFound
			}
			uc.logger.Error("ListAvailableSlots: failed to get staff id=%s: %v", *req.StaffID, err)
			return 0, fmt.Errorf("%w: failed to get staff: %w", ErrInternal, err)
		}
		if !staff.IsActive {
			return 0, ErrStaffNotFound
		}
		return 1, nil
	}

	count, err := uc.catalogRepo.CountActiveStaff(ctx, req.Scope)
	if err != nil {
		uc.logger.Error("ListAvailableSlots: failed to count staff: %v", err)
		return 0, fmt.Errorf("%w: failed to count staff: %w", ErrInternal, err)
	}
	return max(count, 1), nil
}
