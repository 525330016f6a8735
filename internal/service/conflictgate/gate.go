package conflictgate

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
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// Gate решает, можно ли занять интервал.
// Отказ возвращается значением BookingCheck; error только при сбое хранилища.
// Внутри транзакции выборка пересечений идёт с FOR UPDATE, поэтому проверка
// и последующая вставка в той же транзакции согласованы.
type Gate struct {
	orgRepo         OrganizationRepository
	staffRepo       StaffRepository
	appointmentRepo AppointmentRepository
	hoursRepo       BusinessHoursRepository
	windows         WindowResolver
	defaultLocation *time.Location
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewGate создает conflict gate
func NewGate(
	orgRepo OrganizationRepository,
	staffRepo StaffRepository,
	appointmentRepo AppointmentRepository,
	hoursRepo BusinessHoursRepository,
	windows WindowResolver,
	defaultLocation *time.Location,
	metrics Metrics,
	logger Logger,
) *Gate {
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return &Gate{
		orgRepo:         orgRepo,
		staffRepo:       staffRepo,
		appointmentRepo: appointmentRepo,
		hoursRepo:       hoursRepo,
		windows:         windows,
		defaultLocation: defaultLocation,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Check проверяет слот по порядку: статус организации, входные данные,
// пересечения, рабочие часы
func (g *Gate) Check(ctx context.Context, scope tenant.Scope, req Request) (*domain.BookingCheck, error) {
	check, err := g.check(ctx, scope, req)
	if err != nil {
		return nil, err
	}

	g.metrics.RecordBookingCheck(check.MetricLabel())
	if !check.Available {
		g.logger.Info("CheckBooking: rejected org=%s, staff=%s, start=%s, reason=%s",
			scope.OrganizationID(), staffLabel(req), req.StartsAt.Format(time.RFC3339), check.Reason)
	}
	return check, nil
}

func (g *Gate) check(ctx context.Context, scope tenant.Scope, req Request) (*domain.BookingCheck, error) {
	// 1. Организация всегда читается из хранилища, не из кеша
	org, err := g.orgRepo.Get(ctx, scope)
	if err != nil {
		if errors.Is(err, orgRepo.ErrOrganizationNotFound) || errors.Is(err, tenant.ErrNoTenant) {
			return domain.Reject(domain.ReasonNotFound), nil
		}
		g.logger.Error("CheckBooking: failed to get organization id=%s: %v", scope.OrganizationID(), err)
		return nil, fmt.Errorf("%w: get organization: %w", ErrInternal, err)
	}

	if ok, reason := org.CanAcceptBookings(g.timeProvider.Now()); !ok {
		return domain.Reject(reason), nil
	}

	// 2. Входные данные
	if reason := validateRequest(req); reason != domain.ReasonNone {
		return domain.Reject(reason), nil
	}

	// 3. Пересечения
	check, err := g.checkOverlap(ctx, scope, req)
	if err != nil || check != nil {
		return check, err
	}

	// 4. Рабочие часы проверяются повторно: gate вызывают и в обход списка слотов
	loc := org.Location(g.defaultLocation)
	weekday := req.StartsAt.In(loc).Weekday()

	hours, err := g.hoursRepo.GetForWeekday(ctx, scope, weekday)
	if err != nil && !errors.Is(err, bhRepo.ErrHoursNotFound) {
		g.logger.Error("CheckBooking: failed to get business hours org=%s, weekday=%d: %v", scope.OrganizationID(), weekday, err)
		return nil, fmt.Errorf("%w: get business hours: %w", ErrInternal, err)
	}

	window := g.windows.Window(weekday, hours)
	switch availability.FitsWindow(req.StartsAt, req.Duration, window, loc) {
	case domain.ReasonClosed:
		return domain.Reject(domain.ReasonClosed), nil
	case domain.ReasonOutsideBusinessHours:
		return domain.RejectOutsideHours(window), nil
	}

	return domain.Available(), nil
}

// checkOverlap nil, nil - пересечений нет
func (g *Gate) checkOverlap(ctx context.Context, scope tenant.Scope, req Request) (*domain.BookingCheck, error) {
	query := domain.OverlapQuery{
		StaffID:              req.StaffID,
		Start:                req.StartsAt,
		End:                  req.EndsAt(),
		ExcludeAppointmentID: req.ExcludeAppointmentID,
	}

	if req.StaffID != nil {
		staff, err := g.staffRepo.GetStaff(ctx, scope, *req.StaffID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrStaffNotFound) {
				return domain.Reject(domain.ReasonNotFound), nil
			}
			g.logger.Error("CheckBooking: failed to get staff id=%s: %v", *req.StaffID, err)
			return nil, fmt.Errorf("%w: get staff: %w", ErrInternal, err)
		}
		if !staff.IsActive {
			return domain.Reject(domain.ReasonNotFound), nil
		}

		overlapping, err := g.appointmentRepo.ListOverlapping(ctx, scope, query)
		if err != nil {
			g.logger.Error("CheckBooking: failed to list overlapping for staff id=%s: %v", *req.StaffID, err)
			return nil, fmt.Errorf("%w: list overlapping: %w", ErrInternal, err)
		}
		if len(overlapping) > 0 {
			return domain.Reject(domain.ReasonDoubleBooking), nil
		}

		// Записи без сотрудника занимают кого-то из пула, в том числе этого сотрудника
		query.StaffID = nil
		return g.checkPool(ctx, scope, query, true)
	}

	return g.checkPool(ctx, scope, query, false)
}

// checkPool ёмкость пула: пересекающихся активных записей организации должно быть
// меньше, чем активных сотрудников (минимум один). onlyWithUnassigned - проверять
// только если среди пересечений есть запись без сотрудника.
func (g *Gate) checkPool(ctx context.Context, scope tenant.Scope, query domain.OverlapQuery, onlyWithUnassigned bool) (*domain.BookingCheck, error) {
	overlapping, err := g.appointmentRepo.ListOverlapping(ctx, scope, query)
	if err != nil {
		g.logger.Error("CheckBooking: failed to list overlapping org=%s: %v", scope.OrganizationID(), err)
		return nil, fmt.Errorf("%w: list overlapping: %w", ErrInternal, err)
	}
	if onlyWithUnassigned && !hasUnassigned(overlapping) {
		return nil, nil
	}

	capacity, err := g.staffRepo.CountActiveStaff(ctx, scope)
	if err != nil {
		g.logger.Error("CheckBooking: failed to count staff org=%s: %v", scope.OrganizationID(), err)
		return nil, fmt.Errorf("%w: count staff: %w", ErrInternal, err)
	}
	if capacity < 1 {
		capacity = 1
	}

	if len(overlapping) >= capacity {
		return domain.RejectPoolFull(), nil
	}

	return nil, nil
}

func hasUnassigned(appointments []*domain.Appointment) bool {
	for _, a := range appointments {
		if a.StaffID == nil {
			return true
		}
	}
	return false
}

func validateRequest(req Request) domain.Reason {
	if req.StartsAt.IsZero() {
		return domain.ReasonValidationError
	}
	if req.Duration <= 0 || req.Duration > domain.MaxAppointmentDurationMinutes {
		return domain.ReasonValidationError
	}
	return domain.ReasonNone
}

func staffLabel(req Request) string {
	if req.StaffID == nil {
		return "any"
	}
	return req.StaffID.String()
}
