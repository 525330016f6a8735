package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	notificationRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/notification"
	orgRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/organization"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// Service жизненный цикл записей: смена статуса, удаление, чтение
type Service struct {
	txManager        TransactionManager
	appointmentRepo  AppointmentRepository
	customerRepo     CustomerRepository
	orgRepo          OrganizationRepository
	serviceRepo      ServiceRepository
	notificationRepo NotificationRepository
	publisher        EventPublisher
	defaultLocation  *time.Location
	metrics          Metrics
	timeProvider     TimeProvider
	logger           Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	txManager TransactionManager,
	appointmentRepo AppointmentRepository,
	customerRepo CustomerRepository,
	orgRepo OrganizationRepository,
	serviceRepo ServiceRepository,
	notificationRepo NotificationRepository,
	publisher EventPublisher,
	defaultLocation *time.Location,
	metrics Metrics,
	logger Logger,
) *Service {
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return &Service{
		txManager:        txManager,
		appointmentRepo:  appointmentRepo,
		customerRepo:     customerRepo,
		orgRepo:          orgRepo,
		serviceRepo:      serviceRepo,
		notificationRepo: notificationRepo,
		publisher:        publisher,
		defaultLocation:  defaultLocation,
		metrics:          metrics,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// GetByID получает запись организации
func (s *Service) GetByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*models.AppointmentResponse, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, scope, id)
	if err != nil {
		return nil, s.mapRepoError("GetByID", id, err)
	}

	return models.FromDomainAppointment(appt), nil
}

// List записи организации за период с фильтрами
func (s *Service) List(ctx context.Context, scope tenant.Scope, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter for org=%s: %v", scope.OrganizationID(), err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	list, err := s.appointmentRepo.List(ctx, scope, filter)
	if err != nil {
		s.logger.Error("List: repository error for org=%s: %v", scope.OrganizationID(), err)
		return nil, fmt.Errorf("%w: List - repository error: %w", ErrInternal, err)
	}

	return models.FromDomainAppointmentList(list), nil
}

// DayStats счётчики по статусам и выручка за календарный день в часовом поясе организации
func (s *Service) DayStats(ctx context.Context, scope tenant.Scope, date time.Time) (*models.DayStatsResponse, error) {
	org, err := s.orgRepo.Get(ctx, scope)
	if err != nil {
		if errors.Is(err, orgRepo.ErrOrganizationNotFound) {
			return nil, ErrOrganizationNotFound
		}
		s.logger.Error("DayStats: failed to get organization id=%s: %v", scope.OrganizationID(), err)
		return nil, fmt.Errorf("%w: DayStats - get organization: %w", ErrInternal, err)
	}

	loc := org.Location(s.defaultLocation)
	y, m, d := date.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1)

	stats, err := s.appointmentRepo.DayStats(ctx, scope, from, to)
	if err != nil {
		s.logger.Error("DayStats: repository error for org=%s: %v", scope.OrganizationID(), err)
		return nil, fmt.Errorf("%w: DayStats - repository error: %w", ErrInternal, err)
	}
	stats.Date = from

	return models.FromDomainDayStats(stats), nil
}

// ChangeStatus применяет переход статуса.
// Повторный перевод в текущий статус ничего не делает (Applied=false), поэтому агрегаты клиента
// и уведомления выполняются ровно один раз на применённый переход.
func (s *Service) ChangeStatus(ctx context.Context, scope tenant.Scope, id uuid.UUID, status string) (*models.StatusChangeResponse, error) {
	to, err := models.ToDomainStatus(status)
	if err != nil {
		s.logger.Warn("ChangeStatus: invalid status=%s for appointment id=%s", status, id)
		return nil, ErrInvalidStatus
	}

	s.logger.Info("ChangeStatus: appointment id=%s, org=%s, to=%s", id, scope.OrganizationID(), to)

	var (
		appt    *domain.Appointment
		from    domain.AppointmentStatus
		applied bool
	)

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		// 1. Блокируем строку записи
		current, err := s.appointmentRepo.GetByID(ctx, scope, id)
		if err != nil {
			return s.mapRepoError("ChangeStatus", id, err)
		}
		appt, from = current, current.Status

		// 2. Уже в целевом статусе
		if from == to {
			return nil
		}

		if !domain.CanTransition(from, to) {
			s.logger.Warn("ChangeStatus: illegal transition %s -> %s for appointment id=%s", from, to, id)
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}

		// 3. Условное обновление
		if err := s.appointmentRepo.UpdateStatus(ctx, scope, id, from, to); err != nil {
			return s.mapRepoError("ChangeStatus", id, err)
		}
		appt.Status = to

		// 4. Агрегаты клиента
		if err := s.applyAggregates(ctx, scope, appt); err != nil {
			return err
		}

		// 5. Уведомления и событие
		if err := s.PublishEvent(ctx, scope, domain.EventKindForStatus(to), appt, nil); err != nil {
			return err
		}

		applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if applied {
		s.metrics.RecordStatusTransition(string(from), string(to))
		s.logger.Info("ChangeStatus: appointment id=%s moved %s -> %s", id, from, to)
	} else {
		s.logger.Info("ChangeStatus: appointment id=%s already %s, nothing to do", id, to)
	}

	return &models.StatusChangeResponse{
		Appointment: models.FromDomainAppointment(appt),
		From:        string(from),
		Applied:     applied,
	}, nil
}

// Delete физически удаляет запись, не затронувшую статистику клиента
// (completed и no_show удалять нельзя). Ожидающие уведомления отменяются до удаления.
func (s *Service) Delete(ctx context.Context, scope tenant.Scope, id uuid.UUID) error {
	s.logger.Info("Delete: appointment id=%s, org=%s", id, scope.OrganizationID())

	return s.txManager.Do(ctx, func(ctx context.Context) error {
		appt, err := s.appointmentRepo.GetByID(ctx, scope, id)
		if err != nil {
			return s.mapRepoError("Delete", id, err)
		}

		if appt.AggregatesApplied() {
			s.logger.Warn("Delete: appointment id=%s has status=%s", id, appt.Status)
			return ErrCannotDelete
		}

		if _, err := s.notificationRepo.CancelPendingForAppointment(ctx, scope, id, nil); err != nil {
			s.logger.Error("Delete: failed to cancel notifications for appointment id=%s: %v", id, err)
			return fmt.Errorf("%w: Delete - cancel notifications: %w", ErrInternal, err)
		}

		if err := s.appointmentRepo.Delete(ctx, scope, id); err != nil {
			return s.mapRepoError("Delete", id, err)
		}

		s.logger.Info("Delete: appointment id=%s deleted", id)
		return nil
	})
}

// CancelNotification отменяет ожидающее уведомление организации
func (s *Service) CancelNotification(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*models.NotificationResponse, error) {
	n, err := s.notificationRepo.Cancel(ctx, scope, id)
	if err != nil {
		switch {
		case errors.Is(err, notificationRepo.ErrNotificationNotFound), errors.Is(err, tenant.ErrNoTenant):
			return nil, ErrNotificationNotFound
		case errors.Is(err, notificationRepo.ErrNotPending):
			return nil, ErrNotificationNotPending
		}
		s.logger.Error("CancelNotification: repository error for notification id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: CancelNotification - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("CancelNotification: notification id=%s cancelled", id)
	return models.FromDomainNotification(n), nil
}

// PublishEvent собирает событие записи и передаёт его в очередь уведомлений.
// customer может быть nil - тогда клиент читается из хранилища.
func (s *Service) PublishEvent(ctx context.Context, scope tenant.Scope, kind domain.AppointmentEventKind, appt *domain.Appointment, customer *domain.Customer) error {
	org, err := s.orgRepo.Get(ctx, scope)
	if err != nil {
		s.logger.Error("PublishEvent: failed to get organization id=%s: %v", scope.OrganizationID(), err)
		return fmt.Errorf("%w: PublishEvent - get organization: %w", ErrInternal, err)
	}

	if customer == nil {
		customer, err = s.customerRepo.GetByID(ctx, scope, appt.CustomerID)
		if err != nil {
			s.logger.Error("PublishEvent: failed to get customer id=%s: %v", appt.CustomerID, err)
			return fmt.Errorf("%w: PublishEvent - get customer: %w", ErrInternal, err)
		}
	}

	var serviceName string
	service, err := s.serviceRepo.GetService(ctx, scope, appt.ServiceID)
	switch {
	case err == nil:
		serviceName = service.Name
	case errors.Is(err, catalogRepo.ErrServiceNotFound):
		s.logger.Warn("PublishEvent: service id=%s not found for appointment id=%s", appt.ServiceID, appt.ID)
	default:
		s.logger.Error("PublishEvent: failed to get service id=%s: %v", appt.ServiceID, err)
		return fmt.Errorf("%w: PublishEvent - get service: %w", ErrInternal, err)
	}

	event := domain.AppointmentEvent{
		Kind:         kind,
		Appointment:  appt,
		Customer:     customer,
		Organization: org,
		ServiceName:  serviceName,
		OccurredAt:   s.timeProvider.Now(),
	}

	if err := s.publisher.Publish(ctx, scope, event); err != nil {
		return fmt.Errorf("%w: PublishEvent - publish: %w", ErrInternal, err)
	}

	return nil
}

// Вспомогательные методы

// applyAggregates инкременты выполняются в SQL, чтобы параллельные переходы не теряли обновления
func (s *Service) applyAggregates(ctx context.Context, scope tenant.Scope, appt *domain.Appointment) error {
	var err error
	switch appt.Status {
	case domain.StatusNoShow:
		err = s.customerRepo.ApplyNoShow(ctx, scope, appt.CustomerID)
	case domain.StatusCompleted:
		err = s.customerRepo.ApplyCompletion(ctx, scope, appt.CustomerID, appt.Price, s.timeProvider.Now())
	default:
		return nil
	}

	if err != nil {
		s.logger.Error("ChangeStatus: failed to update customer id=%s aggregates: %v", appt.CustomerID, err)
		return fmt.Errorf("%w: ChangeStatus - customer aggregates: %w", ErrInternal, err)
	}
	return nil
}

func (s *Service) mapRepoError(op string, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, appointmentRepo.ErrAppointmentNotFound), errors.Is(err, tenant.ErrNoTenant):
		s.logger.Warn("%s: appointment id=%s not found", op, id)
		return ErrAppointmentNotFound
	case errors.Is(err, appointmentRepo.ErrStatusConflict):
		s.logger.Warn("%s: appointment id=%s status changed concurrently", op, id)
		return ErrStatusConflict
	}

	s.logger.Error("%s: repository error for appointment id=%s: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
}
