package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// Service ставит уведомления и интеграционные события в очередь.
// Publish должен вызываться внутри транзакции изменения записи.
type Service struct {
	notificationRepo NotificationRepository
	outboxRepo       OutboxRepository
	defaultLocation  *time.Location
	timeProvider     TimeProvider
	logger           Logger
}

// NewService создает новый экземпляр сервиса уведомлений
func NewService(
	notificationRepo NotificationRepository,
	outboxRepo OutboxRepository,
	defaultLocation *time.Location,
	logger Logger,
) *Service {
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return &Service{
		notificationRepo: notificationRepo,
		outboxRepo:       outboxRepo,
		defaultLocation:  defaultLocation,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Publish отменяет устаревшие ожидающие уведомления, ставит новые и пишет событие в outbox
func (s *Service) Publish(ctx context.Context, scope tenant.Scope, event domain.AppointmentEvent) error {
	if event.Appointment == nil || event.Organization == nil {
		return ErrInvalidEvent
	}

	now := s.timeProvider.Now()
	if event.OccurredAt.IsZero() {
		event.OccurredAt = now
	}
	appt := event.Appointment

	// 1. Устаревшие напоминания
	if templates, all := Superseded(event.Kind); all || len(templates) > 0 {
		cancelled, err := s.notificationRepo.CancelPendingForAppointment(ctx, scope, appt.ID, templates)
		if err != nil {
			s.logger.Error("Publish: failed to cancel pending notifications for appointment=%s: %v", appt.ID, err)
			return fmt.Errorf("%w: cancel pending: %w", ErrInternal, err)
		}
		if cancelled > 0 {
			s.logger.Info("Publish: cancelled %d pending notifications for appointment=%s", cancelled, appt.ID)
		}
	}

	// 2. Новые уведомления
	planned := Plan(event, event.Organization.Location(s.defaultLocation), now)
	if err := s.notificationRepo.EnqueueBatch(ctx, scope, planned); err != nil {
		s.logger.Error("Publish: failed to enqueue notifications for appointment=%s: %v", appt.ID, err)
		return fmt.Errorf("%w: enqueue: %w", ErrInternal, err)
	}

	// 3. Событие для шины
	outboxEvent, err := buildOutboxEvent(event)
	if err != nil {
		return fmt.Errorf("%w: build outbox event: %w", ErrInternal, err)
	}
	if err := s.outboxRepo.Add(ctx, scope, outboxEvent); err != nil {
		s.logger.Error("Publish: failed to add outbox event for appointment=%s: %v", appt.ID, err)
		return fmt.Errorf("%w: outbox: %w", ErrInternal, err)
	}

	s.logger.Info("Publish: event=%s, appointment=%s, notifications=%d", event.Kind, appt.ID, len(planned))
	return nil
}

func buildOutboxEvent(event domain.AppointmentEvent) (*domain.OutboxEvent, error) {
	appt := event.Appointment
	payload := EventPayload{
		EventID:        uuid.New(),
		EventType:      string(event.Kind),
		OrganizationID: appt.OrganizationID,
		AppointmentID:  appt.ID,
		CustomerID:     appt.CustomerID,
		ServiceID:      appt.ServiceID,
		StaffID:        appt.StaffID,
		Status:         string(appt.Status),
		ScheduledAt:    appt.ScheduledAt.UTC(),
		EndsAt:         appt.EndsAt().UTC(),
		Price:          appt.Price,
		OccurredAt:     event.OccurredAt.UTC(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &domain.OutboxEvent{
		EventID:        payload.EventID,
		OrganizationID: appt.OrganizationID,
		AggregateID:    appt.ID,
		EventType:      payload.EventType,
		Payload:        body,
	}, nil
}
