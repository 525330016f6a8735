package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	apptRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/service/conflictgate"
)

// UseCase use case для переноса записи на другое время или к другому сотруднику
type UseCase struct {
	appointmentRepo AppointmentRepository
	gate            ConflictGate
	publisher       EventPublisher
	txManager       TransactionManager
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	gate ConflictGate,
	publisher EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		gate:            gate,
		publisher:       publisher,
		txManager:       txManager,
		logger:          logger,
	}
}

// Execute проверяет новый интервал через conflict gate без учёта самой записи
// и сохраняет его в той же транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: appointment id=%s, org=%s", req.AppointmentID, req.Scope.OrganizationID())

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}

	var resp *Response

	// 2. Сериализуемая транзакция
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		resp = nil

		result, err := uc.reschedule(txCtx, req)
		if err != nil {
			return err
		}
		resp = result
		return nil
	})

	var rejected *rejection
	if errors.As(err, &rejected) {
		uc.logger.Info("RescheduleAppointment: rejected appointment id=%s, reason=%s", req.AppointmentID, rejected.check.Reason)
		return &Response{Rejected: rejected.check}, nil
	}
	if err != nil {
		return nil, err
	}

	if resp.Changed {
		uc.logger.Info("RescheduleAppointment: appointment id=%s moved to %s",
			resp.Appointment.ID, resp.Appointment.ScheduledAt.Format(time.RFC3339))
	}
	return resp, nil
}

func (uc *UseCase) reschedule(ctx context.Context, req *Request) (*Response, error) {
	scope := req.Scope

	// 2.1. Текущее состояние записи
	appt, err := uc.appointmentRepo.GetByID(ctx, scope, req.AppointmentID)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("RescheduleAppointment: appointment id=%s not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("RescheduleAppointment: failed to get appointment id=%s: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: get appointment: %w", ErrInternal, err)
	}

	if !appt.CanBeRescheduled() {
		uc.logger.Warn("RescheduleAppointment: appointment id=%s is %s", appt.ID, appt.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrCannotReschedule, appt.Status)
	}

	// 2.2. Новое состояние
	moved := *appt
	if req.StartsAt != nil {
		moved.ScheduledAt = req.StartsAt.UTC()
	}
	switch {
	case req.ClearStaff:
		moved.StaffID = nil
	case req.StaffID != nil:
		moved.StaffID = req.StaffID
	}

	if moved.ScheduledAt.Equal(appt.ScheduledAt) && sameStaff(moved.StaffID, appt.StaffID) {
		return &Response{Appointment: appt}, nil
	}

	// 2.3. Conflict gate без учёта самой записи
	check, err := uc.gate.Check(ctx, scope, conflictgate.Request{
		StaffID:              moved.StaffID,
		StartsAt:             moved.ScheduledAt,
		Duration:             moved.Duration,
		ExcludeAppointmentID: &appt.ID,
	})
	if err != nil {
		uc.logger.Error("RescheduleAppointment: conflict gate failed: %v", err)
		return nil, fmt.Errorf("%w: conflict gate: %w", ErrInternal, err)
	}
	if !check.Available {
		return nil, &rejection{check: check}
	}

	// 2.4. Сохранение
	updated, err := uc.appointmentRepo.Reschedule(ctx, scope, &moved)
	if err != nil {
		switch {
		case errors.Is(err, apptRepo.ErrOverlap):
			return nil, &rejection{check: domain.Reject(domain.ReasonDoubleBooking)}
		case errors.Is(err, apptRepo.ErrStatusConflict):
			return nil, ErrStatusConflict
		}
		uc.logger.Error("RescheduleAppointment: failed to update appointment id=%s: %v", appt.ID, err)
		return nil, fmt.Errorf("%w: update appointment: %w", ErrInternal, err)
	}

	// 2.5. Старое напоминание отменяется, новое ставится
	if err := uc.publisher.PublishEvent(ctx, scope, domain.EventAppointmentRescheduled, updated, nil); err != nil {
		uc.logger.Error("RescheduleAppointment: failed to publish event for appointment id=%s: %v", appt.ID, err)
		return nil, fmt.Errorf("%w: publish event: %w", ErrInternal, err)
	}

	return &Response{Appointment: updated, Changed: true}, nil
}

func sameStaff(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
