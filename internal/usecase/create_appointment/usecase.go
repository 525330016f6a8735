package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	apptRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	customerRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/customer"
	"github.com/m04kA/SMC-AppointmentService/internal/service/conflictgate"
)

// UseCase use case для создания записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	catalogRepo     CatalogRepository
	customerRepo    CustomerRepository
	idempotencyRepo IdempotencyRepository
	gate            ConflictGate
	publisher       EventPublisher
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	catalogRepo CatalogRepository,
	customerRepo CustomerRepository,
	idempotencyRepo IdempotencyRepository,
	gate ConflictGate,
	publisher EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		catalogRepo:     catalogRepo,
		customerRepo:    customerRepo,
		idempotencyRepo: idempotencyRepo,
		gate:            gate,
		publisher:       publisher,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания записи.
// Проверка слота, клиент, вставка, уведомления и ключ идемпотентности пишутся
// в одной сериализуемой транзакции: либо всё, либо ничего.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: org=%s, origin=%s, service=%s, staff=%s, start=%s",
		req.Scope.OrganizationID(), req.Origin, req.ServiceID, staffLabel(req), req.StartsAt.Format(time.RFC3339))

	// 1. Валидация входных данных
	status, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Публичная форма не может записать в прошлое
	now := uc.timeProvider.Now()
	if req.Origin == OriginPublic && !req.StartsAt.After(now) {
		uc.logger.Warn("CreateAppointment: start=%s is in the past", req.StartsAt.Format(time.RFC3339))
		return &Response{Rejected: domain.RejectWithMessage(domain.ReasonValidationError, "Нельзя записаться на прошедшее время")}, nil
	}

	hash := requestHash(req, status)

	var resp *Response

	// 3. Сериализуемая транзакция; при повторе после 40001 состояние собирается заново
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		resp = nil

		result, err := uc.create(txCtx, req, status, hash)
		if err != nil {
			return err
		}
		resp = result
		return nil
	})

	var rejected *rejection
	if errors.As(err, &rejected) {
		uc.logger.Info("CreateAppointment: rejected org=%s, reason=%s", req.Scope.OrganizationID(), rejected.check.Reason)
		return &Response{Rejected: rejected.check}, nil
	}
	if err != nil {
		return nil, err
	}

	if resp.Replayed {
		uc.logger.Info("CreateAppointment: replayed key=%s -> appointment id=%s", req.IdempotencyKey, resp.Appointment.ID)
	} else {
		uc.logger.Info("CreateAppointment: created appointment id=%s, customer=%s, status=%s",
			resp.Appointment.ID, resp.Customer.ID, resp.Appointment.Status)
	}

	return resp, nil
}

func (uc *UseCase) create(ctx context.Context, req *Request, status domain.AppointmentStatus, hash string) (*Response, error) {
	scope := req.Scope

	// 3.1. Ключ идемпотентности
	if req.IdempotencyKey != "" {
		record, err := uc.idempotencyRepo.Lock(ctx, scope, req.IdempotencyKey, hash)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to lock idempotency key: %v", err)
			return nil, fmt.Errorf("%w: lock idempotency key: %w", ErrInternal, err)
		}
		if record.RequestHash != hash {
			uc.logger.Warn("CreateAppointment: idempotency key=%s reused with a different payload", req.IdempotencyKey)
			return nil, ErrIdempotencyKeyReused
		}
		if record.AppointmentID != nil {
			return uc.replay(ctx, req, *record.AppointmentID)
		}
	}

	// 3.2. Услуга: длительность и цена копируются в запись
	service, err := uc.catalogRepo.GetService(ctx, scope, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			return nil, reject(domain.RejectWithMessage(domain.ReasonNotFound, "Услуга не найдена"))
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%s: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: get service: %w", ErrInternal, err)
	}
	if !service.IsActive {
		return nil, reject(domain.RejectWithMessage(domain.ReasonNotFound, "Услуга недоступна для записи"))
	}

	// 3.3. Conflict gate; пересечения читаются с блокировкой в этой же транзакции
	check, err := uc.gate.Check(ctx, scope, conflictgate.Request{
		StaffID:  req.StaffID,
		StartsAt: req.StartsAt,
		Duration: service.Duration,
	})
	if err != nil {
		uc.logger.Error("CreateAppointment: conflict gate failed: %v", err)
		return nil, fmt.Errorf("%w: conflict gate: %w", ErrInternal, err)
	}
	if !check.Available {
		return nil, reject(check)
	}

	// 3.4. Клиент
	customer, err := uc.resolveCustomer(ctx, req)
	if err != nil {
		return nil, err
	}

	// 3.5. Запись
	appt, err := uc.appointmentRepo.Create(ctx, scope, &domain.Appointment{
		OrganizationID: scope.OrganizationID(),
		CustomerID:     customer.ID,
		ServiceID:      service.ID,
		StaffID:        req.StaffID,
		ScheduledAt:    req.StartsAt.UTC(),
		Duration:       service.Duration,
		Price:          service.Price,
		Status:         status,
		Notes:          req.Notes,
	})
	if err != nil {
		if errors.Is(err, apptRepo.ErrOverlap) {
			// конкурентная вставка прошла gate раньше нас
			return nil, reject(domain.Reject(domain.ReasonDoubleBooking))
		}
		uc.logger.Error("CreateAppointment: failed to insert appointment: %v", err)
		return nil, fmt.Errorf("%w: insert appointment: %w", ErrInternal, err)
	}

	// 3.6. Уведомления и событие outbox
	if err := uc.publisher.PublishEvent(ctx, scope, domain.EventAppointmentCreated, appt, customer); err != nil {
		uc.logger.Error("CreateAppointment: failed to publish event for appointment id=%s: %v", appt.ID, err)
		return nil, fmt.Errorf("%w: publish event: %w", ErrInternal, err)
	}

	// 3.7. Привязываем ключ к записи
	if req.IdempotencyKey != "" {
		if err := uc.idempotencyRepo.Finalize(ctx, scope, req.IdempotencyKey, appt.ID); err != nil {
			uc.logger.Error("CreateAppointment: failed to finalize idempotency key: %v", err)
			return nil, fmt.Errorf("%w: finalize idempotency key: %w", ErrInternal, err)
		}
	}

	return &Response{Appointment: appt, Customer: customer}, nil
}

func (uc *UseCase) replay(ctx context.Context, req *Request, appointmentID uuid.UUID) (*Response, error) {
	appt, err := uc.appointmentRepo.GetByID(ctx, req.Scope, appointmentID)
	if err != nil {
		uc.logger.Error("CreateAppointment: failed to load replayed appointment id=%s: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: load replayed appointment: %w", ErrInternal, err)
	}

	customer, err := uc.customerRepo.GetByID(ctx, req.Scope, appt.CustomerID)
	if err != nil {
		uc.logger.Error("CreateAppointment: failed to load customer id=%s: %v", appt.CustomerID, err)
		return nil, fmt.Errorf("%w: load customer: %w", ErrInternal, err)
	}

	return &Response{Appointment: appt, Customer: customer, Replayed: true}, nil
}

// resolveCustomer существующий клиент по id (кабинет) или поиск/создание по телефону и email
func (uc *UseCase) resolveCustomer(ctx context.Context, req *Request) (*domain.Customer, error) {
	if req.CustomerID != nil {
		customer, err := uc.customerRepo.GetByID(ctx, req.Scope, *req.CustomerID)
		if err != nil {
			if errors.Is(err, customerRepo.ErrCustomerNotFound) {
				return nil, reject(domain.RejectWithMessage(domain.ReasonNotFound, "Клиент не найден"))
			}
			uc.logger.Error("CreateAppointment: failed to get customer id=%s: %v", *req.CustomerID, err)
			return nil, fmt.Errorf("%w: get customer: %w", ErrInternal, err)
		}
		return customer, nil
	}

	customer, err := uc.customerRepo.FindOrCreate(ctx, req.Scope, req.Customer)
	if err != nil {
		if errors.Is(err, customerRepo.ErrNoContact) {
			return nil, fmt.Errorf("%w: customer phone or email is required", ErrInvalidInput)
		}
		uc.logger.Error("CreateAppointment: failed to upsert customer: %v", err)
		return nil, fmt.Errorf("%w: upsert customer: %w", ErrInternal, err)
	}
	return customer, nil
}

func staffLabel(req *Request) string {
	if req.StaffID == nil {
		return "any"
	}
	return req.StaffID.String()
}
