package check_booking

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/conflictgate"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

// UseCase use case для проверки возможности записи
type UseCase struct {
	gate   ConflictGate
	logger Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(gate ConflictGate, logger Logger) *UseCase {
	return &UseCase{gate: gate, logger: logger}
}

// Execute отказ возвращается в Response, error - только при сбое хранилища
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	scope, err := tenant.NewScope(req.OrganizationID)
	if err != nil {
		uc.logger.Warn("CheckBooking: organizationId is missing")
		return fromCheck(domain.Reject(domain.ReasonValidationError)), nil
	}

	check, err := uc.gate.Check(ctx, scope, conflictgate.Request{
		StaffID:              req.StaffID,
		StartsAt:             req.ScheduledAt,
		Duration:             req.Duration,
		ExcludeAppointmentID: req.ExcludeAppointmentID,
	})
	if err != nil {
		uc.logger.Error("CheckBooking: gate failed for org=%s: %v", req.OrganizationID, err)
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	return fromCheck(check), nil
}

func fromCheck(check *domain.BookingCheck) *Response {
	return &Response{
		Available: check.Available,
		Reason:    string(check.Reason),
		Message:   check.Message,
	}
}
