package reschedule_appointment

import (
	"fmt"

	"github.com/google/uuid"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if err := req.Scope.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if req.AppointmentID == uuid.Nil {
		return fmt.Errorf("%w: appointment id is required", ErrInvalidInput)
	}

	if req.StartsAt == nil && req.StaffID == nil && !req.ClearStaff {
		return fmt.Errorf("%w: nothing to change", ErrInvalidInput)
	}

	if req.StartsAt != nil && req.StartsAt.IsZero() {
		return fmt.Errorf("%w: scheduledAt is empty", ErrInvalidInput)
	}

	if req.StaffID != nil && req.ClearStaff {
		return fmt.Errorf("%w: staffId and clearStaff are mutually exclusive", ErrInvalidInput)
	}

	return nil
}
