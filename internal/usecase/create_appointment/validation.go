package create_appointment

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest валидирует входные данные запроса и возвращает начальный статус
func validateRequest(req *Request) (domain.AppointmentStatus, error) {
	if err := req.Scope.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if req.Origin != OriginPublic && req.Origin != OriginStaff {
		return "", fmt.Errorf("%w: unknown origin %q", ErrInvalidInput, req.Origin)
	}

	if req.ServiceID == uuid.Nil {
		return "", fmt.Errorf("%w: serviceId is required", ErrInvalidInput)
	}

	if req.StartsAt.IsZero() {
		return "", fmt.Errorf("%w: scheduledAt is required", ErrInvalidInput)
	}

	if len(req.IdempotencyKey) > domain.MaxIdempotencyKeyLength {
		return "", fmt.Errorf("%w: idempotency key is longer than %d", ErrInvalidInput, domain.MaxIdempotencyKeyLength)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return "", fmt.Errorf("%w: notes are longer than %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if err := validateCustomer(req); err != nil {
		return "", err
	}

	status := domain.StatusPending
	if req.Status != nil {
		if req.Origin != OriginStaff {
			return "", fmt.Errorf("%w: status can be set only by staff", ErrInvalidInput)
		}
		status = domain.AppointmentStatus(*req.Status)
		if status != domain.StatusPending && status != domain.StatusConfirmed {
			return "", fmt.Errorf("%w: initial status must be pending or confirmed", ErrInvalidInput)
		}
	}

	return status, nil
}

func validateCustomer(req *Request) error {
	if req.CustomerID != nil {
		if req.Origin != OriginStaff {
			return fmt.Errorf("%w: customerId can be set only by staff", ErrInvalidInput)
		}
		return nil
	}

	name := strings.TrimSpace(req.Customer.Name)
	if name == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > domain.MaxCustomerNameLength {
		return fmt.Errorf("%w: customer name is longer than %d characters", ErrInvalidInput, domain.MaxCustomerNameLength)
	}
	if !req.Customer.HasChannel() {
		return fmt.Errorf("%w: customer phone or email is required", ErrInvalidInput)
	}

	return nil
}

// requestHash отпечаток тела запроса для сравнения повторов с одним ключом
func requestHash(req *Request, status domain.AppointmentStatus) string {
	parts := []string{
		string(req.Origin),
		req.ServiceID.String(),
		uuidOrEmpty(req.StaffID),
		req.StartsAt.UTC().Format(time.RFC3339),
		stringOrEmpty(req.Notes),
		uuidOrEmpty(req.CustomerID),
		strings.TrimSpace(req.Customer.Name),
		stringOrEmpty(req.Customer.Phone),
		strings.ToLower(stringOrEmpty(req.Customer.Email)),
		string(status),
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

func uuidOrEmpty(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
