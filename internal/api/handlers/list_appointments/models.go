package list_appointments

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// ToServiceRequest собирает фильтр из query параметров.
// from/to принимают RFC3339 или дату YYYY-MM-DD (начало дня UTC).
func ToServiceRequest(query url.Values) (*models.ListRequest, error) {
	req := &models.ListRequest{}

	var err error
	if req.From, err = parseInstant(query.Get("from")); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if req.To, err = parseInstant(query.Get("to")); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	if raw := query.Get("staffId"); raw != "" {
		staffID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("staffId: %w", err)
		}
		req.StaffID = &staffID
	}

	return req, nil
}

func parseInstant(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
