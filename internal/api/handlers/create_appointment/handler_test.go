package create_appointment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) Execute(ctx context.Context, req *createAppointment.Request) (*createAppointment.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*createAppointment.Response), args.Error(1)
}

const body = `{
	"serviceId": "7f1a2b3c-0000-4000-8000-000000000001",
	"scheduledAt": "2025-03-10T10:00:00-03:00",
	"customer": {"name": "Иван", "phone": "+5511999990000"}
}`

func newRequest(t *testing.T, scope tenant.Scope, payload string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/public/barber/appointments", strings.NewReader(payload))
	r.Header.Set(HeaderIdempotencyKey, "key-1")
	return r.WithContext(tenant.WithScope(r.Context(), scope))
}

func TestHandle_Created(t *testing.T) {
	scope, err := tenant.NewScope(uuid.New())
	require.NoError(t, err)

	uc := &mockUseCase{}
	appt := &domain.Appointment{ID: uuid.New(), OrganizationID: scope.OrganizationID(), Duration: 60, Status: domain.StatusPending,
		ScheduledAt: time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)}
	customer := &domain.Customer{ID: uuid.New(), Name: "Иван"}

	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *createAppointment.Request) bool {
		return req.Scope == scope &&
			req.Origin == createAppointment.OriginPublic &&
			req.IdempotencyKey == "key-1" &&
			req.StartsAt.Equal(time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)) &&
			req.Customer.Name == "Иван"
	})).Return(&createAppointment.Response{Appointment: appt, Customer: customer}, nil).Once()

	w := httptest.NewRecorder()
	NewHandler(uc, createAppointment.OriginPublic, logger.Nop()).Handle(w, newRequest(t, scope, body))

	require.Equal(t, http.StatusCreated, w.Code)

	var resp CreateAppointmentResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, appt.ID, resp.Appointment.ID)
	assert.Equal(t, customer.ID, resp.Customer.ID)
	uc.AssertExpectations(t)
}

func TestHandle_Replayed(t *testing.T) {
	scope, err := tenant.NewScope(uuid.New())
	require.NoError(t, err)

	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything, mock.Anything).Return(&createAppointment.Response{
		Appointment: &domain.Appointment{ID: uuid.New()},
		Customer:    &domain.Customer{ID: uuid.New()},
		Replayed:    true,
	}, nil).Once()

	w := httptest.NewRecorder()
	NewHandler(uc, createAppointment.OriginPublic, logger.Nop()).Handle(w, newRequest(t, scope, body))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandle_Rejections(t *testing.T) {
	tests := []struct {
		reason domain.Reason
		status int
	}{
		{domain.ReasonDoubleBooking, http.StatusConflict},
		{domain.ReasonClosed, http.StatusUnprocessableEntity},
		{domain.ReasonOutsideBusinessHours, http.StatusUnprocessableEntity},
		{domain.ReasonOrganizationInactive, http.StatusForbidden},
		{domain.ReasonTrialExpired, http.StatusForbidden},
		{domain.ReasonNotFound, http.StatusNotFound},
		{domain.ReasonValidationError, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			scope, err := tenant.NewScope(uuid.New())
			require.NoError(t, err)

			uc := &mockUseCase{}
			uc.On("Execute", mock.Anything, mock.Anything).
				Return(&createAppointment.Response{Rejected: domain.Reject(tt.reason)}, nil).Once()

			w := httptest.NewRecorder()
			NewHandler(uc, createAppointment.OriginPublic, logger.Nop()).Handle(w, newRequest(t, scope, body))

			require.Equal(t, tt.status, w.Code)
			var resp handlers.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, string(tt.reason), resp.Reason)
		})
	}
}

func TestHandle_Errors(t *testing.T) {
	scope, err := tenant.NewScope(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", createAppointment.ErrInvalidInput, http.StatusBadRequest},
		{"key reused", createAppointment.ErrIdempotencyKeyReused, http.StatusUnprocessableEntity},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			w := httptest.NewRecorder()
			NewHandler(uc, createAppointment.OriginStaff, logger.Nop()).Handle(w, newRequest(t, scope, body))
			assert.Equal(t, tt.status, w.Code)
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		uc := &mockUseCase{}
		w := httptest.NewRecorder()
		NewHandler(uc, createAppointment.OriginPublic, logger.Nop()).Handle(w, newRequest(t, scope, `{"serviceId": 1}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})
}
