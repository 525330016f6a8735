package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type mockNotificationRepo struct{ mock.Mock }

func (m *mockNotificationRepo) EnqueueBatch(ctx context.Context, scope tenant.Scope, notifications []*domain.Notification) error {
	return m.Called(ctx, scope, notifications).Error(0)
}

func (m *mockNotificationRepo) CancelPendingForAppointment(ctx context.Context, scope tenant.Scope, appointmentID uuid.UUID, templates []domain.NotificationTemplate) (int64, error) {
	args := m.Called(ctx, scope, appointmentID, templates)
	return args.Get(0).(int64), args.Error(1)
}

type mockOutboxRepo struct{ mock.Mock }

func (m *mockOutboxRepo) Add(ctx context.Context, scope tenant.Scope, event *domain.OutboxEvent) error {
	return m.Called(ctx, scope, event).Error(0)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

func newTestService(t *testing.T, now time.Time) (*Service, *mockNotificationRepo, *mockOutboxRepo) {
	t.Helper()
	notifications := &mockNotificationRepo{}
	outbox := &mockOutboxRepo{}
	svc := NewService(notifications, outbox, time.UTC, logger.Nop())
	svc.timeProvider = fixedTime{now: now}
	return svc, notifications, outbox
}

func TestService_PublishCreated(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc, notifications, outbox := newTestService(t, now)

	event := sampleEvent(domain.EventAppointmentCreated, domain.StatusPending, now.Add(72*time.Hour))
	scope, err := tenant.NewScope(event.Appointment.OrganizationID)
	require.NoError(t, err)

	notifications.On("EnqueueBatch", mock.Anything, scope, mock.MatchedBy(func(ns []*domain.Notification) bool {
		// booking_received по двум каналам и два напоминания
		return len(ns) == 4
	})).Return(nil).Once()

	var stored *domain.OutboxEvent
	outbox.On("Add", mock.Anything, scope, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(2).(*domain.OutboxEvent)
	}).Return(nil).Once()

	require.NoError(t, svc.Publish(context.Background(), scope, event))

	notifications.AssertNotCalled(t, "CancelPendingForAppointment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	notifications.AssertExpectations(t)
	outbox.AssertExpectations(t)

	require.NotNil(t, stored)
	assert.Equal(t, "appointment.created", stored.EventType)
	assert.Equal(t, event.Appointment.ID, stored.AggregateID)

	var payload EventPayload
	require.NoError(t, json.Unmarshal(stored.Payload, &payload))
	assert.Equal(t, event.Appointment.ID, payload.AppointmentID)
	assert.Equal(t, "pending", payload.Status)
	assert.Equal(t, now, payload.OccurredAt)
}

func TestService_PublishCancelledDropsPending(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc, notifications, outbox := newTestService(t, now)

	event := sampleEvent(domain.EventAppointmentCancelled, domain.StatusCancelled, now.Add(72*time.Hour))
	scope, _ := tenant.NewScope(event.Appointment.OrganizationID)

	notifications.On("CancelPendingForAppointment", mock.Anything, scope, event.Appointment.ID, []domain.NotificationTemplate(nil)).
		Return(int64(2), nil).Once()
	notifications.On("EnqueueBatch", mock.Anything, scope, mock.Anything).Return(nil).Once()
	outbox.On("Add", mock.Anything, scope, mock.Anything).Return(nil).Once()

	require.NoError(t, svc.Publish(context.Background(), scope, event))
	notifications.AssertExpectations(t)
}

func TestService_PublishFailure(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc, notifications, outbox := newTestService(t, now)

	event := sampleEvent(domain.EventAppointmentCreated, domain.StatusPending, now.Add(72*time.Hour))
	scope, _ := tenant.NewScope(event.Appointment.OrganizationID)

	notifications.On("EnqueueBatch", mock.Anything, scope, mock.Anything).Return(errors.New("deadlock")).Once()

	err := svc.Publish(context.Background(), scope, event)
	assert.ErrorIs(t, err, ErrInternal)
	outbox.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_PublishInvalidEvent(t *testing.T) {
	svc, _, _ := newTestService(t, time.Now())
	scope, _ := tenant.NewScope(uuid.New())

	assert.ErrorIs(t, svc.Publish(context.Background(), scope, domain.AppointmentEvent{}), ErrInvalidEvent)
}
