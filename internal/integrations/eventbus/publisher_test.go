package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w, "appointments")

	event := &domain.OutboxEvent{
		ID:             1,
		EventID:        uuid.New(),
		OrganizationID: uuid.New(),
		AggregateID:    uuid.New(),
		EventType:      string(domain.EventAppointmentCreated),
		Payload:        []byte(`{"id":"x"}`),
	}

	require.NoError(t, p.Publish(context.Background(), []*domain.OutboxEvent{event}))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "appointments.appointment.created", msg.Topic)
	assert.Equal(t, event.AggregateID.String(), string(msg.Key))
	assert.Equal(t, event.Payload, msg.Value)
	assert.Contains(t, msg.Headers, kafka.Header{Key: "event_id", Value: []byte(event.EventID.String())})
}

func TestPublisher_Empty(t *testing.T) {
	w := &fakeWriter{err: errors.New("must not be called")}
	require.NoError(t, NewPublisher(w, "").Publish(context.Background(), nil))
}

func TestPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	err := NewPublisher(w, "").Publish(context.Background(), []*domain.OutboxEvent{{EventType: "appointment.created"}})
	assert.ErrorIs(t, err, ErrPublish)
}

func TestPublisher_TopicWithoutPrefix(t *testing.T) {
	assert.Equal(t, "appointment.no_show", NewPublisher(&fakeWriter{}, "").Topic("appointment.no_show"))
}

func TestPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, NewPublisher(w, "x").Close())
	assert.True(t, w.closed)
}
