// Package eventbus публикует интеграционные события записей в Kafka.
package eventbus

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ErrPublish возвращается при ошибке записи сообщений в Kafka
var ErrPublish = errors.New("eventbus: failed to publish")

// MessageWriter запись сообщений, *kafka.Writer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher отправляет события outbox, топик = префикс + тип события
type Publisher struct {
	writer      MessageWriter
	topicPrefix string
}

// NewKafkaPublisher создает издателя с writer'ом на брокеры.
// Ключ сообщения - id записи, поэтому события одной записи попадают в одну партицию.
func NewKafkaPublisher(brokers []string, topicPrefix string) *Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return NewPublisher(writer, topicPrefix)
}

// NewPublisher создает издателя поверх произвольного writer
func NewPublisher(writer MessageWriter, topicPrefix string) *Publisher {
	return &Publisher{
		writer:      writer,
		topicPrefix: topicPrefix,
	}
}

// Topic имя топика для типа события
func (p *Publisher) Topic(eventType string) string {
	if p.topicPrefix == "" {
		return eventType
	}
	return p.topicPrefix + "." + eventType
}

// Publish пишет события одним батчем
func (p *Publisher) Publish(ctx context.Context, events []*domain.OutboxEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msgs = append(msgs, kafka.Message{
			Topic: p.Topic(e.EventType),
			Key:   []byte(e.AggregateID.String()),
			Value: e.Payload,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(e.EventID.String())},
				{Key: "event_type", Value: []byte(e.EventType)},
				{Key: "organization_id", Value: []byte(e.OrganizationID.String())},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("%w: %d events: %w", ErrPublish, len(events), err)
	}
	return nil
}

// Close закрывает writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}
