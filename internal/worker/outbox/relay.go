// Package outbox переносит события из таблицы outbox_events в шину.
package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

type OutboxRepository interface {
	FetchUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []int64, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, events []*domain.OutboxEvent) error
}

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type Metrics interface {
	RecordOutboxPublished(count int)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Relay публикует события пачками; отметка published_at ставится в той же транзакции,
// что и блокировка строк, поэтому при сбое шины пачка уйдёт повторно (at-least-once).
type Relay struct {
	repo         OutboxRepository
	publisher    EventPublisher
	txManager    TransactionManager
	metrics      Metrics
	logger       Logger
	batchSize    int
	pollInterval time.Duration
	now          func() time.Time
}

func NewRelay(
	repo OutboxRepository,
	publisher EventPublisher,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
	batchSize int,
	pollInterval time.Duration,
) *Relay {
	if batchSize <= 0 {
		batchSize = 100
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Relay{
		repo:         repo,
		publisher:    publisher,
		txManager:    txManager,
		metrics:      metrics,
		logger:       logger,
		batchSize:    batchSize,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// Run публикует события, пока ctx не отменён
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("Outbox relay started: interval=%s, batch=%d", r.pollInterval, r.batchSize)

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Outbox relay stopped")
			return nil
		case <-ticker.C:
			// полная пачка: вероятно, есть ещё, не ждём следующего тика
			for {
				published, err := r.RunOnce(ctx)
				if err != nil {
					if ctx.Err() == nil {
						r.logger.Error("Outbox relay: publish failed: %v", err)
					}
					break
				}
				if published < r.batchSize {
					break
				}
			}
		}
	}
}

// RunOnce публикует одну пачку и возвращает число опубликованных событий
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	published := 0

	err := r.txManager.Do(ctx, func(ctx context.Context) error {
		events, err := r.repo.FetchUnpublished(ctx, r.batchSize)
		if err != nil {
			return fmt.Errorf("fetch unpublished: %w", err)
		}
		if len(events) == 0 {
			return nil
		}

		if err := r.publisher.Publish(ctx, events); err != nil {
			return err
		}

		ids := make([]int64, 0, len(events))
		for _, e := range events {
			ids = append(ids, e.ID)
		}
		if err := r.repo.MarkPublished(ctx, ids, r.now()); err != nil {
			return fmt.Errorf("mark published: %w", err)
		}

		published = len(events)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if published > 0 {
		r.metrics.RecordOutboxPublished(published)
	}
	return published, nil
}
