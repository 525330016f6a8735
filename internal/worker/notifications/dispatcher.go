// Package notifications рассылает накопленные уведомления через каналы доставки.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/notification"
)

const maxBackoffShift = 10

type Dispatcher struct {
	repo         NotificationRepository
	senders      map[domain.NotificationChannel]Sender
	txManager    TransactionManager
	limiter      *rate.Limiter
	metrics      Metrics
	logger       Logger
	cfg          Config
	timeProvider TimeProvider
}

// NewDispatcher создает рассыльщик. Каналы без отправителя в senders помечаются failed.
func NewDispatcher(
	repo NotificationRepository,
	senders map[domain.NotificationChannel]Sender,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
	cfg Config,
) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Dispatcher{
		repo:         repo,
		senders:      senders,
		txManager:    txManager,
		limiter:      limiter,
		metrics:      metrics,
		logger:       logger,
		cfg:          cfg,
		timeProvider: &RealTimeProvider{},
	}
}

// Run периодически рассылает уведомления всех организаций, пока ctx не отменён
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("Notification dispatcher started: interval=%s, batch=%d", d.cfg.PollInterval, d.cfg.BatchSize)

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Notification dispatcher stopped")
			return nil
		case <-ticker.C:
			resp, err := d.RunOnce(ctx, DispatchRequest{})
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				d.logger.Error("Notification dispatcher: pass failed: %v", err)
				continue
			}
			if resp.Processed > 0 {
				d.logger.Info("Notification dispatcher: processed=%d, sent=%d, failed=%d", resp.Processed, resp.Sent, resp.Failed)
			}
		}
	}
}

// RunOnce отправляет до BatchSize готовых уведомлений. Каждое уведомление блокируется,
// отправляется и отмечается в своей транзакции; строки, занятые другим воркером, пропускаются.
// Отмена ctx останавливает проход между уведомлениями, уже доставленные остаются отмеченными.
func (d *Dispatcher) RunOnce(ctx context.Context, req DispatchRequest) (*DispatchResponse, error) {
	if req.NotificationID != nil && req.Scope.IsZero() {
		return nil, fmt.Errorf("%w: notification id requires an organization", ErrInvalidInput)
	}

	batchSize := req.BatchSize
	switch {
	case req.NotificationID != nil:
		batchSize = 1
	case batchSize <= 0:
		batchSize = d.cfg.BatchSize
	case batchSize > MaxBatchSize:
		batchSize = MaxBatchSize
	}

	resp := &DispatchResponse{Results: []Result{}}

	for resp.Processed < batchSize {
		if err := d.limiter.Wait(ctx); err != nil {
			d.logger.Warn("RunOnce: interrupted after %d notifications: %v", resp.Processed, err)
			break
		}

		result, found, err := d.processNext(ctx, req)
		if err != nil {
			if resp.Processed == 0 {
				return nil, err
			}
			d.logger.Error("RunOnce: stopped after %d notifications: %v", resp.Processed, err)
			break
		}
		if !found {
			break
		}

		resp.Processed++
		if result.Success {
			resp.Sent++
		} else {
			resp.Failed++
		}
		resp.Results = append(resp.Results, result)
	}

	return resp, nil
}

// processNext одно уведомление в одной транзакции: сбой следующего не откатывает
// отметку уже доставленного. found=false, когда готовых уведомлений нет.
func (d *Dispatcher) processNext(ctx context.Context, req DispatchRequest) (Result, bool, error) {
	var result Result
	found := false

	// после отправки фиксация не должна срываться отменой запроса
	err := d.txManager.Do(context.WithoutCancel(ctx), func(txCtx context.Context) error {
		due, err := d.lock(txCtx, req, 1)
		if err != nil {
			return err
		}
		if len(due) == 0 {
			return nil
		}

		found = true
		result, err = d.deliver(txCtx, due[0])
		return err
	})
	if err != nil {
		return Result{}, false, err
	}

	return result, found, nil
}

func (d *Dispatcher) lock(ctx context.Context, req DispatchRequest, limit int) ([]*domain.Notification, error) {
	now := d.timeProvider.Now()

	if req.NotificationID != nil {
		n, err := d.repo.LockPending(ctx, req.Scope, *req.NotificationID)
		switch {
		case errors.Is(err, notification.ErrNotificationNotFound):
			return nil, ErrNotificationNotFound
		case errors.Is(err, notification.ErrNotPending):
			return nil, ErrNotificationNotPending
		case err != nil:
			d.logger.Error("RunOnce: failed to lock notification id=%s: %v", *req.NotificationID, err)
			return nil, fmt.Errorf("%w: lock notification: %w", ErrInternal, err)
		}
		return []*domain.Notification{n}, nil
	}

	var due []*domain.Notification
	var err error
	if req.Scope.IsZero() {
		due, err = d.repo.FetchDue(ctx, now, limit)
	} else {
		due, err = d.repo.FetchDueScoped(ctx, req.Scope, now, limit)
	}
	if err != nil {
		d.logger.Error("RunOnce: failed to fetch due notifications: %v", err)
		return nil, fmt.Errorf("%w: fetch due: %w", ErrInternal, err)
	}
	return due, nil
}

// deliver отправляет уведомление и записывает итог. Ошибка возвращается только при сбое хранилища.
func (d *Dispatcher) deliver(ctx context.Context, n *domain.Notification) (Result, error) {
	result := Result{ID: n.ID, Channel: string(n.Channel)}

	sender, ok := d.senders[n.Channel]
	var sendErr error
	if ok {
		sendErr = sender.Send(ctx, n)
	} else {
		sendErr = fmt.Errorf("%w: %s", ErrUnknownChannel, n.Channel)
	}

	now := d.timeProvider.Now()

	if sendErr == nil {
		if err := d.repo.MarkSent(ctx, n.ID, now); err != nil {
			d.logger.Error("deliver: failed to mark notification id=%s sent: %v", n.ID, err)
			return result, fmt.Errorf("%w: mark sent: %w", ErrInternal, err)
		}
		result.Success = true
		result.Outcome = ResultSent
		d.metrics.RecordNotification(string(n.Channel), ResultSent)
		return result, nil
	}

	result.Error = sendErr.Error()
	attempts := n.RetryCount + 1

	// канал без отправителя не появится от повторов
	if !ok || attempts >= d.cfg.MaxAttempts {
		if err := d.repo.MarkFailed(ctx, n.ID, attempts, result.Error); err != nil {
			d.logger.Error("deliver: failed to mark notification id=%s failed: %v", n.ID, err)
			return result, fmt.Errorf("%w: mark failed: %w", ErrInternal, err)
		}
		d.logger.Warn("deliver: notification id=%s failed after %d attempts: %v", n.ID, attempts, sendErr)
		result.Outcome = ResultFailed
		d.metrics.RecordNotification(string(n.Channel), ResultFailed)
		return result, nil
	}

	next := now.Add(d.backoff(attempts))
	if err := d.repo.MarkRetry(ctx, n.ID, attempts, next, result.Error); err != nil {
		d.logger.Error("deliver: failed to reschedule notification id=%s: %v", n.ID, err)
		return result, fmt.Errorf("%w: mark retry: %w", ErrInternal, err)
	}
	d.logger.Warn("deliver: notification id=%s attempt %d failed, next at %s: %v", n.ID, attempts, next.Format(time.RFC3339), sendErr)
	result.Outcome = ResultRetry
	d.metrics.RecordNotification(string(n.Channel), ResultRetry)
	return result, nil
}

// backoff экспоненциальная задержка: base, 2*base, 4*base ...
func (d *Dispatcher) backoff(attempt int) time.Duration {
	shift := attempt - 1
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	return d.cfg.Backoff << shift
}
