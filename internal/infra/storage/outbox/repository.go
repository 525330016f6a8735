package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Repository transactional outbox интеграционных событий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория outbox
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Add сохраняет событие в той же транзакции, что и изменение записи
func (r *Repository) Add(ctx context.Context, scope tenant.Scope, event *domain.OutboxEvent) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("outbox_events").
		Columns("event_id", "organization_id", "aggregate_id", "event_type", "payload").
		Values(event.EventID, scope.OrganizationID(), event.AggregateID, event.EventType, event.Payload).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Add - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&event.ID, &event.CreatedAt); err != nil {
		return fmt.Errorf("%w: Add - execute insert: %w", ErrExecQuery, err)
	}

	event.OrganizationID = scope.OrganizationID()
	return nil
}

// FetchUnpublished блокирует до limit неопубликованных событий в порядке появления
func (r *Repository) FetchUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"event_id",
		"organization_id",
		"aggregate_id",
		"event_type",
		"payload",
		"created_at",
	).
		From("outbox_events").
		Where(squirrel.Eq{"published_at": nil}).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// MarkPublished отмечает события опубликованными
func (r *Repository) MarkPublished(ctx context.Context, ids []int64, publishedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("outbox_events").
		Set("published_at", publishedAt).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkPublished - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkPublished - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

func scanEvents(rows *sql.Rows) ([]*domain.OutboxEvent, error) {
	events := make([]*domain.OutboxEvent, 0)

	for rows.Next() {
		var event domain.OutboxEvent
		if err := rows.Scan(
			&event.ID,
			&event.EventID,
			&event.OrganizationID,
			&event.AggregateID,
			&event.EventType,
			&event.Payload,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanEvents - scan row: %w", ErrScanRow, err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanEvents - rows error: %w", ErrScanRow, err)
	}

	return events, nil
}
