package idempotency

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Record состояние ключа идемпотентности
type Record struct {
	Key         string
	RequestHash string
	// AppointmentID nil, пока первый запрос с этим ключом не завершился успешно
	AppointmentID *uuid.UUID
}

// Repository ключи идемпотентности создания записей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория ключей идемпотентности
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Lock резервирует ключ и блокирует его строку до конца транзакции.
// Конкурентный запрос с тем же ключом ждёт на FOR UPDATE и после коммита первого
// видит уже записанный appointment_id.
func (r *Repository) Lock(ctx context.Context, scope tenant.Scope, key, requestHash string) (*Record, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, ErrNotInTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertQuery, insertArgs, err := psqlbuilder.Insert("idempotency_keys").
		Columns("organization_id", "key", "request_hash").
		Values(scope.OrganizationID(), key, requestHash).
		Suffix("ON CONFLICT (organization_id, key) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Lock - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return nil, fmt.Errorf("%w: Lock - execute insert: %w", ErrExecQuery, err)
	}

	selectQuery, selectArgs, err := psqlbuilder.Select("key", "request_hash", "appointment_id").
		From("idempotency_keys").
		Where(squirrel.Eq{"organization_id": scope.OrganizationID(), "key": key}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Lock - build select query: %v", ErrBuildQuery, err)
	}

	var record Record
	var appointmentID uuid.NullUUID
	err = executor.QueryRowContext(ctx, selectQuery, selectArgs...).Scan(
		&record.Key,
		&record.RequestHash,
		&appointmentID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Lock - scan key: %w", ErrScanRow, err)
	}

	if appointmentID.Valid {
		record.AppointmentID = &appointmentID.UUID
	}
	return &record, nil
}

// Finalize привязывает ключ к созданной записи
func (r *Repository) Finalize(ctx context.Context, scope tenant.Scope, key string, appointmentID uuid.UUID) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("idempotency_keys").
		Set("appointment_id", appointmentID).
		Where(squirrel.Eq{"organization_id": scope.OrganizationID(), "key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Finalize - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Finalize - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Finalize - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrKeyNotFound
	}

	return nil
}
