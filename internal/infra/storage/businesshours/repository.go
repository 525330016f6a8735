package businesshours

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

var columns = []string{
	"organization_id",
	"day_of_week",
	"opens_at",
	"closes_at",
	"is_closed",
}

// Repository репозиторий рабочих часов организации
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория рабочих часов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetForWeekday получает расписание на день недели.
// Отсутствие строки - не ошибка домена: вызывающий применяет окно по умолчанию
// (поэтому возвращается ErrHoursNotFound, а не пустое значение).
func (r *Repository) GetForWeekday(ctx context.Context, scope tenant.Scope, weekday time.Weekday) (*domain.BusinessHours, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("business_hours").
		Where(squirrel.Eq{
			"organization_id": scope.OrganizationID(),
			"day_of_week":     int(weekday),
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetForWeekday - build select query: %v", ErrBuildQuery, err)
	}

	var hours domain.BusinessHours
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&hours.OrganizationID,
		&hours.DayOfWeek,
		&hours.OpensAt,
		&hours.ClosesAt,
		&hours.IsClosed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHoursNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetForWeekday - scan hours: %w", ErrScanRow, err)
	}

	return &hours, nil
}

// ListByOrganization все строки расписания организации, с воскресенья
func (r *Repository) ListByOrganization(ctx context.Context, scope tenant.Scope) ([]*domain.BusinessHours, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("business_hours").
		Where(squirrel.Eq{"organization_id": scope.OrganizationID()}).
		OrderBy("day_of_week ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByOrganization - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByOrganization - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.BusinessHours, 0, 7)
	for rows.Next() {
		var hours domain.BusinessHours
		if err := rows.Scan(
			&hours.OrganizationID,
			&hours.DayOfWeek,
			&hours.OpensAt,
			&hours.ClosesAt,
			&hours.IsClosed,
		); err != nil {
			return nil, fmt.Errorf("%w: ListByOrganization - scan row: %w", ErrScanRow, err)
		}
		result = append(result, &hours)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByOrganization - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}
