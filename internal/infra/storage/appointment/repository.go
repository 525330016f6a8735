package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// exclusionViolation SQLSTATE нарушения EXCLUDE constraint
const exclusionViolation = "23P01"

var columns = []string{
	"id",
	"organization_id",
	"customer_id",
	"service_id",
	"staff_id",
	"scheduled_at",
	"duration",
	"price",
	"status",
	"notes",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей на услуги
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает запись. ends_at вычисляется из scheduled_at и duration и участвует
// в exclusion constraint: пересечение с активной записью того же сотрудника
// возвращается как ErrOverlap.
func (r *Repository) Create(ctx context.Context, scope tenant.Scope, a *domain.Appointment) (*domain.Appointment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"organization_id",
			"customer_id",
			"service_id",
			"staff_id",
			"scheduled_at",
			"ends_at",
			"duration",
			"price",
			"status",
			"notes",
		).
		Values(
			scope.OrganizationID(),
			a.CustomerID,
			a.ServiceID,
			nullUUID(a.StaffID),
			a.ScheduledAt,
			a.EndsAt(),
			a.Duration,
			a.Price,
			a.Status,
			a.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if isExclusionViolation(err) {
		return nil, ErrOverlap
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	a.OrganizationID = scope.OrganizationID()
	return a, nil
}

// GetByID получает запись организации.
// Внутри транзакции строка блокируется (FOR UPDATE) - так смена статуса
// и перенос сериализуются на одной записи.
func (r *Repository) GetByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Appointment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("appointments").
		Where(squirrel.Eq{"id": id, "organization_id": scope.OrganizationID()})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appointment, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, err)
	}

	return appointment, nil
}

// ListOverlapping активные (pending/confirmed) записи, пересекающие полуоткрытый
// интервал [Start, End). Без StaffID - все записи организации.
// Внутри транзакции найденные строки блокируются.
func (r *Repository) ListOverlapping(ctx context.Context, scope tenant.Scope, q domain.OverlapQuery) ([]*domain.Appointment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("appointments").
		Where(squirrel.Eq{
			"organization_id": scope.OrganizationID(),
			"status":          statusStrings(domain.BlockingStatuses),
		}).
		Where(squirrel.Lt{"scheduled_at": q.End}).
		Where(squirrel.Gt{"ends_at": q.Start}).
		OrderBy("scheduled_at ASC")

	if q.StaffID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"staff_id": *q.StaffID})
	}
	if q.ExcludeAppointmentID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *q.ExcludeAppointmentID})
	}
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// List записи организации с фильтрацией по периоду, статусу и сотруднику.
// Период полуоткрытый: From <= scheduled_at < To.
func (r *Repository) List(ctx context.Context, scope tenant.Scope, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("appointments").
		Where(squirrel.Eq{"organization_id": scope.OrganizationID()}).
		OrderBy("scheduled_at ASC")

	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"scheduled_at": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"scheduled_at": *filter.To})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.StaffID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"staff_id": *filter.StaffID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// UpdateStatus переводит запись из from в to.
// Условие status = from защищает от гонки: если статус уже сменился, возвращается ErrStatusConflict.
func (r *Repository) UpdateStatus(ctx context.Context, scope tenant.Scope, id uuid.UUID, from, to domain.AppointmentStatus) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":              id,
			"organization_id": scope.OrganizationID(),
			"status":          from,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

// Reschedule сохраняет новое время и сотрудника записи.
// Переносить можно только активную запись; пересечение у сотрудника - ErrOverlap.
func (r *Repository) Reschedule(ctx context.Context, scope tenant.Scope, a *domain.Appointment) (*domain.Appointment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("scheduled_at", a.ScheduledAt).
		Set("ends_at", a.EndsAt()).
		Set("staff_id", nullUUID(a.StaffID)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":              a.ID,
			"organization_id": scope.OrganizationID(),
			"status":          statusStrings(domain.BlockingStatuses),
		}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Reschedule - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.UpdatedAt)
	if isExclusionViolation(err) {
		return nil, ErrOverlap
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStatusConflict
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Reschedule - execute update: %w", ErrExecQuery, err)
	}

	return a, nil
}

// Delete физически удаляет запись
func (r *Repository) Delete(ctx context.Context, scope tenant.Scope, id uuid.UUID) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("appointments").
		Where(squirrel.Eq{"id": id, "organization_id": scope.OrganizationID()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// DayStats счётчики по статусам и выручка (confirmed + completed) за интервал [from, to)
func (r *Repository) DayStats(ctx context.Context, scope tenant.Scope, from, to time.Time) (*domain.DayStats, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE status = 'pending')",
		"COUNT(*) FILTER (WHERE status = 'confirmed')",
		"COUNT(*) FILTER (WHERE status = 'completed')",
		"COUNT(*) FILTER (WHERE status = 'cancelled')",
		"COUNT(*) FILTER (WHERE status = 'no_show')",
		"COALESCE(SUM(price) FILTER (WHERE status IN ('confirmed', 'completed')), 0)",
	).
		From("appointments").
		Where(squirrel.Eq{"organization_id": scope.OrganizationID()}).
		Where(squirrel.GtOrEq{"scheduled_at": from}).
		Where(squirrel.Lt{"scheduled_at": to}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: DayStats - build select query: %v", ErrBuildQuery, err)
	}

	stats := domain.DayStats{Date: from}
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.Confirmed,
		&stats.Completed,
		&stats.Cancelled,
		&stats.NoShow,
		&stats.Revenue,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: DayStats - scan stats: %w", ErrScanRow, err)
	}

	return &stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	var staffID uuid.NullUUID
	var notes sql.NullString

	err := row.Scan(
		&a.ID,
		&a.OrganizationID,
		&a.CustomerID,
		&a.ServiceID,
		&staffID,
		&a.ScheduledAt,
		&a.Duration,
		&a.Price,
		&a.Status,
		&notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if staffID.Valid {
		a.StaffID = &staffID.UUID
	}
	if notes.Valid {
		a.Notes = &notes.String
	}

	return &a, nil
}

// scanAppointments сканирует результаты запроса в слайс записей
func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %w", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %w", ErrScanRow, err)
	}

	return appointments, nil
}

func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == exclusionViolation
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func statusStrings(statuses []domain.AppointmentStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
