package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

var columns = []string{
	"id",
	"organization_id",
	"appointment_id",
	"customer_id",
	"channel",
	"template",
	"recipient_email",
	"recipient_phone",
	"subject",
	"message",
	"status",
	"error_message",
	"retry_count",
	"scheduled_for",
	"sent_at",
	"created_at",
	"updated_at",
}

// Repository очередь исходящих уведомлений
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория уведомлений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// EnqueueBatch ставит уведомления в очередь одним INSERT.
// Вызывается в транзакции изменения записи, поэтому уведомления появляются только вместе с ним.
func (r *Repository) EnqueueBatch(ctx context.Context, scope tenant.Scope, notifications []*domain.Notification) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if len(notifications) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("notifications").
		Columns(
			"organization_id",
			"appointment_id",
			"customer_id",
			"channel",
			"template",
			"recipient_email",
			"recipient_phone",
			"subject",
			"message",
			"status",
			"scheduled_for",
		)

	for _, n := range notifications {
		insertBuilder = insertBuilder.Values(
			scope.OrganizationID(),
			nullUUID(n.AppointmentID),
			nullUUID(n.CustomerID),
			n.Channel,
			n.Template,
			n.RecipientEmail,
			n.RecipientPhone,
			n.Subject,
			n.Message,
			domain.NotificationPending,
			n.ScheduledFor,
		)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: EnqueueBatch - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: EnqueueBatch - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// FetchDue блокирует до limit готовых к отправке уведомлений всех организаций
// (фоновый воркер). Строки, занятые другим воркером, пропускаются.
func (r *Repository) FetchDue(ctx context.Context, now time.Time, limit int) ([]*domain.Notification, error) {
	return r.fetchDue(ctx, "FetchDue", nil, now, limit)
}

// FetchDueScoped то же, что FetchDue, в пределах одной организации
func (r *Repository) FetchDueScoped(ctx context.Context, scope tenant.Scope, now time.Time, limit int) ([]*domain.Notification, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return r.fetchDue(ctx, "FetchDueScoped", squirrel.Eq{"organization_id": scope.OrganizationID()}, now, limit)
}

func (r *Repository) fetchDue(ctx context.Context, op string, where squirrel.Sqlizer, now time.Time, limit int) ([]*domain.Notification, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("notifications").
		Where(squirrel.Eq{"status": domain.NotificationPending}).
		Where(squirrel.LtOrEq{"scheduled_for": now}).
		OrderBy("scheduled_for ASC", "created_at ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED")

	if where != nil {
		selectBuilder = selectBuilder.Where(where)
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	result := make([]*domain.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return result, nil
}

// LockPending блокирует одно ожидающее уведомление организации для немедленной отправки
func (r *Repository) LockPending(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Notification, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("notifications").
		Where(squirrel.Eq{"id": id, "organization_id": scope.OrganizationID()}).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: LockPending - build select query: %v", ErrBuildQuery, err)
	}

	n, err := scanNotification(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: LockPending - scan notification: %w", ErrScanRow, err)
	}
	if n.Status != domain.NotificationPending {
		return nil, ErrNotPending
	}

	return n, nil
}

// MarkSent отмечает уведомление отправленным.
// Методы Mark* работают по id строки, уже заблокированной FetchDue/LockPending.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return r.update(ctx, "MarkSent", id, map[string]interface{}{
		"status":        domain.NotificationSent,
		"sent_at":       sentAt,
		"error_message": nil,
		"updated_at":    squirrel.Expr("NOW()"),
	})
}

// MarkRetry фиксирует неудачную попытку и переносит следующую на nextAttemptAt
func (r *Repository) MarkRetry(ctx context.Context, id uuid.UUID, retryCount int, nextAttemptAt time.Time, errMsg string) error {
	return r.update(ctx, "MarkRetry", id, map[string]interface{}{
		"retry_count":   retryCount,
		"scheduled_for": nextAttemptAt,
		"error_message": errMsg,
		"updated_at":    squirrel.Expr("NOW()"),
	})
}

// MarkFailed окончательно отмечает уведомление неотправленным
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, retryCount int, errMsg string) error {
	return r.update(ctx, "MarkFailed", id, map[string]interface{}{
		"status":        domain.NotificationFailed,
		"retry_count":   retryCount,
		"error_message": errMsg,
		"updated_at":    squirrel.Expr("NOW()"),
	})
}

// CancelPendingForAppointment отменяет ожидающие уведомления записи.
// templates ограничивает отмену (например, только напоминания); пустой список - все шаблоны.
func (r *Repository) CancelPendingForAppointment(ctx context.Context, scope tenant.Scope, appointmentID uuid.UUID, templates []domain.NotificationTemplate) (int64, error) {
	if err := scope.Validate(); err != nil {
		return 0, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("notifications").
		Set("status", domain.NotificationCancelled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"organization_id": scope.OrganizationID(),
			"appointment_id":  appointmentID,
			"status":          domain.NotificationPending,
		})

	if len(templates) > 0 {
		names := make([]string, len(templates))
		for i, t := range templates {
			names[i] = string(t)
		}
		updateBuilder = updateBuilder.Where(squirrel.Eq{"template": names})
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CancelPendingForAppointment - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CancelPendingForAppointment - execute update: %w", ErrExecQuery, err)
	}

	cancelled, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CancelPendingForAppointment - get rows affected: %w", ErrExecQuery, err)
	}

	return cancelled, nil
}

// Cancel переводит ожидающее уведомление в cancelled
func (r *Repository) Cancel(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Notification, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("notifications").
		Set("status", domain.NotificationCancelled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":              id,
			"organization_id": scope.OrganizationID(),
			"status":          domain.NotificationPending,
		}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	n, err := scanNotification(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.notPendingOrMissing(ctx, scope, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - execute update: %w", ErrExecQuery, err)
	}

	return n, nil
}

// notPendingOrMissing различает отсутствующее уведомление и уже обработанное
func (r *Repository) notPendingOrMissing(ctx context.Context, scope tenant.Scope, id uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("notifications").
		Where(squirrel.Eq{"id": id, "organization_id": scope.OrganizationID()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build exists query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Cancel - scan exists: %w", ErrScanRow, err)
	}
	return ErrNotPending
}

func (r *Repository) update(ctx context.Context, op string, id uuid.UUID, set map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("notifications").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var n domain.Notification
	var appointmentID, customerID uuid.NullUUID
	var recipientEmail, recipientPhone, subject, errorMessage sql.NullString
	var sentAt sql.NullTime

	err := row.Scan(
		&n.ID,
		&n.OrganizationID,
		&appointmentID,
		&customerID,
		&n.Channel,
		&n.Template,
		&recipientEmail,
		&recipientPhone,
		&subject,
		&n.Message,
		&n.Status,
		&errorMessage,
		&n.RetryCount,
		&n.ScheduledFor,
		&sentAt,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if appointmentID.Valid {
		n.AppointmentID = &appointmentID.UUID
	}
	if customerID.Valid {
		n.CustomerID = &customerID.UUID
	}
	n.RecipientEmail = nullString(recipientEmail)
	n.RecipientPhone = nullString(recipientPhone)
	n.Subject = nullString(subject)
	n.ErrorMessage = nullString(errorMessage)
	if sentAt.Valid {
		n.SentAt = &sentAt.Time
	}

	return &n, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
