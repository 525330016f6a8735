package customer

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
	"name",
	"phone",
	"email",
	"total_visits",
	"total_spent",
	"no_shows",
	"last_visit_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий клиентов организации
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория клиентов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает клиента организации
func (r *Repository) GetByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Customer, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id, "organization_id": scope.OrganizationID()})
}

// FindByContact ищет клиента сначала по телефону, затем по email (без учёта регистра)
func (r *Repository) FindByContact(ctx context.Context, scope tenant.Scope, contact domain.CustomerContact) (*domain.Customer, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if !contact.HasChannel() {
		return nil, ErrNoContact
	}

	if phone := normalize(contact.Phone); phone != nil {
		customer, err := r.getOne(ctx, "FindByContact", squirrel.Eq{
			"organization_id": scope.OrganizationID(),
			"phone":           *phone,
		})
		if err == nil || !errors.Is(err, ErrCustomerNotFound) {
			return customer, err
		}
	}

	if email := normalize(contact.Email); email != nil {
		return r.getOne(ctx, "FindByContact", squirrel.And{
			squirrel.Eq{"organization_id": scope.OrganizationID()},
			squirrel.Expr("lower(email) = lower(?)", *email),
		})
	}

	return nil, ErrCustomerNotFound
}

// FindOrCreate возвращает существующего клиента по контакту или создаёт нового.
// Конкурентная вставка того же контакта разрешается через ON CONFLICT DO NOTHING
// с повторным чтением.
func (r *Repository) FindOrCreate(ctx context.Context, scope tenant.Scope, contact domain.CustomerContact) (*domain.Customer, error) {
	customer, err := r.FindByContact(ctx, scope, contact)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, ErrCustomerNotFound) {
		return nil, err
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("customers").
		Columns("organization_id", "name", "phone", "email").
		Values(scope.OrganizationID(), strings.TrimSpace(contact.Name), normalize(contact.Phone), normalize(contact.Email)).
		Suffix("ON CONFLICT DO NOTHING RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindOrCreate - build insert query: %v", ErrBuildQuery, err)
	}

	customer, err = scanCustomer(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		// строку вставил конкурентный запрос
		return r.FindByContact(ctx, scope, contact)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindOrCreate - execute insert: %w", ErrExecQuery, err)
	}

	return customer, nil
}

// ApplyNoShow увеличивает счётчик неявок
func (r *Repository) ApplyNoShow(ctx context.Context, scope tenant.Scope, id uuid.UUID) error {
	return r.applyAggregate(ctx, "ApplyNoShow", scope, id, map[string]interface{}{
		"no_shows":   squirrel.Expr("no_shows + 1"),
		"updated_at": squirrel.Expr("NOW()"),
	})
}

// ApplyCompletion учитывает завершённый визит: +1 визит, +price к сумме, дата последнего визита
func (r *Repository) ApplyCompletion(ctx context.Context, scope tenant.Scope, id uuid.UUID, price float64, visitedAt time.Time) error {
	return r.applyAggregate(ctx, "ApplyCompletion", scope, id, map[string]interface{}{
		"total_visits":  squirrel.Expr("total_visits + 1"),
		"total_spent":   squirrel.Expr("total_spent + ?", price),
		"last_visit_at": visitedAt,
		"updated_at":    squirrel.Expr("NOW()"),
	})
}

func (r *Repository) applyAggregate(ctx context.Context, op string, scope tenant.Scope, id uuid.UUID, set map[string]interface{}) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("customers").
		SetMap(set).
		Where(squirrel.Eq{"id": id, "organization_id": scope.OrganizationID()}).
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
		return ErrCustomerNotFound
	}

	return nil
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*domain.Customer, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("customers").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	customer, err := scanCustomer(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan customer: %w", ErrScanRow, op, err)
	}

	return customer, nil
}

func scanCustomer(row *sql.Row) (*domain.Customer, error) {
	var customer domain.Customer
	var phone, email sql.NullString
	var lastVisitAt sql.NullTime

	err := row.Scan(
		&customer.ID,
		&customer.OrganizationID,
		&customer.Name,
		&phone,
		&email,
		&customer.TotalVisits,
		&customer.TotalSpent,
		&customer.NoShows,
		&lastVisitAt,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if phone.Valid {
		customer.Phone = &phone.String
	}
	if email.Valid {
		customer.Email = &email.String
	}
	if lastVisitAt.Valid {
		customer.LastVisitAt = &lastVisitAt.Time
	}

	return &customer, nil
}

// normalize пустая строка после trim считается отсутствующим контактом
func normalize(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
