package organization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

var columns = []string{
	"id",
	"slug",
	"name",
	"status",
	"trial_ends_at",
	"plan",
	"timezone",
	"email",
	"phone",
	"created_at",
	"updated_at",
}

// Repository репозиторий организаций (тенантов)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория организаций
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get получает организацию, которой принадлежит scope
func (r *Repository) Get(ctx context.Context, scope tenant.Scope) (*domain.Organization, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return r.getOne(ctx, "Get", squirrel.Eq{"id": scope.OrganizationID()})
}

// GetBySlug ищет организацию по публичному slug. Единственный запрос без scope:
// именно он превращает slug в scope.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	return r.getOne(ctx, "GetBySlug", squirrel.Eq{"slug": slug})
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq) (*domain.Organization, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("organizations").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	var org domain.Organization
	var trialEndsAt sql.NullTime
	var timezone, email, phone sql.NullString

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&org.ID,
		&org.Slug,
		&org.Name,
		&org.Status,
		&trialEndsAt,
		&org.Plan,
		&timezone,
		&email,
		&phone,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan organization: %w", ErrScanRow, op, err)
	}

	if trialEndsAt.Valid {
		org.TrialEndsAt = &trialEndsAt.Time
	}
	org.Timezone = nullString(timezone)
	org.Email = nullString(email)
	org.Phone = nullString(phone)

	return &org, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
