package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

var serviceColumns = []string{
	"id",
	"organization_id",
	"name",
	"description",
	"duration",
	"price",
	"is_active",
	"created_at",
	"updated_at",
}

var staffColumns = []string{
	"id",
	"organization_id",
	"name",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository каталог организации: услуги и сотрудники
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetService получает услугу организации (включая неактивные)
func (r *Repository) GetService(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Service, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("services").
		Where(squirrel.Eq{"id": id, "organization_id": scope.OrganizationID()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	service, err := scanService(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %w", ErrScanRow, err)
	}

	return service, nil
}

// ListActiveServices активные услуги организации, по имени
func (r *Repository) ListActiveServices(ctx context.Context, scope tenant.Scope) ([]*domain.Service, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("services").
		Where(squirrel.Eq{"organization_id": scope.OrganizationID(), "is_active": true}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveServices - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveServices - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]*domain.Service, 0)
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListActiveServices - scan row: %w", ErrScanRow, err)
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveServices - rows error: %w", ErrScanRow, err)
	}

	return services, nil
}

// GetStaff получает сотрудника организации (включая неактивных)
func (r *Repository) GetStaff(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Staff, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(staffColumns...).
		From("staff").
		Where(squirrel.Eq{"id": id, "organization_id": scope.OrganizationID()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - build select query: %v", ErrBuildQuery, err)
	}

	staff, err := scanStaff(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - scan staff: %w", ErrScanRow, err)
	}

	return staff, nil
}

// ListActiveStaff активные сотрудники организации, по имени
func (r *Repository) ListActiveStaff(ctx context.Context, scope tenant.Scope) ([]*domain.Staff, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(staffColumns...).
		From("staff").
		Where(squirrel.Eq{"organization_id": scope.OrganizationID(), "is_active": true}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveStaff - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveStaff - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	staff := make([]*domain.Staff, 0)
	for rows.Next() {
		member, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListActiveStaff - scan row: %w", ErrScanRow, err)
		}
		staff = append(staff, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveStaff - rows error: %w", ErrScanRow, err)
	}

	return staff, nil
}

// CountActiveStaff размер пула сотрудников для записей без назначенного мастера
func (r *Repository) CountActiveStaff(ctx context.Context, scope tenant.Scope) (int, error) {
	if err := scope.Validate(); err != nil {
		return 0, err
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("staff").
		Where(squirrel.Eq{"organization_id": scope.OrganizationID(), "is_active": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveStaff - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveStaff - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanService(row rowScanner) (*domain.Service, error) {
	var service domain.Service
	var description sql.NullString

	err := row.Scan(
		&service.ID,
		&service.OrganizationID,
		&service.Name,
		&description,
		&service.Duration,
		&service.Price,
		&service.IsActive,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		service.Description = &description.String
	}
	return &service, nil
}

func scanStaff(row rowScanner) (*domain.Staff, error) {
	var staff domain.Staff
	err := row.Scan(
		&staff.ID,
		&staff.OrganizationID,
		&staff.Name,
		&staff.IsActive,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &staff, nil
}
