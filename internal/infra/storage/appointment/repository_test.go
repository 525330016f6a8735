package appointment

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
)

func newScope(t *testing.T) tenant.Scope {
	t.Helper()
	scope, err := tenant.NewScope(uuid.New())
	require.NoError(t, err)
	return scope
}

func appointmentRows() *sqlmock.Rows {
	return sqlmock.NewRows(columns)
}

func TestRepository_Create_ExclusionViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	staffID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnError(&pq.Error{Code: "23P01", Message: "conflicting key value violates exclusion constraint"})

	_, err = repo.Create(context.Background(), newScope(t), &domain.Appointment{
		CustomerID:  uuid.New(),
		ServiceID:   uuid.New(),
		StaffID:     &staffID,
		ScheduledAt: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		Duration:    60,
		Status:      domain.StatusPending,
	})

	assert.ErrorIs(t, err, ErrOverlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_PreservesDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	serializationFailure := &pq.Error{Code: "40001"}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).WillReturnError(serializationFailure)

	_, err = repo.Create(context.Background(), newScope(t), &domain.Appointment{
		ScheduledAt: time.Now(),
		Duration:    30,
		Status:      domain.StatusPending,
	})

	assert.ErrorIs(t, err, ErrExecQuery)
	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, pq.ErrorCode("40001"), pqErr.Code)
}

func TestRepository_ListOverlapping_LocksInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	scope := newScope(t)
	staffID := uuid.New()
	start := time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)
	ctx := dbmetrics.WithTx(context.Background(), tx)

	existingID := uuid.New()
	mock.ExpectQuery(`SELECT .* FROM appointments WHERE .*scheduled_at < \$\d+ AND ends_at > \$\d+ AND staff_id = \$\d+ ORDER BY scheduled_at ASC FOR UPDATE`).
		WillReturnRows(appointmentRows().AddRow(
			existingID.String(), scope.OrganizationID().String(), uuid.New().String(), uuid.New().String(),
			staffID.String(), time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), 60, 50.0, "confirmed", nil,
			time.Now(), time.Now(),
		))

	found, err := repo.ListOverlapping(ctx, scope, domain.OverlapQuery{
		StaffID: &staffID,
		Start:   start,
		End:     start.Add(time.Hour),
	})

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, existingID, found[0].ID)
	assert.Equal(t, domain.StatusConfirmed, found[0].Status)
	require.NotNil(t, found[0].StaffID)
	assert.Equal(t, staffID, *found[0].StaffID)
	assert.Nil(t, found[0].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListOverlapping_NoLockOutsideTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	exclude := uuid.New()

	mock.ExpectQuery(`FROM appointments WHERE .* AND id <> \$\d+ ORDER BY scheduled_at ASC$`).
		WillReturnRows(appointmentRows())

	found, err := repo.ListOverlapping(context.Background(), newScope(t), domain.OverlapQuery{
		Start:                time.Now(),
		End:                  time.Now().Add(time.Hour),
		ExcludeAppointmentID: &exclude,
	})

	require.NoError(t, err)
	assert.Empty(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus_GuardedByCurrentStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	scope := newScope(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE appointments SET status = \$1, updated_at = NOW\(\) WHERE id = \$2 AND organization_id = \$3 AND status = \$4`).
		WithArgs(domain.StatusCompleted, id, scope.OrganizationID(), domain.StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateStatus(context.Background(), scope, id, domain.StatusConfirmed, domain.StatusCompleted)

	assert.ErrorIs(t, err, ErrStatusConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_RejectsZeroScope(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err = repo.GetByID(ctx, tenant.Scope{}, uuid.New())
	assert.ErrorIs(t, err, tenant.ErrNoTenant)

	_, err = repo.List(ctx, tenant.Scope{}, domain.AppointmentsFilter{})
	assert.ErrorIs(t, err, tenant.ErrNoTenant)

	err = repo.Delete(ctx, tenant.Scope{}, uuid.New())
	assert.ErrorIs(t, err, tenant.ErrNoTenant)

	// ни одного запроса не ушло в БД
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DayStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(SUM(price) FILTER (WHERE status IN ('confirmed', 'completed')), 0)")).
		WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "confirmed", "completed", "cancelled", "no_show", "revenue"}).
			AddRow(6, 1, 2, 1, 1, 1, 150.5))

	stats, err := repo.DayStats(context.Background(), newScope(t), from, from.AddDate(0, 0, 1))

	require.NoError(t, err)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 2, stats.Confirmed)
	assert.Equal(t, 1, stats.NoShow)
	assert.InDelta(t, 150.5, stats.Revenue, 0.001)
	assert.Equal(t, from, stats.Date)
}
