package notification

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func notificationRows() *sqlmock.Rows {
	return sqlmock.NewRows(columns)
}

func addRow(rows *sqlmock.Rows, id, orgID uuid.UUID, status domain.NotificationStatus, phone interface{}) *sqlmock.Rows {
	return rows.AddRow(
		id.String(), orgID.String(), uuid.New().String(), nil,
		string(domain.ChannelWhatsApp), string(domain.TemplateConfirmation),
		nil, phone, nil, "Olá",
		string(status), nil, 1,
		testNow.Add(-time.Minute), nil, testNow.Add(-time.Hour), testNow.Add(-time.Hour),
	)
}

func TestRepository_FetchDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM notifications WHERE status = \$1 AND scheduled_for <= \$2 ORDER BY scheduled_for ASC, created_at ASC LIMIT 5 FOR UPDATE SKIP LOCKED`).
		WithArgs("pending", testNow).
		WillReturnRows(addRow(notificationRows(), id, uuid.New(), domain.NotificationPending, "+5511999990000"))

	due, err := NewRepository(db).FetchDue(context.Background(), testNow, 5)
	require.NoError(t, err)
	require.Len(t, due, 1)

	n := due[0]
	assert.Equal(t, id, n.ID)
	assert.Equal(t, domain.ChannelWhatsApp, n.Channel)
	require.NotNil(t, n.RecipientPhone)
	assert.Equal(t, "+5511999990000", *n.RecipientPhone)
	assert.Nil(t, n.RecipientEmail)
	assert.Nil(t, n.CustomerID)
	assert.NotNil(t, n.AppointmentID)
	assert.Equal(t, 1, n.RetryCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FetchDueScoped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orgID := uuid.New()
	scope, err := tenant.NewScope(orgID)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM notifications WHERE status = \$1 AND scheduled_for <= \$2 AND organization_id = \$3 .*FOR UPDATE SKIP LOCKED`).
		WithArgs("pending", testNow, orgID).
		WillReturnRows(notificationRows())

	due, err := NewRepository(db).FetchDueScoped(context.Background(), scope, testNow, 10)
	require.NoError(t, err)
	assert.Empty(t, due)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_LockPending(t *testing.T) {
	orgID := uuid.New()
	scope, err := tenant.NewScope(orgID)
	require.NoError(t, err)
	id := uuid.New()

	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		wantErr error
	}{
		{name: "pending", rows: addRow(notificationRows(), id, orgID, domain.NotificationPending, "1")},
		{name: "already sent", rows: addRow(notificationRows(), id, orgID, domain.NotificationSent, "1"), wantErr: ErrNotPending},
		{name: "missing", rows: notificationRows(), wantErr: ErrNotificationNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(`SELECT .+ FROM notifications WHERE id = \$1 AND organization_id = \$2 FOR UPDATE SKIP LOCKED`).
				WithArgs(id, orgID).
				WillReturnRows(tt.rows)

			n, err := NewRepository(db).LockPending(context.Background(), scope, id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, id, n.ID)
		})
	}
}

func TestRepository_MarkRetry(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	next := testNow.Add(2 * time.Minute)

	mock.ExpectExec(`UPDATE notifications SET error_message = \$1, retry_count = \$2, scheduled_for = \$3, updated_at = NOW\(\) WHERE id = \$4`).
		WithArgs("smtp down", 2, next, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewRepository(db).MarkRetry(context.Background(), id, 2, next, "smtp down"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MarkSentMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE notifications SET .+ WHERE id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewRepository(db).MarkSent(context.Background(), uuid.New(), testNow)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestRepository_Cancel(t *testing.T) {
	orgID := uuid.New()
	scope, err := tenant.NewScope(orgID)
	require.NoError(t, err)
	id := uuid.New()

	t.Run("pending", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE notifications SET status = \$1, updated_at = NOW\(\) WHERE .+ RETURNING id, organization_id`).
			WillReturnRows(addRow(notificationRows(), id, orgID, domain.NotificationCancelled, nil))

		n, err := NewRepository(db).Cancel(context.Background(), scope, id)
		require.NoError(t, err)
		assert.Equal(t, domain.NotificationCancelled, n.Status)
	})

	t.Run("not pending", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE notifications SET .+ RETURNING`).WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT 1 FROM notifications WHERE id = \$1 AND organization_id = \$2`).
			WithArgs(id, orgID).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

		_, err = NewRepository(db).Cancel(context.Background(), scope, id)
		assert.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE notifications SET .+ RETURNING`).WillReturnRows(notificationRows())
		mock.ExpectQuery(`SELECT 1 FROM notifications`).WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

		_, err = NewRepository(db).Cancel(context.Background(), scope, id)
		assert.ErrorIs(t, err, ErrNotificationNotFound)
	})
}

func TestRepository_EnqueueBatchEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	scope, err := tenant.NewScope(uuid.New())
	require.NoError(t, err)

	require.NoError(t, NewRepository(db).EnqueueBatch(context.Background(), scope, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
