package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/tenant"
)

func TestRepository_Add(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orgID := uuid.New()
	scope, err := tenant.NewScope(orgID)
	require.NoError(t, err)

	event := &domain.OutboxEvent{
		EventID:     uuid.New(),
		AggregateID: uuid.New(),
		EventType:   "appointment.created",
		Payload:     []byte(`{}`),
	}
	createdAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO outbox_events \(event_id,organization_id,aggregate_id,event_type,payload\) VALUES \(\$1,\$2,\$3,\$4,\$5\) RETURNING id, created_at`).
		WithArgs(event.EventID, orgID, event.AggregateID, "appointment.created", []byte(`{}`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), createdAt))

	require.NoError(t, NewRepository(db).Add(context.Background(), scope, event))
	assert.Equal(t, int64(42), event.ID)
	assert.Equal(t, orgID, event.OrganizationID)
	assert.Equal(t, createdAt, event.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FetchUnpublished(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	eventID := uuid.New()
	mock.ExpectQuery(`SELECT id, event_id, organization_id, aggregate_id, event_type, payload, created_at FROM outbox_events WHERE published_at IS NULL ORDER BY id ASC LIMIT 50 FOR UPDATE SKIP LOCKED`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "organization_id", "aggregate_id", "event_type", "payload", "created_at"}).
			AddRow(int64(1), eventID.String(), uuid.New().String(), uuid.New().String(), "appointment.created", []byte(`{"a":1}`), time.Now()))

	events, err := NewRepository(db).FetchUnpublished(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, eventID, events[0].EventID)
	assert.Equal(t, []byte(`{"a":1}`), events[0].Payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MarkPublished(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE outbox_events SET published_at = \$1 WHERE id IN \(\$2,\$3\)`).
		WithArgs(at, int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, NewRepository(db).MarkPublished(context.Background(), []int64{1, 2}, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MarkPublishedEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, NewRepository(db).MarkPublished(context.Background(), nil, time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
