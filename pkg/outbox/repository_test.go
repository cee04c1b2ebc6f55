package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	"github.com/jmtolibas/cafeline-backend/pkg/enums"
	"github.com/jmtolibas/cafeline-backend/pkg/logger"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM outbox_events").Error)
	return db
}

func insertEvent(t *testing.T, repo *Repository, db *gorm.DB, aggregateID string, created time.Time) uuid.UUID {
	t.Helper()

	id := uuid.New()
	require.NoError(t, repo.Insert(db, models.OutboxEvent{
		ID:            id,
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   aggregateID,
		Payload:       json.RawMessage(`{"version":1}`),
		CreatedAt:     created,
	}))
	return id
}

func TestInsertRequiresTransaction(t *testing.T) {
	repo := NewRepository(setupOutboxTestDB(t))
	assert.Error(t, repo.Insert(nil, models.OutboxEvent{}))
}

func TestFetchUnpublishedOrdersByAge(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	insertEvent(t, repo, db, "Juan00002", now)
	insertEvent(t, repo, db, "Juan00001", now.Add(-time.Minute))

	events, err := repo.FetchUnpublished(10, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Juan00001", events[0].AggregateID)
	assert.Equal(t, "Juan00002", events[1].AggregateID)
}

func TestMarkPublishedRemovesFromFetch(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	id := insertEvent(t, repo, db, "Juan00001", now)
	require.NoError(t, repo.MarkPublished(id))

	events, err := repo.FetchUnpublished(10, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMarkFailedCountsAttempts(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	id := insertEvent(t, repo, db, "Juan00001", now)
	require.NoError(t, repo.MarkFailed(id, errors.New("publish timeout")))
	require.NoError(t, repo.MarkFailed(id, errors.New("publish timeout")))

	var row models.OutboxEvent
	require.NoError(t, db.Where("id = ?", id).First(&row).Error)
	assert.Equal(t, 2, row.AttemptCount)
	require.NotNil(t, row.LastError)
	assert.Equal(t, "publish timeout", *row.LastError)

	// Past the attempt cap the event stays in the table but is never fetched.
	events, err := repo.FetchUnpublished(10, 2)
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = repo.FetchUnpublished(10, 3)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEmitWrapsPayloadInEnvelope(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, logger.New(logger.Options{ServiceName: "test"}))

	err := svc.Emit(context.Background(), db, DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   "Juan00001",
		Data:          map[string]string{"order_code": "Juan00001"},
	})
	require.NoError(t, err)

	var row models.OutboxEvent
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, enums.EventOrderCreated, row.EventType)
	assert.Equal(t, "Juan00001", row.AggregateID)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(row.Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)
	assert.False(t, envelope.OccurredAt.IsZero())

	var data map[string]string
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, "Juan00001", data["order_code"])
}

func TestEmitRequiresTransaction(t *testing.T) {
	svc := NewService(NewRepository(setupOutboxTestDB(t)), nil)
	assert.Error(t, svc.Emit(context.Background(), nil, DomainEvent{}))
}
