package main

import (
	"context"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmtolibas/cafeline-backend/pkg/config"
	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	"github.com/jmtolibas/cafeline-backend/pkg/enums"
	"github.com/jmtolibas/cafeline-backend/pkg/logger"
)

type stubPubSub struct{}

func (stubPubSub) Ping(context.Context) error            { return nil }
func (stubPubSub) OrdersPublisher() *gcppubsub.Publisher { return nil }

type stubRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
}

func (s *stubRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	out := s.events
	s.events = nil
	return out, nil
}

func (s *stubRepo) MarkPublished(id uuid.UUID) error {
	s.published = append(s.published, id)
	return nil
}

func (s *stubRepo) MarkFailed(id uuid.UUID, err error) error {
	s.failed = append(s.failed, id)
	return nil
}

type stubResult struct {
	err error
}

func (s stubResult) Get(context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "server-id", nil
}

type stubPublisher struct {
	messages []*gcppubsub.Message
	err      error
}

func (s *stubPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	s.messages = append(s.messages, msg)
	return stubResult{err: s.err}
}

func testEvent(aggregateID string) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   aggregateID,
		Payload:       []byte(`{"version":1,"eventId":"evt-1","data":{}}`),
	}
}

func newTestService(t *testing.T, repo *stubRepo, pub *stubPublisher) *Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Config:    &config.Config{},
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		PubSub:    stubPubSub{},
		Repo:      repo,
		Publisher: pub,
	})
	require.NoError(t, err)
	return svc
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	event := testEvent("Juan00001")
	repo := &stubRepo{events: []models.OutboxEvent{event}}
	pub := &stubPublisher{}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	require.Len(t, pub.messages, 1)
	msg := pub.messages[0]
	assert.Equal(t, "order_created", msg.Attributes["event_type"])
	assert.Equal(t, "order", msg.Attributes["aggregate_type"])
	assert.Equal(t, "Juan00001", msg.Attributes["aggregate_id"])
	assert.Equal(t, "evt-1", msg.Attributes["event_id"])

	assert.Equal(t, []uuid.UUID{event.ID}, repo.published)
	assert.Empty(t, repo.failed)
}

func TestProcessBatchMarksFailures(t *testing.T) {
	event := testEvent("Juan00001")
	repo := &stubRepo{events: []models.OutboxEvent{event}}
	pub := &stubPublisher{err: errors.New("deadline exceeded")}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	assert.Empty(t, repo.published)
	assert.Equal(t, []uuid.UUID{event.ID}, repo.failed)
}

func TestProcessBatchIdleWhenEmpty(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo, &stubPublisher{})

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestNextBackoffDoubles(t *testing.T) {
	base := 500 * time.Millisecond
	assert.Equal(t, time.Second, nextBackoff(base, base, maxBackoff))
	assert.Equal(t, maxBackoff, nextBackoff(maxBackoff, base, maxBackoff))
	assert.Equal(t, 2*base, nextBackoff(0, base, maxBackoff))
}
