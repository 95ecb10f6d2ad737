package historian

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu       sync.Mutex
	records  []models.ActionRecord
	statuses map[uuid.UUID]Status
}

func newRecordingSink() *recordingSink {
	return &recordingSink{statuses: make(map[uuid.UUID]Status)}
}

func (s *recordingSink) StoreActions(_ context.Context, records []models.ActionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

func (s *recordingSink) MarkFinished(_ context.Context, gameID uuid.UUID, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[gameID] = status
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func payload(t *testing.T, rec models.ActionRecord) string {
	t.Helper()
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	return string(data)
}

func TestHandlePayloadFlushesFullBatch(t *testing.T) {
	sink := newRecordingSink()
	h := New(nil, sink, quietLogger(), Options{BatchSize: 2})
	ctx := context.Background()
	gameID := uuid.New()

	require.NoError(t, h.handlePayload(ctx, payload(t, models.ActionRecord{GameID: gameID, ActionIndex: 1, ActionType: game.ActionDeal})))
	assert.Equal(t, 0, sink.count(), "batch not yet full")

	require.NoError(t, h.handlePayload(ctx, payload(t, models.ActionRecord{GameID: gameID, ActionIndex: 2, ActionType: game.ActionDraw})))
	require.Equal(t, 2, sink.count())
	assert.Equal(t, 1, sink.records[0].ActionIndex)
	assert.Equal(t, 2, sink.records[1].ActionIndex)

	require.NoError(t, h.Flush(ctx), "flushing an empty batch is a no-op")
	assert.Equal(t, 2, sink.count())
}

func TestHandlePayloadRejectsGarbage(t *testing.T) {
	h := New(nil, newRecordingSink(), quietLogger(), Options{})
	ctx := context.Background()

	assert.Error(t, h.handlePayload(ctx, "{not json"))
	assert.Error(t, h.handlePayload(ctx, `{"action_type":"action_draw"}`))
}

func TestEndGameMarksCompleted(t *testing.T) {
	sink := newRecordingSink()
	h := New(nil, sink, quietLogger(), Options{})
	ctx := context.Background()
	gameID := uuid.New()

	require.NoError(t, h.handlePayload(ctx, payload(t, models.ActionRecord{GameID: gameID, ActionIndex: 1, ActionType: game.ActionPlay})))
	require.NoError(t, h.handlePayload(ctx, payload(t, models.ActionRecord{GameID: gameID, ActionIndex: 2, ActionType: game.ActionEndGame})))
	require.NoError(t, h.Flush(ctx))

	assert.Equal(t, StatusCompleted, sink.statuses[gameID])
	_, tracked := h.lastActivity.Load(gameID)
	assert.False(t, tracked)
}

func TestLateRecordDoesNotAbandonCompletedGame(t *testing.T) {
	sink := newRecordingSink()
	h := New(nil, sink, quietLogger(), Options{Inactivity: time.Minute})
	ctx := context.Background()
	gameID := uuid.New()

	require.NoError(t, h.handlePayload(ctx, payload(t, models.ActionRecord{GameID: gameID, ActionIndex: 3, ActionType: game.ActionEndGame})))
	require.NoError(t, h.Flush(ctx))
	require.Equal(t, StatusCompleted, sink.statuses[gameID])

	// the winning play shows up after its end marker
	require.NoError(t, h.handlePayload(ctx, payload(t, models.ActionRecord{GameID: gameID, ActionIndex: 2, ActionType: game.ActionPlay})))
	require.NoError(t, h.Flush(ctx))
	h.sweepInactive(ctx, time.Now().Add(2*time.Minute))

	assert.Equal(t, StatusCompleted, sink.statuses[gameID])
	assert.Equal(t, 2, sink.count(), "the late record is still stored")
	_, tracked := h.lastActivity.Load(gameID)
	assert.False(t, tracked)
}

func TestSweepInactiveMarksAbandoned(t *testing.T) {
	sink := newRecordingSink()
	h := New(nil, sink, quietLogger(), Options{Inactivity: time.Minute})
	ctx := context.Background()
	stale, fresh := uuid.New(), uuid.New()

	now := time.Now()
	h.lastActivity.Store(stale, now.Add(-2*time.Minute))
	h.lastActivity.Store(fresh, now.Add(-10*time.Second))
	h.sweepInactive(ctx, now)

	assert.Equal(t, StatusAbandoned, sink.statuses[stale])
	assert.NotContains(t, sink.statuses, fresh)
	_, tracked := h.lastActivity.Load(fresh)
	assert.True(t, tracked)
}

// TestRunDrainsQueue needs a local Redis and skips when none answers.
func TestRunDrainsQueue(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	rdb, err := cache.ConnectRedis(ctx, "localhost:6379", 0)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	queue := "uno_actions_test_" + uuid.NewString()
	t.Cleanup(func() {
		rdb.Del(context.Background(), queue)
		rdb.Close()
	})

	g, err := game.NewUnoGame([]string{"Alice", "Bob"}, game.WithSeed(3), game.WithLogger(quietLogger()))
	require.NoError(t, err)
	actions := cache.NewActionLog(rdb, queue, quietLogger())
	g.OnAction = actions.Record
	require.NoError(t, g.Deal(0))
	_, err = g.DrawCard()
	require.NoError(t, err)
	actions.Close()

	sink := newRecordingSink()
	h := New(rdb, sink, quietLogger(), Options{Queue: queue, FlushInterval: 50 * time.Millisecond, PopTimeout: 100 * time.Millisecond})
	runCtx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(runCtx) }()

	assert.Eventually(t, func() bool { return sink.count() == 2 }, 3*time.Second, 20*time.Millisecond)
	stop()
	require.NoError(t, <-done)
}
