// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jason-s-yu/uno/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list (queue) name for game action logs.
const DefaultQueueName = "uno_actions"

// publishTimeout bounds each asynchronous push.
const publishTimeout = 2 * time.Second

// ConnectRedis creates a client for addr/db and verifies it answers a PING.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// recordBuffer is how many records may wait for the publisher before Record blocks.
const recordBuffer = 256

// ActionLog pushes game action records onto a Redis list for the historian to consume.
// Records are published by a single goroutine in the order Record received them.
type ActionLog struct {
	rdb    *redis.Client
	queue  string
	logger *logrus.Logger

	publish func(ctx context.Context, rec models.ActionRecord) error
	records chan models.ActionRecord
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewActionLog returns an ActionLog writing to queue (DefaultQueueName when empty) and starts
// its publisher. Call Close to drain it.
func NewActionLog(rdb *redis.Client, queue string, logger *logrus.Logger) *ActionLog {
	if queue == "" {
		queue = DefaultQueueName
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	l := &ActionLog{rdb: rdb, queue: queue, logger: logger}
	l.publish = l.PublishGameAction
	l.start()
	return l
}

func (l *ActionLog) start() {
	l.records = make(chan models.ActionRecord, recordBuffer)
	l.done = make(chan struct{})
	go l.publishLoop()
}

func (l *ActionLog) publishLoop() {
	defer close(l.done)
	for rec := range l.records {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := l.publish(ctx, rec)
		cancel()
		if err != nil {
			l.logger.WithFields(logrus.Fields{
				"game_id":      rec.GameID,
				"action_index": rec.ActionIndex,
			}).WithError(err).Error("Error publishing game action")
		}
	}
}

// PublishGameAction serializes the given record to JSON, then pushes it to the Redis queue.
func (l *ActionLog) PublishGameAction(ctx context.Context, record models.ActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := l.rdb.RPush(ctx, l.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", l.queue, err)
	}
	return nil
}

// Record queues rec for the publisher so the engine never waits on the network. Its
// signature matches UnoGame.OnAction. Records arriving after Close are dropped.
func (l *ActionLog) Record(rec models.ActionRecord) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.logger.WithField("game_id", rec.GameID).Warn("Action log closed, dropping record")
		return
	}
	l.records <- rec
}

// Close stops accepting records and waits until every queued record has been published.
// It is safe to call more than once.
func (l *ActionLog) Close() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.records)
	}
	l.mu.Unlock()
	<-l.done
}

// ReadGameActions returns every record currently in the queue, oldest first.
func (l *ActionLog) ReadGameActions(ctx context.Context) ([]models.ActionRecord, error) {
	raw, err := l.rdb.LRange(ctx, l.queue, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to LRANGE '%s': %w", l.queue, err)
	}
	records := make([]models.ActionRecord, 0, len(raw))
	for _, item := range raw {
		var rec models.ActionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode action record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
