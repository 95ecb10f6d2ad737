// Package historian drains the Redis action queue written by cache.ActionLog, batches the
// records into a Sink and closes out games that finish or go quiet.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Status is the final state the historian assigns to a game.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Sink receives flushed batches and game status changes.
type Sink interface {
	StoreActions(ctx context.Context, records []models.ActionRecord) error
	MarkFinished(ctx context.Context, gameID uuid.UUID, status Status) error
}

// Options tune batching and inactivity handling. Zero values take the defaults.
type Options struct {
	Queue         string
	BatchSize     int
	FlushInterval time.Duration
	Inactivity    time.Duration
	PopTimeout    time.Duration
}

func (o Options) withDefaults() Options {
	if o.Queue == "" {
		o.Queue = cache.DefaultQueueName
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 20
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 500 * time.Millisecond
	}
	if o.Inactivity <= 0 {
		o.Inactivity = 10 * time.Minute
	}
	if o.PopTimeout <= 0 {
		o.PopTimeout = 3 * time.Second
	}
	return o
}

// Historian encapsulates the Redis consumer and the inactivity sweep.
type Historian struct {
	rdb    *redis.Client
	sink   Sink
	logger *logrus.Logger
	opts   Options

	lastActivity sync.Map // map[uuid.UUID]time.Time
	completed    sync.Map // map[uuid.UUID]struct{}

	batchMu sync.Mutex
	batch   []models.ActionRecord
}

// New returns a Historian reading from rdb. A nil logger uses the logrus standard logger.
func New(rdb *redis.Client, sink Sink, logger *logrus.Logger, opts Options) *Historian {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	opts = opts.withDefaults()
	return &Historian{
		rdb:    rdb,
		sink:   sink,
		logger: logger,
		opts:   opts,
		batch:  make([]models.ActionRecord, 0, opts.BatchSize),
	}
}

// Run consumes the queue until ctx is cancelled, then flushes what is left.
func (h *Historian) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.inactivityLoop(ctx)
	}()

	h.logger.WithField("queue", h.opts.Queue).Info("Historian started")
	err := h.readLoop(ctx)
	wg.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if flushErr := h.Flush(flushCtx); flushErr != nil {
		h.logger.WithError(flushErr).Error("Final flush failed")
	}
	h.logger.Info("Historian shutting down")
	return err
}

func (h *Historian) readLoop(ctx context.Context) error {
	ticker := time.NewTicker(h.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			if err := h.Flush(ctx); err != nil {
				h.logger.WithError(err).Error("Flush failed")
			}

		default:
			res, err := h.rdb.BLPop(ctx, h.opts.PopTimeout, h.opts.Queue).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue
				}
				h.logger.WithError(err).Error("BLPop failed")
				continue
			}
			// res[0] is the queue name and res[1] the payload.
			if len(res) < 2 {
				continue
			}
			if err := h.handlePayload(ctx, res[1]); err != nil {
				h.logger.WithError(err).Warn("Dropping action record")
			}
		}
	}
}

// handlePayload decodes one queued record and adds it to the batch.
func (h *Historian) handlePayload(ctx context.Context, payload string) error {
	var rec models.ActionRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return fmt.Errorf("invalid action record: %w", err)
	}
	if rec.GameID == uuid.Nil {
		return errors.New("invalid action record: missing game_id")
	}
	// a late record for a finished game must not revive its inactivity timer
	if _, done := h.completed.Load(rec.GameID); !done {
		h.lastActivity.Store(rec.GameID, time.Now())
	}

	h.batchMu.Lock()
	h.batch = append(h.batch, rec)
	full := len(h.batch) >= h.opts.BatchSize
	h.batchMu.Unlock()

	if full {
		return h.Flush(ctx)
	}
	return nil
}

// Flush hands the pending batch to the sink and completes games whose final action is in it.
func (h *Historian) Flush(ctx context.Context) error {
	h.batchMu.Lock()
	if len(h.batch) == 0 {
		h.batchMu.Unlock()
		return nil
	}
	batch := h.batch
	h.batch = make([]models.ActionRecord, 0, h.opts.BatchSize)
	h.batchMu.Unlock()

	if err := h.sink.StoreActions(ctx, batch); err != nil {
		return fmt.Errorf("store %d actions: %w", len(batch), err)
	}
	h.logger.Debugf("Flushed %d actions.", len(batch))

	for _, rec := range batch {
		if rec.ActionType != game.ActionEndGame {
			continue
		}
		h.completed.Store(rec.GameID, struct{}{})
		h.lastActivity.Delete(rec.GameID)
		if err := h.sink.MarkFinished(ctx, rec.GameID, StatusCompleted); err != nil {
			return fmt.Errorf("complete game %s: %w", rec.GameID, err)
		}
	}
	return nil
}

func (h *Historian) inactivityLoop(ctx context.Context) {
	interval := h.opts.Inactivity / 10
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			h.sweepInactive(ctx, now)
		}
	}
}

// sweepInactive marks every game silent for longer than the inactivity window as abandoned.
func (h *Historian) sweepInactive(ctx context.Context, now time.Time) {
	h.lastActivity.Range(func(key, val interface{}) bool {
		gameID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= h.opts.Inactivity {
			return true
		}
		if _, done := h.completed.Load(gameID); done {
			h.lastActivity.Delete(gameID)
			return true
		}
		if err := h.sink.MarkFinished(ctx, gameID, StatusAbandoned); err != nil {
			h.logger.WithError(err).WithField("game_id", gameID).Error("Failed to mark game abandoned")
			return true
		}
		h.lastActivity.Delete(gameID)
		h.logger.WithField("game_id", gameID).Info("Marked game abandoned due to inactivity")
		return true
	})
}
