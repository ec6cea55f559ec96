package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/clickquest/clicker-system/internal/api/metrics"
	"github.com/clickquest/clicker-system/internal/core/domain"
)

// ClickTotalWriter is the slice of the account store the checkpointer needs.
type ClickTotalWriter interface {
	SetClickTotal(ctx context.Context, accountID string, total int64) error
}

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

type checkpoint struct {
	accountID string
	total     int64
}

// Checkpointer mirrors live session click totals into durable storage from a
// fixed set of workers. Checkpoints are sharded by account id, so writes for
// one account always run on the same worker in enqueue order.
type Checkpointer struct {
	workers []chan checkpoint
	store   ClickTotalWriter
	log     zerolog.Logger
}

// NewCheckpointer creates a Checkpointer with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewCheckpointer(numWorkers int, store ClickTotalWriter, log zerolog.Logger) *Checkpointer {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	c := &Checkpointer{
		workers: make([]chan checkpoint, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range c.workers {
		c.workers[i] = make(chan checkpoint, channelBuffer)
	}
	return c
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (c *Checkpointer) Start(ctx context.Context) {
	for i, ch := range c.workers {
		go c.runWorker(ctx, i, ch)
	}
}

// Enqueue schedules a checkpoint without blocking. When the responsible
// worker's channel is full the checkpoint is dropped; the live counter in the
// cache stays authoritative, a later click re-checkpoints the full total.
func (c *Checkpointer) Enqueue(accountID string, total int64) {
	idx := c.shardIndex(accountID)
	select {
	case c.workers[idx] <- checkpoint{accountID: accountID, total: total}:
		metrics.CheckpointQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(c.workers[idx])))
	default:
		metrics.CheckpointsTotal.WithLabelValues("dropped").Inc()
		c.log.Warn().Str("account_id", accountID).Int("worker_id", idx).Msg("checkpoint queue full, dropping")
	}
}

// shardIndex maps an account id deterministically to a worker index.
func (c *Checkpointer) shardIndex(accountID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(accountID))
	return int(h.Sum32()) % len(c.workers)
}

func (c *Checkpointer) runWorker(ctx context.Context, id int, ch <-chan checkpoint) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case cp, ok := <-ch:
			if !ok {
				return
			}
			metrics.CheckpointQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			if err := c.store.SetClickTotal(ctx, cp.accountID, cp.total); err != nil {
				// A transfer can delete the account while its checkpoint
				// is still queued; nothing to mirror then.
				if errors.Is(err, domain.ErrAccountNotFound) {
					c.log.Debug().Str("account_id", cp.accountID).Msg("account gone before checkpoint")
					continue
				}
				metrics.CheckpointsTotal.WithLabelValues("error").Inc()
				c.log.Error().Err(err).
					Str("account_id", cp.accountID).
					Int("worker_id", id).
					Msg("click checkpoint failed")
				continue
			}
			metrics.CheckpointsTotal.WithLabelValues("ok").Inc()
		}
	}
}
