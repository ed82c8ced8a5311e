// Package ledger forwards confirmed settlements to the settlement store.
//
// The split engine hands every confirmation to a Dispatcher and moves on.
// A single worker writes them in submission order; write failures are
// logged and counted but never reach the session that produced them.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/tablesplit/internal/metrics"
	"github.com/mmynk/tablesplit/internal/models"
	"github.com/mmynk/tablesplit/internal/storage"
)

const (
	DefaultQueueSize    = 256
	DefaultWriteTimeout = 5 * time.Second
	defaultAttempts     = 3
)

// Dispatcher is an ordered, buffered queue in front of a SettlementStore.
type Dispatcher struct {
	store    storage.SettlementStore
	timeout  time.Duration
	attempts int
	backoff  time.Duration

	queue chan models.Settlement
	once  sync.Once
	wg    sync.WaitGroup

	// mu guards closed; Submit holds it for reading while sending so Close
	// never closes the queue under a pending send.
	mu     sync.RWMutex
	closed bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithQueueSize sets the queue capacity. Submit blocks once it is full.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan models.Settlement, n)
		}
	}
}

// WithWriteTimeout bounds each store write.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithRetry sets how often a failed write is attempted and the pause between attempts.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(d *Dispatcher) {
		if attempts > 0 {
			d.attempts = attempts
		}
		d.backoff = backoff
	}
}

// NewDispatcher creates a dispatcher. Call Start before submitting.
func NewDispatcher(store storage.SettlementStore, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:    store,
		timeout:  DefaultWriteTimeout,
		attempts: defaultAttempts,
		backoff:  100 * time.Millisecond,
		queue:    make(chan models.Settlement, DefaultQueueSize),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the worker. It is safe to call more than once.
func (d *Dispatcher) Start() {
	d.once.Do(func() {
		d.wg.Add(1)
		go d.run()
	})
}

// Submit queues a settlement for writing. It returns false once the
// dispatcher is closed.
func (d *Dispatcher) Submit(settlement models.Settlement) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		slog.Error("Settlement submitted after ledger shutdown",
			"session_id", settlement.SessionID,
			"guest_index", settlement.GuestIndex,
			"amount", settlement.Amount.String(),
		)
		return false
	}
	d.queue <- settlement
	metrics.SetLedgerQueueDepth(len(d.queue))
	return true
}

// Close stops accepting settlements and waits for the queue to drain.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("ledger close: %w", ctx.Err())
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for settlement := range d.queue {
		metrics.SetLedgerQueueDepth(len(d.queue))
		if err := d.write(&settlement); err != nil {
			metrics.RecordLedgerWrite("error")
			slog.Error("Failed to record settlement",
				"session_id", settlement.SessionID,
				"guest_index", settlement.GuestIndex,
				"sequence", settlement.Sequence,
				"amount", settlement.Amount.String(),
				"error", err,
			)
			continue
		}
		metrics.RecordLedgerWrite("ok")
		slog.Debug("Settlement recorded",
			"settlement_id", settlement.ID,
			"session_id", settlement.SessionID,
			"guest_index", settlement.GuestIndex,
		)
	}
}

func (d *Dispatcher) write(settlement *models.Settlement) error {
	var err error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err = d.store.CreateSettlement(ctx, settlement)
		cancel()
		if err == nil {
			return nil
		}
		if attempt < d.attempts {
			slog.Warn("Retrying settlement write", "attempt", attempt, "error", err)
			time.Sleep(d.backoff)
		}
	}
	return fmt.Errorf("after %d attempts: %w", d.attempts, err)
}
