// Package retry runs fallible operations with exponential backoff.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/vizinho/internal/domain"
)

// Defaults
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

var (
	// ErrNothingToRetry is returned by ManualRetry when the last run did not fail.
	ErrNothingToRetry = errors.New("nothing to retry")

	// ErrSuperseded is returned when Reset was called while a run was in flight.
	ErrSuperseded = errors.New("run superseded")
)

// Operation is one attempt at the guarded work.
type Operation[T any] func(ctx context.Context) (T, error)

// Notifier is told about scheduled retries and exhaustion. ctx is the
// context the run was started with.
type Notifier interface {
	RetryScheduled(ctx context.Context, attempt int, delay time.Duration, err error)
	RetriesExhausted(ctx context.Context, err error)
}

// NoOpNotifier ignores all notifications.
type NoOpNotifier struct{}

func (NoOpNotifier) RetryScheduled(context.Context, int, time.Duration, error) {}
func (NoOpNotifier) RetriesExhausted(context.Context, error)                  {}

// State is a copy of the controller's bookkeeping.
type State struct {
	Attempt   int
	LastError error
}

// Options configures a Controller.
type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Notifier    Notifier
	Logger      *slog.Logger

	// Sleep waits for d or until ctx is done. Defaults to a timer-based wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Controller owns the retry state for one kind of operation.
type Controller[T any] struct {
	maxAttempts int
	baseDelay   time.Duration
	notifier    Notifier
	logger      *slog.Logger
	sleep       func(ctx context.Context, d time.Duration) error

	mu        sync.Mutex
	attempt   int
	lastError error
	epoch     uint64
}

// New creates a Controller. Zero option fields take defaults.
func New[T any](opts Options) *Controller[T] {
	c := &Controller[T]{
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
		notifier:    opts.Notifier,
		logger:      opts.Logger,
		sleep:       opts.Sleep,
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	if c.baseDelay <= 0 {
		c.baseDelay = DefaultBaseDelay
	}
	if c.notifier == nil {
		c.notifier = NoOpNotifier{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.sleep == nil {
		c.sleep = Sleep
	}
	return c
}

// Backoff returns the wait before the given retry attempt (1-based):
// base, 2*base, 4*base, ...
func Backoff(attempt int, base time.Duration) time.Duration {
	if attempt < 1 {
		return 0
	}
	return base << (attempt - 1)
}

// Sleep waits for d, returning ctx.Err() if ctx ends first. The timer is
// always stopped.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// MaxAttempts returns the automatic retry budget.
func (c *Controller[T]) MaxAttempts() int { return c.maxAttempts }

// State returns a copy of the current bookkeeping.
func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Attempt: c.attempt, LastError: c.lastError}
}

// Reset clears the bookkeeping and invalidates runs already in flight.
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempt = 0
	c.lastError = nil
	c.epoch++
}

// Run executes op, retrying transient failures up to MaxAttempts times with
// exponential backoff. Non-retryable errors are returned immediately.
// Cancelling ctx aborts any pending wait and returns ctx.Err().
func (c *Controller[T]) Run(ctx context.Context, op Operation[T]) (T, error) {
	var zero T
	epoch := c.currentEpoch()

	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		result, err := op(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		c.mu.Lock()
		if c.epoch != epoch {
			c.mu.Unlock()
			return zero, ErrSuperseded
		}

		if err == nil {
			c.attempt = 0
			c.lastError = nil
			c.mu.Unlock()
			return result, nil
		}

		if !domain.Retryable(err) {
			c.attempt = 0
			c.lastError = err
			c.mu.Unlock()
			c.logger.Debug("non-retryable failure", "error", err, "category", domain.Classify(err).String())
			return zero, err
		}

		if c.attempt >= c.maxAttempts {
			c.attempt = 0
			c.lastError = err
			c.mu.Unlock()
			c.logger.Warn("retries exhausted", "attempts", c.maxAttempts, "error", err)
			c.notifier.RetriesExhausted(ctx, err)
			return zero, err
		}
		c.attempt++
		attempt := c.attempt
		c.mu.Unlock()

		delay := Backoff(attempt, c.baseDelay)
		c.logger.Info("scheduling retry", "attempt", attempt, "delay", delay, "error", err)
		c.notifier.RetryScheduled(ctx, attempt, delay, err)

		if err := c.sleep(ctx, delay); err != nil {
			return zero, err
		}
		if !c.sameEpoch(epoch) {
			return zero, ErrSuperseded
		}
	}
}

// ManualRetry makes one attempt outside the automatic budget. It is only
// allowed after a run ended in failure.
func (c *Controller[T]) ManualRetry(ctx context.Context, op Operation[T]) (T, error) {
	var zero T

	c.mu.Lock()
	if c.lastError == nil {
		c.mu.Unlock()
		return zero, ErrNothingToRetry
	}
	epoch := c.epoch
	c.mu.Unlock()

	result, err := op(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, ctxErr
	}
	if !c.sameEpoch(epoch) {
		return zero, ErrSuperseded
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempt = 0
	c.lastError = err
	if err != nil {
		return zero, err
	}
	return result, nil
}

func (c *Controller[T]) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

func (c *Controller[T]) sameEpoch(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch == epoch
}
