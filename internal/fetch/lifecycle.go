// Package fetch loads listings for the current query, guarding against
// out-of-order results and retrying transient failures.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/vizinho/internal/domain"
	"github.com/mmcdole/vizinho/internal/retry"
)

var (
	// ErrNothingToRetry is returned by Retry when the last load did not fail.
	ErrNothingToRetry = errors.New("no failed load to retry")

	// ErrStale is returned when a load finished after a newer one started.
	// Its result was discarded.
	ErrStale = errors.New("load superseded")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("lifecycle closed")
)

// Searcher is the part of the repository the lifecycle needs.
type Searcher interface {
	Search(ctx context.Context, q domain.Query) ([]domain.Listing, error)
}

// View is an immutable copy of the lifecycle state.
type View struct {
	Listings []domain.Listing
	Loading  bool
	HasError bool
	Err      error
	Notice   string
	Query    domain.Query
}

// Config configures a Lifecycle.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Observer    domain.Observer
	Logger      *slog.Logger

	// Sleep overrides the backoff wait, see retry.Options.
	Sleep func(ctx context.Context, d time.Duration) error
}

type genKey struct{}

// Lifecycle owns the listing result set for one filter store.
type Lifecycle struct {
	repo     Searcher
	retry    *retry.Controller[[]domain.Listing]
	observer domain.Observer
	logger   *slog.Logger

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	lastQuery domain.Query
	issued    bool
	view      View
	closed    bool
}

// New creates a Lifecycle reading from repo.
func New(repo Searcher, cfg Config) *Lifecycle {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Observer == nil {
		cfg.Observer = domain.NoOpObserver{}
	}

	l := &Lifecycle{
		repo:     repo,
		observer: cfg.Observer,
		logger:   cfg.Logger,
	}
	l.retry = retry.New[[]domain.Listing](retry.Options{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		Notifier:    l,
		Logger:      cfg.Logger,
		Sleep:       cfg.Sleep,
	})
	return l
}

// View returns a copy of the current state.
func (l *Lifecycle) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	v := l.view
	v.Listings = append([]domain.Listing(nil), l.view.Listings...)
	return v
}

// Load fetches listings for q and blocks until the result is applied or
// discarded. Starting a load cancels the previous one. Reissuing the last
// query keeps the loading flag and the retry budget as they are.
func (l *Lifecycle) Load(ctx context.Context, q domain.Query) error {
	return l.Begin(ctx, q)()
}

// Begin claims a new generation for q without blocking and returns the
// function that performs the fetch. Generations are ordered by Begin calls,
// so callers can run the returned function on another goroutine.
func (l *Lifecycle) Begin(ctx context.Context, q domain.Query) func() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return func() error { return ErrClosed }
	}
	same := l.issued && q == l.lastQuery
	if !same {
		l.retry.Reset()
		l.view.Loading = true
		l.view.Notice = ""
	}
	l.lastQuery = q
	l.issued = true
	l.view.Query = q
	runCtx, gen := l.begin(ctx)
	l.mu.Unlock()

	return func() error {
		l.logger.Debug("loading listings", "generation", gen, "same_query", same)
		l.notify("")

		listings, err := l.retry.Run(runCtx, l.search(q))
		return l.apply(ctx, gen, listings, err)
	}
}

// Retry makes one manual attempt at the last query after a failed load.
func (l *Lifecycle) Retry(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if !l.view.HasError || l.retry.State().LastError == nil {
		l.mu.Unlock()
		return ErrNothingToRetry
	}
	q := l.lastQuery
	l.view.Loading = true
	l.view.Notice = ""
	runCtx, gen := l.begin(ctx)
	l.mu.Unlock()

	l.logger.Info("manual retry", "generation", gen)
	l.notify("")

	listings, err := l.retry.ManualRetry(runCtx, l.search(q))
	if errors.Is(err, retry.ErrNothingToRetry) {
		err = ErrNothingToRetry
	}
	return l.apply(ctx, gen, listings, err)
}

// Close cancels the in-flight load and drops later results.
func (l *Lifecycle) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	if l.cancel != nil {
		l.cancel()
	}
	l.observer = domain.NoOpObserver{}
}

// begin starts a new generation. Caller holds l.mu.
func (l *Lifecycle) begin(ctx context.Context) (context.Context, uint64) {
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	runCtx, cancel := context.WithCancel(context.WithValue(ctx, genKey{}, l.gen))
	l.cancel = cancel
	return runCtx, l.gen
}

func (l *Lifecycle) search(q domain.Query) retry.Operation[[]domain.Listing] {
	return func(ctx context.Context) ([]domain.Listing, error) {
		return l.repo.Search(ctx, q)
	}
}

func (l *Lifecycle) apply(parent context.Context, gen uint64, listings []domain.Listing, err error) error {
	l.mu.Lock()
	if l.closed || gen != l.gen {
		l.mu.Unlock()
		l.logger.Debug("discarding stale listings", "generation", gen)
		return ErrStale
	}

	if errors.Is(err, retry.ErrSuperseded) {
		l.mu.Unlock()
		return ErrStale
	}

	if parent.Err() != nil {
		// Torn down by the caller; keep whatever is visible.
		l.view.Loading = false
		l.mu.Unlock()
		l.notify("")
		return parent.Err()
	}

	l.view.Loading = false
	if err != nil {
		l.view.HasError = true
		l.view.Err = err
		if l.view.Notice == "" || domain.Classify(err) != domain.CategoryTransient {
			l.view.Notice = failureNotice(err)
		}
		l.mu.Unlock()
		l.logger.Warn("listings load failed", "generation", gen, "error", err)
		l.notify("")
		return err
	}

	l.view.Listings = append([]domain.Listing(nil), listings...)
	l.view.HasError = false
	l.view.Err = nil
	l.view.Notice = ""
	count := len(l.view.Listings)
	l.mu.Unlock()

	l.logger.Debug("listings loaded", "generation", gen, "count", count)
	l.notify("")
	return nil
}

func failureNotice(err error) string {
	switch domain.Classify(err) {
	case domain.CategoryForbidden:
		return "You are not allowed to view these listings"
	case domain.CategoryValidation:
		return "Invalid filters: " + err.Error()
	default:
		return "Could not load listings. Try again"
	}
}

// RetryScheduled implements retry.Notifier.
func (l *Lifecycle) RetryScheduled(ctx context.Context, attempt int, delay time.Duration, err error) {
	msg := fmt.Sprintf("Connection problem, retrying in %s (%d/%d)", delay, attempt, l.retry.MaxAttempts())
	if l.setNotice(ctx, msg) {
		l.notify(msg)
	}
}

// RetriesExhausted implements retry.Notifier.
func (l *Lifecycle) RetriesExhausted(ctx context.Context, err error) {
	msg := fmt.Sprintf("Could not load listings after %d retries. Try again", l.retry.MaxAttempts())
	if l.setNotice(ctx, msg) {
		l.notify(msg)
	}
}

// setNotice updates the notice if ctx belongs to the current generation.
func (l *Lifecycle) setNotice(ctx context.Context, msg string) bool {
	gen, _ := ctx.Value(genKey{}).(uint64)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || gen != l.gen {
		return false
	}
	l.view.Notice = msg
	return true
}

func (l *Lifecycle) notify(msg string) {
	l.mu.Lock()
	obs := l.observer
	l.mu.Unlock()
	obs.Notify(domain.Event{Kind: domain.ListingsChanged, Message: msg})
}
