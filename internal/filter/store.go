// Package filter owns the filter state: it applies setter transitions,
// persists the result, publishes the shareable link, and drives listing and
// location loads.
package filter

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/mmcdole/vizinho/internal/cascade"
	"github.com/mmcdole/vizinho/internal/codec"
	"github.com/mmcdole/vizinho/internal/domain"
	"github.com/mmcdole/vizinho/internal/fetch"
)

// ErrClosed is returned by setters after Close.
var ErrClosed = errors.New("filter store closed")

// Config configures a Store.
type Config struct {
	Repository  domain.ListingRepository
	FilterStore domain.FilterStore // Optional; nothing is persisted when nil

	UserID            string
	UserCondominiumID string

	// DefaultMaxPrice is the price bound used when the repository cannot
	// report one.
	DefaultMaxPrice float64

	MaxAttempts int
	BaseDelay   time.Duration

	Observer domain.Observer
	Logger   *slog.Logger

	// OnLink receives the shareable link after every change.
	OnLink func(url.Values)

	// Sleep overrides the retry backoff wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Store is the filter state machine.
type Store struct {
	repo     domain.ListingRepository
	persist  domain.FilterStore
	fetch    *fetch.Lifecycle
	cascade  *cascade.Cascade
	observer domain.Observer
	logger   *slog.Logger
	onLink   func(url.Values)

	defaultMaxPrice float64

	// ctx bounds all background work; cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	snap     domain.Snapshot
	maxPrice float64
	closed   bool
}

// New creates a Store. Call Init before use.
func New(cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Observer == nil {
		cfg.Observer = domain.NoOpObserver{}
	}
	if cfg.DefaultMaxPrice <= 0 {
		cfg.DefaultMaxPrice = domain.DefaultMaxPrice
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		repo:            cfg.Repository,
		persist:         cfg.FilterStore,
		observer:        cfg.Observer,
		logger:          cfg.Logger,
		onLink:          cfg.OnLink,
		defaultMaxPrice: cfg.DefaultMaxPrice,
		ctx:             ctx,
		cancel:          cancel,
		maxPrice:        cfg.DefaultMaxPrice,
	}
	s.snap = domain.DefaultSnapshot(s.maxPrice)
	s.snap.UserCondominiumID = cfg.UserCondominiumID

	s.fetch = fetch.New(cfg.Repository, fetch.Config{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		Observer:    cfg.Observer,
		Logger:      cfg.Logger.With("component", "fetch"),
		Sleep:       cfg.Sleep,
	})
	s.cascade = cascade.New(cfg.Repository, cascade.Config{
		UserID:   cfg.UserID,
		Observer: cfg.Observer,
		Logger:   cfg.Logger.With("component", "cascade"),
	})
	return s
}

// Init builds the initial snapshot from link, then the persisted filters,
// then defaults, and starts the first loads. It blocks only on the max
// price lookup.
func (s *Store) Init(ctx context.Context, link url.Values) error {
	maxPrice := s.lookupMaxPrice(ctx)
	stored, hasStored := s.loadPersisted()
	fromLink := codec.DecodeURL(link)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	defaults := domain.DefaultSnapshot(maxPrice)
	defaults.UserCondominiumID = s.snap.UserCondominiumID

	s.maxPrice = maxPrice
	s.snap = domain.Normalize(codec.Merge(fromLink, stored, hasStored, defaults), maxPrice)
	snap := s.snap

	loadStates := s.cascade.BeginLoadStates(s.ctx)
	selectState := s.cascade.BeginSelectState(s.ctx, snap.StateID)
	var selectCity func()
	if snap.StateID != "" {
		selectCity = s.cascade.BeginSelectCity(s.ctx, snap.CityID)
	}
	s.spawnLoad(codec.ToQuery(snap, maxPrice))
	s.publish(snap)
	s.mu.Unlock()

	s.logger.Info("filters initialized",
		"from_link", !fromLink.Empty(),
		"from_store", hasStored,
		"max_price", maxPrice)

	s.spawn(func() {
		loadStates()
		selectState()
		if selectCity != nil {
			selectCity()
		}
	})
	s.notify()
	return nil
}

// Snapshot returns the current filter values.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Query returns the repository query for the current filters.
func (s *Store) Query() domain.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return codec.ToQuery(s.snap, s.maxPrice)
}

// MaxPrice returns the live upper price bound.
func (s *Store) MaxPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxPrice
}

// Listings returns the current fetch view.
func (s *Store) Listings() fetch.View {
	return s.fetch.View()
}

// Levels returns the location option levels.
func (s *Store) Levels() cascade.Levels {
	return s.cascade.Levels()
}

// Match filters a location level by fuzzy name match.
func (s *Store) Match(level cascade.LevelID, query string) []domain.LocationOption {
	return s.cascade.Match(level, query)
}

// Link returns the shareable query parameters for the current filters.
func (s *Store) Link() url.Values {
	return codec.EncodeURL(s.Snapshot())
}

func (s *Store) SetSearchTerm(term string) error {
	return s.update(func(snap domain.Snapshot) (domain.Snapshot, error) {
		return setSearchTerm(snap, term), nil
	})
}

func (s *Store) SetCategory(id string) error {
	return s.update(func(snap domain.Snapshot) (domain.Snapshot, error) {
		return setCategory(snap, id)
	})
}

func (s *Store) SetType(id string) error {
	return s.update(func(snap domain.Snapshot) (domain.Snapshot, error) {
		return setType(snap, id)
	})
}

func (s *Store) SetStatus(label string) error {
	return s.update(func(snap domain.Snapshot) (domain.Snapshot, error) {
		return setStatus(snap, label)
	})
}

func (s *Store) SetShowSoldItems(show bool) error {
	return s.update(func(snap domain.Snapshot) (domain.Snapshot, error) {
		return setShowSoldItems(snap, show), nil
	})
}

func (s *Store) SetPriceRange(r domain.PriceRange) error {
	return s.update(func(snap domain.Snapshot) (domain.Snapshot, error) {
		return setPriceRange(snap, r)
	})
}

// SelectState selects a state and reloads its cities. City and
// condominium are cleared.
func (s *Store) SelectState(id string) error {
	return s.updateLocation(func(snap domain.Snapshot) domain.Snapshot {
		return selectState(snap, id)
	}, func() func() {
		return s.cascade.BeginSelectState(s.ctx, id)
	})
}

// SelectCity selects a city and reloads its condominiums.
func (s *Store) SelectCity(id string) error {
	return s.updateLocation(func(snap domain.Snapshot) domain.Snapshot {
		return selectCity(snap, id)
	}, func() func() {
		return s.cascade.BeginSelectCity(s.ctx, id)
	})
}

func (s *Store) SelectCondominium(id string) error {
	return s.update(func(snap domain.Snapshot) (domain.Snapshot, error) {
		return selectCondominium(snap, id), nil
	})
}

// SetCondominiumFilter toggles "only my condominium". Enabling it without a
// user condominium fails with domain.ErrNoUserCondominium.
func (s *Store) SetCondominiumFilter(on bool) error {
	return s.update(func(snap domain.Snapshot) (domain.Snapshot, error) {
		return setCondominiumFilter(snap, on)
	})
}

// SetUserCondominium records the signed-in resident's condominium.
func (s *Store) SetUserCondominium(id string) error {
	return s.update(func(snap domain.Snapshot) (domain.Snapshot, error) {
		return setUserCondominium(snap, id), nil
	})
}

// ResetFilters restores the defaults, keeping the user condominium.
func (s *Store) ResetFilters() error {
	return s.updateLocation(func(snap domain.Snapshot) domain.Snapshot {
		return resetFilters(snap, s.maxPrice)
	}, func() func() {
		return s.cascade.BeginSelectState(s.ctx, "")
	})
}

// RefreshMaxPrice asks the repository for the current highest price. An
// unconstrained upper bound follows the new value.
func (s *Store) RefreshMaxPrice(ctx context.Context) error {
	newMax := s.lookupMaxPrice(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	oldMax := s.maxPrice
	s.maxPrice = newMax
	s.mu.Unlock()

	s.logger.Debug("max price refreshed", "old", oldMax, "new", newMax)
	return s.update(func(snap domain.Snapshot) (domain.Snapshot, error) {
		return applyMaxPrice(snap, oldMax, newMax), nil
	})
}

// SuggestCondominium submits a condominium in the selected city.
func (s *Store) SuggestCondominium(ctx context.Context, name, address string) (string, error) {
	cityID := s.Snapshot().CityID
	return s.cascade.SuggestCondominium(ctx, cityID, name, address)
}

// RetryLoadListings retries the last failed listing load once.
func (s *Store) RetryLoadListings(ctx context.Context) error {
	return s.fetch.Retry(ctx)
}

// Wait blocks until background loads started so far have finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Close cancels background work and waits for it. The filter store given
// in Config is left open.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.fetch.Close()
	s.cascade.Close()
	s.wg.Wait()
}

func (s *Store) update(fn func(domain.Snapshot) (domain.Snapshot, error)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	next, err := fn(s.snap)
	if err != nil {
		s.mu.Unlock()
		s.logger.Debug("filter change rejected", "error", err)
		return err
	}
	next = domain.Normalize(next, s.maxPrice)
	s.snap = next
	s.spawnLoad(codec.ToQuery(next, s.maxPrice))
	s.publish(next)
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) updateLocation(fn func(domain.Snapshot) domain.Snapshot, begin func() func()) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	next := domain.Normalize(fn(s.snap), s.maxPrice)
	s.snap = next
	s.spawn(begin())
	s.spawnLoad(codec.ToQuery(next, s.maxPrice))
	s.publish(next)
	s.mu.Unlock()

	s.notify()
	return nil
}

// spawnLoad claims a fetch generation and runs it in the background.
// Caller holds s.mu so generations follow setter order.
func (s *Store) spawnLoad(q domain.Query) {
	run := s.fetch.Begin(s.ctx, q)
	s.spawn(func() {
		if err := run(); err != nil && !errors.Is(err, fetch.ErrStale) && !errors.Is(err, context.Canceled) {
			s.logger.Debug("listing load ended with error", "error", err)
		}
	})
}

func (s *Store) spawn(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// publish persists snap and hands its link to OnLink. Caller holds s.mu so
// the last write is the last applied change.
func (s *Store) publish(snap domain.Snapshot) {
	s.savePersisted(snap)
	if s.onLink != nil {
		s.onLink(codec.EncodeURL(snap))
	}
}

func (s *Store) notify() {
	s.observer.Notify(domain.Event{Kind: domain.FiltersChanged})
}

func (s *Store) lookupMaxPrice(ctx context.Context) float64 {
	price, err := s.repo.MaxObservedPrice(ctx)
	if err != nil {
		s.logger.Warn("max price unavailable, using default", "default", s.defaultMaxPrice, "error", err)
		return s.defaultMaxPrice
	}
	rounded := domain.RoundUpToHundred(price)
	if rounded <= 0 {
		return s.defaultMaxPrice
	}
	return rounded
}

func (s *Store) loadPersisted() (domain.Snapshot, bool) {
	if s.persist == nil {
		return domain.Snapshot{}, false
	}
	blob, ok := s.persist.Load()
	if !ok {
		return domain.Snapshot{}, false
	}
	snap, ok := codec.DecodeStore(blob)
	if !ok {
		s.logger.Warn("ignoring unreadable saved filters")
	}
	return snap, ok
}

func (s *Store) savePersisted(snap domain.Snapshot) {
	if s.persist == nil {
		return
	}
	blob, err := codec.EncodeStore(snap)
	if err != nil {
		s.logger.Error("failed to encode filters", "error", err)
		return
	}
	if err := s.persist.Save(blob); err != nil {
		s.logger.Error("failed to save filters", "error", err)
	}
}
