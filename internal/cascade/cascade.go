// Package cascade loads the dependent state → city → condominium option
// lists. Failed fetches degrade to built-in lists and are never retried.
package cascade

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/vizinho/internal/domain"
)

// LevelState is the load state of one option level.
type LevelState int

const (
	Idle LevelState = iota
	Loading
	Loaded
	ErrorWithFallback
)

func (s LevelState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case ErrorWithFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// LevelID names one of the three levels.
type LevelID int

const (
	States LevelID = iota
	Cities
	Condominiums
	levelCount
)

func (id LevelID) String() string {
	switch id {
	case States:
		return "states"
	case Cities:
		return "cities"
	case Condominiums:
		return "condominiums"
	default:
		return "unknown"
	}
}

// Level is the option list of one level. Levels are replaced, never
// mutated in place.
type Level struct {
	Options []domain.LocationOption
	State   LevelState
	Err     string // Non-blocking message shown while on fallback data
}

// Loading reports whether the level is waiting for options.
func (l Level) Loading() bool { return l.State == Loading }

// Levels is a copy of all three levels and the current selections.
type Levels struct {
	States       Level
	Cities       Level
	Condominiums Level

	StateID string
	CityID  string
}

// Level returns the level named by id.
func (ls Levels) Level(id LevelID) Level {
	switch id {
	case States:
		return ls.States
	case Cities:
		return ls.Cities
	default:
		return ls.Condominiums
	}
}

// Source provides location options. domain.ListingRepository satisfies it.
type Source interface {
	FetchStates(ctx context.Context) ([]domain.LocationOption, error)
	FetchCitiesByState(ctx context.Context, stateID string) ([]domain.LocationOption, error)
	FetchCondominiumsByCity(ctx context.Context, cityID string) ([]domain.LocationOption, error)
	SuggestCondominium(ctx context.Context, cityID, name, address string) (string, error)
}

// Config configures a Cascade.
type Config struct {
	// UserID is the signed-in resident; pending condominiums they suggested
	// stay visible to them.
	UserID   string
	Observer domain.Observer
	Logger   *slog.Logger
	Fallback *Fallback
}

// Cascade owns the three option levels.
type Cascade struct {
	src      Source
	userID   string
	fallback *Fallback
	logger   *slog.Logger

	mu       sync.Mutex
	observer domain.Observer
	levels   [levelCount]Level
	gens     [levelCount]uint64
	stateID  string
	cityID   string
	closed   bool
}

// New creates a Cascade over src.
func New(src Source, cfg Config) *Cascade {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Observer == nil {
		cfg.Observer = domain.NoOpObserver{}
	}
	if cfg.Fallback == nil {
		cfg.Fallback = DefaultFallback()
	}
	return &Cascade{
		src:      src,
		userID:   cfg.UserID,
		fallback: cfg.Fallback,
		logger:   cfg.Logger,
		observer: cfg.Observer,
	}
}

// Levels returns a copy of the current levels.
func (c *Cascade) Levels() Levels {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Levels{
		States:       copyLevel(c.levels[States]),
		Cities:       copyLevel(c.levels[Cities]),
		Condominiums: copyLevel(c.levels[Condominiums]),
		StateID:      c.stateID,
		CityID:       c.cityID,
	}
}

// LoadStates fetches the top level.
func (c *Cascade) LoadStates(ctx context.Context) {
	c.BeginLoadStates(ctx)()
}

// SelectState selects a state, emptying the city and condominium levels and
// fetching the state's cities. An empty id clears the selection.
func (c *Cascade) SelectState(ctx context.Context, stateID string) {
	c.BeginSelectState(ctx, stateID)()
}

// SelectCity selects a city, emptying the condominium level and fetching
// the city's condominiums. An empty id clears the selection.
func (c *Cascade) SelectCity(ctx context.Context, cityID string) {
	c.BeginSelectCity(ctx, cityID)()
}

// The Begin variants apply the selection immediately and return the fetch
// to run, so selections made in order keep their order even when the
// fetches run on other goroutines.

func (c *Cascade) BeginLoadStates(ctx context.Context) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return func() {}
	}
	gen := c.start(States)
	return func() {
		c.notify()
		opts, err := c.src.FetchStates(ctx)
		c.finish(ctx, States, gen, "", opts, err)
	}
}

func (c *Cascade) BeginSelectState(ctx context.Context, stateID string) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return func() {}
	}
	c.stateID = stateID
	c.cityID = ""
	c.collapse(Condominiums)
	if stateID == "" {
		c.collapse(Cities)
		return c.notify
	}
	gen := c.start(Cities)
	return func() {
		c.notify()
		opts, err := c.src.FetchCitiesByState(ctx, stateID)
		c.finish(ctx, Cities, gen, stateID, opts, err)
	}
}

func (c *Cascade) BeginSelectCity(ctx context.Context, cityID string) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return func() {}
	}
	c.cityID = cityID
	if cityID == "" {
		c.collapse(Condominiums)
		return c.notify
	}
	gen := c.start(Condominiums)
	return func() {
		c.notify()
		opts, err := c.src.FetchCondominiumsByCity(ctx, cityID)
		c.finish(ctx, Condominiums, gen, cityID, opts, err)
	}
}

// Close detaches the observer. Fetches finishing later are dropped.
func (c *Cascade) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.observer = domain.NoOpObserver{}
	for i := range c.gens {
		c.gens[i]++
	}
}

// start puts id into Loading and returns its new generation. Caller holds c.mu.
func (c *Cascade) start(id LevelID) uint64 {
	c.gens[id]++
	c.levels[id] = Level{State: Loading}
	return c.gens[id]
}

// collapse empties id and invalidates its in-flight fetch. Caller holds c.mu.
func (c *Cascade) collapse(id LevelID) {
	c.gens[id]++
	c.levels[id] = Level{State: Idle}
}

func (c *Cascade) finish(ctx context.Context, id LevelID, gen uint64, parentID string, opts []domain.LocationOption, err error) {
	c.mu.Lock()
	if c.closed || c.gens[id] != gen {
		c.mu.Unlock()
		c.logger.Debug("discarding stale options", "level", id.String(), "generation", gen)
		return
	}
	if err != nil && ctx.Err() != nil {
		// Torn down mid-fetch; leave the level for the next selection.
		c.mu.Unlock()
		return
	}

	var next Level
	if err != nil {
		next = Level{
			Options: c.visible(c.fallback.Options(id, parentID)),
			State:   ErrorWithFallback,
			Err:     fallbackMessage(id),
		}
	} else {
		next = Level{Options: c.visible(opts), State: Loaded}
	}
	c.levels[id] = next
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("location fetch failed, using fallback", "level", id.String(), "parent", parentID, "error", err)
	}
	c.notify()
}

func (c *Cascade) visible(opts []domain.LocationOption) []domain.LocationOption {
	out := make([]domain.LocationOption, 0, len(opts))
	for _, o := range opts {
		if o.VisibleTo(c.userID) {
			out = append(out, o)
		}
	}
	return out
}

func fallbackMessage(id LevelID) string {
	return "Could not load " + id.String() + "; showing a built-in list"
}

func copyLevel(l Level) Level {
	l.Options = append([]domain.LocationOption(nil), l.Options...)
	return l
}

func (c *Cascade) notify() {
	c.mu.Lock()
	obs := c.observer
	c.mu.Unlock()
	obs.Notify(domain.Event{Kind: domain.LocationsChanged})
}
