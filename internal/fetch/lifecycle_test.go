package fetch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vizinho/internal/domain"
)

type result struct {
	listings []domain.Listing
	err      error
}

// gatedSearcher blocks each Search until a result is sent for its search term.
type gatedSearcher struct {
	mu      sync.Mutex
	gates   map[string]chan result
	started chan string
}

func newGatedSearcher(terms ...string) *gatedSearcher {
	g := &gatedSearcher{gates: map[string]chan result{}, started: make(chan string, 16)}
	for _, term := range terms {
		g.gates[term] = make(chan result, 1)
	}
	return g
}

func (g *gatedSearcher) Search(_ context.Context, q domain.Query) ([]domain.Listing, error) {
	g.mu.Lock()
	gate := g.gates[q.Search]
	g.mu.Unlock()
	g.started <- q.Search
	r := <-gate
	return r.listings, r.err
}

type funcSearcher func(ctx context.Context, q domain.Query) ([]domain.Listing, error)

func (f funcSearcher) Search(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
	return f(ctx, q)
}

type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func listing(id string) domain.Listing {
	return domain.Listing{ID: id, Title: "item " + id, Status: domain.StatusActive}
}

func TestLoad_Success(t *testing.T) {
	repo := funcSearcher(func(context.Context, domain.Query) ([]domain.Listing, error) {
		return []domain.Listing{listing("1"), listing("2")}, nil
	})
	l := New(repo, Config{})

	q := domain.Query{Search: "bolo"}
	require.NoError(t, l.Load(context.Background(), q))

	v := l.View()
	assert.Len(t, v.Listings, 2)
	assert.False(t, v.Loading)
	assert.False(t, v.HasError)
	assert.Equal(t, q, v.Query)
}

func TestLoad_ExhaustionKeepsPreviousListings(t *testing.T) {
	fail := false
	calls := 0
	repo := funcSearcher(func(context.Context, domain.Query) ([]domain.Listing, error) {
		calls++
		if fail {
			return nil, domain.ErrRepository
		}
		return []domain.Listing{listing("1")}, nil
	})
	rs := &recordingSleep{}
	l := New(repo, Config{Sleep: rs.sleep})

	require.NoError(t, l.Load(context.Background(), domain.Query{Search: "a"}))

	fail = true
	calls = 0
	err := l.Load(context.Background(), domain.Query{Search: "b"})
	require.ErrorIs(t, err, domain.ErrRepository)

	v := l.View()
	assert.True(t, v.HasError)
	assert.ErrorIs(t, v.Err, domain.ErrRepository)
	assert.False(t, v.Loading)
	assert.Equal(t, []domain.Listing{listing("1")}, v.Listings)
	assert.Contains(t, v.Notice, "after 3 retries")
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, rs.delays)
}

func TestLoad_OutOfOrderResultsKeepNewest(t *testing.T) {
	repo := newGatedSearcher("A", "B")
	l := New(repo, Config{})

	errA := make(chan error, 1)
	go func() { errA <- l.Load(context.Background(), domain.Query{Search: "A"}) }()
	require.Equal(t, "A", <-repo.started)

	errB := make(chan error, 1)
	go func() { errB <- l.Load(context.Background(), domain.Query{Search: "B"}) }()
	require.Equal(t, "B", <-repo.started)

	repo.gates["B"] <- result{listings: []domain.Listing{listing("b")}}
	require.NoError(t, <-errB)

	repo.gates["A"] <- result{listings: []domain.Listing{listing("a")}}
	assert.ErrorIs(t, <-errA, ErrStale)

	v := l.View()
	assert.Equal(t, []domain.Listing{listing("b")}, v.Listings)
	assert.Equal(t, "B", v.Query.Search)
}

func TestLoad_SameQueryDoesNotFlipLoading(t *testing.T) {
	repo := newGatedSearcher("x")
	l := New(repo, Config{})
	q := domain.Query{Search: "x"}

	done := make(chan error, 1)
	go func() { done <- l.Load(context.Background(), q) }()
	<-repo.started
	assert.True(t, l.View().Loading)
	repo.gates["x"] <- result{}
	require.NoError(t, <-done)

	go func() { done <- l.Load(context.Background(), q) }()
	<-repo.started
	assert.False(t, l.View().Loading, "reissuing the same query keeps the view steady")
	repo.gates["x"] <- result{listings: []domain.Listing{listing("1")}}
	require.NoError(t, <-done)
	assert.Len(t, l.View().Listings, 1)
}

func TestRetry(t *testing.T) {
	l := New(funcSearcher(func(context.Context, domain.Query) ([]domain.Listing, error) {
		return nil, nil
	}), Config{})
	assert.ErrorIs(t, l.Retry(context.Background()), ErrNothingToRetry)

	allowed := false
	l = New(funcSearcher(func(context.Context, domain.Query) ([]domain.Listing, error) {
		if !allowed {
			return nil, domain.ErrForbidden
		}
		return []domain.Listing{listing("1")}, nil
	}), Config{})

	require.ErrorIs(t, l.Load(context.Background(), domain.Query{}), domain.ErrForbidden)
	v := l.View()
	assert.True(t, v.HasError)
	assert.Equal(t, "You are not allowed to view these listings", v.Notice)

	allowed = true
	require.NoError(t, l.Retry(context.Background()))
	v = l.View()
	assert.False(t, v.HasError)
	assert.Nil(t, v.Err)
	assert.Len(t, v.Listings, 1)
}

func TestObserverAndClose(t *testing.T) {
	var mu sync.Mutex
	var kinds []domain.EventKind
	obs := domain.ObserverFunc(func(e domain.Event) {
		mu.Lock()
		kinds = append(kinds, e.Kind)
		mu.Unlock()
	})

	l := New(funcSearcher(func(context.Context, domain.Query) ([]domain.Listing, error) {
		return nil, nil
	}), Config{Observer: obs})
	require.NoError(t, l.Load(context.Background(), domain.Query{}))

	mu.Lock()
	assert.NotEmpty(t, kinds)
	for _, k := range kinds {
		assert.Equal(t, domain.ListingsChanged, k)
	}
	mu.Unlock()

	l.Close()
	assert.ErrorIs(t, l.Load(context.Background(), domain.Query{}), ErrClosed)
	assert.ErrorIs(t, l.Retry(context.Background()), ErrClosed)
}

func TestView_IsACopy(t *testing.T) {
	l := New(funcSearcher(func(context.Context, domain.Query) ([]domain.Listing, error) {
		return []domain.Listing{listing("1")}, nil
	}), Config{})
	require.NoError(t, l.Load(context.Background(), domain.Query{}))

	v := l.View()
	v.Listings[0].Title = "mutated"
	assert.Equal(t, "item 1", l.View().Listings[0].Title)
}
