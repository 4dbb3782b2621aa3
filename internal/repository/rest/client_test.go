package rest_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vizinho/internal/devserver"
	"github.com/mmcdole/vizinho/internal/domain"
	"github.com/mmcdole/vizinho/internal/fetch"
	"github.com/mmcdole/vizinho/internal/repository/memory"
	"github.com/mmcdole/vizinho/internal/repository/rest"
)

var discard = slog.New(slog.DiscardHandler)

func newClient(t *testing.T, opts devserver.Options, clientOpts rest.Options) *rest.Client {
	t.Helper()
	opts.Logger = discard
	ts := httptest.NewServer(devserver.New(memory.New(), opts).Handler())
	t.Cleanup(ts.Close)

	clientOpts.Logger = discard
	return rest.NewClient(ts.URL+"/", clientOpts)
}

func TestClientSearch(t *testing.T) {
	c := newClient(t, devserver.Options{}, rest.Options{})

	got, err := c.Search(context.Background(), domain.Query{
		Category:      "Móveis",
		Status:        domain.StatusActive,
		PriceFiltered: true,
		MinPrice:      0,
		MaxPrice:      1000,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "l-07", got[0].ID)
	assert.Equal(t, domain.StatusActive, got[0].Status)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestClientMaxObservedPrice(t *testing.T) {
	c := newClient(t, devserver.Options{}, rest.Options{})

	price, err := c.MaxObservedPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1850.0, price)
}

func TestClientLocations(t *testing.T) {
	c := newClient(t, devserver.Options{}, rest.Options{})
	ctx := context.Background()

	states, err := c.FetchStates(ctx)
	require.NoError(t, err)
	assert.Len(t, states, 4)

	cities, err := c.FetchCitiesByState(ctx, "rj")
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "rj", cities[0].ParentID)

	condos, err := c.FetchCondominiumsByCity(ctx, "sp-santos")
	require.NoError(t, err)
	assert.NotNil(t, condos)
	assert.Empty(t, condos)
}

func TestClientSuggestCondominium(t *testing.T) {
	c := newClient(t, devserver.Options{}, rest.Options{UserID: "u-7"})
	ctx := context.Background()

	id, err := c.SuggestCondominium(ctx, "sp-santos", "Vila Rica", "Rua A, 1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	condos, err := c.FetchCondominiumsByCity(ctx, "sp-santos")
	require.NoError(t, err)
	require.Len(t, condos, 1)
	assert.True(t, condos[0].Pending)
	assert.Equal(t, "u-7", condos[0].SuggestedBy)

	_, err = c.SuggestCondominium(ctx, "sp-santos", "VILA RICA", "")
	assert.ErrorIs(t, err, domain.ErrDuplicateCondominium)

	_, err = c.SuggestCondominium(ctx, "sp-santos", " ", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestClientErrorMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("bad token is forbidden", func(t *testing.T) {
		c := newClient(t, devserver.Options{Token: "secret"}, rest.Options{Token: "wrong"})
		_, err := c.FetchStates(ctx)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Equal(t, domain.CategoryForbidden, domain.Classify(err))
	})

	t.Run("good token", func(t *testing.T) {
		c := newClient(t, devserver.Options{Token: "secret"}, rest.Options{Token: "secret"})
		_, err := c.FetchStates(ctx)
		assert.NoError(t, err)
	})

	t.Run("server failure is transient", func(t *testing.T) {
		c := newClient(t, devserver.Options{FailRate: 1, Rand: func() float64 { return 0 }}, rest.Options{})
		_, err := c.Search(ctx, domain.Query{})
		assert.ErrorIs(t, err, domain.ErrRepository)
		assert.True(t, domain.Retryable(err))
	})

	t.Run("unknown city", func(t *testing.T) {
		c := newClient(t, devserver.Options{}, rest.Options{})
		_, err := c.SuggestCondominium(ctx, "nowhere", "Torre", "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestClientUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := rest.NewClient(url, rest.Options{Logger: discard, Timeout: time.Second})
	_, err := c.FetchStates(context.Background())
	assert.ErrorIs(t, err, domain.ErrRepository)
}

func TestClientCanceled(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(block)
		ts.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	c := rest.NewClient(ts.URL, rest.Options{Logger: discard})
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Search(ctx, domain.Query{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.CategoryCanceled, domain.Classify(err))
}

func TestClientTimeoutIsRetried(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		case <-time.After(200 * time.Millisecond):
		}
	}))
	t.Cleanup(func() {
		close(release)
		ts.Close()
	})

	c := rest.NewClient(ts.URL, rest.Options{Logger: discard, Timeout: 30 * time.Millisecond})
	_, err := c.Search(context.Background(), domain.Query{})
	require.ErrorIs(t, err, domain.ErrRepository)
	assert.Equal(t, domain.CategoryTransient, domain.Classify(err))

	hits.Store(0)
	lc := fetch.New(c, fetch.Config{
		Logger: discard,
		Sleep:  func(context.Context, time.Duration) error { return nil },
	})
	err = lc.Load(context.Background(), domain.Query{})
	require.ErrorIs(t, err, domain.ErrRepository)
	assert.EqualValues(t, 4, hits.Load(), "initial call plus three retries")
	assert.True(t, lc.View().HasError)
}

func TestQueryParams(t *testing.T) {
	q := domain.Query{
		Search:        "bolo",
		Category:      "Alimentos",
		Type:          "Produto",
		Status:        domain.StatusActive,
		PriceFiltered: true,
		MinPrice:      10,
		MaxPrice:      99.5,
		StateID:       "sp",
		CityID:        "sp-sao-paulo",
		CondominiumID: "cond-jardins",
	}
	v := rest.EncodeQuery(q)
	assert.Equal(t, "99.5", v.Get("price_max"))
	assert.Equal(t, "cond-jardins", v.Get("condominium_id"))
	assert.Equal(t, q, rest.DecodeQuery(v))

	empty := rest.EncodeQuery(domain.Query{})
	assert.Empty(t, empty)
	assert.False(t, rest.DecodeQuery(empty).PriceFiltered)
}
