package filter

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vizinho/internal/cascade"
	"github.com/mmcdole/vizinho/internal/codec"
	"github.com/mmcdole/vizinho/internal/domain"
	"github.com/mmcdole/vizinho/internal/repository/memory"
)

type fakeRepo struct {
	mu        sync.Mutex
	listings  []domain.Listing
	maxPrice  float64
	maxErr    error
	searchErr error
	citiesErr error
	queries   []domain.Query
}

func (r *fakeRepo) Search(_ context.Context, q domain.Query) ([]domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	var out []domain.Listing
	for _, l := range r.listings {
		if q.CondominiumID == "" || l.CondominiumID == q.CondominiumID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeRepo) MaxObservedPrice(context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxPrice, r.maxErr
}

func (r *fakeRepo) FetchStates(context.Context) ([]domain.LocationOption, error) {
	return []domain.LocationOption{{ID: "sp", Name: "São Paulo"}}, nil
}

func (r *fakeRepo) FetchCitiesByState(_ context.Context, stateID string) ([]domain.LocationOption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.citiesErr != nil {
		return nil, r.citiesErr
	}
	return []domain.LocationOption{{ID: stateID + "-capital", Name: "Capital", ParentID: stateID}}, nil
}

func (r *fakeRepo) FetchCondominiumsByCity(_ context.Context, cityID string) ([]domain.LocationOption, error) {
	return []domain.LocationOption{{ID: "c1", Name: "Residencial Jardins", ParentID: cityID}}, nil
}

func (r *fakeRepo) SuggestCondominium(context.Context, string, string, string) (string, error) {
	return "suggested", nil
}

func (r *fakeRepo) set(fn func(r *fakeRepo)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r)
}

func (r *fakeRepo) lastQuery() domain.Query {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries[len(r.queries)-1]
}

type memPersist struct {
	mu   sync.Mutex
	blob []byte
}

func (m *memPersist) Load() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blob, m.blob != nil
}

func (m *memPersist) Save(blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = append([]byte(nil), blob...)
	return nil
}

func (m *memPersist) Close() error { return nil }

func (m *memPersist) snapshot(t *testing.T) domain.Snapshot {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := codec.DecodeStore(m.blob)
	require.True(t, ok)
	return s
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newTestStore(t *testing.T, repo *fakeRepo, persist *memPersist, userCondo string) *Store {
	t.Helper()
	s := New(Config{
		Repository:        repo,
		FilterStore:       persist,
		UserID:            "u1",
		UserCondominiumID: userCondo,
		Sleep:             noSleep,
	})
	t.Cleanup(s.Close)
	return s
}

func TestInit_Defaults(t *testing.T) {
	repo := &fakeRepo{
		maxPrice: 1234,
		listings: []domain.Listing{{ID: "1", CondominiumID: "c1"}, {ID: "2", CondominiumID: "c2"}},
	}
	persist := &memPersist{}
	s := newTestStore(t, repo, persist, "")

	require.NoError(t, s.Init(context.Background(), nil))
	s.Wait()

	assert.Equal(t, 1300.0, s.MaxPrice())
	assert.Equal(t, domain.DefaultSnapshot(1300), s.Snapshot())
	assert.Equal(t, domain.Query{Status: domain.StatusActive}, repo.lastQuery())

	v := s.Listings()
	assert.Len(t, v.Listings, 2)
	assert.False(t, v.Loading)

	assert.Equal(t, cascade.Loaded, s.Levels().States.State)
	assert.Equal(t, domain.DefaultSnapshot(1300), persist.snapshot(t))
}

func TestInit_LinkOverridesStored(t *testing.T) {
	stored := domain.DefaultSnapshot(2000)
	stored.SearchTerm = "mesa"
	stored.CategoryID = "moveis"
	stored.StateID = "sp"
	stored.CityID = "sp-capital"
	blob, err := codec.EncodeStore(stored)
	require.NoError(t, err)

	repo := &fakeRepo{maxPrice: 2000}
	s := newTestStore(t, repo, &memPersist{blob: blob}, "c1")

	require.NoError(t, s.Init(context.Background(), url.Values{"category": {"alimentos"}}))
	s.Wait()

	snap := s.Snapshot()
	assert.Equal(t, "mesa", snap.SearchTerm)
	assert.Equal(t, "alimentos", snap.CategoryID)
	assert.Equal(t, "c1", snap.UserCondominiumID)

	q := repo.lastQuery()
	assert.Equal(t, "Alimentos", q.Category)
	assert.Equal(t, "mesa", q.Search)

	ls := s.Levels()
	assert.Equal(t, "sp", ls.StateID)
	assert.Equal(t, "sp-capital", ls.CityID)
	assert.Equal(t, cascade.Loaded, ls.Condominiums.State)
}

func TestInit_MaxPriceFallback(t *testing.T) {
	repo := &fakeRepo{maxErr: domain.ErrRepository}
	s := New(Config{Repository: repo, DefaultMaxPrice: 5000, Sleep: noSleep})
	t.Cleanup(s.Close)

	require.NoError(t, s.Init(context.Background(), nil))
	s.Wait()

	assert.Equal(t, 5000.0, s.MaxPrice())
	assert.Equal(t, domain.PriceRange{Min: 0, Max: 5000}, s.Snapshot().PriceRange)
	assert.False(t, repo.lastQuery().PriceFiltered)
}

func TestSelectState_ResetsAndPersists(t *testing.T) {
	repo := &fakeRepo{maxPrice: 2000}
	persist := &memPersist{}

	var mu sync.Mutex
	var links []url.Values
	s := New(Config{
		Repository:  repo,
		FilterStore: persist,
		Sleep:       noSleep,
		OnLink: func(v url.Values) {
			mu.Lock()
			links = append(links, v)
			mu.Unlock()
		},
	})
	t.Cleanup(s.Close)
	require.NoError(t, s.Init(context.Background(), nil))

	require.NoError(t, s.SelectState("sp"))
	require.NoError(t, s.SelectCity("sp-capital"))
	require.NoError(t, s.SelectCondominium("c1"))
	require.NoError(t, s.SelectState("rj"))
	s.Wait()

	snap := s.Snapshot()
	assert.Equal(t, "rj", snap.StateID)
	assert.Empty(t, snap.CityID)
	assert.Empty(t, snap.CondominiumID)
	assert.Equal(t, snap, persist.snapshot(t))

	ls := s.Levels()
	assert.Equal(t, "rj", ls.StateID)
	assert.Equal(t, []domain.LocationOption{{ID: "rj-capital", Name: "Capital", ParentID: "rj"}}, ls.Cities.Options)
	assert.Equal(t, cascade.Idle, ls.Condominiums.State)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, links)
	assert.Equal(t, "c1", links[len(links)-2].Get("condominiumId"))
	assert.Empty(t, links[len(links)-1])
}

func TestCondominiumToggle(t *testing.T) {
	repo := &fakeRepo{
		maxPrice: 2000,
		listings: []domain.Listing{{ID: "1", CondominiumID: "c1"}, {ID: "2", CondominiumID: "c2"}},
	}
	s := newTestStore(t, repo, &memPersist{}, "c1")
	require.NoError(t, s.Init(context.Background(), nil))

	require.NoError(t, s.SelectCondominium("c2"))
	require.NoError(t, s.SetCondominiumFilter(true))
	s.Wait()

	assert.Equal(t, "c1", s.Query().CondominiumID)
	assert.Equal(t, "c1", s.Listings().Query.CondominiumID)
	assert.Equal(t, []domain.Listing{{ID: "1", CondominiumID: "c1"}}, s.Listings().Listings)

	require.NoError(t, s.SetCondominiumFilter(false))
	assert.Empty(t, s.Snapshot().CondominiumID)
}

func TestCondominiumToggleWithoutUserCondominium(t *testing.T) {
	s := newTestStore(t, &fakeRepo{maxPrice: 2000}, &memPersist{}, "")
	require.NoError(t, s.Init(context.Background(), nil))

	err := s.SetCondominiumFilter(true)
	assert.ErrorIs(t, err, domain.ErrNoUserCondominium)
	assert.False(t, s.Snapshot().CondominiumFilter)
}

func TestResetFiltersKeepsUserCondominium(t *testing.T) {
	repo := &fakeRepo{maxPrice: 900}
	s := newTestStore(t, repo, &memPersist{}, "c1")
	require.NoError(t, s.Init(context.Background(), nil))

	require.NoError(t, s.SetSearchTerm("bolo"))
	require.NoError(t, s.SetType("produto"))
	require.NoError(t, s.SetPriceRange(domain.PriceRange{Min: 100, Max: 200}))
	require.NoError(t, s.SetCondominiumFilter(true))
	require.NoError(t, s.ResetFilters())
	s.Wait()

	want := domain.DefaultSnapshot(900)
	want.UserCondominiumID = "c1"
	assert.Equal(t, want, s.Snapshot())
	assert.Equal(t, domain.Query{Status: domain.StatusActive}, s.Listings().Query)
}

func TestRejectedChangeLeavesStateUntouched(t *testing.T) {
	s := newTestStore(t, &fakeRepo{maxPrice: 2000}, &memPersist{}, "")
	require.NoError(t, s.Init(context.Background(), nil))
	require.NoError(t, s.SetCategory("moveis"))

	assert.ErrorIs(t, s.SetCategory("carros"), domain.ErrValidation)
	assert.ErrorIs(t, s.SetPriceRange(domain.PriceRange{Min: 5, Max: 1}), domain.ErrValidation)
	assert.Equal(t, "moveis", s.Snapshot().CategoryID)
}

func TestPriceRangeClampedToMaxPrice(t *testing.T) {
	repo := &fakeRepo{maxPrice: 500}
	s := newTestStore(t, repo, &memPersist{}, "")
	require.NoError(t, s.Init(context.Background(), nil))

	require.NoError(t, s.SetPriceRange(domain.PriceRange{Min: 100, Max: 9000}))
	s.Wait()

	assert.Equal(t, domain.PriceRange{Min: 100, Max: 500}, s.Snapshot().PriceRange)
	q := s.Listings().Query
	assert.True(t, q.PriceFiltered)
	assert.Equal(t, 100.0, q.MinPrice)
}

func TestListingFailureAndManualRetry(t *testing.T) {
	repo := &fakeRepo{maxPrice: 2000, searchErr: domain.ErrRepository}
	s := newTestStore(t, repo, &memPersist{}, "")
	require.NoError(t, s.Init(context.Background(), nil))
	s.Wait()

	v := s.Listings()
	require.True(t, v.HasError)
	assert.ErrorIs(t, v.Err, domain.ErrRepository)
	assert.NotEmpty(t, v.Notice)

	repo.set(func(r *fakeRepo) {
		r.searchErr = nil
		r.listings = []domain.Listing{{ID: "1"}}
	})
	require.NoError(t, s.RetryLoadListings(context.Background()))

	v = s.Listings()
	assert.False(t, v.HasError)
	assert.Len(t, v.Listings, 1)
}

func TestCitiesFailureFallsBack(t *testing.T) {
	repo := &fakeRepo{maxPrice: 2000, citiesErr: domain.ErrRepository}
	s := newTestStore(t, repo, &memPersist{}, "")
	require.NoError(t, s.Init(context.Background(), nil))

	require.NoError(t, s.SelectState("sp"))
	s.Wait()

	cities := s.Levels().Cities
	assert.Equal(t, cascade.ErrorWithFallback, cities.State)
	assert.NotEmpty(t, cities.Options)
	assert.NotEmpty(t, cities.Err)
}

func TestRefreshMaxPrice(t *testing.T) {
	repo := &fakeRepo{maxPrice: 1000}
	s := newTestStore(t, repo, &memPersist{}, "")
	require.NoError(t, s.Init(context.Background(), nil))

	repo.set(func(r *fakeRepo) { r.maxPrice = 1750 })
	require.NoError(t, s.RefreshMaxPrice(context.Background()))
	s.Wait()

	assert.Equal(t, 1800.0, s.MaxPrice())
	assert.Equal(t, domain.PriceRange{Min: 0, Max: 1800}, s.Snapshot().PriceRange)
	assert.False(t, s.Listings().Query.PriceFiltered)
}

func TestSuggestCondominiumUsesSelectedCity(t *testing.T) {
	s := newTestStore(t, &fakeRepo{maxPrice: 2000}, &memPersist{}, "")
	require.NoError(t, s.Init(context.Background(), nil))

	_, err := s.SuggestCondominium(context.Background(), "Vila Nova", "")
	assert.ErrorIs(t, err, domain.ErrValidation, "no city selected")

	require.NoError(t, s.SelectState("sp"))
	require.NoError(t, s.SelectCity("sp-capital"))
	s.Wait()

	id, err := s.SuggestCondominium(context.Background(), "Vila Nova", "Rua B, 2")
	require.NoError(t, err)
	assert.Equal(t, "suggested", id)

	var names []string
	for _, o := range s.Levels().Condominiums.Options {
		names = append(names, o.Name)
	}
	assert.Contains(t, names, "Vila Nova")
}

func TestSuggestedCondominiumSurvivesReload(t *testing.T) {
	s := New(Config{Repository: memory.New(), UserID: "u1", Sleep: noSleep})
	t.Cleanup(s.Close)
	require.NoError(t, s.Init(context.Background(), nil))
	s.Wait()

	require.NoError(t, s.SelectState("sp"))
	require.NoError(t, s.SelectCity("sp-campinas"))
	s.Wait()

	id, err := s.SuggestCondominium(context.Background(), "Vila Nova", "")
	require.NoError(t, err)

	require.NoError(t, s.SelectCity("sp-santos"))
	s.Wait()
	require.NoError(t, s.SelectCity("sp-campinas"))
	s.Wait()

	var found *domain.LocationOption
	for _, o := range s.Levels().Condominiums.Options {
		if o.ID == id {
			found = &o
		}
	}
	require.NotNil(t, found, "submitter still sees the pending condominium")
	assert.True(t, found.Pending)
	assert.Equal(t, "u1", found.SuggestedBy)
}

func TestLinkAndClose(t *testing.T) {
	s := New(Config{Repository: &fakeRepo{maxPrice: 2000}, Sleep: noSleep})
	require.NoError(t, s.Init(context.Background(), url.Values{"search": {"bike"}}))
	assert.Equal(t, "bike", s.Link().Get("search"))

	s.Close()
	assert.ErrorIs(t, s.SetSearchTerm("x"), ErrClosed)
	assert.ErrorIs(t, s.Init(context.Background(), nil), ErrClosed)
}
