// Package memory is an in-process domain.ListingRepository seeded with
// fixture data. It backs the dev server and runs without a network.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/vizinho/internal/domain"
)

// Repository implements domain.ListingRepository
type Repository struct {
	mu           sync.RWMutex
	listings     []domain.Listing
	states       []domain.LocationOption
	cities       []domain.LocationOption
	condominiums []domain.LocationOption
}

// New returns a repository seeded with the fixture data.
func New() *Repository {
	return &Repository{
		listings:     fixtureListings(),
		states:       append([]domain.LocationOption(nil), fixtureStates...),
		cities:       append([]domain.LocationOption(nil), fixtureCities...),
		condominiums: append([]domain.LocationOption(nil), fixtureCondominiums...),
	}
}

// NewWith returns an empty repository holding only the given data.
func NewWith(listings []domain.Listing, states, cities, condominiums []domain.LocationOption) *Repository {
	return &Repository{
		listings:     append([]domain.Listing(nil), listings...),
		states:       append([]domain.LocationOption(nil), states...),
		cities:       append([]domain.LocationOption(nil), cities...),
		condominiums: append([]domain.LocationOption(nil), condominiums...),
	}
}

// Search returns listings matching q, newest first.
func (r *Repository) Search(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(q.Search))
	var out []domain.Listing
	for _, l := range r.listings {
		if term != "" && !strings.Contains(strings.ToLower(l.Title+" "+l.Description), term) {
			continue
		}
		if q.Category != "" && l.Category != q.Category {
			continue
		}
		if q.Type != "" && l.Type != q.Type {
			continue
		}
		if q.Status != "" && l.Status != q.Status {
			continue
		}
		if q.PriceFiltered && (l.Price < q.MinPrice || l.Price > q.MaxPrice) {
			continue
		}
		if !r.inLocation(l.CondominiumID, q) {
			continue
		}
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// inLocation reports whether condominiumID lies within the query's location.
// Caller holds r.mu.
func (r *Repository) inLocation(condominiumID string, q domain.Query) bool {
	if q.CondominiumID != "" {
		return condominiumID == q.CondominiumID
	}
	if q.CityID == "" && q.StateID == "" {
		return true
	}
	cityID := parentOf(r.condominiums, condominiumID)
	if q.CityID != "" {
		return cityID == q.CityID
	}
	return parentOf(r.cities, cityID) == q.StateID
}

func parentOf(opts []domain.LocationOption, id string) string {
	for _, o := range opts {
		if o.ID == id {
			return o.ParentID
		}
	}
	return ""
}

func contains(opts []domain.LocationOption, id string) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}

// MaxObservedPrice returns the highest price among active listings.
func (r *Repository) MaxObservedPrice(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var maxPrice float64
	for _, l := range r.listings {
		if l.Status == domain.StatusActive && l.Price > maxPrice {
			maxPrice = l.Price
		}
	}
	return maxPrice, nil
}

func (r *Repository) FetchStates(ctx context.Context) ([]domain.LocationOption, error) {
	return r.children(ctx, r.states, "")
}

func (r *Repository) FetchCitiesByState(ctx context.Context, stateID string) ([]domain.LocationOption, error) {
	return r.children(ctx, r.cities, stateID)
}

func (r *Repository) FetchCondominiumsByCity(ctx context.Context, cityID string) ([]domain.LocationOption, error) {
	return r.children(ctx, r.condominiums, cityID)
}

func (r *Repository) children(ctx context.Context, opts []domain.LocationOption, parentID string) ([]domain.LocationOption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.LocationOption{}
	for _, o := range opts {
		if o.ParentID == parentID {
			out = append(out, o)
		}
	}
	return out, nil
}

// SuggestCondominium records a pending condominium suggested by the resident
// attached to ctx.
func (r *Repository) SuggestCondominium(ctx context.Context, cityID, name, address string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name = strings.Join(strings.Fields(name), " ")
	if name == "" || cityID == "" {
		return "", fmt.Errorf("suggest condominium: name and city are required: %w", domain.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !contains(r.cities, cityID) {
		return "", fmt.Errorf("city %q: %w", cityID, domain.ErrNotFound)
	}
	for _, o := range r.condominiums {
		if o.ParentID == cityID && fuzzy.MatchNormalizedFold(o.Name, name) && fuzzy.MatchNormalizedFold(name, o.Name) {
			return "", fmt.Errorf("suggest condominium %q: %w", name, domain.ErrDuplicateCondominium)
		}
	}

	id := uuid.NewString()
	r.condominiums = append(r.condominiums, domain.LocationOption{
		ID:          id,
		Name:        name,
		ParentID:    cityID,
		Pending:     true,
		SuggestedBy: domain.UserIDFromContext(ctx),
	})
	return id, nil
}

// Approve marks a pending condominium as approved.
func (r *Repository) Approve(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.condominiums {
		if r.condominiums[i].ID == id {
			r.condominiums[i].Pending = false
			return nil
		}
	}
	return fmt.Errorf("condominium %q: %w", id, domain.ErrNotFound)
}
