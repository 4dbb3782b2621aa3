package domain

import (
	"context"
)

// ListingRepository provides access to the remote marketplace store.
// An empty result is a success. Errors wrap ErrRepository (transient) or
// ErrForbidden (fatal).
type ListingRepository interface {
	// Search returns the listings matching q
	Search(ctx context.Context, q Query) ([]Listing, error)

	// MaxObservedPrice returns the highest price among active listings
	MaxObservedPrice(ctx context.Context) (float64, error)

	// FetchStates returns every state
	FetchStates(ctx context.Context) ([]LocationOption, error)

	// FetchCitiesByState returns the cities of a state
	FetchCitiesByState(ctx context.Context, stateID string) ([]LocationOption, error)

	// FetchCondominiumsByCity returns the condominiums of a city, including
	// pending suggestions
	FetchCondominiumsByCity(ctx context.Context, cityID string) ([]LocationOption, error)

	// SuggestCondominium records a pending condominium and returns its id
	SuggestCondominium(ctx context.Context, cityID, name, address string) (string, error)
}
