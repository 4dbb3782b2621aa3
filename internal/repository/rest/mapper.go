package rest

import (
	"net/url"
	"strconv"

	"github.com/mmcdole/vizinho/internal/domain"
)

// Query parameter names of GET /api/listings
const (
	paramSearch        = "search"
	paramCategory      = "category"
	paramType          = "type"
	paramStatus        = "status"
	paramPriceMin      = "price_min"
	paramPriceMax      = "price_max"
	paramStateID       = "state_id"
	paramCityID        = "city_id"
	paramCondominiumID = "condominium_id"
)

// EncodeQuery renders q as listing query parameters. Zero fields are omitted.
func EncodeQuery(q domain.Query) url.Values {
	v := url.Values{}
	setIf := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	setIf(paramSearch, q.Search)
	setIf(paramCategory, q.Category)
	setIf(paramType, q.Type)
	setIf(paramStatus, string(q.Status))
	if q.PriceFiltered {
		v.Set(paramPriceMin, strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
		v.Set(paramPriceMax, strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	setIf(paramStateID, q.StateID)
	setIf(paramCityID, q.CityID)
	setIf(paramCondominiumID, q.CondominiumID)
	return v
}

// DecodeQuery parses listing query parameters. Unparseable prices are
// ignored.
func DecodeQuery(v url.Values) domain.Query {
	q := domain.Query{
		Search:        v.Get(paramSearch),
		Category:      v.Get(paramCategory),
		Type:          v.Get(paramType),
		Status:        domain.Status(v.Get(paramStatus)),
		StateID:       v.Get(paramStateID),
		CityID:        v.Get(paramCityID),
		CondominiumID: v.Get(paramCondominiumID),
	}
	minPrice, errMin := strconv.ParseFloat(v.Get(paramPriceMin), 64)
	maxPrice, errMax := strconv.ParseFloat(v.Get(paramPriceMax), 64)
	if errMin == nil && errMax == nil {
		q.PriceFiltered = true
		q.MinPrice = minPrice
		q.MaxPrice = maxPrice
	}
	return q
}

// MapListings converts wire listings to domain listings
func MapListings(in []Listing) []domain.Listing {
	out := make([]domain.Listing, 0, len(in))
	for _, l := range in {
		out = append(out, domain.Listing{
			ID:            l.ID,
			Title:         l.Title,
			Description:   l.Description,
			Price:         l.Price,
			Category:      l.Category,
			Type:          l.Type,
			Status:        domain.Status(l.Status),
			CondominiumID: l.CondominiumID,
			SellerID:      l.SellerID,
			CreatedAt:     l.CreatedAt,
		})
	}
	return out
}

// FromListings converts domain listings to the wire form
func FromListings(in []domain.Listing) []Listing {
	out := make([]Listing, 0, len(in))
	for _, l := range in {
		out = append(out, Listing{
			ID:            l.ID,
			Title:         l.Title,
			Description:   l.Description,
			Price:         l.Price,
			Category:      l.Category,
			Type:          l.Type,
			Status:        string(l.Status),
			CondominiumID: l.CondominiumID,
			SellerID:      l.SellerID,
			CreatedAt:     l.CreatedAt,
		})
	}
	return out
}

// MapLocations converts wire locations to domain options
func MapLocations(in []Location) []domain.LocationOption {
	out := make([]domain.LocationOption, 0, len(in))
	for _, l := range in {
		out = append(out, domain.LocationOption{
			ID:          l.ID,
			Name:        l.Name,
			ParentID:    l.ParentID,
			Pending:     l.Approved != nil && !*l.Approved,
			SuggestedBy: l.SuggestedBy,
		})
	}
	return out
}

// FromLocations converts domain options to the wire form
func FromLocations(in []domain.LocationOption) []Location {
	out := make([]Location, 0, len(in))
	for _, o := range in {
		l := Location{ID: o.ID, Name: o.Name, ParentID: o.ParentID, SuggestedBy: o.SuggestedBy}
		if o.Pending {
			approved := false
			l.Approved = &approved
		}
		out = append(out, l)
	}
	return out
}
