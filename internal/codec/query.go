// Package codec maps filter snapshots to repository queries, shareable links
// and the persisted filter blob. Every function is pure.
package codec

import (
	"strings"

	"github.com/mmcdole/vizinho/internal/domain"
)

// ToQuery derives the repository query for s. Fields at their unconstrained
// value are left zero. Unknown category, type or status ids are dropped.
func ToQuery(s domain.Snapshot, maxPrice float64) domain.Query {
	var q domain.Query

	q.Search = strings.TrimSpace(s.SearchTerm)

	if c, ok := domain.ParseCategory(s.CategoryID); ok {
		q.Category = c.Value()
	}
	if t, ok := domain.ParseListingType(s.TypeID); ok {
		q.Type = t.Value()
	}

	if st, ok := domain.ParseStatusLabel(s.StatusID); ok {
		q.Status = st
	} else if !s.ShowSoldItems {
		q.Status = domain.StatusActive
	}

	if s.PriceRange.Min != 0 || s.PriceRange.Max != maxPrice {
		q.PriceFiltered = true
		q.MinPrice = s.PriceRange.Min
		q.MaxPrice = s.PriceRange.Max
	}

	q.StateID = s.StateID
	q.CityID = s.CityID
	q.CondominiumID = s.CondominiumID
	if s.CondominiumFilter && s.UserCondominiumID != "" {
		q.CondominiumID = s.UserCondominiumID
	}

	return q
}
