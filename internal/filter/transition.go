package filter

import (
	"fmt"
	"math"
	"strings"

	"github.com/mmcdole/vizinho/internal/domain"
)

// Transitions are pure: they take the current snapshot and return the next
// one. The store normalizes the result against the live max price.

func setSearchTerm(s domain.Snapshot, term string) domain.Snapshot {
	s.SearchTerm = strings.TrimSpace(term)
	return s
}

func setCategory(s domain.Snapshot, id string) (domain.Snapshot, error) {
	if id != "" {
		if _, ok := domain.ParseCategory(id); !ok {
			return s, fmt.Errorf("category %q: %w", id, domain.ErrValidation)
		}
	}
	s.CategoryID = id
	return s, nil
}

func setType(s domain.Snapshot, id string) (domain.Snapshot, error) {
	if id != "" {
		if _, ok := domain.ParseListingType(id); !ok {
			return s, fmt.Errorf("type %q: %w", id, domain.ErrValidation)
		}
	}
	s.TypeID = id
	return s, nil
}

func setStatus(s domain.Snapshot, label string) (domain.Snapshot, error) {
	if label != "" {
		if _, ok := domain.ParseStatusLabel(label); !ok {
			return s, fmt.Errorf("status %q: %w", label, domain.ErrValidation)
		}
	}
	s.StatusID = label
	return s, nil
}

func setShowSoldItems(s domain.Snapshot, show bool) domain.Snapshot {
	s.ShowSoldItems = show
	return s
}

func setPriceRange(s domain.Snapshot, r domain.PriceRange) (domain.Snapshot, error) {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || r.Min < 0 || r.Min > r.Max {
		return s, fmt.Errorf("price range [%v, %v]: %w", r.Min, r.Max, domain.ErrValidation)
	}
	s.PriceRange = r
	return s, nil
}

// selectState resets the dependent city and condominium. A manual location
// pick turns "only my condominium" off.
func selectState(s domain.Snapshot, id string) domain.Snapshot {
	s.StateID = id
	s.CityID = ""
	s.CondominiumID = ""
	s.CondominiumFilter = false
	return s
}

func selectCity(s domain.Snapshot, id string) domain.Snapshot {
	s.CityID = id
	s.CondominiumID = ""
	s.CondominiumFilter = false
	return s
}

func selectCondominium(s domain.Snapshot, id string) domain.Snapshot {
	s.CondominiumID = id
	s.CondominiumFilter = false
	return s
}

// setCondominiumFilter toggles "only my condominium". Disabling clears the
// condominium only while it is still the user's own.
func setCondominiumFilter(s domain.Snapshot, on bool) (domain.Snapshot, error) {
	if on {
		if s.UserCondominiumID == "" {
			return s, fmt.Errorf("only my condominium: %w", domain.ErrNoUserCondominium)
		}
		s.CondominiumFilter = true
		s.CondominiumID = s.UserCondominiumID
		return s, nil
	}
	if s.CondominiumFilter && s.CondominiumID == s.UserCondominiumID {
		s.CondominiumID = ""
	}
	s.CondominiumFilter = false
	return s, nil
}

func setUserCondominium(s domain.Snapshot, id string) domain.Snapshot {
	s.UserCondominiumID = id
	if s.CondominiumFilter {
		if id == "" {
			s.CondominiumFilter = false
			s.CondominiumID = ""
		} else {
			s.CondominiumID = id
		}
	}
	return s
}

// resetFilters restores defaults. The upper price bound follows the live max
// price and the user condominium is kept.
func resetFilters(s domain.Snapshot, maxPrice float64) domain.Snapshot {
	next := domain.DefaultSnapshot(maxPrice)
	next.UserCondominiumID = s.UserCondominiumID
	return next
}

// applyMaxPrice moves an unconstrained upper bound along with a new max price.
func applyMaxPrice(s domain.Snapshot, oldMax, newMax float64) domain.Snapshot {
	if s.PriceRange.Max == oldMax {
		s.PriceRange.Max = newMax
	}
	return s
}
