package domain

import "math"

// DefaultMaxPrice is the upper price bound used until the repository reports
// the highest listed price.
const DefaultMaxPrice = 2000

// PriceRange is an inclusive [Min, Max] price interval.
type PriceRange struct {
	Min float64
	Max float64
}

// Snapshot is the complete, serializable set of filter values driving a
// search. Empty strings mean "unconstrained".
type Snapshot struct {
	SearchTerm    string
	CategoryID    string // UI category id, see ParseCategory
	TypeID        string // UI type id, see ParseListingType
	StatusID      string // UI status label, see ParseStatusLabel
	ShowSoldItems bool
	PriceRange    PriceRange

	// CondominiumFilter is the "only my condominium" toggle. While it is on,
	// CondominiumID equals UserCondominiumID.
	CondominiumFilter bool

	StateID           string
	CityID            string
	CondominiumID     string
	UserCondominiumID string // Signed-in resident's condominium, never persisted
}

// DefaultSnapshot returns the unfiltered snapshot for the given price bound.
func DefaultSnapshot(maxPrice float64) Snapshot {
	return Snapshot{PriceRange: PriceRange{Min: 0, Max: maxPrice}}
}

// Normalize enforces the snapshot invariants: the price range lies within
// [0, maxPrice] with Min <= Max, and the condominium toggle implies the
// condominium is the user's own.
func Normalize(s Snapshot, maxPrice float64) Snapshot {
	lo, hi := s.PriceRange.Min, s.PriceRange.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	s.PriceRange = PriceRange{Min: clamp(lo, 0, maxPrice), Max: clamp(hi, 0, maxPrice)}

	if s.CondominiumFilter {
		if s.UserCondominiumID == "" {
			s.CondominiumFilter = false
		} else {
			s.CondominiumID = s.UserCondominiumID
		}
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RoundUpToHundred rounds a price up to the next multiple of 100. Non-positive
// prices yield 0.
func RoundUpToHundred(price float64) float64 {
	if price <= 0 || math.IsNaN(price) {
		return 0
	}
	return math.Ceil(price/100) * 100
}

// Query is the repository query derived from a Snapshot. Zero fields are
// unconstrained. Query is comparable; two queries are equal iff they select
// the same listings.
type Query struct {
	Search        string
	Category      string // Repository category value
	Type          string // Repository type value
	Status        Status
	PriceFiltered bool
	MinPrice      float64
	MaxPrice      float64
	StateID       string
	CityID        string
	CondominiumID string
}
