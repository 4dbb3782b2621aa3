package codec

import (
	"encoding/json"
	"fmt"

	"github.com/mmcdole/vizinho/internal/domain"
)

const blobVersion = 1

// storedFilters is the persisted form of a snapshot. UserCondominiumID is
// session-sourced and deliberately absent.
type storedFilters struct {
	Version           int     `json:"v"`
	SearchTerm        string  `json:"search,omitempty"`
	CategoryID        string  `json:"category,omitempty"`
	TypeID            string  `json:"type,omitempty"`
	StatusID          string  `json:"status,omitempty"`
	ShowSoldItems     bool    `json:"show_sold,omitempty"`
	MinPrice          float64 `json:"price_min"`
	MaxPrice          float64 `json:"price_max"`
	CondominiumFilter bool    `json:"only_my_condominium,omitempty"`
	StateID           string  `json:"state_id,omitempty"`
	CityID            string  `json:"city_id,omitempty"`
	CondominiumID     string  `json:"condominium_id,omitempty"`
}

// EncodeStore serializes s for the filter store.
func EncodeStore(s domain.Snapshot) ([]byte, error) {
	blob, err := json.Marshal(storedFilters{
		Version:           blobVersion,
		SearchTerm:        s.SearchTerm,
		CategoryID:        s.CategoryID,
		TypeID:            s.TypeID,
		StatusID:          s.StatusID,
		ShowSoldItems:     s.ShowSoldItems,
		MinPrice:          s.PriceRange.Min,
		MaxPrice:          s.PriceRange.Max,
		CondominiumFilter: s.CondominiumFilter,
		StateID:           s.StateID,
		CityID:            s.CityID,
		CondominiumID:     s.CondominiumID,
	})
	if err != nil {
		return nil, fmt.Errorf("encode filters: %w", err)
	}
	return blob, nil
}

// DecodeStore parses a blob written by EncodeStore. Malformed data or an
// unknown version reports false; unknown enum ids decode as unconstrained.
func DecodeStore(blob []byte) (domain.Snapshot, bool) {
	if len(blob) == 0 {
		return domain.Snapshot{}, false
	}

	var sf storedFilters
	if err := json.Unmarshal(blob, &sf); err != nil || sf.Version != blobVersion {
		return domain.Snapshot{}, false
	}

	s := domain.Snapshot{
		SearchTerm:        sf.SearchTerm,
		ShowSoldItems:     sf.ShowSoldItems,
		PriceRange:        domain.PriceRange{Min: sf.MinPrice, Max: sf.MaxPrice},
		CondominiumFilter: sf.CondominiumFilter,
		StateID:           sf.StateID,
		CityID:            sf.CityID,
		CondominiumID:     sf.CondominiumID,
	}
	if _, ok := domain.ParseCategory(sf.CategoryID); ok {
		s.CategoryID = sf.CategoryID
	}
	if _, ok := domain.ParseListingType(sf.TypeID); ok {
		s.TypeID = sf.TypeID
	}
	if _, ok := domain.ParseStatusLabel(sf.StatusID); ok {
		s.StatusID = sf.StatusID
	}
	return s, true
}
