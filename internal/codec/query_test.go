package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmcdole/vizinho/internal/domain"
)

func TestToQuery_DefaultsAreUnconstrained(t *testing.T) {
	q := ToQuery(domain.DefaultSnapshot(2000), 2000)

	assert.Equal(t, domain.Query{Status: domain.StatusActive}, q)
	assert.False(t, q.PriceFiltered)
	assert.Empty(t, q.Category)
}

func TestToQuery(t *testing.T) {
	base := domain.DefaultSnapshot(2000)

	tests := []struct {
		name   string
		mutate func(*domain.Snapshot)
		want   domain.Query
	}{
		{
			name:   "category id maps to repository value",
			mutate: func(s *domain.Snapshot) { s.CategoryID = "alimentos" },
			want:   domain.Query{Category: "Alimentos", Status: domain.StatusActive},
		},
		{
			name:   "unknown category is dropped",
			mutate: func(s *domain.Snapshot) { s.CategoryID = "carros" },
			want:   domain.Query{Status: domain.StatusActive},
		},
		{
			name:   "type maps to repository value",
			mutate: func(s *domain.Snapshot) { s.TypeID = "servico" },
			want:   domain.Query{Type: "Serviço", Status: domain.StatusActive},
		},
		{
			name:   "showing sold items lifts the implicit status",
			mutate: func(s *domain.Snapshot) { s.ShowSoldItems = true },
			want:   domain.Query{},
		},
		{
			name:   "explicit status wins over implicit active",
			mutate: func(s *domain.Snapshot) { s.StatusID = "sold" },
			want:   domain.Query{Status: domain.StatusSold},
		},
		{
			name:   "narrowed price range is included",
			mutate: func(s *domain.Snapshot) { s.PriceRange = domain.PriceRange{Min: 50, Max: 2000} },
			want:   domain.Query{Status: domain.StatusActive, PriceFiltered: true, MinPrice: 50, MaxPrice: 2000},
		},
		{
			name:   "search is trimmed",
			mutate: func(s *domain.Snapshot) { s.SearchTerm = "  bolo  " },
			want:   domain.Query{Search: "bolo", Status: domain.StatusActive},
		},
		{
			name: "toggle resolves to user condominium",
			mutate: func(s *domain.Snapshot) {
				s.CondominiumID = "c9"
				s.CondominiumFilter = true
				s.UserCondominiumID = "c1"
			},
			want: domain.Query{Status: domain.StatusActive, CondominiumID: "c1"},
		},
		{
			name: "location passes through",
			mutate: func(s *domain.Snapshot) {
				s.StateID, s.CityID, s.CondominiumID = "sp", "sp-capital", "c2"
			},
			want: domain.Query{Status: domain.StatusActive, StateID: "sp", CityID: "sp-capital", CondominiumID: "c2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			assert.Equal(t, tt.want, ToQuery(s, 2000))
		})
	}
}

func TestToQuery_EqualSnapshotsGiveEqualQueries(t *testing.T) {
	a := domain.DefaultSnapshot(1500)
	a.CategoryID = "moveis"
	b := a
	b.UserCondominiumID = "c1" // not effective without the toggle

	assert.True(t, ToQuery(a, 1500) == ToQuery(b, 1500))
}
