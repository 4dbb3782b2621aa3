package codec

import "github.com/mmcdole/vizinho/internal/domain"

// Merge builds the initial snapshot with per-field precedence
// link > stored > defaults. The user condominium always comes from defaults.
// A link condominium other than the user's turns the "only my condominium"
// toggle off.
func Merge(link URLFilters, stored domain.Snapshot, hasStored bool, defaults domain.Snapshot) domain.Snapshot {
	s := defaults
	if hasStored {
		s = stored
		s.UserCondominiumID = defaults.UserCondominiumID
	}

	if link.Search != nil {
		s.SearchTerm = *link.Search
	}
	if link.Category != nil {
		s.CategoryID = *link.Category
	}
	if link.CondominiumID != nil {
		s.CondominiumID = *link.CondominiumID
		if s.CondominiumID != s.UserCondominiumID {
			s.CondominiumFilter = false
		}
	}
	return s
}
