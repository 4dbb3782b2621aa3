package domain

// LocationOption is one selectable entry of the state → city → condominium
// hierarchy.
type LocationOption struct {
	ID       string
	Name     string
	ParentID string // State for cities, city for condominiums

	// Condominium only: suggested by a resident and awaiting moderation.
	Pending     bool
	SuggestedBy string
}

// VisibleTo reports whether the option may be listed for userID. Pending
// condominiums are only shown to the resident who suggested them.
func (o LocationOption) VisibleTo(userID string) bool {
	if !o.Pending {
		return true
	}
	return userID != "" && o.SuggestedBy == userID
}
