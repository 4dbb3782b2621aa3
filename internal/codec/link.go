package codec

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/mmcdole/vizinho/internal/domain"
)

// Link parameter names
const (
	ParamSearch      = "search"
	ParamCategory    = "category"
	ParamCondominium = "condominiumId"
)

// URLFilters is the shareable subset of a snapshot read from a link. A nil
// field was absent from the link; a non-nil empty field was present but
// malformed or explicitly empty, which means "no filter".
type URLFilters struct {
	Search        *string
	Category      *string
	CondominiumID *string
}

// Empty reports whether the link carried none of the shareable parameters.
func (f URLFilters) Empty() bool {
	return f.Search == nil && f.Category == nil && f.CondominiumID == nil
}

// EncodeURL renders the shareable parameters of s. Unconstrained fields are
// omitted.
func EncodeURL(s domain.Snapshot) url.Values {
	v := url.Values{}
	if term := strings.TrimSpace(s.SearchTerm); term != "" {
		v.Set(ParamSearch, term)
	}
	if c, ok := domain.ParseCategory(s.CategoryID); ok {
		v.Set(ParamCategory, c.ID())
	}
	if s.CondominiumID != "" {
		v.Set(ParamCondominium, s.CondominiumID)
	}
	return v
}

// DecodeURL reads the shareable parameters from v. It never fails.
func DecodeURL(v url.Values) URLFilters {
	var f URLFilters

	if raw, ok := first(v, ParamSearch); ok {
		term := strings.TrimSpace(raw)
		f.Search = &term
	}

	if raw, ok := first(v, ParamCategory); ok {
		id := ""
		if c, known := domain.ParseCategory(strings.ToLower(strings.TrimSpace(raw))); known {
			id = c.ID()
		}
		f.Category = &id
	}

	if raw, ok := first(v, ParamCondominium); ok {
		id := strings.TrimSpace(raw)
		if !validID(id) {
			id = ""
		}
		f.CondominiumID = &id
	}

	return f
}

// ParseLink accepts a bare query string, with or without a leading "?", or a
// full URL. Malformed pairs are skipped.
func ParseLink(raw string) url.Values {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}
	v, _ := url.ParseQuery(raw)
	return v
}

func first(v url.Values, key string) (string, bool) {
	vals, ok := v[key]
	if !ok {
		return "", false
	}
	if len(vals) == 0 {
		return "", true
	}
	return vals[0], true
}

func validID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return false
		}
	}
	return true
}
