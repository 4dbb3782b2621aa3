package cascade

import "github.com/mmcdole/vizinho/internal/domain"

// Fallback holds the built-in option lists shown when a fetch fails.
type Fallback struct {
	States       []domain.LocationOption
	Cities       []domain.LocationOption
	Condominiums []domain.LocationOption
}

// Options returns the fallback list for a level, narrowed to parentID when
// any entry belongs to it.
func (f *Fallback) Options(id LevelID, parentID string) []domain.LocationOption {
	switch id {
	case States:
		return f.States
	case Cities:
		return childrenOrAll(f.Cities, parentID)
	default:
		return childrenOrAll(f.Condominiums, parentID)
	}
}

func childrenOrAll(opts []domain.LocationOption, parentID string) []domain.LocationOption {
	var out []domain.LocationOption
	for _, o := range opts {
		if o.ParentID == parentID {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return opts
	}
	return out
}

// DefaultFallback returns the built-in lists.
func DefaultFallback() *Fallback {
	return &Fallback{
		States: []domain.LocationOption{
			{ID: "sp", Name: "São Paulo"},
			{ID: "rj", Name: "Rio de Janeiro"},
			{ID: "mg", Name: "Minas Gerais"},
			{ID: "pr", Name: "Paraná"},
			{ID: "rs", Name: "Rio Grande do Sul"},
			{ID: "ba", Name: "Bahia"},
		},
		Cities: []domain.LocationOption{
			{ID: "sp-sao-paulo", Name: "São Paulo", ParentID: "sp"},
			{ID: "sp-campinas", Name: "Campinas", ParentID: "sp"},
			{ID: "sp-santos", Name: "Santos", ParentID: "sp"},
			{ID: "rj-rio", Name: "Rio de Janeiro", ParentID: "rj"},
			{ID: "rj-niteroi", Name: "Niterói", ParentID: "rj"},
			{ID: "mg-bh", Name: "Belo Horizonte", ParentID: "mg"},
			{ID: "pr-curitiba", Name: "Curitiba", ParentID: "pr"},
			{ID: "rs-porto-alegre", Name: "Porto Alegre", ParentID: "rs"},
			{ID: "ba-salvador", Name: "Salvador", ParentID: "ba"},
		},
		Condominiums: []domain.LocationOption{
			{ID: "cond-jardins", Name: "Residencial Jardins", ParentID: "sp-sao-paulo"},
			{ID: "cond-morumbi", Name: "Condomínio Parque Morumbi", ParentID: "sp-sao-paulo"},
			{ID: "cond-taquaral", Name: "Residencial Taquaral", ParentID: "sp-campinas"},
			{ID: "cond-barra", Name: "Condomínio Barra Bonita", ParentID: "rj-rio"},
			{ID: "cond-pampulha", Name: "Residencial Pampulha", ParentID: "mg-bh"},
		},
	}
}
