package cascade

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/vizinho/internal/domain"
)

// nameIndex implements fuzzy.Source over lowercase option names.
type nameIndex []string

func (n nameIndex) String(i int) string { return n[i] }
func (n nameIndex) Len() int            { return len(n) }

// Match filters a level's options by fuzzy name match, best first. An empty
// query returns every option.
func (c *Cascade) Match(id LevelID, query string) []domain.LocationOption {
	lvl := c.Levels().Level(id)
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return lvl.Options
	}

	idx := make(nameIndex, len(lvl.Options))
	for i, o := range lvl.Options {
		idx[i] = strings.ToLower(o.Name)
	}

	matches := fuzzy.FindFrom(query, idx)
	out := make([]domain.LocationOption, len(matches))
	for i, m := range matches {
		out[i] = lvl.Options[m.Index]
	}
	return out
}
