package cascade

import (
	"context"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/vizinho/internal/domain"
)

// SuggestCondominium submits a new condominium for moderation. Input is
// validated before any network call: the name and city are required and the
// name must not match a condominium already listed for the city, ignoring
// case and accents. The pending option is added to the condominium level when cityID
// is the selected city.
func (c *Cascade) SuggestCondominium(ctx context.Context, cityID, name, address string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	address = strings.TrimSpace(address)
	if cityID == "" {
		return "", fmt.Errorf("suggest condominium: city is required: %w", domain.ErrValidation)
	}
	if name == "" {
		return "", fmt.Errorf("suggest condominium: name is required: %w", domain.ErrValidation)
	}

	for _, o := range c.knownCondominiums(cityID) {
		if sameName(o.Name, name) {
			return "", fmt.Errorf("suggest condominium %q: %w", name, domain.ErrDuplicateCondominium)
		}
	}

	if c.userID != "" {
		ctx = domain.ContextWithUserID(ctx, c.userID)
	}
	id, err := c.src.SuggestCondominium(ctx, cityID, name, address)
	if err != nil {
		return "", fmt.Errorf("suggest condominium: %w", err)
	}
	c.logger.Info("condominium suggested", "id", id, "city", cityID)

	c.mu.Lock()
	added := false
	if !c.closed && c.cityID == cityID && c.levels[Condominiums].State != Loading {
		lvl := copyLevel(c.levels[Condominiums])
		lvl.Options = append(lvl.Options, domain.LocationOption{
			ID:          id,
			Name:        name,
			ParentID:    cityID,
			Pending:     true,
			SuggestedBy: c.userID,
		})
		c.levels[Condominiums] = lvl
		added = true
	}
	c.mu.Unlock()

	if added {
		c.notify()
	}
	return id, nil
}

// knownCondominiums returns the options already shown for cityID. Cities
// other than the selected one are checked by the repository.
func (c *Cascade) knownCondominiums(cityID string) []domain.LocationOption {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cityID != cityID {
		return nil
	}
	return c.levels[Condominiums].Options
}

// sameName reports whether a and b are equal ignoring case, accents and
// surrounding whitespace.
func sameName(a, b string) bool {
	a = strings.Join(strings.Fields(a), " ")
	b = strings.Join(strings.Fields(b), " ")
	if a == "" || b == "" {
		return false
	}
	return fuzzy.MatchNormalizedFold(a, b) && fuzzy.MatchNormalizedFold(b, a)
}
