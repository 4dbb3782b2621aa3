package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/vizinho/internal/domain"
)

func TestPickerFuzzyFilter(t *testing.T) {
	p := NewPicker()
	p.Show("Category", []Option{
		{Label: "All categories"},
		{ID: "alimentos", Label: "Alimentos"},
		{ID: "moveis", Label: "Móveis"},
		{ID: "outros", Label: "Outros"},
	}, nil)
	require.Len(t, p.Results(), 4)

	p, _, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("out")})
	require.Len(t, p.Results(), 1)

	p, _, selected := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, selected)
	assert.False(t, p.IsVisible())
	opt, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, "outros", opt.ID)
}

func TestPickerCustomMatch(t *testing.T) {
	var queries []string
	p := NewPicker()
	p.Show("State", []Option{{Label: "All"}}, func(q string) []Option {
		queries = append(queries, q)
		return []Option{{ID: "rj", Label: "Rio de Janeiro"}}
	})

	p, _, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ri")})
	assert.Equal(t, []string{"ri"}, queries)
	assert.Equal(t, "rj", p.Results()[0].ID)
}

func TestPickerNavigation(t *testing.T) {
	p := NewPicker()
	p.Show("Type", []Option{{Label: "Any"}, {ID: "produto", Label: "Produto"}, {ID: "servico", Label: "Serviço"}}, nil)

	for range 5 {
		p, _, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	opt, _ := p.Selected()
	assert.Equal(t, "servico", opt.ID)

	p, _, _ = p.Update(tea.KeyMsg{Type: tea.KeyUp})
	opt, _ = p.Selected()
	assert.Equal(t, "produto", opt.ID)

	p, _, selected := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, selected)
	assert.False(t, p.IsVisible())
}

func TestPickerEnterWithoutResults(t *testing.T) {
	p := NewPicker()
	p.Show("Category", []Option{{ID: "a", Label: "Alimentos"}}, nil)
	p, _, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("zzz")})

	p, _, selected := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, selected)
	assert.True(t, p.IsVisible())
}

func listings(n int) []domain.Listing {
	out := make([]domain.Listing, n)
	for i := range out {
		out[i] = domain.Listing{ID: string(rune('a' + i)), Title: "Item", Status: domain.StatusActive}
	}
	return out
}

func TestListingListScrolling(t *testing.T) {
	l := NewListingList()
	l.SetSize(80, 3)
	l.SetItems(listings(10))

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	assert.Equal(t, 9, l.Cursor())
	assert.Equal(t, 7, l.offset)

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	assert.Equal(t, 0, l.Cursor())
	assert.Equal(t, 0, l.offset)

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, 3, l.Cursor())
	assert.Equal(t, 1, l.offset)
}

func TestListingListKeepsSelection(t *testing.T) {
	l := NewListingList()
	l.SetSize(80, 5)
	items := listings(5)
	l.SetItems(items)
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})

	sel, ok := l.Selected()
	require.True(t, ok)

	l.SetItems(items[1:])
	again, ok := l.Selected()
	require.True(t, ok)
	assert.Equal(t, sel.ID, again.ID)

	l.SetItems(nil)
	_, ok = l.Selected()
	assert.False(t, ok)
}
