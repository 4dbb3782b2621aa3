package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/vizinho/internal/tui/styles"
)

// Option is one selectable picker entry. An empty ID clears the filter.
type Option struct {
	ID    string
	Label string
	Hint  string // Dim suffix, e.g. "pending"
}

// MatchFunc filters options for a typed query.
type MatchFunc func(query string) []Option

// Picker is the fuzzy option selection modal
type Picker struct {
	title   string
	input   textinput.Model
	options []Option
	results []Option
	match   MatchFunc
	cursor  int
	visible bool
	width   int
	height  int
}

// NewPicker creates a new picker component
func NewPicker() Picker {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.CharLimit = 60
	ti.Width = 40
	ti.Prompt = "/ "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return Picker{input: ti}
}

// Show opens the picker over options. When match is nil options are
// filtered by fuzzy label match.
func (p *Picker) Show(title string, options []Option, match MatchFunc) {
	p.visible = true
	p.title = title
	p.options = options
	p.match = match
	p.input.SetValue("")
	p.input.Focus()
	p.refresh()
}

// Hide hides the picker
func (p *Picker) Hide() {
	p.visible = false
	p.input.Blur()
}

// IsVisible returns true if the picker is visible
func (p Picker) IsVisible() bool {
	return p.visible
}

// SetSize updates the component dimensions
func (p *Picker) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(width/2-10, 10)
}

// Selected returns the highlighted option
func (p Picker) Selected() (Option, bool) {
	if p.cursor >= len(p.results) {
		return Option{}, false
	}
	return p.results[p.cursor], true
}

// Results returns the options matching the current query
func (p Picker) Results() []Option {
	return p.results
}

func (p *Picker) refresh() {
	query := p.input.Value()
	switch {
	case strings.TrimSpace(query) == "":
		p.results = p.options
	case p.match != nil:
		p.results = p.match(query)
	default:
		p.results = fuzzyOptions(p.options, query)
	}
	p.cursor = 0
}

type optionLabels []Option

func (o optionLabels) String(i int) string { return o[i].Label }
func (o optionLabels) Len() int            { return len(o) }

func fuzzyOptions(options []Option, query string) []Option {
	matches := fuzzy.FindFrom(query, optionLabels(options))
	out := make([]Option, len(matches))
	for i, m := range matches {
		out[i] = options[m.Index]
	}
	return out
}

// Update handles messages, returns (picker, cmd, selected)
func (p Picker) Update(msg tea.Msg) (Picker, tea.Cmd, bool) {
	if !p.visible {
		return p, nil, false
	}

	var cmd tea.Cmd
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, PickerKeys.Escape):
			p.Hide()
			return p, nil, false

		case key.Matches(msg, PickerKeys.Enter):
			if len(p.results) > 0 {
				p.Hide()
				return p, nil, true
			}
			return p, nil, false

		case key.Matches(msg, PickerKeys.Down):
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
			return p, nil, false

		case key.Matches(msg, PickerKeys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil, false
		}

		prev := p.input.Value()
		p.input, cmd = p.input.Update(msg)
		if p.input.Value() != prev {
			p.refresh()
		}
		return p, cmd, false
	}

	p.input, cmd = p.input.Update(msg)
	return p, cmd, false
}

// View renders the component
func (p Picker) View() string {
	if !p.visible {
		return ""
	}

	modalWidth := min(max(p.width/2, 36), 70)
	maxResults := max(min(p.height-10, 12), 3)

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render(p.title))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	if len(p.results) == 0 {
		b.WriteString(styles.DimStyle.Render("No matches found"))
	}

	start := 0
	if p.cursor >= maxResults {
		start = p.cursor - maxResults + 1
	}
	end := min(start+maxResults, len(p.results))
	for i := start; i < end; i++ {
		o := p.results[i]
		label := styles.Truncate(o.Label, modalWidth-16)
		if o.Hint != "" {
			label += " " + styles.DimStyle.Render("("+o.Hint+")")
		}
		if i == p.cursor {
			b.WriteString(styles.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(styles.NormalItemStyle.Render(label))
		}
		b.WriteString("\n")
	}
	if len(p.results) > end {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("... and %d more", len(p.results)-end)))
	}

	content := lipgloss.NewStyle().
		Width(modalWidth - 4).
		Render(b.String())

	modal := styles.ModalStyle.
		Width(modalWidth).
		Render(content)

	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, modal)
}
