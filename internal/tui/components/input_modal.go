package components

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/vizinho/internal/domain"
	"github.com/mmcdole/vizinho/internal/tui/styles"
)

// Prompt describes one free-text question: a search term, a price range
// or a condominium suggestion.
type Prompt struct {
	Title     string
	Value     string
	Hint      string
	CharLimit int

	// Validate runs on enter. A non-nil error keeps the prompt open and
	// is shown under the field.
	Validate func(string) error
}

const promptWidth = 46

// InputModal asks for a single line of text.
type InputModal struct {
	prompt  Prompt
	visible bool
	errText string
	input   textinput.Model
}

func NewInputModal() InputModal {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Teal)
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	ti.Width = promptWidth - 3
	return InputModal{input: ti}
}

// Show opens the modal for p with the cursor after the prefilled value.
func (m *InputModal) Show(p Prompt) {
	if p.CharLimit <= 0 {
		p.CharLimit = 120
	}
	m.prompt = p
	m.visible = true
	m.errText = ""
	m.input.CharLimit = p.CharLimit
	m.input.Placeholder = p.Hint
	m.input.SetValue(p.Value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *InputModal) Hide() {
	m.visible = false
	m.errText = ""
	m.input.Blur()
}

func (m InputModal) IsVisible() bool { return m.visible }

func (m InputModal) Value() string { return m.input.Value() }

// Err returns the validation message currently shown, if any.
func (m InputModal) Err() string { return m.errText }

// Update handles a message and reports whether the value was submitted.
// Enter submits only when the prompt's Validate accepts the value.
func (m InputModal) Update(msg tea.Msg) (InputModal, tea.Cmd, bool) {
	if !m.visible {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			if v := m.prompt.Validate; v != nil {
				if err := v(m.input.Value()); err != nil {
					m.errText = validationText(err)
					return m, nil, false
				}
			}
			m.Hide()
			return m, nil, true
		case tea.KeyEsc:
			m.Hide()
			return m, nil, false
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.errText = ""
	return m, cmd, false
}

// validationText drops the wrapped sentinel so only the cause is shown.
func validationText(err error) string {
	if errors.Is(err, domain.ErrValidation) {
		return strings.TrimSuffix(err.Error(), ": "+domain.ErrValidation.Error())
	}
	return err.Error()
}

func (m InputModal) View() string {
	if !m.visible {
		return ""
	}

	row := lipgloss.NewStyle().Width(promptWidth).Background(styles.SlateDark)

	footer := styles.DimStyle.Render("enter to apply · esc to cancel")
	if m.errText != "" {
		footer = styles.ErrorStyle.Render(styles.Truncate(m.errText, promptWidth))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		row.Foreground(styles.Teal).Bold(true).Render(styles.Truncate(m.prompt.Title, promptWidth)),
		row.Render(""),
		row.Render(m.input.View()),
		row.Render(""),
		row.Render(footer),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Teal).
		Background(styles.SlateDark).
		Padding(1, 2).
		Render(content)
}
