package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/vizinho/internal/cascade"
	"github.com/mmcdole/vizinho/internal/domain"
	"github.com/mmcdole/vizinho/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return "Loading..."
	}

	switch {
	case m.State == StateHelp:
		return m.renderHelp()
	case m.Picker.IsVisible():
		return m.Picker.View()
	case m.Input.IsVisible():
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.Input.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderFilters(),
		m.renderLocations(),
		m.renderNotice(),
		m.renderContent(),
		m.renderLink(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := styles.TitleStyle.Render("Vizinho")
	count := styles.DimStyle.Render(fmt.Sprintf("%d listings", m.List.Len()))
	if m.view.Loading {
		count = m.Spinner.View() + " " + styles.DimStyle.Render("loading")
	}
	gap := max(m.Width-lipgloss.Width(title)-lipgloss.Width(count), 1)
	return title + strings.Repeat(" ", gap) + count
}

func (m Model) renderFilters() string {
	var chips []string
	chip := func(label string) {
		chips = append(chips, styles.BadgeStyle.Render(label))
	}

	if m.snap.SearchTerm != "" {
		chip(fmt.Sprintf("%q", m.snap.SearchTerm))
	}
	if c, ok := domain.ParseCategory(m.snap.CategoryID); ok {
		chip(c.Value())
	}
	if t, ok := domain.ParseListingType(m.snap.TypeID); ok {
		chip(t.Value())
	}
	if m.snap.StatusID != "" {
		chip(statusTitle(m.snap.StatusID))
	}
	if m.snap.ShowSoldItems {
		chip("incl. sold")
	}
	if r := m.snap.PriceRange; r.Min > 0 || r.Max < m.engine.MaxPrice() {
		chip(styles.FormatPrice(r.Min) + " - " + styles.FormatPrice(r.Max))
	}
	if m.snap.CondominiumFilter {
		chip("my condominium")
	}

	if len(chips) == 0 {
		return styles.DimStyle.Render("No filters")
	}
	return strings.Join(chips, " ")
}

func (m Model) renderLocations() string {
	part := func(label string, level cascade.LevelID, id, none string) string {
		lvl := m.levels.Level(level)
		value := none
		if id != "" {
			value = m.locationName(level, id)
		}
		text := styles.DimStyle.Render(label+": ") + styles.SubtitleStyle.Render(value)
		switch lvl.State {
		case cascade.Loading:
			text += " " + m.Spinner.View()
		case cascade.ErrorWithFallback:
			text += " " + styles.WarningStyle.Render("!")
		}
		return text
	}

	return strings.Join([]string{
		part("State", cascade.States, m.levels.StateID, "all"),
		part("City", cascade.Cities, m.levels.CityID, "all"),
		part("Condominium", cascade.Condominiums, m.snap.CondominiumID, "all"),
	}, "   ")
}

// renderNotice shows the transient listing notice, then any location
// fallback message.
func (m Model) renderNotice() string {
	if m.view.Notice != "" {
		if m.view.HasError {
			return styles.ErrorStyle.Render(m.view.Notice)
		}
		return styles.WarningStyle.Render(m.view.Notice)
	}
	for _, id := range []cascade.LevelID{cascade.States, cascade.Cities, cascade.Condominiums} {
		if msg := m.levels.Level(id).Err; msg != "" {
			return styles.WarningStyle.Render(msg)
		}
	}
	return ""
}

func (m Model) renderContent() string {
	height := max(m.Height-ChromeHeight, 1)

	var placeholder string
	switch {
	case m.List.Len() > 0:
		return m.List.View()
	case m.view.Loading:
		placeholder = m.Spinner.View() + " " + styles.DimStyle.Render("Loading listings...")
	case m.view.HasError:
		placeholder = styles.ErrorStyle.Render("Could not load listings.") + " " +
			styles.HelpKeyStyle.Render("r") + styles.HelpDescStyle.Render(" retry")
	default:
		placeholder = styles.DimStyle.Render("No listings match these filters")
	}
	return lipgloss.Place(m.Width, height, lipgloss.Center, lipgloss.Center, placeholder)
}

func (m Model) renderLink() string {
	link := "?" + m.engine.Link().Encode()
	if link == "?" {
		link = "(no shareable filters)"
	}
	return styles.DimStyle.Render("link ") + styles.AccentStyle.Render(styles.Truncate(link, m.Width-5))
}

func (m Model) renderFooter() string {
	var left string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + strings.Repeat(" ", gap) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	var b strings.Builder
	for i, group := range helpGroups() {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, binding := range group {
			h := binding.Help()
			b.WriteString("  " + styles.HelpKeyStyle.Render(styles.Pad(h.Key, 10)) + styles.HelpDescStyle.Render(h.Desc) + "\n")
		}
	}
	b.WriteString("\nPress any key to return...")

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(b.String()))
}
