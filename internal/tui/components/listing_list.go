package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/vizinho/internal/domain"
	"github.com/mmcdole/vizinho/internal/tui/styles"
)

// ListingList is a scrolling list of listings
type ListingList struct {
	items  []domain.Listing
	cursor int
	offset int
	width  int
	height int
}

// NewListingList creates an empty list
func NewListingList() ListingList {
	return ListingList{}
}

// SetItems replaces the list contents, keeping the cursor on the same
// listing when it is still present.
func (l *ListingList) SetItems(items []domain.Listing) {
	var selectedID string
	if sel, ok := l.Selected(); ok {
		selectedID = sel.ID
	}

	l.items = items
	l.cursor = 0
	for i, item := range items {
		if item.ID == selectedID {
			l.cursor = i
			break
		}
	}
	l.clampOffset()
}

// SetSize updates the component dimensions
func (l *ListingList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.clampOffset()
}

// Selected returns the listing under the cursor
func (l ListingList) Selected() (domain.Listing, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return domain.Listing{}, false
	}
	return l.items[l.cursor], true
}

// Cursor returns the cursor index
func (l ListingList) Cursor() int {
	return l.cursor
}

// Len returns the number of listings
func (l ListingList) Len() int {
	return len(l.items)
}

// Update handles navigation keys
func (l ListingList) Update(msg tea.Msg) (ListingList, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(l.items) == 0 {
		return l, nil
	}

	page := max(l.height, 1)
	switch {
	case key.Matches(keyMsg, ListKeys.Up):
		l.cursor--
	case key.Matches(keyMsg, ListKeys.Down):
		l.cursor++
	case key.Matches(keyMsg, ListKeys.PageUp):
		l.cursor -= page
	case key.Matches(keyMsg, ListKeys.PageDown):
		l.cursor += page
	case key.Matches(keyMsg, ListKeys.Home):
		l.cursor = 0
	case key.Matches(keyMsg, ListKeys.End):
		l.cursor = len(l.items) - 1
	}
	l.cursor = max(0, min(l.cursor, len(l.items)-1))
	l.clampOffset()
	return l, nil
}

func (l *ListingList) clampOffset() {
	if l.height <= 0 {
		l.offset = 0
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.height {
		l.offset = l.cursor - l.height + 1
	}
	l.offset = max(0, min(l.offset, max(len(l.items)-l.height, 0)))
}

// View renders the visible rows
func (l ListingList) View() string {
	if l.height <= 0 {
		return ""
	}

	end := min(l.offset+l.height, len(l.items))
	rows := make([]string, 0, l.height)
	for i := l.offset; i < end; i++ {
		rows = append(rows, l.renderRow(l.items[i], i == l.cursor))
	}
	for len(rows) < l.height {
		rows = append(rows, "")
	}
	return strings.Join(rows, "\n")
}

func (l ListingList) renderRow(item domain.Listing, selected bool) string {
	const priceWidth = 14
	metaWidth := min(28, l.width/3)
	titleWidth := max(l.width-priceWidth-metaWidth-8, 8)

	line := statusDot(item.Status) + " " +
		styles.Pad(item.Title, titleWidth) + " " +
		styles.Pad(styles.FormatPrice(item.Price), priceWidth) + " " +
		styles.Pad(item.Category+" · "+item.Type, metaWidth)

	if selected {
		return styles.SelectedItemStyle.Render(line)
	}
	return styles.NormalItemStyle.Render(line)
}

func statusDot(s domain.Status) string {
	switch s {
	case domain.StatusActive:
		return styles.ActiveStyle.Render("●")
	case domain.StatusReserved:
		return styles.ReservedStyle.Render("◐")
	case domain.StatusSold:
		return styles.SoldStyle.Render("✓")
	default:
		return " "
	}
}
