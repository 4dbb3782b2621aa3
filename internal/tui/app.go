// Package tui is the terminal interface over the filter store.
package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/vizinho/internal/cascade"
	"github.com/mmcdole/vizinho/internal/domain"
	"github.com/mmcdole/vizinho/internal/fetch"
	"github.com/mmcdole/vizinho/internal/tui/components"
	"github.com/mmcdole/vizinho/internal/tui/styles"
)

// Engine is the filter store surface the interface drives.
type Engine interface {
	Snapshot() domain.Snapshot
	MaxPrice() float64
	Listings() fetch.View
	Levels() cascade.Levels
	Match(level cascade.LevelID, query string) []domain.LocationOption
	Link() url.Values

	SetSearchTerm(term string) error
	SetCategory(id string) error
	SetType(id string) error
	SetStatus(label string) error
	SetShowSoldItems(show bool) error
	SetPriceRange(r domain.PriceRange) error
	SelectState(id string) error
	SelectCity(id string) error
	SelectCondominium(id string) error
	SetCondominiumFilter(on bool) error
	ResetFilters() error

	RefreshMaxPrice(ctx context.Context) error
	SuggestCondominium(ctx context.Context, name, address string) (string, error)
	RetryLoadListings(ctx context.Context) error
}

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
)

type pickPurpose int

const (
	pickCategory pickPurpose = iota
	pickType
	pickStatus
	pickState
	pickCity
	pickCondominium
)

type inputPurpose int

const (
	inputSearch inputPurpose = iota
	inputPrice
	inputSuggestName
	inputSuggestAddress
)

// ChromeHeight is the number of lines around the listing list.
const ChromeHeight = 6

// Model is the main Bubble Tea model for the application
type Model struct {
	State ApplicationState

	engine Engine
	events <-chan domain.Event
	ctx    context.Context

	List    components.ListingList
	Picker  components.Picker
	Input   components.InputModal
	Spinner spinner.Model

	picking     pickPurpose
	inputting   inputPurpose
	pendingName string

	// Cached store state, refreshed on every event
	snap   domain.Snapshot
	view   fetch.View
	levels cascade.Levels

	Width  int
	Height int

	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates a new application model. events is the channel fed by
// a ChannelObserver registered with the store.
func NewModel(ctx context.Context, engine Engine, events <-chan domain.Event) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	m := Model{
		engine:  engine,
		events:  events,
		ctx:     ctx,
		List:    components.NewListingList(),
		Picker:  components.NewPicker(),
		Input:   components.NewInputModal(),
		Spinner: sp,
	}
	m.refresh()
	return m
}

// Init starts listening for store events
func (m Model) Init() tea.Cmd {
	return tea.Batch(listenCmd(m.events), m.Spinner.Tick)
}

// refresh re-reads the store state.
func (m *Model) refresh() {
	m.snap = m.engine.Snapshot()
	m.view = m.engine.Listings()
	m.levels = m.engine.Levels()
	m.List.SetItems(m.view.Listings)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.updateLayout()
		return m, nil

	case EventMsg:
		m.refresh()
		return m, listenCmd(m.events)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case opDoneMsg:
		m.refresh()
		if msg.Err != nil && !errors.Is(msg.Err, fetch.ErrStale) {
			m.setError(fmt.Sprintf("%s failed: %v", msg.Op, msg.Err))
		}
		return m, nil

	case suggestDoneMsg:
		m.refresh()
		m.handleSuggestDone(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) updateLayout() {
	m.List.SetSize(m.Width, max(m.Height-ChromeHeight, 1))
	m.Picker.SetSize(m.Width, m.Height)
}

func (m *Model) setStatus(msg string) {
	m.StatusMsg = msg
	m.StatusIsErr = false
}

func (m *Model) setError(msg string) {
	m.StatusMsg = msg
	m.StatusIsErr = true
}

// apply runs a synchronous store mutation and reports failures.
func (m *Model) apply(err error) {
	if err != nil {
		m.setError(describeError(err))
		return
	}
	m.StatusMsg = ""
	m.refresh()
}

func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoUserCondominium):
		return "Your profile has no condominium"
	case errors.Is(err, domain.ErrDuplicateCondominium):
		return "That condominium is already listed in this city"
	case errors.Is(err, domain.ErrForbidden):
		return "You are not allowed to do that"
	case errors.Is(err, domain.ErrValidation):
		return "Invalid value: " + err.Error()
	default:
		return err.Error()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.State == StateHelp {
		m.State = StateBrowsing
		return m, nil
	}

	if m.Picker.IsVisible() {
		var cmd tea.Cmd
		var selected bool
		m.Picker, cmd, selected = m.Picker.Update(msg)
		if selected {
			if opt, ok := m.Picker.Selected(); ok {
				m.applyPick(opt)
			}
		}
		return m, cmd
	}

	if m.Input.IsVisible() {
		var cmd tea.Cmd
		var submitted bool
		m.Input, cmd, submitted = m.Input.Update(msg)
		if submitted {
			cmd = m.applyInput(m.Input.Value())
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp

	case key.Matches(msg, Keys.Search):
		m.inputting = inputSearch
		m.Input.Show(components.Prompt{
			Title: "Search listings",
			Value: m.snap.SearchTerm,
			Hint:  "title or description",
		})

	case key.Matches(msg, Keys.Price):
		m.inputting = inputPrice
		maxPrice := m.engine.MaxPrice()
		m.Input.Show(components.Prompt{
			Title:     fmt.Sprintf("Price range (0-%s)", formatAmount(maxPrice)),
			Value:     formatRange(m.snap.PriceRange),
			Hint:      "min-max, e.g. 100-500",
			CharLimit: 24,
			Validate: func(v string) error {
				_, err := parsePriceRange(v, maxPrice)
				return err
			},
		})

	case key.Matches(msg, Keys.Category):
		m.openEnumPicker(pickCategory)
	case key.Matches(msg, Keys.Type):
		m.openEnumPicker(pickType)
	case key.Matches(msg, Keys.Status):
		m.openEnumPicker(pickStatus)

	case key.Matches(msg, Keys.State):
		m.openLocationPicker(pickState)
	case key.Matches(msg, Keys.City):
		m.openLocationPicker(pickCity)
	case key.Matches(msg, Keys.Condominium):
		m.openLocationPicker(pickCondominium)

	case key.Matches(msg, Keys.ShowSold):
		m.apply(m.engine.SetShowSoldItems(!m.snap.ShowSoldItems))

	case key.Matches(msg, Keys.MyCondo):
		m.apply(m.engine.SetCondominiumFilter(!m.snap.CondominiumFilter))

	case key.Matches(msg, Keys.Reset):
		if err := m.engine.ResetFilters(); err != nil {
			m.setError(describeError(err))
			break
		}
		m.refresh()
		m.setStatus("Filters reset")

	case key.Matches(msg, Keys.Suggest):
		if m.snap.CityID == "" {
			m.setError("Select a city first")
			break
		}
		m.inputting = inputSuggestName
		m.Input.Show(components.Prompt{
			Title:     "Suggest a condominium in " + m.locationName(cascade.Cities, m.snap.CityID),
			Hint:      "name",
			CharLimit: 80,
			Validate:  requireName,
		})

	case key.Matches(msg, Keys.Retry):
		if !m.view.HasError {
			m.setStatus("Nothing to retry")
			break
		}
		m.setStatus("Retrying...")
		return m, retryCmd(m.ctx, m.engine)

	case key.Matches(msg, Keys.RefreshPrice):
		return m, refreshPriceCmd(m.ctx, m.engine)

	default:
		m.List, _ = m.List.Update(msg)
	}

	return m, nil
}

func (m *Model) openEnumPicker(purpose pickPurpose) {
	var title string
	var opts []components.Option
	switch purpose {
	case pickCategory:
		title = "Category"
		opts = append(opts, components.Option{Label: "All categories"})
		for _, c := range domain.Categories() {
			opts = append(opts, components.Option{ID: c.ID(), Label: c.Value()})
		}
	case pickType:
		title = "Type"
		opts = append(opts, components.Option{Label: "Products and services"})
		for _, t := range domain.ListingTypes() {
			opts = append(opts, components.Option{ID: t.ID(), Label: t.Value()})
		}
	case pickStatus:
		title = "Status"
		opts = append(opts, components.Option{Label: "Any status"})
		for _, label := range domain.StatusLabels() {
			opts = append(opts, components.Option{ID: label, Label: statusTitle(label)})
		}
	}
	m.picking = purpose
	m.Picker.Show(title, opts, nil)
}

func (m *Model) openLocationPicker(purpose pickPurpose) {
	var level cascade.LevelID
	var title, all string
	switch purpose {
	case pickState:
		level, title, all = cascade.States, "State", "All states"
	case pickCity:
		if m.snap.StateID == "" {
			m.setError("Select a state first")
			return
		}
		level, title, all = cascade.Cities, "City", "All cities"
	case pickCondominium:
		if m.snap.CityID == "" {
			m.setError("Select a city first")
			return
		}
		level, title, all = cascade.Condominiums, "Condominium", "All condominiums"
	}

	lvl := m.levels.Level(level)
	if lvl.Loading() {
		m.setStatus(fmt.Sprintf("Loading %s...", level))
		return
	}

	engine := m.engine
	opts := append([]components.Option{{Label: all}}, locationOptions(lvl.Options)...)
	m.picking = purpose
	m.Picker.Show(title, opts, func(query string) []components.Option {
		return locationOptions(engine.Match(level, query))
	})
}

func locationOptions(in []domain.LocationOption) []components.Option {
	out := make([]components.Option, len(in))
	for i, o := range in {
		out[i] = components.Option{ID: o.ID, Label: o.Name}
		if o.Pending {
			out[i].Hint = "pending"
		}
	}
	return out
}

func (m *Model) applyPick(opt components.Option) {
	switch m.picking {
	case pickCategory:
		m.apply(m.engine.SetCategory(opt.ID))
	case pickType:
		m.apply(m.engine.SetType(opt.ID))
	case pickStatus:
		m.apply(m.engine.SetStatus(opt.ID))
	case pickState:
		m.apply(m.engine.SelectState(opt.ID))
	case pickCity:
		m.apply(m.engine.SelectCity(opt.ID))
	case pickCondominium:
		m.apply(m.engine.SelectCondominium(opt.ID))
	}
}

func (m *Model) applyInput(value string) tea.Cmd {
	switch m.inputting {
	case inputSearch:
		m.apply(m.engine.SetSearchTerm(value))

	case inputPrice:
		r, err := parsePriceRange(value, m.engine.MaxPrice())
		if err != nil {
			m.setError(describeError(err))
			return nil
		}
		m.apply(m.engine.SetPriceRange(r))

	case inputSuggestName:
		m.pendingName = strings.TrimSpace(value)
		if m.pendingName == "" {
			m.setError("A condominium needs a name")
			return nil
		}
		m.inputting = inputSuggestAddress
		m.Input.Show(components.Prompt{
			Title: "Address of " + m.pendingName,
			Hint:  "street and number (optional)",
		})

	case inputSuggestAddress:
		m.setStatus("Submitting " + m.pendingName + "...")
		return suggestCmd(m.ctx, m.engine, m.pendingName, strings.TrimSpace(value))
	}
	return nil
}

func (m *Model) handleSuggestDone(msg suggestDoneMsg) {
	if msg.Err != nil {
		m.setError(describeError(msg.Err))
		return
	}
	m.setStatus(msg.Name + " submitted for review")
}

func requireName(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("a condominium needs a name: %w", domain.ErrValidation)
	}
	return nil
}

// parsePriceRange parses "min-max". Either side may be omitted and
// defaults to the matching bound.
func parsePriceRange(s string, maxPrice float64) (domain.PriceRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.PriceRange{Min: 0, Max: maxPrice}, nil
	}

	lo, hi, found := strings.Cut(s, "-")
	if !found {
		return domain.PriceRange{}, fmt.Errorf("price range %q: expected min-max: %w", s, domain.ErrValidation)
	}

	r := domain.PriceRange{Min: 0, Max: maxPrice}
	var err error
	if lo = strings.TrimSpace(lo); lo != "" {
		if r.Min, err = parseAmount(lo); err != nil {
			return domain.PriceRange{}, err
		}
	}
	if hi = strings.TrimSpace(hi); hi != "" {
		if r.Max, err = parseAmount(hi); err != nil {
			return domain.PriceRange{}, err
		}
	}
	return r, nil
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("price %q: %w", s, domain.ErrValidation)
	}
	return v, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatRange(r domain.PriceRange) string {
	return formatAmount(r.Min) + "-" + formatAmount(r.Max)
}

func statusTitle(label string) string {
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// locationName resolves an option id to its display name.
func (m Model) locationName(level cascade.LevelID, id string) string {
	for _, o := range m.levels.Level(level).Options {
		if o.ID == id {
			return o.Name
		}
	}
	return id
}
