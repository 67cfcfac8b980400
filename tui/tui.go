// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Provides interactive full-screen record browsing across pipeline sections
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adrata/pipenav/cache"
	"github.com/adrata/pipenav/models"
	"github.com/adrata/pipenav/nav"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEdit
)

// Model is the main bubbletea model
type Model struct {
	cache   *cache.LayeredCache
	fetcher nav.Fetcher
	bus     *cache.Bus

	// One controller per section; collections load lazily on first visit.
	controllers map[models.Section]*nav.Controller
	loaded      map[models.Section]bool

	viewMode   ViewMode
	sectionIdx int

	// List view state
	selectedRow int
	searching   bool
	searchInput textinput.Model

	// Edit view state
	formInputs []textinput.Model
	formKeys   []string
	focusIndex int

	// UI state
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model
func NewModel(lc *cache.LayeredCache, fetcher nav.Fetcher, bus *cache.Bus) Model {
	controllers := make(map[models.Section]*nav.Controller)
	for _, section := range models.Sections() {
		controllers[section] = nav.New(section, lc, fetcher, bus, nil)
	}

	search := textinput.New()
	search.Placeholder = "Search"
	search.CharLimit = 100

	return Model{
		cache:       lc,
		fetcher:     fetcher,
		bus:         bus,
		controllers: controllers,
		loaded:      make(map[models.Section]bool),
		viewMode:    ViewList,
		searchInput: search,
		width:       80,
		height:      24,
	}
}

func (m Model) section() models.Section {
	return models.Sections()[m.sectionIdx]
}

func (m Model) controller() *nav.Controller {
	return m.controllers[m.section()]
}

func (m Model) Init() tea.Cmd {
	return m.loadSectionCmd(m.section())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case sectionLoadedMsg:
		m.loaded[msg.section] = msg.err == nil
		m.err = msg.err
		return m, nil
	case resolvedMsg:
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Search input swallows keys while active.
	if m.viewMode == ViewList && m.searching {
		return m.handleSearchKeys(msg)
	}
	if m.viewMode == ViewEdit {
		return m.handleEditKeys(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	}

	return m, nil
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)
