// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Provides an interactive full-screen interface over the CRM services
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dealdesk/app"
	"github.com/harperreed/dealdesk/notify"
	"github.com/harperreed/dealdesk/viz"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEdit
	ViewGraph
	ViewConfirmDelete
)

// EntityType represents the tab being viewed
type EntityType int

const (
	EntityContacts EntityType = iota
	EntityCompanies
	EntityDeals
	EntityActivities
	EntityFollowups
)

var tabNames = [...]string{"Contacts", "Companies", "Deals", "Activities", "Follow-ups"}

const maxToasts = 3

type dataMsg struct {
	snap viz.Snapshot
}

type graphMsg struct {
	dot string
	err error
}

// Model is the main bubbletea model
type Model struct {
	ctx   context.Context
	app   *app.Container
	notes *notify.Recorder

	viewMode   ViewMode
	entityType EntityType
	snap       viz.Snapshot
	loaded     bool

	// List view state
	selectedRow int
	searching   bool
	search      textinput.Model
	searchQuery string

	// Detail view state
	selectedID int

	// Edit view state
	formLabels []string
	formInputs []textinput.Model
	focusIndex int

	// Graph view state
	graphDOT    string
	graphOffset int

	toasts []string
	status string
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model. Notifications recorded in notes are
// shown as toasts after every reload.
func NewModel(ctx context.Context, c *app.Container, notes *notify.Recorder) Model {
	search := textinput.New()
	search.Placeholder = "Search"
	search.CharLimit = 100

	return Model{
		ctx:        ctx,
		app:        c,
		notes:      notes,
		viewMode:   ViewList,
		entityType: EntityContacts,
		search:     search,
		width:      80,
		height:     24,
	}
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, c *app.Container, notes *notify.Recorder) error {
	_, err := tea.NewProgram(NewModel(ctx, c, notes), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m Model) loadCmd() tea.Cmd {
	ctx, c := m.ctx, m.app
	return func() tea.Msg {
		return dataMsg{snap: c.Snapshot(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		m.snap = msg.snap
		m.loaded = true
		if n := m.rowCount(); m.selectedRow >= n {
			m.selectedRow = max(n-1, 0)
		}
		m.collectToasts()
		return m, nil
	case graphMsg:
		m.graphDOT, m.err = msg.dot, msg.err
		m.collectToasts()
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	switch m.viewMode {
	case ViewList:
		body = m.renderListView()
	case ViewDetail:
		body = m.renderDetailView()
	case ViewEdit:
		body = m.renderEditView()
	case ViewGraph:
		body = m.renderGraphView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return body + m.renderFooter()
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if msg.String() == "q" && !m.searching && m.viewMode != ViewEdit {
		return m, tea.Quit
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewEdit:
		return m.handleEditKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// kind maps the follow-ups tab onto the activities it lists.
func (m Model) kind() EntityType {
	if m.entityType == EntityFollowups {
		return EntityActivities
	}
	return m.entityType
}

// afterWrite records the outcome of a write and schedules a reload.
func (m Model) afterWrite(status string, err error) (Model, tea.Cmd) {
	m.err = err
	m.status = ""
	if err == nil {
		m.status = status
	}
	return m, m.loadCmd()
}

func (m *Model) collectToasts() {
	if m.notes == nil {
		return
	}
	m.toasts = append(m.toasts, m.notes.Drain()...)
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
}

func (m Model) renderFooter() string {
	var lines []string
	if m.status != "" {
		lines = append(lines, statusStyle.Render("✓ "+m.status))
	}
	if m.err != nil {
		lines = append(lines, errorStyle.Render("Error: "+m.err.Error()))
	}
	for _, t := range m.toasts {
		lines = append(lines, toastStyle.Render("✗ "+t))
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n\n" + lipgloss.JoinVertical(lipgloss.Left, lines...)
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

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)
