// ABOUTME: Tabbed list view for the TUI
// ABOUTME: Renders contacts, companies, deals, activities, and follow-ups as tables
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/viz"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("DEALDESK"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.searching {
		s.WriteString(m.search.View())
		s.WriteString("\n\n")
	} else if m.searchQuery != "" {
		s.WriteString(helpStyle.Render(fmt.Sprintf("Filter: %q", m.searchQuery)))
		s.WriteString("\n\n")
	}

	if !m.loaded {
		s.WriteString("Loading...")
	} else {
		s.WriteString(m.renderTable())
	}
	s.WriteString("\n\n")

	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, tab := range tabNames {
		if EntityType(i) == m.entityType {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func matches(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func refName(r *models.Reference) string {
	if !r.IsSet() {
		return ""
	}
	return r.Name
}

func (m Model) visibleContacts() []models.Contact {
	var out []models.Contact
	for _, c := range m.snap.Contacts {
		if matches(m.searchQuery, c.FullName(), c.Email, c.CompanyName()) {
			out = append(out, c)
		}
	}
	return out
}

func (m Model) visibleCompanies() []models.Company {
	var out []models.Company
	for _, c := range m.snap.Companies {
		if matches(m.searchQuery, c.CompanyName, c.Industry, c.Size) {
			out = append(out, c)
		}
	}
	return out
}

func (m Model) visibleDeals() []models.Deal {
	var out []models.Deal
	for _, d := range m.snap.Deals {
		if matches(m.searchQuery, d.Title, d.Stage, refName(d.Company)) {
			out = append(out, d)
		}
	}
	return out
}

func (m Model) visibleActivities() []models.Activity {
	var out []models.Activity
	for _, a := range m.snap.Activities {
		if matches(m.searchQuery, a.Subject, a.Type, refName(a.Contact), refName(a.Deal)) {
			out = append(out, a)
		}
	}
	return out
}

func (m Model) rowCount() int {
	switch m.entityType {
	case EntityContacts:
		return len(m.visibleContacts())
	case EntityCompanies:
		return len(m.visibleCompanies())
	case EntityDeals:
		return len(m.visibleDeals())
	case EntityActivities:
		return len(m.visibleActivities())
	case EntityFollowups:
		return len(m.followups())
	}
	return 0
}

func (m Model) renderTable() string {
	var columns []table.Column
	var rows []table.Row

	switch m.entityType {
	case EntityContacts:
		columns = []table.Column{{Title: "Name", Width: 25}, {Title: "Email", Width: 30}, {Title: "Title", Width: 15}, {Title: "Company", Width: 20}}
		for _, c := range m.visibleContacts() {
			rows = append(rows, table.Row{c.FullName(), c.Email, c.Title, c.CompanyName()})
		}
	case EntityCompanies:
		columns = []table.Column{{Title: "Name", Width: 30}, {Title: "Industry", Width: 20}, {Title: "Size", Width: 12}, {Title: "Website", Width: 25}}
		for _, c := range m.visibleCompanies() {
			rows = append(rows, table.Row{c.CompanyName, c.Industry, c.Size, c.Website})
		}
	case EntityDeals:
		columns = []table.Column{{Title: "Title", Width: 30}, {Title: "Company", Width: 20}, {Title: "Stage", Width: 12}, {Title: "Value", Width: 10}, {Title: "Prob", Width: 5}}
		for _, d := range m.visibleDeals() {
			rows = append(rows, table.Row{d.Title, refName(d.Company), d.Stage, viz.FormatMoney(d.Value), fmt.Sprintf("%d%%", d.Probability)})
		}
	case EntityActivities, EntityFollowups:
		acts := m.visibleActivities()
		if m.entityType == EntityFollowups {
			acts = m.followups()
		}
		columns = []table.Column{{Title: "Status", Width: 6}, {Title: "Type", Width: 8}, {Title: "Subject", Width: 30}, {Title: "Due", Width: 20}, {Title: "Contact", Width: 18}}
		for _, a := range acts {
			rows = append(rows, table.Row{m.indicator(a), a.Type, a.Subject, a.DueDate, refName(a.Contact)})
		}
	}

	if len(rows) == 0 {
		return helpStyle.Render("Nothing here yet. Press n to add one.")
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-12, 3)),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"Enter: View details",
		"/: Search",
		"n: New",
		"g: Pipeline graph",
		"r: Reload",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "tab":
		m.entityType = (m.entityType + 1) % EntityType(len(tabNames))
		m.selectedRow = 0
	case "shift+tab":
		m.entityType = (m.entityType + EntityType(len(tabNames)) - 1) % EntityType(len(tabNames))
		m.selectedRow = 0
	case "enter":
		if id := m.getSelectedID(); id != 0 {
			m.selectedID = id
			m.viewMode = ViewDetail
			m.status, m.err = "", nil
		}
	case "/":
		m.searching = true
		m.search.SetValue(m.searchQuery)
		return m, m.search.Focus()
	case "n":
		m.selectedID = 0
		m.viewMode = ViewEdit
		m.initFormInputs()
	case "g":
		m.viewMode = ViewGraph
		m.graphDOT, m.graphOffset = "", 0
		return m, m.graphCmd()
	case "r":
		return m, m.loadCmd()
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchQuery = strings.TrimSpace(m.search.Value())
		m.searching = false
		m.search.Blur()
		m.selectedRow = 0
		return m, nil
	case "esc":
		m.searchQuery = ""
		m.searching = false
		m.search.Blur()
		m.selectedRow = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) getSelectedID() int {
	switch m.entityType {
	case EntityContacts:
		if rows := m.visibleContacts(); m.selectedRow < len(rows) {
			return rows[m.selectedRow].ID
		}
	case EntityCompanies:
		if rows := m.visibleCompanies(); m.selectedRow < len(rows) {
			return rows[m.selectedRow].ID
		}
	case EntityDeals:
		if rows := m.visibleDeals(); m.selectedRow < len(rows) {
			return rows[m.selectedRow].ID
		}
	case EntityActivities:
		if rows := m.visibleActivities(); m.selectedRow < len(rows) {
			return rows[m.selectedRow].ID
		}
	case EntityFollowups:
		if rows := m.followups(); m.selectedRow < len(rows) {
			return rows[m.selectedRow].ID
		}
	}
	return 0
}
