// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Handles deletion of contacts, companies, deals, and activities with a confirmation dialog
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

// selectedName returns the display name of the selected record.
func (m Model) selectedName() string {
	switch m.kind() {
	case EntityContacts:
		if c := m.findContact(m.selectedID); c != nil {
			return c.FullName()
		}
	case EntityCompanies:
		if c := m.findCompany(m.selectedID); c != nil {
			return c.CompanyName
		}
	case EntityDeals:
		if d := m.findDeal(m.selectedID); d != nil {
			return d.Title
		}
	case EntityActivities:
		if a := m.findActivity(m.selectedID); a != nil {
			return a.Subject
		}
	}
	return fmt.Sprintf("#%d", m.selectedID)
}

func (m Model) renderConfirmDeleteView() string {
	entityType := strings.ToLower(m.entityTypeName())

	title := warningStyle.Render("⚠  DELETE CONFIRMATION  ⚠")
	message := fmt.Sprintf("Are you sure you want to delete this %s?", entityType)
	entityInfo := fmt.Sprintf("\n%s: %s\n", m.entityTypeName(), m.selectedName())
	warning := "\nThis action cannot be undone!"

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Delete (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		entityInfo,
		warning,
		"",
		buttons,
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		confirmBoxStyle.Render(content),
	)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		name := m.selectedName()
		err := m.performDelete()
		m.viewMode = ViewList
		m.selectedID = 0
		return m.afterWrite("Deleted "+name, err)
	case "n", "N", "esc":
		m.viewMode = ViewDetail
	}

	return m, nil
}

func (m Model) performDelete() error {
	var ok bool
	switch m.kind() {
	case EntityContacts:
		ok = m.app.Contacts.Delete(m.ctx, m.selectedID)
	case EntityCompanies:
		ok = m.app.Companies.Delete(m.ctx, m.selectedID)
	case EntityDeals:
		ok = m.app.Deals.Delete(m.ctx, m.selectedID)
	case EntityActivities:
		ok = m.app.Activities.Delete(m.ctx, m.selectedID)
	default:
		return fmt.Errorf("unknown entity type")
	}
	if !ok {
		return fmt.Errorf("failed to delete %s", m.selectedName())
	}
	return nil
}
