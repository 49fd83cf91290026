package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dealdesk/handlers"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/viz"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	sectionStyle = lipgloss.NewStyle().Bold(true)
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("DETAIL VIEW"))
	s.WriteString("\n\n")

	switch m.kind() {
	case EntityContacts:
		s.WriteString(m.renderContactDetail())
	case EntityCompanies:
		s.WriteString(m.renderCompanyDetail())
	case EntityDeals:
		s.WriteString(m.renderDealDetail())
	case EntityActivities:
		s.WriteString(m.renderActivityDetail())
	}

	s.WriteString("\n\n")
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) findContact(id int) *models.Contact {
	for i := range m.snap.Contacts {
		if m.snap.Contacts[i].ID == id {
			return &m.snap.Contacts[i]
		}
	}
	return nil
}

func (m Model) findCompany(id int) *models.Company {
	for i := range m.snap.Companies {
		if m.snap.Companies[i].ID == id {
			return &m.snap.Companies[i]
		}
	}
	return nil
}

func (m Model) findDeal(id int) *models.Deal {
	for i := range m.snap.Deals {
		if m.snap.Deals[i].ID == id {
			return &m.snap.Deals[i]
		}
	}
	return nil
}

func (m Model) findActivity(id int) *models.Activity {
	for i := range m.snap.Activities {
		if m.snap.Activities[i].ID == id {
			return &m.snap.Activities[i]
		}
	}
	return nil
}

func refers(r *models.Reference, id int) bool {
	return r.IsSet() && r.ID == id
}

func (m Model) renderContactDetail() string {
	contact := m.findContact(m.selectedID)
	if contact == nil {
		return fmt.Sprintf("Contact %d not found", m.selectedID)
	}

	var s strings.Builder
	s.WriteString(m.renderField("Name", contact.FullName()))
	s.WriteString(m.renderField("Title", contact.Title))
	s.WriteString(m.renderField("Email", contact.Email))
	s.WriteString(m.renderField("Phone", contact.Phone))
	s.WriteString(m.renderField("Company", contact.CompanyName()))
	s.WriteString(m.renderField("Notes", contact.Notes))

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("DEALS"))
	s.WriteString("\n")
	for _, d := range m.snap.Deals {
		if refers(d.Contact, contact.ID) {
			s.WriteString(fmt.Sprintf("  • %s %s (%s)\n", d.Title, viz.FormatMoney(d.Value), d.Stage))
		}
	}

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("ACTIVITIES"))
	s.WriteString("\n")
	for _, a := range m.snap.Activities {
		if refers(a.Contact, contact.ID) {
			s.WriteString(fmt.Sprintf("  %s %s: %s\n", m.indicator(a), a.Type, a.Subject))
		}
	}

	return s.String()
}

func (m Model) renderCompanyDetail() string {
	company := m.findCompany(m.selectedID)
	if company == nil {
		return fmt.Sprintf("Company %d not found", m.selectedID)
	}

	var s strings.Builder
	s.WriteString(m.renderField("Name", company.CompanyName))
	s.WriteString(m.renderField("Industry", company.Industry))
	s.WriteString(m.renderField("Size", company.Size))
	s.WriteString(m.renderField("Website", company.Website))
	s.WriteString(m.renderField("Address", company.Address))
	s.WriteString(m.renderField("Notes", company.Notes))

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("CONTACTS"))
	s.WriteString("\n")
	for _, c := range m.snap.Contacts {
		if refers(c.Company, company.ID) {
			s.WriteString(fmt.Sprintf("  • %s (%s)\n", c.FullName(), c.Email))
		}
	}

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("DEALS"))
	s.WriteString("\n")
	for _, d := range m.snap.Deals {
		if refers(d.Company, company.ID) {
			s.WriteString(fmt.Sprintf("  • %s %s (%s)\n", d.Title, viz.FormatMoney(d.Value), d.Stage))
		}
	}

	return s.String()
}

func (m Model) renderDealDetail() string {
	deal := m.findDeal(m.selectedID)
	if deal == nil {
		return fmt.Sprintf("Deal %d not found", m.selectedID)
	}

	var s strings.Builder
	s.WriteString(m.renderField("Title", deal.Title))
	s.WriteString(m.renderField("Company", refName(deal.Company)))
	s.WriteString(m.renderField("Contact", refName(deal.Contact)))
	s.WriteString(m.renderField("Stage", deal.Stage))
	s.WriteString(m.renderField("Value", fmt.Sprintf("$%.2f", deal.Value)))
	s.WriteString(m.renderField("Probability", fmt.Sprintf("%d%%", deal.Probability)))
	s.WriteString(m.renderField("Expected Close", deal.CloseDate))
	s.WriteString(m.renderField("Notes", deal.Notes))

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("ACTIVITIES"))
	s.WriteString("\n")
	for _, a := range m.snap.Activities {
		if refers(a.Deal, deal.ID) {
			s.WriteString(fmt.Sprintf("  %s [%s] %s: %s\n", m.indicator(a), a.DueDate, a.Type, a.Subject))
		}
	}

	return s.String()
}

func (m Model) renderActivityDetail() string {
	act := m.findActivity(m.selectedID)
	if act == nil {
		return fmt.Sprintf("Activity %d not found", m.selectedID)
	}

	status := "Open"
	if act.Completed {
		status = "Completed"
	}

	var s strings.Builder
	s.WriteString(m.renderField("Subject", act.Subject))
	s.WriteString(m.renderField("Type", act.Type))
	s.WriteString(m.renderField("Status", status))
	s.WriteString(m.renderField("Due", act.DueDate))
	s.WriteString(m.renderField("Contact", refName(act.Contact)))
	s.WriteString(m.renderField("Deal", refName(act.Deal)))
	s.WriteString(m.renderField("Description", act.Description))
	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{"Esc: Back", "e: Edit", "d: Delete"}
	switch m.kind() {
	case EntityDeals:
		help = append(help, "s: Next stage", "x: Mark lost")
	case EntityActivities:
		help = append(help, "c: Complete")
	}
	help = append(help, "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

// nextStage returns the stage after current in pipeline order. Anything past
// Negotiation moves to Closed Won.
func nextStage(current string) string {
	stages := models.DealStages()
	for i, s := range stages {
		if s == current && i < 3 {
			return stages[i+1]
		}
	}
	return models.StageClosedWon
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.status, m.err = "", nil
	case "e":
		m.viewMode = ViewEdit
		m.initFormInputs()
	case "d":
		m.viewMode = ViewConfirmDelete
	case "s", "x":
		deal := m.findDeal(m.selectedID)
		if m.kind() != EntityDeals || deal == nil {
			return m, nil
		}
		stage := nextStage(deal.Stage)
		if msg.String() == "x" {
			stage = models.StageClosedLost
		}
		_, updated, err := handlers.NewDealHandlers(m.app.Deals).UpdateDealStage(m.ctx, nil, handlers.UpdateDealStageInput{ID: deal.ID, Stage: stage})
		return m.afterWrite(fmt.Sprintf("%s moved to %s", updated.Title, updated.Stage), err)
	case "c":
		if m.kind() != EntityActivities {
			return m, nil
		}
		act, err := m.app.Activities.MarkCompleted(m.ctx, m.selectedID)
		if err != nil {
			return m.afterWrite("", err)
		}
		return m.afterWrite("Completed: "+act.Subject, nil)
	}

	return m, nil
}
