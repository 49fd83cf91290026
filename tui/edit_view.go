package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/dealdesk/handlers"
	"github.com/harperreed/dealdesk/models"
)

var formLabels = map[EntityType][]string{
	EntityContacts:   {"First name", "Last name", "Email", "Phone", "Title", "Company", "Notes"},
	EntityCompanies:  {"Name", "Industry", "Size", "Website", "Address", "Notes"},
	EntityDeals:      {"Title", "Value", "Stage", "Probability", "Close date (YYYY-MM-DD)", "Company", "Contact", "Notes"},
	EntityActivities: {"Type", "Subject", "Due (YYYY-MM-DD)", "Contact", "Deal", "Description"},
}

func (m Model) renderEditView() string {
	var s strings.Builder

	if m.selectedID == 0 {
		s.WriteString(titleStyle.Render("NEW " + m.entityTypeName()))
	} else {
		s.WriteString(titleStyle.Render("EDIT " + m.entityTypeName()))
	}
	s.WriteString("\n\n")

	for i, input := range m.formInputs {
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(fieldLabelStyle.Render(m.formLabels[i]))
		s.WriteString(input.View())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.renderEditHelp())

	return s.String()
}

func (m Model) entityTypeName() string {
	switch m.kind() {
	case EntityContacts:
		return "CONTACT"
	case EntityCompanies:
		return "COMPANY"
	case EntityDeals:
		return "DEAL"
	case EntityActivities:
		return "ACTIVITY"
	}
	return ""
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab: Next field",
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.selectedID == 0 {
			m.viewMode = ViewList
		} else {
			m.viewMode = ViewDetail
		}
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex + len(m.formInputs) - 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "enter":
		creating := m.selectedID == 0
		status, err := m.saveEntity()
		if err != nil {
			m.err = err
			return m, nil
		}
		if creating {
			m.viewMode = ViewList
		} else {
			m.viewMode = ViewDetail
		}
		return m.afterWrite(status, nil)
	}

	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *Model) initFormInputs() {
	m.formLabels = formLabels[m.kind()]
	m.formInputs = make([]textinput.Model, len(m.formLabels))
	for i, label := range m.formLabels {
		m.formInputs[i] = textinput.New()
		m.formInputs[i].Placeholder = label
		m.formInputs[i].CharLimit = 200
	}

	if m.selectedID != 0 {
		for i, v := range m.currentValues() {
			m.formInputs[i].SetValue(v)
		}
	}

	m.focusIndex = 0
	m.err = nil
	m.updateFormFocus()
}

// currentValues returns the stored values of the selected record in form order.
func (m Model) currentValues() []string {
	switch m.kind() {
	case EntityContacts:
		if c := m.findContact(m.selectedID); c != nil {
			return []string{c.FirstName, c.LastName, c.Email, c.Phone, c.Title, c.CompanyName(), c.Notes}
		}
	case EntityCompanies:
		if c := m.findCompany(m.selectedID); c != nil {
			return []string{c.CompanyName, c.Industry, c.Size, c.Website, c.Address, c.Notes}
		}
	case EntityDeals:
		if d := m.findDeal(m.selectedID); d != nil {
			return []string{d.Title, strconv.FormatFloat(d.Value, 'f', -1, 64), d.Stage, strconv.Itoa(d.Probability),
				d.CloseDate, refName(d.Company), refName(d.Contact), d.Notes}
		}
	case EntityActivities:
		if a := m.findActivity(m.selectedID); a != nil {
			return []string{a.Type, a.Subject, a.DueDate, refName(a.Contact), refName(a.Deal), a.Description}
		}
	}
	return nil
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

func (m Model) value(i int) string {
	return strings.TrimSpace(m.formInputs[i].Value())
}

func (m Model) saveEntity() (string, error) {
	switch m.kind() {
	case EntityContacts:
		return m.saveContact()
	case EntityCompanies:
		return m.saveCompany()
	case EntityDeals:
		return m.saveDeal()
	case EntityActivities:
		return m.saveActivity()
	}
	return "", nil
}

// companyID finds a company by name, creating it when missing.
func (m Model) companyID(name string) (int, error) {
	if name == "" {
		return 0, nil
	}
	for _, c := range m.snap.Companies {
		if strings.EqualFold(c.CompanyName, name) {
			return c.ID, nil
		}
	}
	_, created, err := handlers.NewCompanyHandlers(m.app.Companies).CreateCompany(m.ctx, nil, handlers.CompanyInput{Name: name})
	if err != nil {
		return 0, fmt.Errorf("failed to create company: %w", err)
	}
	return created.ID, nil
}

func (m Model) contactID(name string) (int, error) {
	if name == "" {
		return 0, nil
	}
	for _, c := range m.snap.Contacts {
		if strings.EqualFold(c.FullName(), name) {
			return c.ID, nil
		}
	}
	return 0, fmt.Errorf("contact not found: %s", name)
}

func (m Model) dealID(title string) (int, error) {
	if title == "" {
		return 0, nil
	}
	for _, d := range m.snap.Deals {
		if strings.EqualFold(d.Title, title) {
			return d.ID, nil
		}
	}
	return 0, fmt.Errorf("deal not found: %s", title)
}

func (m Model) saveContact() (string, error) {
	companyID, err := m.companyID(m.value(5))
	if err != nil {
		return "", err
	}
	in := handlers.ContactInput{
		ID:        m.selectedID,
		FirstName: m.value(0),
		LastName:  m.value(1),
		Email:     m.value(2),
		Phone:     m.value(3),
		Title:     m.value(4),
		CompanyID: companyID,
		Notes:     m.value(6),
	}

	h := handlers.NewContactHandlers(m.app.Contacts)
	var contact models.Contact
	if m.selectedID == 0 {
		_, contact, err = h.CreateContact(m.ctx, nil, in)
	} else {
		_, contact, err = h.UpdateContact(m.ctx, nil, in)
	}
	if err != nil {
		return "", err
	}
	return "Saved " + contact.FullName(), nil
}

func (m Model) saveCompany() (string, error) {
	in := handlers.CompanyInput{
		ID:       m.selectedID,
		Name:     m.value(0),
		Industry: m.value(1),
		Size:     m.value(2),
		Website:  m.value(3),
		Address:  m.value(4),
		Notes:    m.value(5),
	}

	h := handlers.NewCompanyHandlers(m.app.Companies)
	var company models.Company
	var err error
	if m.selectedID == 0 {
		_, company, err = h.CreateCompany(m.ctx, nil, in)
	} else {
		_, company, err = h.UpdateCompany(m.ctx, nil, in)
	}
	if err != nil {
		return "", err
	}
	return "Saved " + company.CompanyName, nil
}

func (m Model) saveDeal() (string, error) {
	in := handlers.DealInput{
		ID:        m.selectedID,
		Title:     m.value(0),
		Stage:     m.value(2),
		CloseDate: m.value(4),
		Notes:     m.value(7),
	}
	if v := m.value(1); v != "" {
		value, err := strconv.ParseFloat(strings.TrimPrefix(v, "$"), 64)
		if err != nil {
			return "", fmt.Errorf("invalid value: %q", v)
		}
		in.Value = value
	}
	if v := m.value(3); v != "" {
		p, err := strconv.Atoi(strings.TrimSuffix(v, "%"))
		if err != nil || p < 0 || p > 100 {
			return "", fmt.Errorf("invalid probability: %q", v)
		}
		in.Probability = p
	}
	if in.Stage != "" && !models.IsValidStage(in.Stage) {
		return "", fmt.Errorf("invalid stage: %s (valid: %s)", in.Stage, strings.Join(models.DealStages(), ", "))
	}

	var err error
	if in.CompanyID, err = m.companyID(m.value(5)); err != nil {
		return "", err
	}
	if in.ContactID, err = m.contactID(m.value(6)); err != nil {
		return "", err
	}

	h := handlers.NewDealHandlers(m.app.Deals)
	var deal models.Deal
	if m.selectedID == 0 {
		_, deal, err = h.CreateDeal(m.ctx, nil, in)
	} else {
		_, deal, err = h.UpdateDeal(m.ctx, nil, in)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Saved %s (%s, %d%%)", deal.Title, deal.Stage, deal.Probability), nil
}

func (m Model) saveActivity() (string, error) {
	in := handlers.ActivityInput{
		ID:          m.selectedID,
		Type:        m.value(0),
		Subject:     m.value(1),
		DueDate:     m.value(2),
		Description: m.value(5),
	}
	var err error
	if in.ContactID, err = m.contactID(m.value(3)); err != nil {
		return "", err
	}
	if in.DealID, err = m.dealID(m.value(4)); err != nil {
		return "", err
	}
	if in.Type != "" && !models.IsValidActivityType(in.Type) {
		return "", fmt.Errorf("invalid type: %s (valid: %s)", in.Type, strings.Join(models.ActivityTypes(), ", "))
	}

	h := handlers.NewActivityHandlers(m.app.Activities)
	var act models.Activity
	if m.selectedID == 0 {
		_, act, err = h.CreateActivity(m.ctx, nil, in)
	} else {
		_, act, err = h.UpdateActivity(m.ctx, nil, in)
	}
	if err != nil {
		return "", err
	}
	return "Saved " + act.Subject, nil
}
