// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Builds contact, company, pipeline, and follow-up prompts from live records
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/dealdesk/app"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/services"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	app *app.Container
}

func NewPromptHandlers(c *app.Container) *PromptHandlers {
	return &PromptHandlers{app: c}
}

// Prompts lists the templates GetPrompt serves.
func Prompts() []*mcp.Prompt {
	return []*mcp.Prompt{
		{
			Name:        "contact-summary",
			Description: "Summarize a contact with their company, deals, and activities",
			Arguments:   []*mcp.PromptArgument{{Name: "contact_id", Description: "Contact id", Required: true}},
		},
		{
			Name:        "company-overview",
			Description: "Overview of a company with its people and deals",
			Arguments:   []*mcp.PromptArgument{{Name: "company_id", Description: "Company id", Required: true}},
		},
		{Name: "deal-analysis", Description: "Analyze pipeline health by stage"},
		{Name: "follow-up-suggestions", Description: "Suggest follow-ups from overdue and upcoming activities"},
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	arguments := request.Params.Arguments
	switch request.Params.Name {
	case "contact-summary":
		return h.contactSummary(ctx, arguments)
	case "company-overview":
		return h.companyOverview(ctx, arguments)
	case "deal-analysis":
		return h.dealAnalysis(ctx)
	case "follow-up-suggestions":
		return h.followUps(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func promptID(args map[string]string, key string) (int, error) {
	raw, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return id, nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func (h *PromptHandlers) contactSummary(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	id, err := promptID(args, "contact_id")
	if err != nil {
		return nil, err
	}
	contact, err := h.app.Contacts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}
	activities := h.app.Activities.GetByContactID(ctx, id)

	var deals []models.Deal
	for _, d := range h.app.Deals.GetAll(ctx) {
		if d.Contact.IsSet() && d.Contact.ID == id {
			deals = append(deals, d)
		}
	}

	var promptText strings.Builder
	promptText.WriteString("Please provide a comprehensive summary of this contact:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", contact.FullName()))
	if contact.Title != "" {
		promptText.WriteString(fmt.Sprintf("Title: %s\n", contact.Title))
	}
	if contact.Email != "" {
		promptText.WriteString(fmt.Sprintf("Email: %s\n", contact.Email))
	}
	if contact.Phone != "" {
		promptText.WriteString(fmt.Sprintf("Phone: %s\n", contact.Phone))
	}
	if name := contact.CompanyName(); name != "" {
		promptText.WriteString(fmt.Sprintf("Company: %s\n", name))
	}
	if len(deals) > 0 {
		promptText.WriteString(fmt.Sprintf("\nDeals: %d\n", len(deals)))
		for _, d := range deals {
			promptText.WriteString(fmt.Sprintf("  - %s: $%.0f (%s, %d%%)\n", d.Title, d.Value, d.Stage, d.Probability))
		}
	}
	if len(activities) > 0 {
		promptText.WriteString(fmt.Sprintf("\nActivities: %d\n", len(activities)))
		for _, a := range activities {
			state := "open"
			if a.Completed {
				state = "done"
			}
			promptText.WriteString(fmt.Sprintf("  - [%s] %s: %s (due %s)\n", state, a.Type, a.Subject, a.DueDate))
		}
	}
	if contact.Notes != "" {
		promptText.WriteString(fmt.Sprintf("\nNotes: %s\n", contact.Notes))
	}

	promptText.WriteString("\nPlease analyze this contact and provide:")
	promptText.WriteString("\n1. A brief summary of their role and background")
	promptText.WriteString("\n2. Recommendations for next steps or follow-up actions")
	promptText.WriteString("\n3. Any patterns or insights from their activity history")

	return userPrompt(fmt.Sprintf("Summary for contact: %s", contact.FullName()), promptText.String()), nil
}

func (h *PromptHandlers) companyOverview(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	id, err := promptID(args, "company_id")
	if err != nil {
		return nil, err
	}
	company, err := h.app.Companies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Complete overview of: %s\n\n", company.CompanyName))
	if company.Industry != "" {
		promptText.WriteString(fmt.Sprintf("Industry: %s\n", company.Industry))
	}
	if company.Size != "" {
		promptText.WriteString(fmt.Sprintf("Size: %s\n", company.Size))
	}
	if company.Website != "" {
		promptText.WriteString(fmt.Sprintf("Website: %s\n", company.Website))
	}

	var people []models.Contact
	for _, c := range h.app.Contacts.GetAll(ctx) {
		if c.Company.IsSet() && c.Company.ID == id {
			people = append(people, c)
		}
	}
	promptText.WriteString(fmt.Sprintf("\nContacts: %d people\n", len(people)))
	for _, contact := range people {
		promptText.WriteString(fmt.Sprintf("  - %s", contact.FullName()))
		if contact.Email != "" {
			promptText.WriteString(fmt.Sprintf(" <%s>", contact.Email))
		}
		promptText.WriteString("\n")
	}

	var totalValue float64
	var deals []models.Deal
	for _, d := range h.app.Deals.GetAll(ctx) {
		if d.Company.IsSet() && d.Company.ID == id {
			deals = append(deals, d)
			totalValue += d.Value
		}
	}
	promptText.WriteString(fmt.Sprintf("\nDeals: %d\n", len(deals)))
	for _, deal := range deals {
		promptText.WriteString(fmt.Sprintf("  - %s: $%.0f (%s)\n", deal.Title, deal.Value, deal.Stage))
	}
	if len(deals) > 0 {
		promptText.WriteString(fmt.Sprintf("\nTotal Deal Value: $%.0f\n", totalValue))
	}
	if company.Notes != "" {
		promptText.WriteString(fmt.Sprintf("\nNotes: %s\n", company.Notes))
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. A summary of the relationship with this company")
	promptText.WriteString("\n2. Key opportunities or risks")
	promptText.WriteString("\n3. Recommended next actions")

	return userPrompt(fmt.Sprintf("Overview of %s", company.CompanyName), promptText.String()), nil
}

func (h *PromptHandlers) dealAnalysis(ctx context.Context) (*mcp.GetPromptResult, error) {
	grouped := h.app.Deals.GetDealsByStage(ctx)

	var promptText strings.Builder
	total, totalValue := 0, 0.0
	for _, stage := range models.DealStages() {
		total += len(grouped[stage])
		for _, d := range grouped[stage] {
			totalValue += d.Value
		}
	}
	promptText.WriteString("Please analyze the current deal pipeline:\n\n")
	promptText.WriteString(fmt.Sprintf("Total Deals: %d\n", total))
	promptText.WriteString(fmt.Sprintf("Total Value: $%.0f\n\n", totalValue))
	promptText.WriteString("Pipeline by Stage:\n")
	for _, stage := range models.DealStages() {
		var value float64
		for _, d := range grouped[stage] {
			value += d.Value
		}
		promptText.WriteString(fmt.Sprintf("  - %s: %d deals, $%.0f\n", stage, len(grouped[stage]), value))
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. Analysis of pipeline health and distribution")
	promptText.WriteString("\n2. Recommendations for deals that may need attention")
	promptText.WriteString("\n3. Suggestions for improving conversion rates")

	return userPrompt("Deal pipeline analysis", promptText.String()), nil
}

func (h *PromptHandlers) followUps(ctx context.Context) (*mcp.GetPromptResult, error) {
	all := h.app.Activities.GetAll(ctx)
	now := time.Now()
	overdue := services.Overdue(all, now)
	upcoming := services.Upcoming(all, now, services.DefaultUpcomingLimit)

	var promptText strings.Builder
	promptText.WriteString("Here are my open activities.\n")
	writeList := func(title string, acts []models.Activity) {
		promptText.WriteString(fmt.Sprintf("\n%s: %d\n", title, len(acts)))
		for _, a := range acts {
			promptText.WriteString(fmt.Sprintf("  - %s: %s (due %s)\n", a.Type, a.Subject, a.DueDate))
		}
	}
	writeList("Overdue", overdue)
	writeList("Upcoming", upcoming)

	promptText.WriteString("\nPlease suggest:")
	promptText.WriteString("\n1. Which overdue items to tackle first and why")
	promptText.WriteString("\n2. Anything upcoming that needs preparation")
	promptText.WriteString("\n3. Follow-ups that are missing entirely")

	return userPrompt("Follow-up suggestions", promptText.String()), nil
}
