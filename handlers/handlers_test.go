// ABOUTME: Tests for the MCP tool, prompt, and resource handlers
// ABOUTME: Runs handlers against an in-memory container and checks outputs and errors
package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/dealdesk/app"
	"github.com/harperreed/dealdesk/export"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/notify"
	"github.com/harperreed/dealdesk/record"
	"github.com/harperreed/dealdesk/services"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func setupTestContainer(t *testing.T) (*app.Container, *export.MemorySink) {
	t.Helper()
	sink := export.NewMemorySink()
	client := record.NewLocal(record.NewMemoryStore(), models.Schema())
	c := app.New(client, &notify.Recorder{}, sink, nil)
	t.Cleanup(func() { _ = c.Close() })
	return c, sink
}

func seedCompanyAndContact(t *testing.T, c *app.Container) (models.Company, models.Contact) {
	t.Helper()
	ctx := context.Background()
	_, company, err := NewCompanyHandlers(c.Companies).CreateCompany(ctx, nil, CompanyInput{Name: "Acme Corp", Industry: "Software", Size: "Small"})
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	_, contact, err := NewContactHandlers(c.Contacts).CreateContact(ctx, nil, ContactInput{
		FirstName: "John", LastName: "Doe", Email: "john@example.com", CompanyID: company.ID,
	})
	if err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}
	return company, contact
}

func TestCreateContactRequiresName(t *testing.T) {
	c, _ := setupTestContainer(t)
	_, _, err := NewContactHandlers(c.Contacts).CreateContact(context.Background(), nil, ContactInput{Email: "x@y.z"})
	if err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestCreateContactWithoutCompanyFails(t *testing.T) {
	c, _ := setupTestContainer(t)
	_, _, err := NewContactHandlers(c.Contacts).CreateContact(context.Background(), nil, ContactInput{FirstName: "Jane"})
	if !errors.Is(err, services.ErrWriteFailed) {
		t.Fatalf("expected ErrWriteFailed, got %v", err)
	}
}

func TestUpdateContactKeepsUnmentionedFields(t *testing.T) {
	c, _ := setupTestContainer(t)
	company, contact := seedCompanyAndContact(t, c)
	h := NewContactHandlers(c.Contacts)

	_, updated, err := h.UpdateContact(context.Background(), nil, ContactInput{ID: contact.ID, Title: "CTO"})
	if err != nil {
		t.Fatalf("UpdateContact failed: %v", err)
	}
	if updated.Title != "CTO" {
		t.Errorf("expected title CTO, got %q", updated.Title)
	}
	if updated.Email != "john@example.com" {
		t.Errorf("email was lost: %q", updated.Email)
	}
	if updated.Company == nil || updated.Company.ID != company.ID {
		t.Errorf("company was lost: %+v", updated.Company)
	}
}

func TestUpdateContactMissing(t *testing.T) {
	c, _ := setupTestContainer(t)
	_, _, err := NewContactHandlers(c.Contacts).UpdateContact(context.Background(), nil, ContactInput{ID: 99, Title: "x"})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBulkContactTools(t *testing.T) {
	c, sink := setupTestContainer(t)
	ctx := context.Background()
	_, contact := seedCompanyAndContact(t, c)
	h := NewContactHandlers(c.Contacts)

	_, res, err := h.BulkUpdateContacts(ctx, nil, BulkUpdateContactsInput{IDs: []int{contact.ID, 404}, Fields: ContactInput{Title: "VP"}})
	if err != nil {
		t.Fatalf("BulkUpdateContacts failed: %v", err)
	}
	if res.SuccessCount != 1 || res.ErrorCount != 1 {
		t.Errorf("expected 1 success and 1 error, got %+v", res)
	}

	_, _, err = h.BulkUpdateContacts(ctx, nil, BulkUpdateContactsInput{IDs: []int{contact.ID}})
	if err == nil {
		t.Error("expected error for empty patch")
	}

	_, exported, err := h.ExportContacts(ctx, nil, ExportContactsInput{IDs: []int{contact.ID}})
	if err != nil {
		t.Fatalf("ExportContacts failed: %v", err)
	}
	if exported.Count != 1 {
		t.Errorf("expected 1 exported contact, got %d", exported.Count)
	}
	file, ok := sink.Get(exported.Filename)
	if !ok {
		t.Fatalf("export %s not saved", exported.Filename)
	}
	if !strings.Contains(string(file.Content), `"VP"`) {
		t.Errorf("export missing updated title: %s", file.Content)
	}

	_, deleted, err := h.BulkDeleteContacts(ctx, nil, IDsInput{IDs: []int{contact.ID}})
	if err != nil {
		t.Fatalf("BulkDeleteContacts failed: %v", err)
	}
	if len(deleted.Deleted) != 1 {
		t.Errorf("expected 1 deleted, got %+v", deleted)
	}
}

func TestSearchCompanies(t *testing.T) {
	c, _ := setupTestContainer(t)
	seedCompanyAndContact(t, c)
	h := NewCompanyHandlers(c.Companies)

	_, out, err := h.SearchCompanies(context.Background(), nil, SearchCompaniesInput{Query: "soft"})
	if err != nil {
		t.Fatalf("SearchCompanies failed: %v", err)
	}
	if out.Count != 1 || out.Companies[0].CompanyName != "Acme Corp" {
		t.Errorf("unexpected search result: %+v", out)
	}
}

func TestDealLifecycle(t *testing.T) {
	c, _ := setupTestContainer(t)
	ctx := context.Background()
	company, contact := seedCompanyAndContact(t, c)
	h := NewDealHandlers(c.Deals)

	_, deal, err := h.CreateDeal(ctx, nil, DealInput{Title: "Enterprise License", Value: 50000, Probability: 30, CompanyID: company.ID, ContactID: contact.ID})
	if err != nil {
		t.Fatalf("CreateDeal failed: %v", err)
	}
	if deal.Stage != models.StageLead {
		t.Errorf("expected default stage Lead, got %q", deal.Stage)
	}

	_, deal, err = h.UpdateDeal(ctx, nil, DealInput{ID: deal.ID, Notes: "called"})
	if err != nil {
		t.Fatalf("UpdateDeal failed: %v", err)
	}
	if deal.Value != 50000 || deal.Probability != 30 {
		t.Errorf("update lost numeric fields: %+v", deal)
	}

	_, deal, err = h.UpdateDealStage(ctx, nil, UpdateDealStageInput{ID: deal.ID, Stage: models.StageClosedWon})
	if err != nil {
		t.Fatalf("UpdateDealStage failed: %v", err)
	}
	if deal.Probability != 100 {
		t.Errorf("expected probability 100, got %d", deal.Probability)
	}

	_, _, err = h.UpdateDealStage(ctx, nil, UpdateDealStageInput{ID: deal.ID, Stage: "won"})
	if !errors.Is(err, services.ErrInvalidStage) {
		t.Errorf("expected ErrInvalidStage, got %v", err)
	}

	_, byStage, err := h.DealsByStage(ctx, nil, struct{}{})
	if err != nil {
		t.Fatalf("DealsByStage failed: %v", err)
	}
	if len(byStage.Stages) != len(models.DealStages()) {
		t.Fatalf("expected %d stages, got %d", len(models.DealStages()), len(byStage.Stages))
	}
	won := byStage.Stages[4]
	if won.Stage != models.StageClosedWon || won.Count != 1 || won.Value != 50000 {
		t.Errorf("unexpected Closed Won bucket: %+v", won)
	}

	_, del, err := h.DeleteDeal(ctx, nil, IDInput{ID: deal.ID})
	if err != nil || !del.Deleted {
		t.Errorf("DeleteDeal: %+v %v", del, err)
	}
}

func TestActivityTools(t *testing.T) {
	c, _ := setupTestContainer(t)
	ctx := context.Background()
	_, contact := seedCompanyAndContact(t, c)
	h := NewActivityHandlers(c.Activities)

	past := models.FormatTimestamp(time.Now().Add(-48 * time.Hour))
	future := models.FormatTimestamp(time.Now().Add(48 * time.Hour))

	_, late, err := h.CreateActivity(ctx, nil, ActivityInput{Subject: "Send proposal", DueDate: past, ContactID: contact.ID})
	if err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}
	if late.Type != models.ActivityTask {
		t.Errorf("expected default type Task, got %q", late.Type)
	}
	if _, _, err := h.CreateActivity(ctx, nil, ActivityInput{Subject: "Demo", Type: models.ActivityMeeting, DueDate: future}); err != nil {
		t.Fatalf("CreateActivity failed: %v", err)
	}
	if _, _, err := h.CreateActivity(ctx, nil, ActivityInput{Subject: "x", Type: "Fax"}); err == nil {
		t.Error("expected error for invalid type")
	}

	_, overdue, _ := h.OverdueActivities(ctx, nil, struct{}{})
	if overdue.Count != 1 || overdue.Activities[0].Subject != "Send proposal" {
		t.Errorf("unexpected overdue: %+v", overdue)
	}
	_, upcoming, _ := h.UpcomingActivities(ctx, nil, UpcomingInput{})
	if upcoming.Count != 1 || upcoming.Activities[0].Subject != "Demo" {
		t.Errorf("unexpected upcoming: %+v", upcoming)
	}
	_, forContact, _ := h.ListActivities(ctx, nil, ListActivitiesInput{ContactID: contact.ID})
	if forContact.Count != 1 {
		t.Errorf("expected 1 activity for contact, got %d", forContact.Count)
	}
	if _, _, err := h.ListActivities(ctx, nil, ListActivitiesInput{ContactID: 1, DealID: 1}); err == nil {
		t.Error("expected error when filtering by both contact and deal")
	}

	_, done, err := h.CompleteActivity(ctx, nil, IDInput{ID: late.ID})
	if err != nil || !done.Completed {
		t.Fatalf("CompleteActivity: %+v %v", done, err)
	}
	_, overdue, _ = h.OverdueActivities(ctx, nil, struct{}{})
	if overdue.Count != 0 {
		t.Errorf("completed activity still overdue: %+v", overdue)
	}
}

func TestPromptsAndResources(t *testing.T) {
	c, _ := setupTestContainer(t)
	ctx := context.Background()
	company, contact := seedCompanyAndContact(t, c)

	prompts := NewPromptHandlers(c)
	res, err := prompts.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{
		Name:      "contact-summary",
		Arguments: map[string]string{"contact_id": strconv.Itoa(contact.ID)},
	}})
	if err != nil {
		t.Fatalf("GetPrompt failed: %v", err)
	}
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	if !strings.Contains(text, "John Doe") || !strings.Contains(text, "Acme Corp") {
		t.Errorf("prompt missing contact details: %s", text)
	}

	if _, err := prompts.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "company-overview"}}); err == nil {
		t.Error("expected error for missing company_id")
	}
	for _, name := range []string{"deal-analysis", "follow-up-suggestions"} {
		if _, err := prompts.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: name}}); err != nil {
			t.Errorf("%s failed: %v", name, err)
		}
	}

	resources := NewResourceHandlers(c)
	read, err := resources.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "dealdesk://companies/" + strconv.Itoa(company.ID)}})
	if err != nil {
		t.Fatalf("ReadResource failed: %v", err)
	}
	if !strings.Contains(read.Contents[0].Text, "Acme Corp") {
		t.Errorf("resource missing company: %s", read.Contents[0].Text)
	}
	if _, err := resources.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "dealdesk://pipeline"}}); err != nil {
		t.Errorf("pipeline resource failed: %v", err)
	}
	if _, err := resources.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "crm://contacts"}}); err == nil {
		t.Error("expected error for wrong scheme")
	}
	if _, err := resources.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "dealdesk://widgets"}}); err == nil {
		t.Error("expected error for unknown resource")
	}
}

func TestVizTools(t *testing.T) {
	c, _ := setupTestContainer(t)
	seedCompanyAndContact(t, c)
	h := NewVizHandlers(c)

	_, dash, err := h.Dashboard(context.Background(), nil, struct{}{})
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if dash.Stats.TotalContacts != 1 || !strings.Contains(dash.Text, "DEALDESK DASHBOARD") {
		t.Errorf("unexpected dashboard: %+v", dash)
	}

	_, graph, err := h.PipelineGraph(context.Background(), nil, struct{}{})
	if err != nil {
		t.Fatalf("PipelineGraph failed: %v", err)
	}
	if graph.NodeCount != 2 || graph.EdgeCount != 1 {
		t.Errorf("expected 2 nodes and 1 edge, got %d and %d", graph.NodeCount, graph.EdgeCount)
	}
	if !strings.Contains(graph.DOTSource, "Acme Corp") {
		t.Errorf("graph missing company label")
	}
}

func TestNewServerRegisters(t *testing.T) {
	c, _ := setupTestContainer(t)
	if NewServer(c, "test") == nil {
		t.Fatal("NewServer returned nil")
	}
}
