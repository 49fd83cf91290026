package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/dealdesk/app"
	"github.com/harperreed/dealdesk/config"
	"github.com/harperreed/dealdesk/export"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/notify"
	"github.com/harperreed/dealdesk/record"
)

func setupTestCLI(t *testing.T) (*app.Container, *bytes.Buffer, *export.MemorySink) {
	t.Helper()
	sink := export.NewMemorySink()
	c := app.New(record.NewLocal(record.NewMemoryStore(), models.Schema()), notify.Nop, sink, nil)
	t.Cleanup(func() { _ = c.Close() })

	var out bytes.Buffer
	prev := Stdout
	Stdout = &out
	t.Cleanup(func() { Stdout = prev })
	return c, &out, sink
}

func run(t *testing.T, cmd func(context.Context, *app.Container, []string) error, c *app.Container, args ...string) {
	t.Helper()
	if err := cmd(context.Background(), c, args); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

func TestContactCommands(t *testing.T) {
	c, out, sink := setupTestCLI(t)

	run(t, AddContactCommand, c, "--first", "John", "--last", "Smith", "--email", "john@acme.com", "--company", "Acme Corp")
	if !strings.Contains(out.String(), "Company created: Acme Corp") {
		t.Errorf("expected company to be created, got:\n%s", out)
	}
	run(t, AddContactCommand, c, "--first", "Jane", "--company", "acme corp")
	if strings.Count(out.String(), "Company created") != 1 {
		t.Errorf("company should be reused by name, got:\n%s", out)
	}

	out.Reset()
	run(t, ListContactsCommand, c, "--company", "Acme Corp")
	if !strings.Contains(out.String(), "John Smith") || !strings.Contains(out.String(), "Total: 2 contact(s)") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	run(t, UpdateContactCommand, c, "--title", "CEO", "1")
	contact, err := c.Contacts.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if contact.Title != "CEO" || contact.Email != "john@acme.com" {
		t.Errorf("update should only change the title: %+v", contact)
	}

	out.Reset()
	run(t, BulkUpdateContactsCommand, c, "--ids", "1,2,99", "--phone", "555-0100")
	if !strings.Contains(out.String(), "Updated 2 contact(s), 1 failed") {
		t.Errorf("unexpected bulk update output:\n%s", out)
	}

	out.Reset()
	run(t, ExportContactsCommand, c)
	if len(sink.Names()) != 1 {
		t.Fatalf("expected one export, got %v", sink.Names())
	}
	if !strings.Contains(out.String(), "Exported 2 contact(s)") {
		t.Errorf("unexpected export output:\n%s", out)
	}

	run(t, BulkDeleteContactsCommand, c, "--ids", "1,2")
	if got := c.Contacts.GetAll(context.Background()); len(got) != 0 {
		t.Errorf("expected no contacts left, got %d", len(got))
	}
}

func TestContactCommandErrors(t *testing.T) {
	c, _, _ := setupTestCLI(t)
	ctx := context.Background()

	if err := AddContactCommand(ctx, c, []string{"--email", "x@y.z"}); err == nil {
		t.Error("expected error without a name")
	}
	if err := GetContactCommand(ctx, c, nil); err == nil {
		t.Error("expected error without an ID")
	}
	if err := GetContactCommand(ctx, c, []string{"abc"}); err == nil {
		t.Error("expected error for a non-numeric ID")
	}
	if err := UpdateContactCommand(ctx, c, []string{"--company", "Nowhere", "1"}); err == nil {
		t.Error("expected error for unknown company on update")
	}
	if err := BulkDeleteContactsCommand(ctx, c, []string{"--ids", "1,x"}); err == nil {
		t.Error("expected error for malformed ID list")
	}
}

func TestCompanyCommands(t *testing.T) {
	c, out, _ := setupTestCLI(t)

	run(t, AddCompanyCommand, c, "--name", "Acme Corp", "--industry", "Aerospace")
	run(t, AddCompanyCommand, c, "--name", "Blue Bakery", "--industry", "Food")

	out.Reset()
	run(t, ListCompaniesCommand, c, "--query", "food")
	if !strings.Contains(out.String(), "Blue Bakery") || strings.Contains(out.String(), "Acme Corp") {
		t.Errorf("unexpected search output:\n%s", out)
	}

	out.Reset()
	run(t, SearchCompaniesCommand, c, "aero")
	if !strings.Contains(out.String(), "Acme Corp") || strings.Contains(out.String(), "Blue Bakery") {
		t.Errorf("unexpected search output:\n%s", out)
	}
	if err := SearchCompaniesCommand(context.Background(), c, nil); err == nil {
		t.Error("expected error for empty search")
	}

	run(t, UpdateCompanyCommand, c, "--website", "https://acme.test", "1")
	out.Reset()
	run(t, GetCompanyCommand, c, "1")
	if !strings.Contains(out.String(), "https://acme.test") || !strings.Contains(out.String(), "Aerospace") {
		t.Errorf("unexpected company output:\n%s", out)
	}

	run(t, DeleteCompanyCommand, c, "2")
	if got := c.Companies.GetAll(context.Background()); len(got) != 1 {
		t.Errorf("expected 1 company, got %d", len(got))
	}
}

func TestDealCommands(t *testing.T) {
	c, out, _ := setupTestCLI(t)

	run(t, AddDealCommand, c, "--title", "Enterprise License", "--company", "Acme Corp", "--value", "5000", "--probability", "40")
	run(t, UpdateDealCommand, c, "--notes", "sent contract", "1")

	deal, err := c.Deals.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if deal.Value != 5000 || deal.Probability != 40 || deal.Stage != models.StageLead {
		t.Errorf("update should keep value, probability, and stage: %+v", deal)
	}

	out.Reset()
	run(t, DealStageCommand, c, "1", "Closed", "Won")
	if !strings.Contains(out.String(), "moved to Closed Won (100%)") {
		t.Errorf("unexpected stage output:\n%s", out)
	}
	if err := DealStageCommand(context.Background(), c, []string{"1", "Won"}); err == nil {
		t.Error("expected error for invalid stage")
	}

	out.Reset()
	run(t, DealBoardCommand, c)
	board := out.String()
	if strings.Index(board, "Lead (0)") > strings.Index(board, "Closed Won (1)") {
		t.Errorf("board should list stages in pipeline order:\n%s", board)
	}

	out.Reset()
	run(t, ListDealsCommand, c, "--stage", "closed won")
	if !strings.Contains(out.String(), "Total: 1 deal(s) - $5000.00") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	run(t, DeleteDealCommand, c, "1")
}

func TestActivityCommands(t *testing.T) {
	c, out, _ := setupTestCLI(t)
	fixed := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	yesterday := time.Now().Add(-24 * time.Hour).UTC().Format("2006-01-02")
	nextWeek := time.Now().Add(7 * 24 * time.Hour).UTC().Format("2006-01-02")

	run(t, AddActivityCommand, c, "--subject", "Send proposal", "--due", yesterday)
	run(t, AddActivityCommand, c, "--subject", "Kickoff", "--type", "Meeting", "--due", nextWeek)
	if err := AddActivityCommand(context.Background(), c, []string{"--subject", "x", "--type", "Fax"}); err == nil {
		t.Error("expected error for invalid type")
	}

	out.Reset()
	run(t, OverdueCommand, c)
	if !strings.Contains(out.String(), "Send proposal") || strings.Contains(out.String(), "Kickoff") {
		t.Errorf("unexpected overdue output:\n%s", out)
	}

	out.Reset()
	run(t, UpcomingCommand, c, "--limit", "5")
	if !strings.Contains(out.String(), "Kickoff") {
		t.Errorf("unexpected upcoming output:\n%s", out)
	}

	run(t, CompleteActivityCommand, c, "1")
	out.Reset()
	run(t, OverdueCommand, c)
	if !strings.Contains(out.String(), "Nothing overdue") {
		t.Errorf("completed activity still overdue:\n%s", out)
	}

	out.Reset()
	run(t, ListActivitiesCommand, c, "--open")
	if !strings.Contains(out.String(), "Total: 1 activit(ies)") {
		t.Errorf("unexpected list output:\n%s", out)
	}
}

func TestActivityLookupCommands(t *testing.T) {
	c, out, _ := setupTestCLI(t)

	run(t, AddContactCommand, c, "--first", "Ada", "--company", "Acme Corp")
	run(t, AddDealCommand, c, "--title", "Renewal", "--company", "Acme Corp")
	run(t, AddActivityCommand, c, "--subject", "Call Ada", "--contact-id", "1")
	run(t, AddActivityCommand, c, "--subject", "Price review", "--deal-id", "1")

	out.Reset()
	run(t, ActivitiesForContactCommand, c, "1")
	if !strings.Contains(out.String(), "Call Ada") || strings.Contains(out.String(), "Price review") {
		t.Errorf("unexpected contact activities:\n%s", out)
	}

	out.Reset()
	run(t, ActivitiesForDealCommand, c, "1")
	if !strings.Contains(out.String(), "Price review") || strings.Contains(out.String(), "Call Ada") {
		t.Errorf("unexpected deal activities:\n%s", out)
	}

	out.Reset()
	run(t, ActivitiesForDealCommand, c, "42")
	if !strings.Contains(out.String(), "No activities for this deal") {
		t.Errorf("unexpected empty output:\n%s", out)
	}
}

func TestUrgency(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	cases := map[string]models.Activity{
		"⚪": {DueDate: "someday"},
		"✅": {DueDate: "2024-03-01", Completed: true},
		"🔴": {DueDate: "2024-03-08"},
		"🟡": {DueDate: "2024-03-10"},
		"🟢": {DueDate: "2024-04-01"},
	}
	for want, act := range cases {
		if got := urgency(act); got != want {
			t.Errorf("urgency(%q) = %s, want %s", act.DueDate, got, want)
		}
	}
}

func TestVizCommands(t *testing.T) {
	c, out, _ := setupTestCLI(t)
	run(t, AddContactCommand, c, "--first", "Ada", "--company", "Acme Corp")

	out.Reset()
	run(t, VizDashboardCommand, c)
	if !strings.Contains(out.String(), "DEALDESK DASHBOARD") {
		t.Errorf("unexpected dashboard:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "pipeline.dot")
	run(t, VizGraphPipelineCommand, c, "--output", path)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("graph not written: %v", err)
	}
	if !strings.Contains(string(data), "contact_") {
		t.Errorf("graph missing contact node:\n%s", data)
	}
}

func TestConfigSetRemoteBackendFirst(t *testing.T) {
	t.Setenv("DEALDESK_BACKEND", "")
	t.Setenv("DEALDESK_REMOTE_BASE_URL", "")
	path := filepath.Join(t.TempDir(), "config.json")

	if err := ConfigSetCommand(path, []string{"backend", "remote"}); err != nil {
		t.Fatalf("switching backend failed: %v", err)
	}
	if err := ConfigSetCommand(path, []string{"remote.base_url", "https://records.example.com"}); err != nil {
		t.Fatalf("setting base url failed: %v", err)
	}

	cfg, err := config.LoadFrom(path, "")
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Backend != config.BackendRemote || cfg.Remote.BaseURL != "https://records.example.com" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestConfigCommands(t *testing.T) {
	_, out, _ := setupTestCLI(t)
	path := filepath.Join(t.TempDir(), "config.json")

	if err := ConfigSetCommand(path, []string{"remote.api_key", "s3cret"}); err != nil {
		t.Fatalf("ConfigSetCommand failed: %v", err)
	}
	if err := ConfigSetCommand(path, []string{"backend", "carrier-pigeon"}); err == nil {
		t.Error("expected error for invalid backend")
	}
	if err := ConfigSetCommand(path, []string{"backend"}); err == nil {
		t.Error("expected usage error")
	}

	cfg, err := config.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if cfg.Remote.APIKey != "s3cret" {
		t.Errorf("api key not saved: %+v", cfg.Remote)
	}

	out.Reset()
	if err := ConfigShowCommand(cfg, nil); err != nil {
		t.Fatalf("ConfigShowCommand failed: %v", err)
	}
	if strings.Contains(out.String(), "s3cret") {
		t.Errorf("secret leaked:\n%s", out)
	}
}
