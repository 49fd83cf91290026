// ABOUTME: Deal CLI commands
// ABOUTME: Human-friendly commands for managing deals and moving them through the pipeline
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/harperreed/dealdesk/app"
	"github.com/harperreed/dealdesk/handlers"
	"github.com/harperreed/dealdesk/models"
)

func dealFlags(name string) (*flag.FlagSet, *handlers.DealInput, *string) {
	fs := newFlagSet(name)
	in := &handlers.DealInput{}
	fs.StringVar(&in.Title, "title", "", "Deal title")
	fs.Float64Var(&in.Value, "value", 0, "Deal value")
	fs.StringVar(&in.Stage, "stage", "", "Stage ("+strings.Join(models.DealStages(), ", ")+")")
	fs.IntVar(&in.Probability, "probability", 0, "Win probability 0-100")
	fs.StringVar(&in.CloseDate, "close-date", "", "Expected close date (YYYY-MM-DD)")
	fs.IntVar(&in.ContactID, "contact-id", 0, "Primary contact ID")
	fs.IntVar(&in.CompanyID, "company-id", 0, "Company ID")
	fs.StringVar(&in.Notes, "notes", "", "Notes about the deal")
	company := fs.String("company", "", "Company name")
	return fs, in, company
}

func referenceName(r *models.Reference) string {
	if !r.IsSet() {
		return ""
	}
	return r.Name
}

// AddDealCommand adds a new deal.
func AddDealCommand(ctx context.Context, c *app.Container, args []string) error {
	fs, in, company := dealFlags("deals add")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if in.Title == "" {
		return fmt.Errorf("--title is required")
	}
	if *company != "" {
		id, err := resolveCompany(ctx, c, *company, true)
		if err != nil {
			return err
		}
		in.CompanyID = id
	}

	_, deal, err := handlers.NewDealHandlers(c.Deals).CreateDeal(ctx, nil, *in)
	if err != nil {
		return err
	}

	printf("✓ Deal created: %s (ID: %d)\n", deal.Title, deal.ID)
	if name := referenceName(deal.Company); name != "" {
		printf("  Company: %s\n", name)
	}
	printf("  Value: %s\n", money(deal.Value))
	printf("  Stage: %s (%d%%)\n", deal.Stage, deal.Probability)
	return nil
}

// ListDealsCommand lists all deals.
func ListDealsCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("deals list")
	stage := fs.String("stage", "", "Filter by stage")
	company := fs.String("company", "", "Filter by company name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var deals []models.Deal
	for _, deal := range c.Deals.GetAll(ctx) {
		if *stage != "" && !strings.EqualFold(deal.Stage, *stage) {
			continue
		}
		if *company != "" && !strings.EqualFold(referenceName(deal.Company), *company) {
			continue
		}
		deals = append(deals, deal)
	}

	if len(deals) == 0 {
		printf("No deals found\n")
		return nil
	}

	w := newTable("ID", "TITLE", "COMPANY", "VALUE", "STAGE", "PROB", "CLOSE")
	var total float64
	for _, deal := range deals {
		row(w, deal.ID, deal.Title, referenceName(deal.Company), money(deal.Value), deal.Stage,
			fmt.Sprintf("%d%%", deal.Probability), deal.CloseDate)
		total += deal.Value
	}
	_ = w.Flush()

	printf("\nTotal: %d deal(s) - %s\n", len(deals), money(total))
	return nil
}

// GetDealCommand prints one deal with its activities.
func GetDealCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("deals get")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "deal")
	if err != nil {
		return err
	}
	_, deal, err := handlers.NewDealHandlers(c.Deals).GetDeal(ctx, nil, handlers.IDInput{ID: id})
	if err != nil {
		return err
	}

	printf("%s (ID: %d)\n", deal.Title, deal.ID)
	printf("  Value:       %s\n", money(deal.Value))
	printf("  Stage:       %s\n", deal.Stage)
	printf("  Probability: %d%%\n", deal.Probability)
	printf("  Close date:  %s\n", orDash(deal.CloseDate))
	printf("  Company:     %s\n", orDash(referenceName(deal.Company)))
	printf("  Contact:     %s\n", orDash(referenceName(deal.Contact)))
	if deal.Notes != "" {
		printf("  Notes:       %s\n", deal.Notes)
	}
	for _, act := range c.Activities.GetByDealID(ctx, id) {
		printActivityLine(act)
	}
	return nil
}

// UpdateDealCommand updates an existing deal.
func UpdateDealCommand(ctx context.Context, c *app.Container, args []string) error {
	fs, in, company := dealFlags("deals update")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "deal")
	if err != nil {
		return err
	}
	in.ID = id
	if *company != "" {
		if in.CompanyID, err = resolveCompany(ctx, c, *company, false); err != nil {
			return err
		}
	}

	_, deal, err := handlers.NewDealHandlers(c.Deals).UpdateDeal(ctx, nil, *in)
	if err != nil {
		return err
	}
	printf("✓ Deal updated: %s (%s, %d%%)\n", deal.Title, deal.Stage, deal.Probability)
	return nil
}

// DealStageCommand moves a deal to a new stage: deals stage <id> <stage>.
func DealStageCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("deals stage")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "deal")
	if err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("stage is required (%s)", strings.Join(models.DealStages(), ", "))
	}
	stage := strings.Join(fs.Args()[1:], " ")

	_, deal, err := handlers.NewDealHandlers(c.Deals).UpdateDealStage(ctx, nil, handlers.UpdateDealStageInput{ID: id, Stage: stage})
	if err != nil {
		return err
	}
	printf("✓ %s moved to %s (%d%%)\n", deal.Title, deal.Stage, deal.Probability)
	return nil
}

// DealBoardCommand prints deals grouped by stage in pipeline order.
func DealBoardCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("deals board")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, board, err := handlers.NewDealHandlers(c.Deals).DealsByStage(ctx, nil, struct{}{})
	if err != nil {
		return err
	}
	for _, bucket := range board.Stages {
		printf("%s (%d) %s\n", bucket.Stage, bucket.Count, money(bucket.Value))
		for _, deal := range bucket.Deals {
			printf("  • %s %s\n", deal.Title, money(deal.Value))
		}
	}
	return nil
}

// DeleteDealCommand deletes a deal.
func DeleteDealCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("deals delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "deal")
	if err != nil {
		return err
	}
	if !c.Deals.Delete(ctx, id) {
		return fmt.Errorf("failed to delete deal %d", id)
	}
	printf("✓ Deleted deal: %d\n", id)
	return nil
}
