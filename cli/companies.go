// ABOUTME: Company CLI commands
// ABOUTME: Human-friendly commands for managing and searching companies
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

func companyFlags(name string) (*flag.FlagSet, *handlers.CompanyInput) {
	fs := newFlagSet(name)
	in := &handlers.CompanyInput{}
	fs.StringVar(&in.Name, "name", "", "Company name")
	fs.StringVar(&in.Industry, "industry", "", "Industry")
	fs.StringVar(&in.Size, "size", "", "Size band (e.g. Small, Enterprise)")
	fs.StringVar(&in.Website, "website", "", "Website URL")
	fs.StringVar(&in.Address, "address", "", "Postal address")
	fs.StringVar(&in.Notes, "notes", "", "Notes about the company")
	return fs, in
}

// AddCompanyCommand adds a new company
func AddCompanyCommand(ctx context.Context, c *app.Container, args []string) error {
	fs, in := companyFlags("companies add")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if in.Name == "" {
		return fmt.Errorf("--name is required")
	}

	_, company, err := handlers.NewCompanyHandlers(c.Companies).CreateCompany(ctx, nil, *in)
	if err != nil {
		return err
	}

	printf("✓ Company created: %s (ID: %d)\n", company.CompanyName, company.ID)
	if company.Industry != "" {
		printf("  Industry: %s\n", company.Industry)
	}
	return nil
}

// ListCompaniesCommand lists companies, optionally filtered by a search term
func ListCompaniesCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("companies list")
	query := fs.String("query", "", "Match name, industry, or size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *query != "" {
		printCompanies(c.Companies.Search(ctx, *query))
	} else {
		printCompanies(c.Companies.GetAll(ctx))
	}
	return nil
}

// SearchCompaniesCommand matches the words after it against name, industry, and size
func SearchCompaniesCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("companies search")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("search term is required")
	}
	printCompanies(c.Companies.Search(ctx, strings.Join(fs.Args(), " ")))
	return nil
}

func printCompanies(companies []models.Company) {
	if len(companies) == 0 {
		printf("No companies found\n")
		return
	}

	w := newTable("ID", "NAME", "INDUSTRY", "SIZE", "WEBSITE")
	for _, company := range companies {
		row(w, company.ID, company.CompanyName, company.Industry, company.Size, company.Website)
	}
	_ = w.Flush()

	printf("\nTotal: %d company(ies)\n", len(companies))
}

// GetCompanyCommand prints one company with its people and deals
func GetCompanyCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("companies get")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "company")
	if err != nil {
		return err
	}
	_, company, err := handlers.NewCompanyHandlers(c.Companies).GetCompany(ctx, nil, handlers.IDInput{ID: id})
	if err != nil {
		return err
	}

	printf("%s (ID: %d)\n", company.CompanyName, company.ID)
	printf("  Industry: %s\n", orDash(company.Industry))
	printf("  Size:     %s\n", orDash(company.Size))
	printf("  Website:  %s\n", orDash(company.Website))
	printf("  Address:  %s\n", orDash(company.Address))
	if company.Notes != "" {
		printf("  Notes:    %s\n", company.Notes)
	}

	for _, contact := range c.Contacts.GetAll(ctx) {
		if contact.Company.IsSet() && contact.Company.ID == id {
			printf("  • %s %s\n", contact.FullName(), contact.Email)
		}
	}
	for _, deal := range c.Deals.GetAll(ctx) {
		if deal.Company.IsSet() && deal.Company.ID == id {
			printf("  $ %s: %s (%s)\n", deal.Title, money(deal.Value), deal.Stage)
		}
	}
	return nil
}

// UpdateCompanyCommand updates an existing company
func UpdateCompanyCommand(ctx context.Context, c *app.Container, args []string) error {
	fs, in := companyFlags("companies update")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "company")
	if err != nil {
		return err
	}
	in.ID = id

	_, company, err := handlers.NewCompanyHandlers(c.Companies).UpdateCompany(ctx, nil, *in)
	if err != nil {
		return err
	}
	printf("✓ Company updated: %s (ID: %d)\n", company.CompanyName, company.ID)
	return nil
}

// DeleteCompanyCommand deletes a company
func DeleteCompanyCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("companies delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "company")
	if err != nil {
		return err
	}
	if !c.Companies.Delete(ctx, id) {
		return fmt.Errorf("failed to delete company %d", id)
	}
	printf("✓ Company deleted: %d\n", id)
	return nil
}
