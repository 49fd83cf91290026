// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for managing, bulk editing, and exporting contacts
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

// resolveCompany finds a company by exact name, creating it when create is
// set and nothing matches.
func resolveCompany(ctx context.Context, c *app.Container, name string, create bool) (int, error) {
	for _, company := range c.Companies.Search(ctx, name) {
		if strings.EqualFold(company.CompanyName, name) {
			return company.ID, nil
		}
	}
	if !create {
		return 0, fmt.Errorf("company not found: %s", name)
	}
	_, company, err := handlers.NewCompanyHandlers(c.Companies).CreateCompany(ctx, nil, handlers.CompanyInput{Name: name})
	if err != nil {
		return 0, fmt.Errorf("failed to create company: %w", err)
	}
	printf("✓ Company created: %s (ID: %d)\n", company.CompanyName, company.ID)
	return company.ID, nil
}

func contactFlags(name string) (*flag.FlagSet, *handlers.ContactInput, *string) {
	fs := newFlagSet(name)
	in := &handlers.ContactInput{}
	fs.StringVar(&in.FirstName, "first", "", "First name")
	fs.StringVar(&in.LastName, "last", "", "Last name")
	fs.StringVar(&in.Email, "email", "", "Email address")
	fs.StringVar(&in.Phone, "phone", "", "Phone number")
	fs.StringVar(&in.Title, "title", "", "Job title")
	fs.IntVar(&in.CompanyID, "company-id", 0, "Company ID")
	fs.StringVar(&in.Notes, "notes", "", "Notes about the contact")
	company := fs.String("company", "", "Company name")
	return fs, in, company
}

// AddContactCommand adds a new contact.
func AddContactCommand(ctx context.Context, c *app.Container, args []string) error {
	fs, in, company := contactFlags("contacts add")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if in.FirstName == "" && in.LastName == "" {
		return fmt.Errorf("--first or --last is required")
	}
	if *company != "" {
		id, err := resolveCompany(ctx, c, *company, true)
		if err != nil {
			return err
		}
		in.CompanyID = id
	}

	_, contact, err := handlers.NewContactHandlers(c.Contacts).CreateContact(ctx, nil, *in)
	if err != nil {
		return err
	}

	printf("✓ Contact created: %s (ID: %d)\n", contact.FullName(), contact.ID)
	if contact.Email != "" {
		printf("  Email: %s\n", contact.Email)
	}
	if name := contact.CompanyName(); name != "" {
		printf("  Company: %s\n", name)
	}
	return nil
}

// ListContactsCommand lists all contacts.
func ListContactsCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("contacts list")
	query := fs.String("query", "", "Filter by name or email")
	company := fs.String("company", "", "Filter by company name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var contacts []models.Contact
	for _, contact := range c.Contacts.GetAll(ctx) {
		if *query != "" && !containsFold(contact.FullName()+" "+contact.Email, *query) {
			continue
		}
		if *company != "" && !strings.EqualFold(contact.CompanyName(), *company) {
			continue
		}
		contacts = append(contacts, contact)
	}

	if len(contacts) == 0 {
		printf("No contacts found\n")
		return nil
	}

	w := newTable("ID", "NAME", "EMAIL", "PHONE", "TITLE", "COMPANY")
	for _, contact := range contacts {
		row(w, contact.ID, contact.FullName(), contact.Email, contact.Phone, contact.Title, contact.CompanyName())
	}
	_ = w.Flush()

	printf("\nTotal: %d contact(s)\n", len(contacts))
	return nil
}

// GetContactCommand prints one contact.
func GetContactCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("contacts get")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "contact")
	if err != nil {
		return err
	}
	_, contact, err := handlers.NewContactHandlers(c.Contacts).GetContact(ctx, nil, handlers.IDInput{ID: id})
	if err != nil {
		return err
	}

	printf("%s (ID: %d)\n", contact.FullName(), contact.ID)
	printf("  Title:   %s\n", orDash(contact.Title))
	printf("  Email:   %s\n", orDash(contact.Email))
	printf("  Phone:   %s\n", orDash(contact.Phone))
	printf("  Company: %s\n", orDash(contact.CompanyName()))
	if contact.Notes != "" {
		printf("  Notes:   %s\n", contact.Notes)
	}
	printf("  Updated: %s\n", orDash(contact.UpdatedAt))
	return nil
}

// UpdateContactCommand updates an existing contact. Flags that are not given
// keep their stored values.
func UpdateContactCommand(ctx context.Context, c *app.Container, args []string) error {
	fs, in, company := contactFlags("contacts update")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "contact")
	if err != nil {
		return err
	}
	in.ID = id
	if *company != "" {
		if in.CompanyID, err = resolveCompany(ctx, c, *company, false); err != nil {
			return err
		}
	}

	_, contact, err := handlers.NewContactHandlers(c.Contacts).UpdateContact(ctx, nil, *in)
	if err != nil {
		return err
	}
	printf("✓ Contact updated: %s (ID: %d)\n", contact.FullName(), contact.ID)
	return nil
}

// DeleteContactCommand deletes a contact.
func DeleteContactCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("contacts delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "contact")
	if err != nil {
		return err
	}
	if !c.Contacts.Delete(ctx, id) {
		return fmt.Errorf("failed to delete contact %d", id)
	}
	printf("✓ Contact deleted: %d\n", id)
	return nil
}

// BulkUpdateContactsCommand applies the same changes to several contacts.
func BulkUpdateContactsCommand(ctx context.Context, c *app.Container, args []string) error {
	fs, in, company := contactFlags("contacts bulk-update")
	rawIDs := fs.String("ids", "", "Comma separated contact IDs (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids, err := parseIDs(*rawIDs)
	if err != nil {
		return err
	}
	if *company != "" {
		if in.CompanyID, err = resolveCompany(ctx, c, *company, false); err != nil {
			return err
		}
	}

	_, res, err := handlers.NewContactHandlers(c.Contacts).BulkUpdateContacts(ctx, nil, handlers.BulkUpdateContactsInput{IDs: ids, Fields: *in})
	if err != nil {
		return err
	}

	printf("✓ Updated %d contact(s), %d failed\n", res.SuccessCount, res.ErrorCount)
	for _, e := range res.Errors {
		printf("  ✗ %d: %s\n", e.ID, orDash(e.Error))
	}
	return nil
}

// BulkDeleteContactsCommand deletes several contacts at once.
func BulkDeleteContactsCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("contacts bulk-delete")
	rawIDs := fs.String("ids", "", "Comma separated contact IDs (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids, err := parseIDs(*rawIDs)
	if err != nil {
		return err
	}

	_, res, err := handlers.NewContactHandlers(c.Contacts).BulkDeleteContacts(ctx, nil, handlers.IDsInput{IDs: ids})
	if err != nil {
		return err
	}

	printf("✓ Deleted %d contact(s), %d failed\n", res.SuccessCount, res.ErrorCount)
	for _, e := range res.Errors {
		printf("  ✗ %d: %s\n", e.ID, orDash(e.Error))
	}
	return nil
}

// ExportContactsCommand writes contacts to CSV through the configured sink.
func ExportContactsCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("contacts export")
	rawIDs := fs.String("ids", "", "Comma separated contact IDs (default all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids, err := parseIDs(*rawIDs)
	if err != nil {
		return err
	}

	_, res, err := handlers.NewContactHandlers(c.Contacts).ExportContacts(ctx, nil, handlers.ExportContactsInput{IDs: ids})
	if err != nil {
		return err
	}
	printf("✓ Exported %d contact(s) to %s\n", res.Count, res.Location)
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
