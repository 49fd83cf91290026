// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements list, get, create, update, delete, bulk, and export tools for contacts
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/payload"
	"github.com/harperreed/dealdesk/services"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ContactHandlers struct {
	contacts *services.Contacts
}

func NewContactHandlers(contacts *services.Contacts) *ContactHandlers {
	return &ContactHandlers{contacts: contacts}
}

type ContactInput struct {
	ID        int    `json:"id,omitempty" jsonschema:"Contact id (required for update)"`
	FirstName string `json:"first_name,omitempty" jsonschema:"First name"`
	LastName  string `json:"last_name,omitempty" jsonschema:"Last name"`
	Email     string `json:"email,omitempty" jsonschema:"Email address"`
	Phone     string `json:"phone,omitempty" jsonschema:"Phone number"`
	Title     string `json:"title,omitempty" jsonschema:"Job title"`
	CompanyID int    `json:"company_id,omitempty" jsonschema:"Id of the company the contact works at (required on create)"`
	Notes     string `json:"notes,omitempty" jsonschema:"Free-form notes"`
}

func (in ContactInput) fields() payload.Input {
	return newFields().
		str("firstName_c", in.FirstName).
		str("lastName_c", in.LastName).
		str("email_c", in.Email).
		str("phone_c", in.Phone).
		str("title_c", in.Title).
		id("companyId_c", in.CompanyID).
		str("notes_c", in.Notes).in
}

type IDInput struct {
	ID int `json:"id" jsonschema:"Record id (required)"`
}

type IDsInput struct {
	IDs []int `json:"ids" jsonschema:"Record ids (required)"`
}

type ContactsOutput struct {
	Contacts []models.Contact `json:"contacts"`
	Count    int              `json:"count"`
}

type DeleteOutput struct {
	ID      int  `json:"id"`
	Deleted bool `json:"deleted"`
}

func (h *ContactHandlers) ListContacts(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, ContactsOutput, error) {
	contacts := h.contacts.GetAll(ctx)
	return nil, ContactsOutput{Contacts: contacts, Count: len(contacts)}, nil
}

func (h *ContactHandlers) GetContact(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, models.Contact, error) {
	if err := requireID(input.ID); err != nil {
		return nil, models.Contact{}, err
	}
	contact, err := h.contacts.GetByID(ctx, input.ID)
	if err != nil {
		return nil, models.Contact{}, err
	}
	return nil, *contact, nil
}

func (h *ContactHandlers) CreateContact(ctx context.Context, _ *mcp.CallToolRequest, input ContactInput) (*mcp.CallToolResult, models.Contact, error) {
	if input.FirstName == "" && input.LastName == "" {
		return nil, models.Contact{}, fmt.Errorf("first_name or last_name is required")
	}
	contact, err := h.contacts.Create(ctx, input.fields())
	if err != nil {
		return nil, models.Contact{}, err
	}
	return nil, *contact, nil
}

func (h *ContactHandlers) UpdateContact(ctx context.Context, _ *mcp.CallToolRequest, input ContactInput) (*mcp.CallToolResult, models.Contact, error) {
	if err := requireID(input.ID); err != nil {
		return nil, models.Contact{}, err
	}
	merged, err := overlay(ctx, input.ID, h.contacts.GetByID, input.fields())
	if err != nil {
		return nil, models.Contact{}, err
	}
	contact, err := h.contacts.Update(ctx, input.ID, merged)
	if err != nil {
		return nil, models.Contact{}, err
	}
	return nil, *contact, nil
}

func (h *ContactHandlers) DeleteContact(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := requireID(input.ID); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: h.contacts.Delete(ctx, input.ID)}, nil
}

type BulkUpdateContactsInput struct {
	IDs    []int        `json:"ids" jsonschema:"Contact ids to update (required)"`
	Fields ContactInput `json:"fields" jsonschema:"Fields applied to every contact"`
}

func (h *ContactHandlers) BulkUpdateContacts(ctx context.Context, _ *mcp.CallToolRequest, input BulkUpdateContactsInput) (*mcp.CallToolResult, services.BulkUpdateResult, error) {
	if len(input.IDs) == 0 {
		return nil, services.BulkUpdateResult{}, fmt.Errorf("ids is required")
	}
	patch := input.Fields.fields()
	if len(patch) == 0 {
		return nil, services.BulkUpdateResult{}, fmt.Errorf("at least one field to change is required")
	}
	return nil, h.contacts.BulkUpdate(ctx, input.IDs, patch), nil
}

func (h *ContactHandlers) BulkDeleteContacts(ctx context.Context, _ *mcp.CallToolRequest, input IDsInput) (*mcp.CallToolResult, services.BulkDeleteResult, error) {
	if len(input.IDs) == 0 {
		return nil, services.BulkDeleteResult{}, fmt.Errorf("ids is required")
	}
	return nil, h.contacts.BulkDelete(ctx, input.IDs), nil
}

type ExportContactsInput struct {
	IDs []int `json:"ids,omitempty" jsonschema:"Contact ids to export (default all)"`
}

func (h *ContactHandlers) ExportContacts(ctx context.Context, _ *mcp.CallToolRequest, input ExportContactsInput) (*mcp.CallToolResult, services.ExportResult, error) {
	contacts := selectContacts(h.contacts.GetAll(ctx), input.IDs)
	res, err := h.contacts.BulkExport(ctx, contacts)
	if err != nil {
		return nil, services.ExportResult{}, err
	}
	return nil, res, nil
}

// selectContacts keeps contacts named by ids, or all of them when ids is empty.
func selectContacts(all []models.Contact, ids []int) []models.Contact {
	if len(ids) == 0 {
		return all
	}
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []models.Contact{}
	for _, c := range all {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
