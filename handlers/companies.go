// ABOUTME: Company MCP tool handlers
// ABOUTME: Implements list, get, create, update, delete, and search tools for companies
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/payload"
	"github.com/harperreed/dealdesk/services"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type CompanyHandlers struct {
	companies *services.Companies
}

func NewCompanyHandlers(companies *services.Companies) *CompanyHandlers {
	return &CompanyHandlers{companies: companies}
}

type CompanyInput struct {
	ID       int    `json:"id,omitempty" jsonschema:"Company id (required for update)"`
	Name     string `json:"name,omitempty" jsonschema:"Company name (required on create)"`
	Industry string `json:"industry,omitempty" jsonschema:"Industry"`
	Size     string `json:"size,omitempty" jsonschema:"Size band, e.g. Small or Enterprise"`
	Website  string `json:"website,omitempty" jsonschema:"Website URL"`
	Address  string `json:"address,omitempty" jsonschema:"Postal address"`
	Notes    string `json:"notes,omitempty" jsonschema:"Free-form notes"`
}

func (in CompanyInput) fields() payload.Input {
	return newFields().
		str("name_c", in.Name).
		str("industry_c", in.Industry).
		str("size_c", in.Size).
		str("website_c", in.Website).
		str("address_c", in.Address).
		str("notes_c", in.Notes).in
}

type SearchCompaniesInput struct {
	Query string `json:"query,omitempty" jsonschema:"Text matched against name, industry, and size (empty returns all)"`
}

type CompaniesOutput struct {
	Companies []models.Company `json:"companies"`
	Count     int              `json:"count"`
}

func (h *CompanyHandlers) ListCompanies(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, CompaniesOutput, error) {
	companies := h.companies.GetAll(ctx)
	return nil, CompaniesOutput{Companies: companies, Count: len(companies)}, nil
}

func (h *CompanyHandlers) SearchCompanies(ctx context.Context, _ *mcp.CallToolRequest, input SearchCompaniesInput) (*mcp.CallToolResult, CompaniesOutput, error) {
	companies := h.companies.Search(ctx, input.Query)
	return nil, CompaniesOutput{Companies: companies, Count: len(companies)}, nil
}

func (h *CompanyHandlers) GetCompany(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, models.Company, error) {
	if err := requireID(input.ID); err != nil {
		return nil, models.Company{}, err
	}
	company, err := h.companies.GetByID(ctx, input.ID)
	if err != nil {
		return nil, models.Company{}, err
	}
	return nil, *company, nil
}

func (h *CompanyHandlers) CreateCompany(ctx context.Context, _ *mcp.CallToolRequest, input CompanyInput) (*mcp.CallToolResult, models.Company, error) {
	if input.Name == "" {
		return nil, models.Company{}, fmt.Errorf("name is required")
	}
	company, err := h.companies.Create(ctx, input.fields())
	if err != nil {
		return nil, models.Company{}, err
	}
	return nil, *company, nil
}

func (h *CompanyHandlers) UpdateCompany(ctx context.Context, _ *mcp.CallToolRequest, input CompanyInput) (*mcp.CallToolResult, models.Company, error) {
	if err := requireID(input.ID); err != nil {
		return nil, models.Company{}, err
	}
	merged, err := overlay(ctx, input.ID, h.companies.GetByID, input.fields())
	if err != nil {
		return nil, models.Company{}, err
	}
	company, err := h.companies.Update(ctx, input.ID, merged)
	if err != nil {
		return nil, models.Company{}, err
	}
	return nil, *company, nil
}

func (h *CompanyHandlers) DeleteCompany(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := requireID(input.ID); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: h.companies.Delete(ctx, input.ID)}, nil
}
