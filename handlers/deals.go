// ABOUTME: Deal MCP tool handlers
// ABOUTME: Implements CRUD, stage transitions, and the by-stage pipeline view for deals
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/payload"
	"github.com/harperreed/dealdesk/services"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type DealHandlers struct {
	deals *services.Deals
}

func NewDealHandlers(deals *services.Deals) *DealHandlers {
	return &DealHandlers{deals: deals}
}

type DealInput struct {
	ID          int     `json:"id,omitempty" jsonschema:"Deal id (required for update)"`
	Title       string  `json:"title,omitempty" jsonschema:"Deal title (required on create)"`
	Value       float64 `json:"value,omitempty" jsonschema:"Deal value"`
	Stage       string  `json:"stage,omitempty" jsonschema:"Deal stage: Lead, Qualified, Proposal, Negotiation, Closed Won, Closed Lost"`
	Probability int     `json:"probability,omitempty" jsonschema:"Win probability 0-100 (forced to 100 or 0 when closed)"`
	CloseDate   string  `json:"close_date,omitempty" jsonschema:"Expected close date, YYYY-MM-DD"`
	ContactID   int     `json:"contact_id,omitempty" jsonschema:"Id of the primary contact"`
	CompanyID   int     `json:"company_id,omitempty" jsonschema:"Id of the company"`
	Notes       string  `json:"notes,omitempty" jsonschema:"Free-form notes"`
}

func (in DealInput) fields() payload.Input {
	return newFields().
		str("title_c", in.Title).
		num("value_c", in.Value).
		str("stage_c", in.Stage).
		num("probability_c", float64(in.Probability)).
		str("closeDate_c", in.CloseDate).
		id("contactId_c", in.ContactID).
		id("companyId_c", in.CompanyID).
		str("notes_c", in.Notes).in
}

type UpdateDealStageInput struct {
	ID    int    `json:"id" jsonschema:"Deal id (required)"`
	Stage string `json:"stage" jsonschema:"New stage (required)"`
}

type DealsOutput struct {
	Deals []models.Deal `json:"deals"`
	Count int           `json:"count"`
}

type StageBucket struct {
	Stage string        `json:"stage"`
	Count int           `json:"count"`
	Value float64       `json:"value"`
	Deals []models.Deal `json:"deals"`
}

type DealsByStageOutput struct {
	Stages []StageBucket `json:"stages"`
}

func (h *DealHandlers) ListDeals(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, DealsOutput, error) {
	deals := h.deals.GetAll(ctx)
	return nil, DealsOutput{Deals: deals, Count: len(deals)}, nil
}

func (h *DealHandlers) GetDeal(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, models.Deal, error) {
	if err := requireID(input.ID); err != nil {
		return nil, models.Deal{}, err
	}
	deal, err := h.deals.GetByID(ctx, input.ID)
	if err != nil {
		return nil, models.Deal{}, err
	}
	return nil, *deal, nil
}

func (h *DealHandlers) CreateDeal(ctx context.Context, _ *mcp.CallToolRequest, input DealInput) (*mcp.CallToolResult, models.Deal, error) {
	if input.Title == "" {
		return nil, models.Deal{}, fmt.Errorf("title is required")
	}
	in := input.fields()
	if input.Stage == "" {
		in["stage_c"] = models.StageLead
	}
	deal, err := h.deals.Create(ctx, in)
	if err != nil {
		return nil, models.Deal{}, err
	}
	return nil, *deal, nil
}

func (h *DealHandlers) UpdateDeal(ctx context.Context, _ *mcp.CallToolRequest, input DealInput) (*mcp.CallToolResult, models.Deal, error) {
	if err := requireID(input.ID); err != nil {
		return nil, models.Deal{}, err
	}
	merged, err := overlay(ctx, input.ID, h.deals.GetByID, input.fields())
	if err != nil {
		return nil, models.Deal{}, err
	}
	deal, err := h.deals.Update(ctx, input.ID, merged)
	if err != nil {
		return nil, models.Deal{}, err
	}
	return nil, *deal, nil
}

func (h *DealHandlers) DeleteDeal(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := requireID(input.ID); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: h.deals.Delete(ctx, input.ID)}, nil
}

func (h *DealHandlers) UpdateDealStage(ctx context.Context, _ *mcp.CallToolRequest, input UpdateDealStageInput) (*mcp.CallToolResult, models.Deal, error) {
	if err := requireID(input.ID); err != nil {
		return nil, models.Deal{}, err
	}
	deal, err := h.deals.UpdateStage(ctx, input.ID, input.Stage)
	if err != nil {
		return nil, models.Deal{}, fmt.Errorf("%w (valid: %s)", err, strings.Join(models.DealStages(), ", "))
	}
	return nil, *deal, nil
}

func (h *DealHandlers) DealsByStage(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, DealsByStageOutput, error) {
	grouped := h.deals.GetDealsByStage(ctx)
	out := DealsByStageOutput{Stages: make([]StageBucket, 0, len(grouped))}
	for _, stage := range models.DealStages() {
		bucket := StageBucket{Stage: stage, Deals: grouped[stage], Count: len(grouped[stage])}
		for _, d := range bucket.Deals {
			bucket.Value += d.Value
		}
		out.Stages = append(out.Stages, bucket)
	}
	return nil, out, nil
}
