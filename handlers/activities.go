// ABOUTME: Activity MCP tool handlers
// ABOUTME: Implements CRUD, completion, and the upcoming and overdue views for activities
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

type ActivityHandlers struct {
	activities *services.Activities
}

func NewActivityHandlers(activities *services.Activities) *ActivityHandlers {
	return &ActivityHandlers{activities: activities}
}

type ActivityInput struct {
	ID          int    `json:"id,omitempty" jsonschema:"Activity id (required for update)"`
	Type        string `json:"type,omitempty" jsonschema:"Activity type: Call, Email, Meeting, Task, Note"`
	Subject     string `json:"subject,omitempty" jsonschema:"Short subject (required on create)"`
	Description string `json:"description,omitempty" jsonschema:"Details"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"Due date, ISO 8601"`
	Completed   *bool  `json:"completed,omitempty" jsonschema:"Whether the activity is done"`
	ContactID   int    `json:"contact_id,omitempty" jsonschema:"Id of the related contact"`
	DealID      int    `json:"deal_id,omitempty" jsonschema:"Id of the related deal"`
}

func (in ActivityInput) fields() payload.Input {
	return newFields().
		str("type_c", in.Type).
		str("subject_c", in.Subject).
		str("description_c", in.Description).
		str("dueDate_c", in.DueDate).
		flag("completed_c", in.Completed).
		id("contactId_c", in.ContactID).
		id("dealId_c", in.DealID).in
}

type ListActivitiesInput struct {
	ContactID int `json:"contact_id,omitempty" jsonschema:"Only activities for this contact"`
	DealID    int `json:"deal_id,omitempty" jsonschema:"Only activities for this deal"`
}

type UpcomingInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of activities (default 10)"`
}

type ActivitiesOutput struct {
	Activities []models.Activity `json:"activities"`
	Count      int               `json:"count"`
}

func activitiesOutput(acts []models.Activity) ActivitiesOutput {
	return ActivitiesOutput{Activities: acts, Count: len(acts)}
}

func (h *ActivityHandlers) ListActivities(ctx context.Context, _ *mcp.CallToolRequest, input ListActivitiesInput) (*mcp.CallToolResult, ActivitiesOutput, error) {
	switch {
	case input.ContactID != 0 && input.DealID != 0:
		return nil, ActivitiesOutput{}, fmt.Errorf("use contact_id or deal_id, not both")
	case input.ContactID != 0:
		return nil, activitiesOutput(h.activities.GetByContactID(ctx, input.ContactID)), nil
	case input.DealID != 0:
		return nil, activitiesOutput(h.activities.GetByDealID(ctx, input.DealID)), nil
	}
	return nil, activitiesOutput(h.activities.GetAll(ctx)), nil
}

func (h *ActivityHandlers) GetActivity(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, models.Activity, error) {
	if err := requireID(input.ID); err != nil {
		return nil, models.Activity{}, err
	}
	act, err := h.activities.GetByID(ctx, input.ID)
	if err != nil {
		return nil, models.Activity{}, err
	}
	return nil, *act, nil
}

func (h *ActivityHandlers) CreateActivity(ctx context.Context, _ *mcp.CallToolRequest, input ActivityInput) (*mcp.CallToolResult, models.Activity, error) {
	if input.Subject == "" {
		return nil, models.Activity{}, fmt.Errorf("subject is required")
	}
	if input.Type != "" && !models.IsValidActivityType(input.Type) {
		return nil, models.Activity{}, fmt.Errorf("invalid type: %s (valid: %s)", input.Type, strings.Join(models.ActivityTypes(), ", "))
	}
	in := input.fields()
	if input.Type == "" {
		in["type_c"] = models.ActivityTask
	}
	act, err := h.activities.Create(ctx, in)
	if err != nil {
		return nil, models.Activity{}, err
	}
	return nil, *act, nil
}

func (h *ActivityHandlers) UpdateActivity(ctx context.Context, _ *mcp.CallToolRequest, input ActivityInput) (*mcp.CallToolResult, models.Activity, error) {
	if err := requireID(input.ID); err != nil {
		return nil, models.Activity{}, err
	}
	merged, err := overlay(ctx, input.ID, h.activities.GetByID, input.fields())
	if err != nil {
		return nil, models.Activity{}, err
	}
	act, err := h.activities.Update(ctx, input.ID, merged)
	if err != nil {
		return nil, models.Activity{}, err
	}
	return nil, *act, nil
}

func (h *ActivityHandlers) DeleteActivity(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := requireID(input.ID); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: h.activities.Delete(ctx, input.ID)}, nil
}

func (h *ActivityHandlers) CompleteActivity(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, models.Activity, error) {
	if err := requireID(input.ID); err != nil {
		return nil, models.Activity{}, err
	}
	act, err := h.activities.MarkCompleted(ctx, input.ID)
	if err != nil {
		return nil, models.Activity{}, err
	}
	return nil, *act, nil
}

func (h *ActivityHandlers) UpcomingActivities(ctx context.Context, _ *mcp.CallToolRequest, input UpcomingInput) (*mcp.CallToolResult, ActivitiesOutput, error) {
	return nil, activitiesOutput(h.activities.GetUpcoming(ctx, input.Limit)), nil
}

func (h *ActivityHandlers) OverdueActivities(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, ActivitiesOutput, error) {
	return nil, activitiesOutput(h.activities.GetOverdue(ctx)), nil
}
