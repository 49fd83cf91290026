// ABOUTME: Deal service with stage transitions and the pipeline view
// ABOUTME: Moving a deal to a closed stage forces its probability to 100 (won) or 0 (lost)
package services

import (
	"context"
	"fmt"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/payload"
	"github.com/harperreed/dealdesk/record"
	"go.uber.org/zap"
)

var dealFields = []record.Field{
	record.Plain("Name"),
	record.Plain("title_c"),
	record.Plain("value_c"),
	record.Plain("stage_c"),
	record.Plain("probability_c"),
	record.Plain("closeDate_c"),
	record.Plain("notes_c"),
	record.Plain("createdAt_c"),
	record.Lookup("contactId_c"),
	record.Lookup("companyId_c"),
}

var dealCreate = payload.Shape{
	{Name: "title_c"},
	{Name: "value_c", Coerce: payload.Float},
	{Name: "stage_c"},
	{Name: "probability_c", Coerce: payload.Integer},
	{Name: "closeDate_c"},
	{Name: "contactId_c", Coerce: payload.Integer},
	{Name: "companyId_c", Coerce: payload.Integer},
	{Name: "notes_c", Default: ""},
	{Name: "createdAt_c", Stamp: true},
}

var dealUpdate = payload.Shape{
	{Name: "title_c"},
	{Name: "value_c", Coerce: payload.Float},
	{Name: "stage_c"},
	{Name: "probability_c", Coerce: payload.Integer},
	{Name: "closeDate_c"},
	{Name: "contactId_c", Coerce: payload.Integer},
	{Name: "companyId_c", Coerce: payload.Integer},
	{Name: "notes_c", Default: ""},
}

// applyStageRule forces probability for closed stages and leaves it alone
// otherwise.
func applyStageRule(rec map[string]any) {
	stage, _ := rec["stage_c"].(string)
	if p, ok := models.ForcedProbability(stage); ok {
		rec["probability_c"] = p
	}
}

// Deals is the deal service.
type Deals struct {
	*Entity[models.Deal]
}

func NewDeals(deps Deps) *Deals {
	return &Deals{
		Entity: newEntity[models.Deal](deps, entityConfig{
			table:  models.TableDeals,
			noun:   "Deal",
			plural: "deals",
			fields: dealFields,
			create: dealCreate,
			update: dealUpdate,
		}),
	}
}

// UpdateStage moves a deal to stage. An unknown stage fails with
// ErrInvalidStage before the client is called. Per-record failures are
// returned without notification.
func (d *Deals) UpdateStage(ctx context.Context, id int, stage string) (*models.Deal, error) {
	if !models.IsValidStage(stage) {
		d.deps.Logger.Debug("rejected stage", zap.Int("id", id), zap.String("stage", stage))
		return nil, fmt.Errorf("%w: %q", ErrInvalidStage, stage)
	}

	rec := map[string]any{"Id": id, "stage_c": stage}
	applyStageRule(rec)
	return d.write(ctx, OpUpdateStage, rec)
}

// GetDealsByStage groups every deal by stage. All stages are present, and
// each bucket keeps the order GetAll returned.
func (d *Deals) GetDealsByStage(ctx context.Context) map[string][]models.Deal {
	return GroupByStage(d.GetAll(ctx))
}

// GroupByStage buckets deals by stage. Deals in an unknown stage are dropped.
func GroupByStage(deals []models.Deal) map[string][]models.Deal {
	out := make(map[string][]models.Deal, len(models.DealStages()))
	for _, stage := range models.DealStages() {
		out[stage] = []models.Deal{}
	}
	for _, deal := range deals {
		if bucket, ok := out[deal.Stage]; ok {
			out[deal.Stage] = append(bucket, deal)
		}
	}
	return out
}
