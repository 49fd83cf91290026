// ABOUTME: Activity service with upcoming, overdue, and per-record views
// ABOUTME: Views are computed locally from the full activity list
package services

import (
	"context"
	"sort"
	"time"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/payload"
	"github.com/harperreed/dealdesk/record"
)

// DefaultUpcomingLimit is used when GetUpcoming is given a non-positive limit.
const DefaultUpcomingLimit = 10

var activityFields = []record.Field{
	record.Plain("Name"),
	record.Plain("type_c"),
	record.Plain("subject_c"),
	record.Plain("description_c"),
	record.Plain("dueDate_c"),
	record.Plain("completed_c"),
	record.Plain("createdAt_c"),
	record.Lookup("contactId_c"),
	record.Lookup("dealId_c"),
}

var activityCreate = payload.Shape{
	{Name: "type_c"},
	{Name: "subject_c"},
	{Name: "description_c"},
	{Name: "dueDate_c"},
	{Name: "completed_c", Default: false},
	{Name: "createdAt_c", Stamp: true},
	{Name: "contactId_c", Coerce: payload.Integer, Optional: true},
	{Name: "dealId_c", Coerce: payload.Integer, Optional: true},
}

var activityUpdate = payload.Shape{
	{Name: "type_c"},
	{Name: "subject_c"},
	{Name: "description_c"},
	{Name: "dueDate_c"},
	{Name: "completed_c"},
	{Name: "contactId_c", Coerce: payload.Integer, Optional: true},
	{Name: "dealId_c", Coerce: payload.Integer, Optional: true},
}

// Activities is the activity service.
type Activities struct {
	*Entity[models.Activity]
}

func NewActivities(deps Deps) *Activities {
	return &Activities{
		Entity: newEntity[models.Activity](deps, entityConfig{
			table:  models.TableActivities,
			noun:   "Activity",
			plural: "activities",
			fields: activityFields,
			create: activityCreate,
			update: activityUpdate,
		}),
	}
}

// GetUpcoming returns open activities due now or later, soonest first,
// at most limit of them.
func (a *Activities) GetUpcoming(ctx context.Context, limit int) []models.Activity {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	return Upcoming(a.GetAll(ctx), a.deps.Now(), limit)
}

// GetOverdue returns open activities due before now in GetAll order.
func (a *Activities) GetOverdue(ctx context.Context) []models.Activity {
	return Overdue(a.GetAll(ctx), a.deps.Now())
}

// Upcoming filters and orders activities relative to now. Activities
// without a parseable due date are excluded.
func Upcoming(activities []models.Activity, now time.Time, limit int) []models.Activity {
	type dated struct {
		activity models.Activity
		due      time.Time
	}
	var open []dated
	for _, act := range activities {
		due, ok := act.Due()
		if act.Completed || !ok || due.Before(now) {
			continue
		}
		open = append(open, dated{activity: act, due: due})
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].due.Before(open[j].due) })

	if limit >= 0 && len(open) > limit {
		open = open[:limit]
	}
	out := make([]models.Activity, 0, len(open))
	for _, d := range open {
		out = append(out, d.activity)
	}
	return out
}

// Overdue keeps open activities due strictly before now.
func Overdue(activities []models.Activity, now time.Time) []models.Activity {
	out := []models.Activity{}
	for _, act := range activities {
		if due, ok := act.Due(); ok && !act.Completed && due.Before(now) {
			out = append(out, act)
		}
	}
	return out
}

// GetByContactID returns activities linked to a contact. Failures yield an
// empty slice without notification.
func (a *Activities) GetByContactID(ctx context.Context, contactID int) []models.Activity {
	return a.byReference(ctx, "contactId_c", contactID)
}

// GetByDealID returns activities linked to a deal.
func (a *Activities) GetByDealID(ctx context.Context, dealID int) []models.Activity {
	return a.byReference(ctx, "dealId_c", dealID)
}

func (a *Activities) byReference(ctx context.Context, field string, id int) []models.Activity {
	return a.fetch(ctx, OpByReference, record.Query{
		Fields: activityFields,
		Where:  []record.Condition{{FieldName: field, Operator: record.OpEqualTo, Values: []any{id}}},
	})
}

// MarkCompleted flags an activity as done. Per-record failures are returned
// without notification.
func (a *Activities) MarkCompleted(ctx context.Context, id int) (*models.Activity, error) {
	return a.write(ctx, OpMarkCompleted, map[string]any{"Id": id, "completed_c": true})
}
