// ABOUTME: Follow-up CLI commands over open activities
// ABOUTME: Lists upcoming and overdue activities with urgency indicators
package cli

import (
	"context"
	"time"

	"github.com/harperreed/dealdesk/app"
	"github.com/harperreed/dealdesk/handlers"
	"github.com/harperreed/dealdesk/models"
)

// now is replaced in tests.
var now = time.Now

// urgency marks how close an activity is to its due date.
func urgency(act models.Activity) string {
	due, ok := act.Due()
	switch {
	case !ok:
		return "⚪"
	case act.Completed:
		return "✅"
	case due.Before(now()):
		return "🔴"
	case due.Before(now().Add(48 * time.Hour)):
		return "🟡"
	}
	return "🟢"
}

func printFollowups(acts []models.Activity, empty string) {
	if len(acts) == 0 {
		printf("%s\n", empty)
		return
	}
	w := newTable("", "DUE", "TYPE", "SUBJECT", "CONTACT", "DEAL", "ID")
	for _, act := range acts {
		row(w, urgency(act), act.DueDate, act.Type, act.Subject, referenceName(act.Contact), referenceName(act.Deal), act.ID)
	}
	_ = w.Flush()
}

// UpcomingCommand lists the next open activities by due date.
func UpcomingCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("activities upcoming")
	limit := fs.Int("limit", 0, "Maximum number of activities (default 10)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, out, err := handlers.NewActivityHandlers(c.Activities).UpcomingActivities(ctx, nil, handlers.UpcomingInput{Limit: *limit})
	if err != nil {
		return err
	}
	printFollowups(out.Activities, "Nothing coming up")
	return nil
}

// OverdueCommand lists open activities whose due date has passed.
func OverdueCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("activities overdue")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, out, err := handlers.NewActivityHandlers(c.Activities).OverdueActivities(ctx, nil, struct{}{})
	if err != nil {
		return err
	}
	printFollowups(out.Activities, "Nothing overdue")
	if out.Count > 0 {
		printf("\n%d overdue activit(ies)\n", out.Count)
	}
	return nil
}
