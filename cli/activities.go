// ABOUTME: Activity CLI commands
// ABOUTME: Human-friendly commands for logging, listing, and completing activities
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

func activityFlags(name string) (*flag.FlagSet, *handlers.ActivityInput) {
	fs := newFlagSet(name)
	in := &handlers.ActivityInput{}
	fs.StringVar(&in.Type, "type", "", "Type ("+strings.Join(models.ActivityTypes(), ", ")+")")
	fs.StringVar(&in.Subject, "subject", "", "Short subject")
	fs.StringVar(&in.Description, "description", "", "Details")
	fs.StringVar(&in.DueDate, "due", "", "Due date (YYYY-MM-DD or RFC 3339)")
	fs.IntVar(&in.ContactID, "contact-id", 0, "Related contact ID")
	fs.IntVar(&in.DealID, "deal-id", 0, "Related deal ID")
	return fs, in
}

func printActivityLine(act models.Activity) {
	state := " "
	if act.Completed {
		state = "x"
	}
	printf("  [%s] %s %s: %s (due %s)\n", state, urgency(act), act.Type, act.Subject, orDash(act.DueDate))
}

// AddActivityCommand logs a new activity.
func AddActivityCommand(ctx context.Context, c *app.Container, args []string) error {
	fs, in := activityFlags("activities add")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if in.Subject == "" {
		return fmt.Errorf("--subject is required")
	}

	_, act, err := handlers.NewActivityHandlers(c.Activities).CreateActivity(ctx, nil, *in)
	if err != nil {
		return err
	}
	printf("✓ %s logged: %s (ID: %d)\n", act.Type, act.Subject, act.ID)
	return nil
}

// ListActivitiesCommand lists activities, optionally for one contact or deal.
func ListActivitiesCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("activities list")
	contactID := fs.Int("contact-id", 0, "Only activities for this contact")
	dealID := fs.Int("deal-id", 0, "Only activities for this deal")
	open := fs.Bool("open", false, "Hide completed activities")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, out, err := handlers.NewActivityHandlers(c.Activities).ListActivities(ctx, nil, handlers.ListActivitiesInput{ContactID: *contactID, DealID: *dealID})
	if err != nil {
		return err
	}

	acts := out.Activities
	if *open {
		acts = acts[:0:0]
		for _, act := range out.Activities {
			if !act.Completed {
				acts = append(acts, act)
			}
		}
	}
	printFollowups(acts, "No activities found")
	if len(acts) > 0 {
		printf("\nTotal: %d activit(ies)\n", len(acts))
	}
	return nil
}

// ActivitiesForContactCommand lists the activities linked to one contact.
func ActivitiesForContactCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("activities for-contact")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "contact")
	if err != nil {
		return err
	}
	printFollowups(c.Activities.GetByContactID(ctx, id), "No activities for this contact")
	return nil
}

// ActivitiesForDealCommand lists the activities linked to one deal.
func ActivitiesForDealCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("activities for-deal")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "deal")
	if err != nil {
		return err
	}
	printFollowups(c.Activities.GetByDealID(ctx, id), "No activities for this deal")
	return nil
}

// GetActivityCommand prints one activity.
func GetActivityCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("activities get")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "activity")
	if err != nil {
		return err
	}
	_, act, err := handlers.NewActivityHandlers(c.Activities).GetActivity(ctx, nil, handlers.IDInput{ID: id})
	if err != nil {
		return err
	}

	printf("%s: %s (ID: %d)\n", act.Type, act.Subject, act.ID)
	printActivityLine(act)
	printf("  Contact: %s\n", orDash(referenceName(act.Contact)))
	printf("  Deal:    %s\n", orDash(referenceName(act.Deal)))
	if act.Description != "" {
		printf("  %s\n", act.Description)
	}
	return nil
}

// UpdateActivityCommand updates an existing activity.
func UpdateActivityCommand(ctx context.Context, c *app.Container, args []string) error {
	fs, in := activityFlags("activities update")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "activity")
	if err != nil {
		return err
	}
	in.ID = id
	if in.Type != "" && !models.IsValidActivityType(in.Type) {
		return fmt.Errorf("invalid type: %s", in.Type)
	}

	_, act, err := handlers.NewActivityHandlers(c.Activities).UpdateActivity(ctx, nil, *in)
	if err != nil {
		return err
	}
	printf("✓ Activity updated: %s (ID: %d)\n", act.Subject, act.ID)
	return nil
}

// CompleteActivityCommand marks an activity as done.
func CompleteActivityCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("activities complete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "activity")
	if err != nil {
		return err
	}
	_, act, err := handlers.NewActivityHandlers(c.Activities).CompleteActivity(ctx, nil, handlers.IDInput{ID: id})
	if err != nil {
		return err
	}
	printf("✓ Completed: %s\n", act.Subject)
	return nil
}

// DeleteActivityCommand deletes an activity.
func DeleteActivityCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("activities delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs, "activity")
	if err != nil {
		return err
	}
	if !c.Activities.Delete(ctx, id) {
		return fmt.Errorf("failed to delete activity %d", id)
	}
	printf("✓ Activity deleted: %d\n", id)
	return nil
}
