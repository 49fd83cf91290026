// ABOUTME: Follow-up tab for the TUI
// ABOUTME: Orders open activities with overdue items ahead of upcoming ones
package tui

import (
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/services"
)

// followups lists overdue activities first, then the upcoming ones.
func (m Model) followups() []models.Activity {
	acts := m.visibleActivities()
	out := services.Overdue(acts, m.snap.Now)
	return append(out, services.Upcoming(acts, m.snap.Now, services.DefaultUpcomingLimit)...)
}

// indicator marks an activity as done, overdue, or open.
func (m Model) indicator(a models.Activity) string {
	if a.Completed {
		return "✅"
	}
	if due, ok := a.Due(); ok && due.Before(m.snap.Now) {
		return "🔴"
	}
	return "🟢"
}
