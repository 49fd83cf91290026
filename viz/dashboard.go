// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Summarizes the pipeline, record totals, and activities needing attention
package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/services"
)

// Snapshot is everything the dashboard reads, fetched once.
type Snapshot struct {
	Contacts   []models.Contact
	Companies  []models.Company
	Deals      []models.Deal
	Activities []models.Activity
	Now        time.Time
}

type DashboardStats struct {
	// Pipeline overview
	PipelineByStage map[string]PipelineStageStats
	// Sum of value weighted by probability over open deals.
	WeightedPipeline float64

	TotalContacts   int
	TotalCompanies  int
	TotalDeals      int
	TotalActivities int

	Upcoming []models.Activity
	Overdue  []models.Activity
	// Open deals whose close date has passed.
	SlippedDeals []models.Deal
}

type PipelineStageStats struct {
	Stage string
	Count int
	Value float64
}

// UpcomingOnDashboard caps the upcoming list.
const UpcomingOnDashboard = 5

func GenerateDashboardStats(snap Snapshot) *DashboardStats {
	stats := &DashboardStats{
		PipelineByStage: make(map[string]PipelineStageStats),
		TotalContacts:   len(snap.Contacts),
		TotalCompanies:  len(snap.Companies),
		TotalDeals:      len(snap.Deals),
		TotalActivities: len(snap.Activities),
	}

	for stage, deals := range services.GroupByStage(snap.Deals) {
		pstats := PipelineStageStats{Stage: stage, Count: len(deals)}
		for _, deal := range deals {
			pstats.Value += deal.Value
		}
		stats.PipelineByStage[stage] = pstats
	}

	for _, deal := range snap.Deals {
		if isClosed(deal.Stage) {
			continue
		}
		stats.WeightedPipeline += deal.Value * float64(deal.Probability) / 100
		if closeDate, ok := models.ParseTimestamp(deal.CloseDate); ok && closeDate.Before(snap.Now) {
			stats.SlippedDeals = append(stats.SlippedDeals, deal)
		}
	}

	stats.Upcoming = services.Upcoming(snap.Activities, snap.Now, UpcomingOnDashboard)
	stats.Overdue = services.Overdue(snap.Activities, snap.Now)
	return stats
}

func isClosed(stage string) bool {
	return stage == models.StageClosedWon || stage == models.StageClosedLost
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  DEALDESK DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stats.PipelineByStage)
	out.WriteString(fmt.Sprintf("  Weighted open pipeline: %s\n\n", FormatMoney(stats.WeightedPipeline)))

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts  🏢 %d companies  💼 %d deals  📅 %d activities\n\n",
		stats.TotalContacts, stats.TotalCompanies, stats.TotalDeals, stats.TotalActivities))

	if len(stats.Upcoming) > 0 {
		out.WriteString("UPCOMING\n")
		for _, act := range stats.Upcoming {
			due, _ := act.Due()
			out.WriteString(fmt.Sprintf("  %s  %-8s %s\n", due.Format("Jan 02 15:04"), act.Type, act.Subject))
		}
		out.WriteString("\n")
	}

	if len(stats.Overdue) > 0 || len(stats.SlippedDeals) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		if len(stats.Overdue) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d activities overdue\n", len(stats.Overdue)))
		}
		if len(stats.SlippedDeals) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d open deals past their close date\n", len(stats.SlippedDeals)))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, pipeline map[string]PipelineStageStats) {
	maxCount := 0
	for _, pstats := range pipeline {
		if pstats.Count > maxCount {
			maxCount = pstats.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, stage := range models.DealStages() {
		pstats := pipeline[stage]

		// 0-10 blocks
		barLength := (pstats.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-13s %s  %2d (%s)\n",
			stage, bar, pstats.Count, FormatMoney(pstats.Value)))
	}
}

// FormatMoney abbreviates amounts of a thousand or more, e.g. $12.5K.
func FormatMoney(v float64) string {
	if v >= 1000 {
		return fmt.Sprintf("$%.1fK", v/1000)
	}
	return fmt.Sprintf("$%.0f", v)
}
