package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/dealdesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

func sampleSnapshot() Snapshot {
	acme := &models.Reference{ID: 1, Name: "Acme"}
	return Snapshot{
		Companies: []models.Company{{ID: 1, CompanyName: "Acme"}},
		Contacts:  []models.Contact{{ID: 1, FirstName: "Ada", LastName: "L", Company: acme}},
		Deals: []models.Deal{
			{ID: 1, Title: "Renewal", Value: 10000, Probability: 50, Stage: models.StageProposal, Company: acme, Contact: &models.Reference{ID: 1}},
			{ID: 2, Title: "Upsell", Value: 2000, Probability: 100, Stage: models.StageClosedWon},
			{ID: 3, Title: "Slipped", Value: 1000, Probability: 10, Stage: models.StageLead, CloseDate: "2024-03-01"},
		},
		Activities: []models.Activity{
			{ID: 1, Type: models.ActivityCall, Subject: "Kickoff", DueDate: "2024-03-10T09:00:00.000Z", Deal: &models.Reference{ID: 1}},
			{ID: 2, Type: models.ActivityEmail, Subject: "Late", DueDate: "2024-03-01T09:00:00.000Z"},
		},
		Now: now,
	}
}

func TestGenerateDashboardStats(t *testing.T) {
	stats := GenerateDashboardStats(sampleSnapshot())

	assert.Equal(t, 3, stats.TotalDeals)
	assert.Equal(t, 1, stats.TotalContacts)
	assert.Len(t, stats.PipelineByStage, 6)
	assert.Equal(t, PipelineStageStats{Stage: models.StageProposal, Count: 1, Value: 10000}, stats.PipelineByStage[models.StageProposal])
	assert.InDelta(t, 5100, stats.WeightedPipeline, 0.001)
	require.Len(t, stats.SlippedDeals, 1)
	assert.Equal(t, "Slipped", stats.SlippedDeals[0].Title)
	require.Len(t, stats.Upcoming, 1)
	require.Len(t, stats.Overdue, 1)
	assert.Equal(t, "Late", stats.Overdue[0].Subject)
}

func TestRenderDashboard(t *testing.T) {
	out := RenderDashboard(GenerateDashboardStats(sampleSnapshot()))

	assert.Contains(t, out, "DEALDESK DASHBOARD")
	assert.Contains(t, out, "Proposal")
	assert.Contains(t, out, "$10.0K")
	assert.Contains(t, out, "Kickoff")
	assert.Contains(t, out, "1 activities overdue")
	assert.Contains(t, out, "1 open deals past their close date")
	for _, stage := range models.DealStages() {
		assert.True(t, strings.Contains(out, "  "+stage), stage)
	}
}

func TestRenderEmptyDashboard(t *testing.T) {
	out := RenderDashboard(GenerateDashboardStats(Snapshot{Now: now}))
	assert.NotContains(t, out, "NEEDS ATTENTION")
	assert.Contains(t, out, "0 contacts")
}

func TestGeneratePipelineGraph(t *testing.T) {
	out, err := NewGraphGenerator(nil).GeneratePipelineGraph(context.Background(), sampleSnapshot())
	require.NoError(t, err)

	assert.Contains(t, out, "digraph")
	for _, name := range []string{"company_1", "contact_1", "deal_1", "deal_3", "activity_1"} {
		assert.Contains(t, out, name)
	}
	assert.NotContains(t, out, "activity_2")
}
