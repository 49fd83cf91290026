package services

import (
	"context"
	"testing"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/payload"
	"github.com/harperreed/dealdesk/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDeal(t *testing.T, env *testEnv, title, stage string, probability int) *models.Deal {
	t.Helper()
	deal, err := env.deals.Create(context.Background(), payload.Input{
		"title_c": title, "value_c": 1000, "stage_c": stage, "probability_c": probability,
	})
	require.NoError(t, err)
	return deal
}

func TestUpdateStageForcesProbability(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	won := seedDeal(t, env, "Won", models.StageNegotiation, 70)
	got, err := env.deals.UpdateStage(ctx, won.ID, models.StageClosedWon)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Probability)

	lost := seedDeal(t, env, "Lost", models.StageProposal, 40)
	got, err = env.deals.UpdateStage(ctx, lost.ID, models.StageClosedLost)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Probability)

	open := seedDeal(t, env, "Open", models.StageLead, 25)
	got, err = env.deals.UpdateStage(ctx, open.ID, models.StageQualified)
	require.NoError(t, err)
	assert.Equal(t, models.StageQualified, got.Stage)
	assert.Equal(t, 25, got.Probability)

	last := env.client.updates[len(env.client.updates)-1].Records[0]
	assert.Equal(t, map[string]any{"Id": open.ID, "stage_c": models.StageQualified}, last)
}

func TestUpdateStageRejectsUnknownStageBeforeAnyCall(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.deals.UpdateStage(context.Background(), 1, "Not A Stage")
	assert.ErrorIs(t, err, ErrInvalidStage)
	assert.Equal(t, 0, env.client.count())
	assert.Empty(t, env.notes.Messages())
}

func TestUpdateStagePerRecordFailureIsNotNotified(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.deals.UpdateStage(context.Background(), 77, models.StageLead)
	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, OpUpdateStage, we.Op)
	assert.Empty(t, env.notes.Messages())
}

func TestUpdateStageClientFailureIsNotified(t *testing.T) {
	env := newTestEnv(t)
	env.client.update = func(string, record.BatchRequest) (*record.BatchResponse, error) {
		return &record.BatchResponse{Message: "Deal is archived"}, nil
	}

	_, err := env.deals.UpdateStage(context.Background(), 1, models.StageLead)
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.Equal(t, []string{"Deal is archived"}, env.notes.Messages())
}

func TestUpdateKeepsCallerProbability(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	deal := seedDeal(t, env, "Big", models.StageNegotiation, 80)

	got, err := env.deals.Update(ctx, deal.ID, payload.Input{
		"title_c": "Big", "value_c": "1000", "stage_c": models.StageClosedWon, "probability_c": "40",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StageClosedWon, got.Stage)
	assert.Equal(t, 40, got.Probability)
	assert.Equal(t, 40, env.client.updates[0].Records[0]["probability_c"])

	got, err = env.deals.Update(ctx, deal.ID, payload.Input{
		"title_c": "Big", "value_c": "1000", "stage_c": models.StageClosedLost, "probability_c": "80",
	})
	require.NoError(t, err)
	assert.Equal(t, 80, got.Probability)
}

func TestGetDealsByStageEmpty(t *testing.T) {
	env := newTestEnv(t)

	got := env.deals.GetDealsByStage(context.Background())
	require.Len(t, got, 6)
	for _, stage := range models.DealStages() {
		bucket, ok := got[stage]
		assert.True(t, ok, stage)
		assert.NotNil(t, bucket, stage)
		assert.Empty(t, bucket, stage)
	}
}

func TestGetDealsByStageKeepsOrder(t *testing.T) {
	env := newTestEnv(t)
	a := seedDeal(t, env, "A", models.StageLead, 10)
	seedDeal(t, env, "B", models.StageProposal, 50)
	c := seedDeal(t, env, "C", models.StageLead, 20)
	seedDeal(t, env, "D", "Someday", 0)

	got := env.deals.GetDealsByStage(context.Background())
	require.Len(t, got[models.StageLead], 2)
	assert.Equal(t, a.ID, got[models.StageLead][0].ID)
	assert.Equal(t, c.ID, got[models.StageLead][1].ID)
	assert.Len(t, got[models.StageProposal], 1)
	assert.NotContains(t, got, "Someday")
}

func TestGetDealsByStageOnFailure(t *testing.T) {
	env := newTestEnv(t)
	env.client.fetch = func(string, record.Query) (*record.Response, error) { return nil, errTransport }

	got := env.deals.GetDealsByStage(context.Background())
	assert.Len(t, got, 6)
	assert.Equal(t, []string{"Failed to load deals"}, env.notes.Messages())
}
