package payload

import (
	"testing"

	"github.com/harperreed/dealdesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecordFlattensLookups(t *testing.T) {
	deal := models.Deal{
		ID:          4,
		Name:        "Renewal",
		Title:       "Renewal",
		Value:       1250.5,
		Probability: 60,
		Company:     &models.Reference{ID: 9, Name: "Acme"},
	}

	in, err := FromRecord(deal)
	require.NoError(t, err)
	assert.NotContains(t, in, "Id")
	assert.NotContains(t, in, "Name")
	assert.Equal(t, "Renewal", in["title_c"])
	assert.Equal(t, 1250.5, in["value_c"])
	assert.Equal(t, 60, in["probability_c"])
	assert.Equal(t, 9, in["companyId_c"])
}

func TestOverlay(t *testing.T) {
	base := Input{"title_c": "a", "stage_c": "Lead"}
	got := base.Overlay(Input{"stage_c": "Proposal", "notes_c": "x"})

	assert.Equal(t, Input{"title_c": "a", "stage_c": "Proposal", "notes_c": "x"}, got)
	assert.Equal(t, "Lead", base["stage_c"])
}
