// ABOUTME: Tests for CRM data models
// ABOUTME: Validates reference decoding, timestamp parsing, and enumeration accessors
package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceDecodesAllShapes(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want Reference
	}{
		"lookup object": {`{"Id": 7, "Name": "Acme"}`, Reference{ID: 7, Name: "Acme"}},
		"bare number":   {`12`, Reference{ID: 12}},
		"float number":  {`12.0`, Reference{ID: 12}},
		"numeric text":  {`"42"`, Reference{ID: 42}},
		"empty text":    {`""`, Reference{}},
		"null":          {`null`, Reference{}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var ref Reference
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &ref))
			assert.Equal(t, tc.want, ref)
		})
	}
}

func TestReferenceRejectsGarbage(t *testing.T) {
	var ref Reference
	assert.Error(t, json.Unmarshal([]byte(`"acme"`), &ref))
}

func TestContactDecodesExpandedCompany(t *testing.T) {
	raw := `{"Id": 3, "firstName_c": "Ada", "lastName_c": "Lovelace", "companyId_c": {"Id": 9, "Name": "Engines Ltd"}}`

	var c Contact
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	assert.Equal(t, 3, c.ID)
	assert.Equal(t, "Ada Lovelace", c.FullName())
	assert.Equal(t, "Engines Ltd", c.CompanyName())
	assert.True(t, c.Company.IsSet())
}

func TestActivityDue(t *testing.T) {
	a := Activity{DueDate: "2025-03-04T10:00:00.000Z"}
	due, ok := a.Due()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC), due.UTC())

	dateOnly := Activity{DueDate: "2025-03-04"}
	due, ok = dateOnly.Due()
	require.True(t, ok)
	assert.Equal(t, 4, due.Day())

	_, ok = Activity{}.Due()
	assert.False(t, ok)

	_, ok = Activity{DueDate: "next tuesday"}.Due()
	assert.False(t, ok)
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.FixedZone("X", 3600))
	assert.Equal(t, "2024-01-02T02:04:05.006Z", FormatTimestamp(ts))
}

func TestEnumerationAccessorsReturnCopies(t *testing.T) {
	stages := DealStages()
	require.Len(t, stages, 6)
	stages[0] = "Mutated"
	assert.Equal(t, StageLead, DealStages()[0])

	types := ActivityTypes()
	require.Equal(t, []string{"Call", "Email", "Meeting", "Task", "Note"}, types)
	types[0] = "Mutated"
	assert.Equal(t, ActivityCall, ActivityTypes()[0])
}

func TestStageValidation(t *testing.T) {
	assert.True(t, IsValidStage(StageClosedWon))
	assert.False(t, IsValidStage("closed won"))
	assert.False(t, IsValidStage("Not A Stage"))
	assert.True(t, IsValidActivityType(ActivityMeeting))
	assert.False(t, IsValidActivityType("Lunch"))
}

func TestForcedProbability(t *testing.T) {
	p, ok := ForcedProbability(StageClosedWon)
	assert.True(t, ok)
	assert.Equal(t, 100, p)

	p, ok = ForcedProbability(StageClosedLost)
	assert.True(t, ok)
	assert.Equal(t, 0, p)

	_, ok = ForcedProbability(StageProposal)
	assert.False(t, ok)
}
