// ABOUTME: Fixed activity type and deal stage enumerations
// ABOUTME: Accessors hand out copies so callers cannot mutate the shared lists
package models

// Activity types.
const (
	ActivityCall    = "Call"
	ActivityEmail   = "Email"
	ActivityMeeting = "Meeting"
	ActivityTask    = "Task"
	ActivityNote    = "Note"
)

// Deal stages, in pipeline order.
const (
	StageLead        = "Lead"
	StageQualified   = "Qualified"
	StageProposal    = "Proposal"
	StageNegotiation = "Negotiation"
	StageClosedWon   = "Closed Won"
	StageClosedLost  = "Closed Lost"
)

var activityTypes = [...]string{
	ActivityCall,
	ActivityEmail,
	ActivityMeeting,
	ActivityTask,
	ActivityNote,
}

var dealStages = [...]string{
	StageLead,
	StageQualified,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// ActivityTypes returns the activity type enumeration.
func ActivityTypes() []string {
	out := make([]string, len(activityTypes))
	copy(out, activityTypes[:])
	return out
}

// DealStages returns the deal stages in pipeline order.
func DealStages() []string {
	out := make([]string, len(dealStages))
	copy(out, dealStages[:])
	return out
}

func IsValidStage(stage string) bool {
	for _, s := range dealStages {
		if s == stage {
			return true
		}
	}
	return false
}

func IsValidActivityType(t string) bool {
	for _, s := range activityTypes {
		if s == t {
			return true
		}
	}
	return false
}

// ForcedProbability returns the probability a stage pins a deal to.
// Only the two closed stages pin a value.
func ForcedProbability(stage string) (int, bool) {
	switch stage {
	case StageClosedWon:
		return 100, true
	case StageClosedLost:
		return 0, true
	}
	return 0, false
}
