package enums

// Action is the viewer-specific next step offered for a class or attendee row.
// The empty Action means no action and is rendered as null.
type Action string

// Class actions
const (
	ActionNone        Action = ""
	ActionJoin        Action = "join"
	ActionLeave       Action = "leave"
	ActionEdit        Action = "edit"
	ActionCancel      Action = "cancel"
	ActionUnavailable Action = "unavailable"
	ActionCancelled   Action = "cancelled"
)

// Attendee row actions (trainer detail view)
const (
	ActionRemove Action = "remove"
	ActionUpdate Action = "update"
	ActionPassed Action = "passed"
	ActionFailed Action = "failed"
)

// SkillState is the viewer's standing in one skill
type SkillState string

const (
	SkillTrainer   SkillState = "trainer"
	SkillPassed    SkillState = "passed"
	SkillPending   SkillState = "pending"
	SkillScheduled SkillState = "scheduled"
	SkillFailed    SkillState = "failed"
)

// Rank orders skill summary rows: trainer rows first, then passed, pending, scheduled, failed
func (s SkillState) Rank() int {
	switch s {
	case SkillTrainer:
		return 0
	case SkillPassed:
		return 1
	case SkillPending:
		return 2
	case SkillScheduled:
		return 3
	default:
		return 4
	}
}
