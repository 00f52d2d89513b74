package audit

import "time"

// Outcome of one executed automation action.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Entry is one line of the append-only automation run trail: which rule
// matched a call and how each of its actions went.
type Entry struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`
	CallID   string `json:"call_id" db:"call_id"`

	RuleID   string `json:"rule_id" db:"rule_id"`
	RuleName string `json:"rule_name" db:"rule_name"`

	ActionType string `json:"action_type" db:"action_type"`
	Outcome    string `json:"outcome" db:"outcome"`
	Error      string `json:"error,omitempty" db:"error"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
