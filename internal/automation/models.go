package automation

import "time"

// TriggerType selects which condition fields of a rule are consulted.
type TriggerType string

const (
	TriggerKeywordMatch      TriggerType = "keyword_match"
	TriggerOutcomeMatch      TriggerType = "outcome_match"
	TriggerDurationThreshold TriggerType = "duration_threshold"
	TriggerStatusChange      TriggerType = "status_change"
)

// Conditions is the union of per-trigger condition shapes. Only the fields
// relevant to the rule's trigger type are read.
type Conditions struct {
	// keyword_match: case-insensitive substring search over transcript+summary.
	Keywords []string `json:"keywords,omitempty"`

	// outcome_match: call outcome must be one of these.
	Outcomes []string `json:"outcomes,omitempty"`

	// duration_threshold: each bound is independently optional. A call matches
	// when it exceeds the min OR falls under the max; this is deliberately not
	// a range check.
	MinDurationSeconds *float64 `json:"min_duration_seconds,omitempty"`
	MaxDurationSeconds *float64 `json:"max_duration_seconds,omitempty"`

	// status_change: call status must be one of these.
	Statuses []string `json:"statuses,omitempty"`
}

type ActionType string

const (
	ActionTag        ActionType = "tag"
	ActionAssign     ActionType = "assign"
	ActionCreateLead ActionType = "create_lead"
	ActionWebhook    ActionType = "webhook"
)

// Action is one side effect attached to a rule.
type Action struct {
	Type ActionType `json:"type"`

	// tag
	Tag string `json:"tag,omitempty"`

	// assign
	AssigneeID string `json:"assignee_id,omitempty"`

	// create_lead
	LeadSource string `json:"lead_source,omitempty"`
	LeadScore  int    `json:"lead_score,omitempty"`

	// webhook
	WebhookID string `json:"webhook_id,omitempty"`
}

// Rule is a tenant-configured automation. The pipeline only reads rules;
// configuration happens elsewhere.
type Rule struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`
	Name     string `json:"name" db:"name"`

	Trigger    TriggerType `json:"trigger" db:"trigger_type"`
	Conditions Conditions  `json:"conditions" db:"conditions"`
	Actions    []Action    `json:"actions" db:"actions"`

	Enabled bool `json:"enabled" db:"enabled"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
