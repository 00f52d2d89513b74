package callrecords

import "time"

// CallRecord is the persisted view of one provider call, keyed by the
// provider-assigned external call id (unique per call across all deliveries).
//
// Lifecycle: created lazily on the first status-update or end-of-call report,
// patched on every later delivery, never deleted by the pipeline.
//
// Transcript is append-only across partial fragments; a full transcript
// reconstructed from the provider's structured message log supersedes the
// fragments accumulated so far.
type CallRecord struct {
	ID             string `json:"id" db:"id"`
	TenantID       string `json:"tenant_id" db:"tenant_id"`
	ExternalCallID string `json:"external_call_id" db:"external_call_id"`

	Status string `json:"status" db:"status"`

	AssistantID   string `json:"assistant_id,omitempty" db:"assistant_id"`
	AssistantName string `json:"assistant_name,omitempty" db:"assistant_name"`

	FromNumber string `json:"from_number,omitempty" db:"from_number"`
	ToNumber   string `json:"to_number,omitempty" db:"to_number"`

	StartedAt *time.Time `json:"started_at,omitempty" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`

	DurationSeconds *float64 `json:"duration_seconds,omitempty" db:"duration_seconds"`
	Cost            *float64 `json:"cost,omitempty" db:"cost"`

	Transcript string `json:"transcript,omitempty" db:"transcript"`
	Summary    string `json:"summary,omitempty" db:"summary"`
	Outcome    string `json:"outcome,omitempty" db:"outcome"`

	Metadata map[string]any `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Record statuses set by the pipeline itself. Provider statuses
// (e.g. "ringing", "in-progress") pass through as-is.
const (
	StatusEnded = "ended"
	StatusHung  = "hung"
)

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Status        *string
	AssistantID   *string
	AssistantName *string
	FromNumber    *string
	ToNumber      *string

	StartedAt *time.Time
	EndedAt   *time.Time

	DurationSeconds *float64
	Cost            *float64

	// AppendTranscript adds a fragment to the running transcript.
	// SetTranscript replaces it wholesale; when both are set, SetTranscript wins.
	AppendTranscript *string
	SetTranscript    *string

	Summary *string
	Outcome *string

	// MergeMetadata shallow-merges keys into the metadata map.
	MergeMetadata map[string]any

	// AppendFunctionCall appends an entry to metadata["functionCalls"].
	AppendFunctionCall any
}

func (p Patch) apply(rec *CallRecord) {
	if p.Status != nil {
		rec.Status = *p.Status
	}
	if p.AssistantID != nil {
		rec.AssistantID = *p.AssistantID
	}
	if p.AssistantName != nil {
		rec.AssistantName = *p.AssistantName
	}
	if p.FromNumber != nil {
		rec.FromNumber = *p.FromNumber
	}
	if p.ToNumber != nil {
		rec.ToNumber = *p.ToNumber
	}
	if p.StartedAt != nil {
		rec.StartedAt = p.StartedAt
	}
	if p.EndedAt != nil {
		rec.EndedAt = p.EndedAt
	}
	if p.DurationSeconds != nil {
		rec.DurationSeconds = p.DurationSeconds
	}
	if p.Cost != nil {
		rec.Cost = p.Cost
	}

	switch {
	case p.SetTranscript != nil:
		rec.Transcript = *p.SetTranscript
	case p.AppendTranscript != nil && *p.AppendTranscript != "":
		if rec.Transcript == "" {
			rec.Transcript = *p.AppendTranscript
		} else {
			rec.Transcript += "\n" + *p.AppendTranscript
		}
	}

	if p.Summary != nil {
		rec.Summary = *p.Summary
	}
	if p.Outcome != nil {
		rec.Outcome = *p.Outcome
	}

	if len(p.MergeMetadata) > 0 || p.AppendFunctionCall != nil {
		if rec.Metadata == nil {
			rec.Metadata = make(map[string]any)
		}
	}
	for k, v := range p.MergeMetadata {
		rec.Metadata[k] = v
	}
	if p.AppendFunctionCall != nil {
		calls, _ := rec.Metadata["functionCalls"].([]any)
		rec.Metadata["functionCalls"] = append(calls, p.AppendFunctionCall)
	}
}
