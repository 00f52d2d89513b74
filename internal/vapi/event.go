package vapi

import "time"

// EventType classifies a normalized provider event.
type EventType string

const (
	EventStatusUpdate     EventType = "status-update"
	EventTranscriptUpdate EventType = "transcript"
	EventFunctionCall     EventType = "function-call"
	EventEndOfCallReport  EventType = "end-of-call-report"
	EventHang             EventType = "hang"
	EventInformational    EventType = "informational"
	EventUnknown          EventType = "unknown"
)

// CallEvent is the canonical internal shape of one provider delivery.
//
// The provider wraps the real payload inside a "message" field in some
// deliveries and sends it flat in others; Normalize resolves both shapes into
// this one struct so nothing downstream touches the raw envelope.
//
// ExternalCallID may be empty when the provider genuinely omitted it from all
// known locations; downstream code must treat that as a droppable event, not
// an error.
type CallEvent struct {
	Type EventType

	ExternalCallID string
	Status         string

	AssistantID   string
	AssistantName string

	FromNumber string
	ToNumber   string

	StartedAt *time.Time
	EndedAt   *time.Time

	// DurationSeconds and Cost are nil when the delivery did not carry them.
	DurationSeconds *float64
	Cost            *float64

	// TranscriptFragment is the partial or full transcript text attached to
	// this delivery. For end-of-call reports this is the reconstructed full
	// transcript (see Report).
	TranscriptFragment string

	FunctionCall *FunctionCall
	Report       *EndOfCallReport
}

// FunctionCall is an assistant tool invocation relayed by the provider.
type FunctionCall struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// EndOfCallReport carries the provider's call wrap-up.
type EndOfCallReport struct {
	Summary    string
	Outcome    string
	Transcript string

	DurationSeconds *float64
	Cost            *float64
}
