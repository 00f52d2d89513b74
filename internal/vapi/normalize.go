package vapi

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// ParseError marks a delivery whose body could not be decoded.
// The webhook endpoint still acks these; retrying cannot fix a malformed body.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "vapi: parse webhook payload: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// payload is the subset of the provider envelope this pipeline reads.
// It appears either at the top level or nested under "message".
type payload struct {
	Message *payload `json:"message"`

	Type   string `json:"type"`
	Status string `json:"status"`
	CallID string `json:"callId"`

	Call      *callInfo      `json:"call"`
	Assistant *assistantInfo `json:"assistant"`
	Customer  *numberInfo    `json:"customer"`
	Phone     *numberInfo    `json:"phoneNumber"`

	Transcript string        `json:"transcript"`
	Artifact   *artifactInfo `json:"artifact"`

	FunctionCall *FunctionCall `json:"functionCall"`

	Summary  string        `json:"summary"`
	Outcome  string        `json:"outcome"`
	Analysis *analysisInfo `json:"analysis"`

	StartedAt       *time.Time `json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt"`
	DurationSeconds *float64   `json:"durationSeconds"`
	Cost            *float64   `json:"cost"`
}

type callInfo struct {
	ID          string      `json:"id"`
	Status      string      `json:"status"`
	AssistantID string      `json:"assistantId"`
	Customer    *numberInfo `json:"customer"`
	Phone       *numberInfo `json:"phoneNumber"`
	StartedAt   *time.Time  `json:"startedAt"`
	EndedAt     *time.Time  `json:"endedAt"`
}

type assistantInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type numberInfo struct {
	Number string `json:"number"`
}

type artifactInfo struct {
	Transcript string `json:"transcript"`
	Messages   []turn `json:"messages"`
}

type turn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
	Content string `json:"content"`
}

type analysisInfo struct {
	Summary           string `json:"summary"`
	Outcome           string `json:"outcome"`
	SuccessEvaluation string `json:"successEvaluation"`
}

// Normalize converts a raw webhook body into one canonical CallEvent.
//
// An empty body is a provider health ping and yields an informational event,
// not an error. A JSON decode failure yields a *ParseError.
func Normalize(raw []byte) (CallEvent, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return CallEvent{Type: EventInformational}, nil
	}

	var flat payload
	if err := json.Unmarshal(trimmed, &flat); err != nil {
		return CallEvent{}, &ParseError{Err: err}
	}

	// Prefer the wrapped payload; fall back to the flat body.
	msg := &flat
	if flat.Message != nil {
		msg = flat.Message
	}

	ev := CallEvent{
		Type:           mapEventType(msg.Type),
		ExternalCallID: firstNonEmpty(callID(msg.Call), msg.CallID, callID(flat.Call)),
		Status:         firstNonEmpty(msg.Status, callStatus(msg.Call), callStatus(flat.Call)),
		AssistantID:    firstNonEmpty(assistantID(msg.Assistant), callAssistantID(msg.Call), callAssistantID(flat.Call)),
		AssistantName:  assistantName(msg.Assistant),
		FromNumber:     firstNonEmpty(number(msg.Customer), number(callCustomer(msg.Call))),
		ToNumber:       firstNonEmpty(number(msg.Phone), number(callPhone(msg.Call))),
		StartedAt:      firstTime(msg.StartedAt, callStartedAt(msg.Call)),
		EndedAt:        firstTime(msg.EndedAt, callEndedAt(msg.Call)),
		DurationSeconds: msg.DurationSeconds,
		Cost:            msg.Cost,
		FunctionCall:    msg.FunctionCall,
	}

	switch ev.Type {
	case EventTranscriptUpdate:
		ev.TranscriptFragment = msg.Transcript
	case EventStatusUpdate:
		ev.TranscriptFragment = msg.Transcript
	case EventEndOfCallReport:
		ev.Report = buildReport(msg)
		ev.TranscriptFragment = ev.Report.Transcript
	}

	return ev, nil
}

func mapEventType(s string) EventType {
	switch s {
	case "":
		return EventInformational
	case "status-update":
		return EventStatusUpdate
	case "transcript", "transcript-update":
		return EventTranscriptUpdate
	case "function-call", "tool-calls":
		return EventFunctionCall
	case "end-of-call-report":
		return EventEndOfCallReport
	case "hang":
		return EventHang
	default:
		return EventUnknown
	}
}

func buildReport(msg *payload) *EndOfCallReport {
	r := &EndOfCallReport{
		Summary:         msg.Summary,
		Outcome:         msg.Outcome,
		Transcript:      reportTranscript(msg),
		DurationSeconds: msg.DurationSeconds,
		Cost:            msg.Cost,
	}
	if msg.Analysis != nil {
		if r.Summary == "" {
			r.Summary = msg.Analysis.Summary
		}
		if r.Outcome == "" {
			r.Outcome = firstNonEmpty(msg.Analysis.Outcome, msg.Analysis.SuccessEvaluation)
		}
	}
	return r
}

// reportTranscript reconstructs the final transcript.
//
// Preference order: the structured turn list (more complete when present),
// then the flat artifact transcript, then the top-level transcript string.
func reportTranscript(msg *payload) string {
	if msg.Artifact != nil && len(msg.Artifact.Messages) > 0 {
		if t := joinTurns(msg.Artifact.Messages); t != "" {
			return t
		}
	}
	if msg.Artifact != nil && msg.Artifact.Transcript != "" {
		return msg.Artifact.Transcript
	}
	return msg.Transcript
}

// joinTurns renders structured turns as "{Role}: {text}" lines, dropping
// formatted lines shorter than 5 characters.
func joinTurns(turns []turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		label := roleLabel(t.Role)
		if label == "" {
			continue
		}
		text := firstNonEmpty(t.Message, t.Content)
		line := label + ": " + text
		if len(line) < 5 {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func roleLabel(role string) string {
	switch strings.ToLower(role) {
	case "assistant", "bot":
		return "AI"
	case "user", "human", "customer":
		return "Caller"
	default:
		// System prompts and tool output do not belong in the transcript.
		return ""
	}
}

// firstNonEmpty returns the first non-empty candidate.
// Field resolution across envelope shapes is concentrated here so the
// normalization contract stays testable on its own.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstTime(vals ...*time.Time) *time.Time {
	for _, v := range vals {
		if v != nil && !v.IsZero() {
			return v
		}
	}
	return nil
}

func callID(c *callInfo) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func callStatus(c *callInfo) string {
	if c == nil {
		return ""
	}
	return c.Status
}

func callAssistantID(c *callInfo) string {
	if c == nil {
		return ""
	}
	return c.AssistantID
}

func callCustomer(c *callInfo) *numberInfo {
	if c == nil {
		return nil
	}
	return c.Customer
}

func callPhone(c *callInfo) *numberInfo {
	if c == nil {
		return nil
	}
	return c.Phone
}

func callStartedAt(c *callInfo) *time.Time {
	if c == nil {
		return nil
	}
	return c.StartedAt
}

func callEndedAt(c *callInfo) *time.Time {
	if c == nil {
		return nil
	}
	return c.EndedAt
}

func assistantID(a *assistantInfo) string {
	if a == nil {
		return ""
	}
	return a.ID
}

func assistantName(a *assistantInfo) string {
	if a == nil {
		return ""
	}
	return a.Name
}

func number(n *numberInfo) string {
	if n == nil {
		return ""
	}
	return n.Number
}
