package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"voicedesk-platform/internal/actions"
	"voicedesk-platform/internal/automation"
	"voicedesk-platform/internal/callrecords"
	"voicedesk-platform/internal/leads"
	"voicedesk-platform/internal/tenants"
	"voicedesk-platform/internal/vapi"
	"voicedesk-platform/pkg/utils"
)

// StoreError marks a persistence failure. It is the only error class the
// webhook endpoint turns into a non-2xx response; everything else is logged
// and acknowledged.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

const deliveryObservationTTL = 24 * time.Hour

// Processor routes canonical call events to their handlers: record upserts,
// automation evaluation and action execution.
type Processor struct {
	resolver  *tenants.Resolver
	calls     *callrecords.Service
	leads     *leads.Service
	evaluator *automation.Evaluator
	executor  *actions.Executor
	rdb       *redis.Client
	log       *slog.Logger
	now       func() time.Time
}

func NewProcessor(
	resolver *tenants.Resolver,
	calls *callrecords.Service,
	leadSvc *leads.Service,
	evaluator *automation.Evaluator,
	executor *actions.Executor,
	rdb *redis.Client,
	log *slog.Logger,
) *Processor {
	return &Processor{
		resolver:  resolver,
		calls:     calls,
		leads:     leadSvc,
		evaluator: evaluator,
		executor:  executor,
		rdb:       rdb,
		log:       log,
		now:       time.Now,
	}
}

// Process handles one normalized event. The returned error is always a
// *StoreError; every other failure mode is swallowed here so the provider
// still gets its acknowledgment.
func (p *Processor) Process(ctx context.Context, ev vapi.CallEvent) error {
	switch ev.Type {
	case vapi.EventStatusUpdate:
		return p.handleStatusUpdate(ctx, ev)
	case vapi.EventTranscriptUpdate:
		return p.handleTranscriptUpdate(ctx, ev)
	case vapi.EventFunctionCall:
		return p.handleFunctionCall(ctx, ev)
	case vapi.EventEndOfCallReport:
		return p.handleEndOfCallReport(ctx, ev)
	case vapi.EventHang:
		return p.handleHang(ctx, ev)
	default:
		p.log.Debug("ignoring event", "type", string(ev.Type), "external_call_id", ev.ExternalCallID)
		return nil
	}
}

func (p *Processor) handleStatusUpdate(ctx context.Context, ev vapi.CallEvent) error {
	if ev.ExternalCallID == "" {
		p.log.Warn("status update without call id dropped")
		return nil
	}

	tenantID, ok, err := p.tenantFor(ctx, ev)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	patch := callrecords.Patch{
		StartedAt: ev.StartedAt,
	}
	if ev.Status != "" {
		patch.Status = &ev.Status
	}
	if ev.AssistantID != "" {
		patch.AssistantID = &ev.AssistantID
	}
	if ev.AssistantName != "" {
		patch.AssistantName = &ev.AssistantName
	}
	if ev.FromNumber != "" {
		patch.FromNumber = &ev.FromNumber
	}
	if ev.ToNumber != "" {
		patch.ToNumber = &ev.ToNumber
	}
	if ev.TranscriptFragment != "" {
		patch.AppendTranscript = &ev.TranscriptFragment
	}

	rec, err := p.calls.Upsert(ctx, tenantID, ev.ExternalCallID, patch)
	if err != nil {
		return &StoreError{Op: "status update upsert", Err: err}
	}

	// Automation runs mid-call only when the update carried transcript text;
	// a bare status transition has nothing for keyword rules to look at.
	if ev.TranscriptFragment != "" {
		p.runAutomation(ctx, &rec)
	}
	return nil
}

func (p *Processor) handleTranscriptUpdate(ctx context.Context, ev vapi.CallEvent) error {
	if ev.ExternalCallID == "" || ev.TranscriptFragment == "" {
		return nil
	}

	_, _, err := p.calls.ApplyIfExists(ctx, ev.ExternalCallID, callrecords.Patch{
		AppendTranscript: &ev.TranscriptFragment,
	})
	if err != nil {
		return &StoreError{Op: "transcript append", Err: err}
	}
	return nil
}

func (p *Processor) handleFunctionCall(ctx context.Context, ev vapi.CallEvent) error {
	if ev.ExternalCallID == "" || ev.FunctionCall == nil {
		return nil
	}

	rec, ok, err := p.calls.ApplyIfExists(ctx, ev.ExternalCallID, callrecords.Patch{
		AppendFunctionCall: map[string]any{
			"name":       ev.FunctionCall.Name,
			"parameters": ev.FunctionCall.Parameters,
			"at":         p.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return &StoreError{Op: "function call append", Err: err}
	}
	if !ok {
		return nil
	}

	if strings.Contains(strings.ToLower(ev.FunctionCall.Name), "book") {
		p.captureBookingLead(ctx, &rec, ev.FunctionCall)
	}
	return nil
}

func (p *Processor) handleEndOfCallReport(ctx context.Context, ev vapi.CallEvent) error {
	if ev.ExternalCallID == "" {
		p.log.Warn("end of call report without call id dropped")
		return nil
	}

	p.observeDelivery(ctx, ev)

	tenantID, ok, err := p.tenantFor(ctx, ev)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	status := callrecords.StatusEnded
	patch := callrecords.Patch{
		Status:  &status,
		EndedAt: ev.EndedAt,
	}
	if patch.EndedAt == nil {
		now := p.now().UTC()
		patch.EndedAt = &now
	}
	if ev.AssistantID != "" {
		patch.AssistantID = &ev.AssistantID
	}
	if ev.AssistantName != "" {
		patch.AssistantName = &ev.AssistantName
	}
	if ev.FromNumber != "" {
		patch.FromNumber = &ev.FromNumber
	}
	if ev.ToNumber != "" {
		patch.ToNumber = &ev.ToNumber
	}
	if ev.StartedAt != nil {
		patch.StartedAt = ev.StartedAt
	}

	if rep := ev.Report; rep != nil {
		if rep.Transcript != "" {
			patch.SetTranscript = &rep.Transcript
		}
		if rep.Summary != "" {
			patch.Summary = &rep.Summary
		}
		if rep.Outcome != "" {
			patch.Outcome = &rep.Outcome
		}
		if rep.DurationSeconds != nil {
			patch.DurationSeconds = rep.DurationSeconds
		}
		if rep.Cost != nil {
			patch.Cost = rep.Cost
		}
	}

	rec, err := p.calls.Upsert(ctx, tenantID, ev.ExternalCallID, patch)
	if err != nil {
		return &StoreError{Op: "end of call upsert", Err: err}
	}

	p.runAutomation(ctx, &rec)
	return nil
}

func (p *Processor) handleHang(ctx context.Context, ev vapi.CallEvent) error {
	if ev.ExternalCallID == "" {
		return nil
	}

	status := callrecords.StatusHung
	now := p.now().UTC()
	_, _, err := p.calls.ApplyIfExists(ctx, ev.ExternalCallID, callrecords.Patch{
		Status:  &status,
		EndedAt: &now,
	})
	if err != nil {
		return &StoreError{Op: "hang update", Err: err}
	}
	return nil
}

// tenantFor finds the owning tenant for an event. An existing record pins the
// tenant; otherwise the resolver decides. A false return means the event has
// no owner and is dropped without error.
func (p *Processor) tenantFor(ctx context.Context, ev vapi.CallEvent) (string, bool, error) {
	rec, ok, err := p.calls.FindByExternalID(ctx, ev.ExternalCallID)
	if err != nil {
		return "", false, &StoreError{Op: "call lookup", Err: err}
	}
	if ok {
		return rec.TenantID, true, nil
	}

	tenant, ok, err := p.resolver.Resolve(ctx, ev.AssistantID)
	if err != nil {
		return "", false, &StoreError{Op: "tenant resolution", Err: err}
	}
	if !ok {
		p.log.Warn("no tenant resolved, event dropped",
			"external_call_id", ev.ExternalCallID,
			"assistant_id", ev.AssistantID,
		)
		return "", false, nil
	}
	return tenant.ID, true, nil
}

func (p *Processor) runAutomation(ctx context.Context, rec *callrecords.CallRecord) {
	matched, err := p.evaluator.Evaluate(ctx, rec)
	if err != nil {
		p.log.Error("rule evaluation failed",
			"tenant_id", rec.TenantID,
			"call_id", rec.ID,
			"error", err,
		)
		return
	}
	if len(matched) == 0 {
		return
	}
	p.executor.ExecuteAll(ctx, rec, matched)
}

// captureBookingLead turns a booking function call into a lead using the
// structured parameters the assistant collected.
func (p *Processor) captureBookingLead(ctx context.Context, rec *callrecords.CallRecord, fc *vapi.FunctionCall) {
	name := paramString(fc.Parameters, "name", "customerName", "customer_name")
	phone := paramString(fc.Parameters, "phone", "phoneNumber", "phone_number")
	email := paramString(fc.Parameters, "email")
	if phone == "" {
		phone = rec.FromNumber
	}
	if name == "" && phone == "" {
		return
	}

	_, err := p.leads.Create(ctx, rec.TenantID, leads.NewLeadInput{
		CallID: rec.ID,
		Name:   name,
		Phone:  phone,
		Email:  email,
		Source: "booking",
	})
	if err != nil {
		p.log.Error("booking lead creation failed",
			"tenant_id", rec.TenantID,
			"call_id", rec.ID,
			"error", err,
		)
	}
}

// observeDelivery counts end-of-call deliveries per call so provider retries
// show up in logs. Duplicates are never suppressed; re-running actions on a
// retry is accepted behavior.
func (p *Processor) observeDelivery(ctx context.Context, ev vapi.CallEvent) {
	if p.rdb == nil {
		return
	}
	key := fmt.Sprintf("delivery:%s:%s", ev.ExternalCallID, ev.Type)
	count, err := utils.ObserveDelivery(ctx, p.rdb, key, deliveryObservationTTL)
	if err != nil {
		p.log.Warn("delivery observation failed", "external_call_id", ev.ExternalCallID, "error", err)
		return
	}
	if count > 1 {
		p.log.Info("duplicate delivery observed",
			"external_call_id", ev.ExternalCallID,
			"type", string(ev.Type),
			"count", count,
		)
	}
}

func paramString(params map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := params[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
