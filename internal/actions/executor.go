package actions

import (
	"context"
	"fmt"
	"log/slog"

	"voicedesk-platform/internal/audit"
	"voicedesk-platform/internal/automation"
	"voicedesk-platform/internal/callrecords"
	"voicedesk-platform/internal/leads"
)

// Executor applies the actions of matched automation rules to a call. Every
// action is failure-isolated; one action erroring never stops its siblings,
// whether they belong to the same rule or a later one.
type Executor struct {
	tags        TagRepository
	assignments AssignmentRepository
	leads       *leads.Service
	dispatcher  *Dispatcher
	trail       *audit.Recorder
	log         *slog.Logger
}

func NewExecutor(
	tags TagRepository,
	assignments AssignmentRepository,
	leadSvc *leads.Service,
	dispatcher *Dispatcher,
	trail *audit.Recorder,
	log *slog.Logger,
) *Executor {
	return &Executor{
		tags:        tags,
		assignments: assignments,
		leads:       leadSvc,
		dispatcher:  dispatcher,
		trail:       trail,
		log:         log,
	}
}

// ExecuteAll runs every action of every matched rule in order, recording each
// run in the audit trail.
func (e *Executor) ExecuteAll(ctx context.Context, call *callrecords.CallRecord, rules []automation.Rule) {
	for _, rule := range rules {
		for _, action := range rule.Actions {
			entry := audit.Entry{
				TenantID:   call.TenantID,
				CallID:     call.ID,
				RuleID:     rule.ID,
				RuleName:   rule.Name,
				ActionType: string(action.Type),
			}

			outcome, err := e.execute(ctx, call, action)
			entry.Outcome = outcome
			if err != nil {
				entry.Error = err.Error()
				e.log.Error("automation action failed",
					"rule_id", rule.ID,
					"tenant_id", call.TenantID,
					"call_id", call.ID,
					"action", string(action.Type),
					"error", err,
				)
			}
			e.trail.Record(ctx, entry)
		}
	}
}

func (e *Executor) execute(ctx context.Context, call *callrecords.CallRecord, action automation.Action) (string, error) {
	switch action.Type {
	case automation.ActionTag:
		if action.Tag == "" {
			return audit.OutcomeFailed, fmt.Errorf("tag action without a tag")
		}
		if err := e.tags.Attach(ctx, call.TenantID, call.ID, action.Tag); err != nil {
			return audit.OutcomeFailed, err
		}
		return audit.OutcomeOK, nil

	case automation.ActionAssign:
		if action.AssigneeID == "" {
			return audit.OutcomeFailed, fmt.Errorf("assign action without an assignee")
		}
		if err := e.assignments.Assign(ctx, call.TenantID, call.ID, action.AssigneeID); err != nil {
			return audit.OutcomeFailed, err
		}
		return audit.OutcomeOK, nil

	case automation.ActionCreateLead:
		return e.createLead(ctx, call, action)

	case automation.ActionWebhook:
		if action.WebhookID == "" {
			return audit.OutcomeFailed, fmt.Errorf("webhook action without a webhook id")
		}
		if err := e.dispatcher.Dispatch(ctx, call, action.WebhookID); err != nil {
			return audit.OutcomeFailed, err
		}
		return audit.OutcomeOK, nil

	default:
		return audit.OutcomeFailed, fmt.Errorf("unknown action type %q", action.Type)
	}
}

// createLead runs contact extraction over the transcript and captures a lead
// when a name or phone number was found. An empty extraction is a skipped
// action, not a failure.
func (e *Executor) createLead(ctx context.Context, call *callrecords.CallRecord, action automation.Action) (string, error) {
	contact := ExtractContact(call.Transcript)
	if !contact.HasContact() {
		e.log.Debug("lead action skipped, no contact details in transcript",
			"tenant_id", call.TenantID,
			"call_id", call.ID,
		)
		return audit.OutcomeSkipped, nil
	}

	phone := contact.Phone
	if phone == "" {
		phone = call.FromNumber
	}

	_, err := e.leads.Create(ctx, call.TenantID, leads.NewLeadInput{
		CallID: call.ID,
		Name:   contact.Name,
		Phone:  phone,
		Email:  contact.Email,
		Source: action.LeadSource,
		Score:  action.LeadScore,
	})
	if err != nil {
		return audit.OutcomeFailed, fmt.Errorf("create lead: %w", err)
	}
	return audit.OutcomeOK, nil
}
