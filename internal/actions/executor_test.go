package actions

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"voicedesk-platform/internal/audit"
	"voicedesk-platform/internal/automation"
	"voicedesk-platform/internal/callrecords"
	"voicedesk-platform/internal/leads"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestExecutor(tags TagRepository, leadRepo *leads.MemoryRepo, webhooks WebhookConfigRepository) (*Executor, *Dispatcher) {
	dispatcher := NewDispatcher(webhooks, discardLogger(), time.Second)
	trail := audit.NewRecorder(audit.NewMemoryRepo(), discardLogger())
	exec := NewExecutor(tags, NewMemoryAssignmentRepo(), leads.NewService(leadRepo), dispatcher, trail, discardLogger())
	return exec, dispatcher
}

func TestTagActionIsIdempotent(t *testing.T) {
	tags := NewMemoryTagRepo()
	exec, _ := newTestExecutor(tags, leads.NewMemoryRepo(), NewMemoryWebhookConfigRepo())

	call := &callrecords.CallRecord{ID: "c1", TenantID: "t1"}
	rules := []automation.Rule{{
		ID:      "r1",
		Actions: []automation.Action{{Type: automation.ActionTag, Tag: "vip"}},
	}}

	exec.ExecuteAll(context.Background(), call, rules)
	exec.ExecuteAll(context.Background(), call, rules)

	got, err := tags.ListByCall(context.Background(), "c1")
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(got) != 1 || got[0] != "vip" {
		t.Fatalf("expected exactly one vip tag, got %v", got)
	}
}

func TestAssignOverwrites(t *testing.T) {
	assignments := NewMemoryAssignmentRepo()
	dispatcher := NewDispatcher(NewMemoryWebhookConfigRepo(), discardLogger(), time.Second)
	trail := audit.NewRecorder(audit.NewMemoryRepo(), discardLogger())
	exec := NewExecutor(NewMemoryTagRepo(), assignments, leads.NewService(leads.NewMemoryRepo()), dispatcher, trail, discardLogger())

	call := &callrecords.CallRecord{ID: "c1", TenantID: "t1"}
	exec.ExecuteAll(context.Background(), call, []automation.Rule{{
		Actions: []automation.Action{{Type: automation.ActionAssign, AssigneeID: "agent-1"}},
	}})
	exec.ExecuteAll(context.Background(), call, []automation.Rule{{
		Actions: []automation.Action{{Type: automation.ActionAssign, AssigneeID: "agent-2"}},
	}})

	assignee, err := assignments.GetAssignee(context.Background(), "c1")
	if err != nil {
		t.Fatalf("get assignee: %v", err)
	}
	if assignee != "agent-2" {
		t.Fatalf("expected reassignment to agent-2, got %q", assignee)
	}
}

func TestCreateLeadFromTranscript(t *testing.T) {
	leadRepo := leads.NewMemoryRepo()
	exec, _ := newTestExecutor(NewMemoryTagRepo(), leadRepo, NewMemoryWebhookConfigRepo())

	call := &callrecords.CallRecord{
		ID:         "c1",
		TenantID:   "t1",
		Transcript: "Caller: my name is Sarah Jones, ring me on 07911 123 456.",
	}
	exec.ExecuteAll(context.Background(), call, []automation.Rule{{
		Actions: []automation.Action{{Type: automation.ActionCreateLead, LeadSource: "automation", LeadScore: 70}},
	}})

	got, err := leadRepo.ListByTenant(context.Background(), "t1", 10)
	if err != nil {
		t.Fatalf("list leads: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(got))
	}
	if got[0].Name != "Sarah Jones" || got[0].Phone != "07911 123 456" {
		t.Fatalf("unexpected lead contact: %+v", got[0])
	}
	if got[0].CallID != "c1" || got[0].Source != "automation" || got[0].Score != 70 {
		t.Fatalf("unexpected lead fields: %+v", got[0])
	}
}

func TestCreateLeadSkippedWithoutContact(t *testing.T) {
	leadRepo := leads.NewMemoryRepo()
	exec, _ := newTestExecutor(NewMemoryTagRepo(), leadRepo, NewMemoryWebhookConfigRepo())

	call := &callrecords.CallRecord{ID: "c1", TenantID: "t1", Transcript: "Caller: I'll try again later."}
	exec.ExecuteAll(context.Background(), call, []automation.Rule{{
		Actions: []automation.Action{{Type: automation.ActionCreateLead}},
	}})

	if leadRepo.Len() != 0 {
		t.Fatalf("expected no lead, got %d", leadRepo.Len())
	}
}

func TestWebhookActionPostsEnvelope(t *testing.T) {
	var calls int32
	var gotSecret string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		gotSecret = r.Header.Get("X-Webhook-Secret")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	webhooks := NewMemoryWebhookConfigRepo(WebhookConfig{
		ID: "wh1", TenantID: "t1", URL: srv.URL, Secret: "shh", Enabled: true,
	})
	exec, dispatcher := newTestExecutor(NewMemoryTagRepo(), leads.NewMemoryRepo(), webhooks)

	call := &callrecords.CallRecord{ID: "c1", ExternalCallID: "ext-1", TenantID: "t1", Status: "ended"}
	exec.ExecuteAll(context.Background(), call, []automation.Rule{{
		Actions: []automation.Action{{Type: automation.ActionWebhook, WebhookID: "wh1"}},
	}})
	dispatcher.Wait()

	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected 1 delivery, got %d", calls)
	}
	if gotSecret != "shh" {
		t.Fatalf("expected secret header, got %q", gotSecret)
	}
	if gotBody["event"] != "call_updated" {
		t.Fatalf("unexpected event field: %v", gotBody["event"])
	}
	callField, ok := gotBody["call"].(map[string]any)
	if !ok || callField["externalCallId"] != "ext-1" {
		t.Fatalf("unexpected call envelope: %v", gotBody["call"])
	}
}

func TestWebhookDisabledIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("disabled webhook must not be called")
	}))
	defer srv.Close()

	webhooks := NewMemoryWebhookConfigRepo(WebhookConfig{
		ID: "wh1", TenantID: "t1", URL: srv.URL, Enabled: false,
	})
	exec, dispatcher := newTestExecutor(NewMemoryTagRepo(), leads.NewMemoryRepo(), webhooks)

	call := &callrecords.CallRecord{ID: "c1", TenantID: "t1"}
	exec.ExecuteAll(context.Background(), call, []automation.Rule{{
		Actions: []automation.Action{{Type: automation.ActionWebhook, WebhookID: "wh1"}},
	}})
	dispatcher.Wait()
}

func TestActionFailureDoesNotStopSiblings(t *testing.T) {
	tags := &failingOnceTagRepo{inner: NewMemoryTagRepo()}
	exec, _ := newTestExecutor(tags, leads.NewMemoryRepo(), NewMemoryWebhookConfigRepo())

	call := &callrecords.CallRecord{ID: "c1", TenantID: "t1"}
	exec.ExecuteAll(context.Background(), call, []automation.Rule{
		{Actions: []automation.Action{{Type: automation.ActionTag, Tag: "first"}}},
		{Actions: []automation.Action{{Type: automation.ActionTag, Tag: "second"}}},
	})

	got, err := tags.inner.ListByCall(context.Background(), "c1")
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(got) != 1 || got[0] != "second" {
		t.Fatalf("expected second action to run despite first failing, got %v", got)
	}
}

func TestExecuteAllRecordsAuditTrail(t *testing.T) {
	auditRepo := audit.NewMemoryRepo()
	trail := audit.NewRecorder(auditRepo, discardLogger())
	dispatcher := NewDispatcher(NewMemoryWebhookConfigRepo(), discardLogger(), time.Second)
	exec := NewExecutor(NewMemoryTagRepo(), NewMemoryAssignmentRepo(), leads.NewService(leads.NewMemoryRepo()), dispatcher, trail, discardLogger())

	call := &callrecords.CallRecord{ID: "c1", TenantID: "t1", Transcript: "Caller: bye"}
	exec.ExecuteAll(context.Background(), call, []automation.Rule{{
		ID:   "r1",
		Name: "tag and lead",
		Actions: []automation.Action{
			{Type: automation.ActionTag, Tag: "vip"},
			{Type: automation.ActionCreateLead},
		},
	}})

	entries := auditRepo.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].ActionType != "tag" || entries[0].Outcome != audit.OutcomeOK {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].ActionType != "create_lead" || entries[1].Outcome != audit.OutcomeSkipped {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

type failingOnceTagRepo struct {
	inner  *MemoryTagRepo
	failed bool
}

func (r *failingOnceTagRepo) Attach(ctx context.Context, tenantID, callID, tag string) error {
	if !r.failed {
		r.failed = true
		return errors.New("boom")
	}
	return r.inner.Attach(ctx, tenantID, callID, tag)
}

func (r *failingOnceTagRepo) ListByCall(ctx context.Context, callID string) ([]string, error) {
	return r.inner.ListByCall(ctx, callID)
}
