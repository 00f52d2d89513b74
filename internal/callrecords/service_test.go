package callrecords

import (
	"context"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestUpsert_CreatesThenPatchesSameRecord(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	svc.clock = func() time.Time { return time.Unix(1700000000, 0) }

	rec, err := svc.Upsert(context.Background(), "t1", "call-1", Patch{Status: strPtr("ringing")})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.ID == "" || rec.TenantID != "t1" || rec.Status != "ringing" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	again, err := svc.Upsert(context.Background(), "t1", "call-1", Patch{Status: strPtr(StatusEnded)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if again.ID != rec.ID {
		t.Fatalf("expected same record, got %q vs %q", again.ID, rec.ID)
	}
	if again.Status != StatusEnded {
		t.Fatalf("expected ended, got %q", again.Status)
	}
	if repo.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", repo.Len())
	}
}

func TestApplyIfExists_MissingRecordIsNoop(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	_, ok, err := svc.ApplyIfExists(context.Background(), "call-unknown", Patch{AppendTranscript: strPtr("hello")})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ok {
		t.Fatalf("expected no-op for unknown record")
	}
	if repo.Len() != 0 {
		t.Fatalf("no record must be created")
	}
}

func TestPatch_TranscriptAppendAndSupersede(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if _, err := svc.Upsert(context.Background(), "t1", "call-1", Patch{AppendTranscript: strPtr("Caller: hello")}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rec, _, err := svc.ApplyIfExists(context.Background(), "call-1", Patch{AppendTranscript: strPtr("AI: hi there")})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.Transcript != "Caller: hello\nAI: hi there" {
		t.Fatalf("unexpected transcript: %q", rec.Transcript)
	}

	// A reconstructed full transcript supersedes accumulated fragments.
	rec, _, err = svc.ApplyIfExists(context.Background(), "call-1", Patch{SetTranscript: strPtr("AI: hi\nCaller: bye")})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.Transcript != "AI: hi\nCaller: bye" {
		t.Fatalf("expected superseded transcript, got %q", rec.Transcript)
	}
}

func TestPatch_FunctionCallAppendsToMetadata(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if _, err := svc.Upsert(context.Background(), "t1", "call-1", Patch{}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rec, _, err := svc.ApplyIfExists(context.Background(), "call-1", Patch{AppendFunctionCall: map[string]any{"name": "lookupHours"}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rec, _, err = svc.ApplyIfExists(context.Background(), "call-1", Patch{AppendFunctionCall: map[string]any{"name": "bookAppointment"}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	calls, _ := rec.Metadata["functionCalls"].([]any)
	if len(calls) != 2 {
		t.Fatalf("expected 2 function calls, got %d", len(calls))
	}
}

func TestUpsert_RequiresTenantAndExternalID(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.Upsert(context.Background(), "", "call-1", Patch{}); err == nil {
		t.Fatalf("expected error for missing tenant")
	}
	if _, err := svc.Upsert(context.Background(), "t1", "", Patch{}); err == nil {
		t.Fatalf("expected error for missing external id")
	}
}
