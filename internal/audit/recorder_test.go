package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type failingRepo struct{}

func (failingRepo) Append(context.Context, Entry) error { return errors.New("down") }
func (failingRepo) ListByCall(context.Context, string, string, int) ([]Entry, error) {
	return nil, nil
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepo()
	rec := NewRecorder(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec.Record(context.Background(), Entry{TenantID: "t1", CallID: "c1", RuleID: "r1", ActionType: "tag", Outcome: OutcomeOK})

	entries := repo.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID == "" || entries[0].CreatedAt.IsZero() {
		t.Fatalf("entry missing id or timestamp: %+v", entries[0])
	}
}

func TestRecordSwallowsRepoErrors(t *testing.T) {
	rec := NewRecorder(failingRepo{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// Must not panic or surface the error.
	rec.Record(context.Background(), Entry{TenantID: "t1", CallID: "c1"})
}

func TestListByCallScoping(t *testing.T) {
	repo := NewMemoryRepo()
	rec := NewRecorder(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec.Record(context.Background(), Entry{TenantID: "t1", CallID: "c1"})
	rec.Record(context.Background(), Entry{TenantID: "t1", CallID: "c2"})
	rec.Record(context.Background(), Entry{TenantID: "t2", CallID: "c1"})

	got, err := rec.ListByCall(context.Background(), "t1", "c1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry for t1/c1, got %d", len(got))
	}
}
