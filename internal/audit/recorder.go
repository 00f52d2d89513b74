package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Repository persists the automation run trail.
type Repository interface {
	Append(ctx context.Context, e Entry) error
	ListByCall(ctx context.Context, tenantID, callID string, limit int) ([]Entry, error)
}

// Recorder writes run trail entries best-effort. A failed append is logged
// and swallowed; the trail must never break automation itself.
type Recorder struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewRecorder(repo Repository, log *slog.Logger) *Recorder {
	return &Recorder{repo: repo, log: log, now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.repo == nil {
		return
	}
	e.ID = uuid.NewString()
	e.CreatedAt = r.now().UTC()
	if err := r.repo.Append(ctx, e); err != nil {
		r.log.Warn("audit append failed",
			"tenant_id", e.TenantID,
			"call_id", e.CallID,
			"rule_id", e.RuleID,
			"error", err,
		)
	}
}

func (r *Recorder) ListByCall(ctx context.Context, tenantID, callID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	return r.repo.ListByCall(ctx, tenantID, callID, limit)
}
