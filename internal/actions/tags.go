package actions

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// TagRepository attaches labels to calls. Attach is idempotent; attaching a
// tag the call already carries is a no-op.
type TagRepository interface {
	Attach(ctx context.Context, tenantID, callID, tag string) error
	ListByCall(ctx context.Context, callID string) ([]string, error)
}

type MemoryTagRepo struct {
	mu   sync.Mutex
	tags map[string][]string // callID -> tags
}

func NewMemoryTagRepo() *MemoryTagRepo {
	return &MemoryTagRepo{tags: make(map[string][]string)}
}

func (r *MemoryTagRepo) Attach(_ context.Context, _, callID, tag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tags[callID] {
		if existing == tag {
			return nil
		}
	}
	r.tags[callID] = append(r.tags[callID], tag)
	return nil
}

func (r *MemoryTagRepo) ListByCall(_ context.Context, callID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tags[callID]...), nil
}

// PostgresTagRepo stores tag associations in call_tags with a unique
// (call_id, tag) constraint; the upsert keeps Attach idempotent.
type PostgresTagRepo struct {
	db *sql.DB
}

func NewPostgresTagRepo(db *sql.DB) *PostgresTagRepo {
	return &PostgresTagRepo{db: db}
}

func (r *PostgresTagRepo) Attach(ctx context.Context, tenantID, callID, tag string) error {
	const q = `
		INSERT INTO call_tags (tenant_id, call_id, tag, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (call_id, tag) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, q, tenantID, callID, tag, time.Now().UTC()); err != nil {
		return fmt.Errorf("attach tag: %w", err)
	}
	return nil
}

func (r *PostgresTagRepo) ListByCall(ctx context.Context, callID string) ([]string, error) {
	const q = `SELECT tag FROM call_tags WHERE call_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, q, callID)
	if err != nil {
		return nil, fmt.Errorf("list call tags: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan call tag: %w", err)
		}
		out = append(out, tag)
	}
	return out, rows.Err()
}
