package actions

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// AssignmentRepository keeps one active assignee per call. Assign overwrites
// any existing assignment for the call.
type AssignmentRepository interface {
	Assign(ctx context.Context, tenantID, callID, assigneeID string) error
	GetAssignee(ctx context.Context, callID string) (string, error)
}

type MemoryAssignmentRepo struct {
	mu        sync.Mutex
	assignees map[string]string // callID -> assigneeID
}

func NewMemoryAssignmentRepo() *MemoryAssignmentRepo {
	return &MemoryAssignmentRepo{assignees: make(map[string]string)}
}

func (r *MemoryAssignmentRepo) Assign(_ context.Context, _, callID, assigneeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignees[callID] = assigneeID
	return nil
}

func (r *MemoryAssignmentRepo) GetAssignee(_ context.Context, callID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.assignees[callID], nil
}

// PostgresAssignmentRepo stores assignments in call_assignments keyed by
// call_id; the upsert replaces the previous assignee.
type PostgresAssignmentRepo struct {
	db *sql.DB
}

func NewPostgresAssignmentRepo(db *sql.DB) *PostgresAssignmentRepo {
	return &PostgresAssignmentRepo{db: db}
}

func (r *PostgresAssignmentRepo) Assign(ctx context.Context, tenantID, callID, assigneeID string) error {
	const q = `
		INSERT INTO call_assignments (tenant_id, call_id, assignee_id, assigned_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (call_id) DO UPDATE SET assignee_id = EXCLUDED.assignee_id, assigned_at = EXCLUDED.assigned_at`

	if _, err := r.db.ExecContext(ctx, q, tenantID, callID, assigneeID, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign call: %w", err)
	}
	return nil
}

func (r *PostgresAssignmentRepo) GetAssignee(ctx context.Context, callID string) (string, error) {
	const q = `SELECT assignee_id FROM call_assignments WHERE call_id = $1`

	var assigneeID string
	err := r.db.QueryRowContext(ctx, q, callID).Scan(&assigneeID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get call assignee: %w", err)
	}
	return assigneeID, nil
}
