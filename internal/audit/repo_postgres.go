package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRepo persists the run trail in automation_audit.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Entry) error {
	const q = `
		INSERT INTO automation_audit (id, tenant_id, call_id, rule_id, rule_name, action_type, outcome, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.TenantID, e.CallID,
		e.RuleID, e.RuleName,
		e.ActionType, e.Outcome, e.Error,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *PostgresRepo) ListByCall(ctx context.Context, tenantID, callID string, limit int) ([]Entry, error) {
	const q = `
		SELECT id, tenant_id, call_id, rule_id, rule_name, action_type, outcome, error, created_at
		FROM automation_audit
		WHERE tenant_id = $1 AND call_id = $2
		ORDER BY created_at ASC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, q, tenantID, callID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.CallID,
			&e.RuleID, &e.RuleName,
			&e.ActionType, &e.Outcome, &e.Error,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
