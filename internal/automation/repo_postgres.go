package automation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresRepo reads rules from the automation_rules table. Conditions and
// actions are stored as JSONB.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ListEnabled(ctx context.Context, tenantID string) ([]Rule, error) {
	const q = `
		SELECT id, tenant_id, name, trigger_type, conditions, actions, enabled, created_at, updated_at
		FROM automation_rules
		WHERE tenant_id = $1 AND enabled = TRUE
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list automation rules: %w", err)
	}
	defer rows.Close()

	var out []Rule
	for rows.Next() {
		var (
			rule       Rule
			conditions []byte
			actions    []byte
		)
		if err := rows.Scan(
			&rule.ID, &rule.TenantID, &rule.Name, &rule.Trigger,
			&conditions, &actions, &rule.Enabled,
			&rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan automation rule: %w", err)
		}
		if len(conditions) > 0 {
			if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
				return nil, fmt.Errorf("decode rule %s conditions: %w", rule.ID, err)
			}
		}
		if len(actions) > 0 {
			if err := json.Unmarshal(actions, &rule.Actions); err != nil {
				return nil, fmt.Errorf("decode rule %s actions: %w", rule.ID, err)
			}
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate automation rules: %w", err)
	}
	return out, nil
}
