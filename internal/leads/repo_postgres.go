package leads

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRepo persists leads in the leads table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, lead *Lead) error {
	const q = `
		INSERT INTO leads (id, tenant_id, call_id, name, phone, email, source, score, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, q,
		lead.ID, lead.TenantID, lead.CallID,
		lead.Name, lead.Phone, lead.Email,
		lead.Source, lead.Score,
		lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *PostgresRepo) ListByTenant(ctx context.Context, tenantID string, limit int) ([]Lead, error) {
	const q = `
		SELECT id, tenant_id, COALESCE(call_id, ''), name, phone, email, source, score, created_at, updated_at
		FROM leads
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, q, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		var l Lead
		if err := rows.Scan(
			&l.ID, &l.TenantID, &l.CallID,
			&l.Name, &l.Phone, &l.Email,
			&l.Source, &l.Score,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return out, nil
}
