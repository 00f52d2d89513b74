package tenants

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo reads tenants from the shared relational store.
//
// Assumed table:
// - tenants (id, name, assistant_id, voice_enabled, created_at, updated_at)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) FindByAssistantID(ctx context.Context, assistantID string) (Tenant, bool, error) {
	const q = `
SELECT id, name, COALESCE(assistant_id, ''), voice_enabled, created_at, updated_at
FROM tenants
WHERE assistant_id = $1 AND voice_enabled = true
LIMIT 1
`
	return r.scanOne(ctx, q, assistantID)
}

func (r *PostgresRepo) FirstVoiceEnabled(ctx context.Context) (Tenant, bool, error) {
	const q = `
SELECT id, name, COALESCE(assistant_id, ''), voice_enabled, created_at, updated_at
FROM tenants
WHERE voice_enabled = true
ORDER BY created_at ASC
LIMIT 1
`
	return r.scanOne(ctx, q)
}

func (r *PostgresRepo) scanOne(ctx context.Context, q string, args ...any) (Tenant, bool, error) {
	var t Tenant
	err := r.db.QueryRowContext(ctx, q, args...).Scan(
		&t.ID,
		&t.Name,
		&t.AssistantID,
		&t.VoiceEnabled,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Tenant{}, false, nil
		}
		return Tenant{}, false, err
	}
	return t, true, nil
}
