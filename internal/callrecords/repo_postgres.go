package callrecords

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PostgresRepo persists call records.
//
// Assumed table:
// - call_records (id, tenant_id, external_call_id UNIQUE, status, assistant_id,
//   assistant_name, from_number, to_number, started_at, ended_at,
//   duration_seconds, cost, transcript, summary, outcome, metadata JSONB,
//   created_at, updated_at)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const callRecordColumns = `
id, tenant_id, external_call_id, status, assistant_id, assistant_name,
from_number, to_number, started_at, ended_at, duration_seconds, cost,
transcript, summary, outcome, metadata, created_at, updated_at
`

func (r *PostgresRepo) FindByExternalID(ctx context.Context, externalID string) (CallRecord, bool, error) {
	q := `SELECT ` + callRecordColumns + ` FROM call_records WHERE external_call_id = $1 LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, externalID))
}

func (r *PostgresRepo) GetByID(ctx context.Context, tenantID, id string) (CallRecord, bool, error) {
	q := `SELECT ` + callRecordColumns + ` FROM call_records WHERE tenant_id = $1 AND id = $2 LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, tenantID, id))
}

func (r *PostgresRepo) Create(ctx context.Context, rec CallRecord) (CallRecord, error) {
	meta, err := marshalMetadata(rec.Metadata)
	if err != nil {
		return CallRecord{}, err
	}
	const q = `
INSERT INTO call_records (
  id, tenant_id, external_call_id, status, assistant_id, assistant_name,
  from_number, to_number, started_at, ended_at, duration_seconds, cost,
  transcript, summary, outcome, metadata, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18
)
`
	_, err = r.db.ExecContext(ctx, q,
		rec.ID, rec.TenantID, rec.ExternalCallID, rec.Status,
		rec.AssistantID, rec.AssistantName,
		rec.FromNumber, rec.ToNumber,
		rec.StartedAt, rec.EndedAt,
		rec.DurationSeconds, rec.Cost,
		rec.Transcript, rec.Summary, rec.Outcome,
		meta, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return CallRecord{}, err
	}
	return rec, nil
}

func (r *PostgresRepo) Update(ctx context.Context, rec CallRecord) (CallRecord, error) {
	meta, err := marshalMetadata(rec.Metadata)
	if err != nil {
		return CallRecord{}, err
	}
	const q = `
UPDATE call_records
SET status = $2, assistant_id = $3, assistant_name = $4,
    from_number = $5, to_number = $6, started_at = $7, ended_at = $8,
    duration_seconds = $9, cost = $10, transcript = $11, summary = $12,
    outcome = $13, metadata = $14, updated_at = $15
WHERE external_call_id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		rec.ExternalCallID, rec.Status, rec.AssistantID, rec.AssistantName,
		rec.FromNumber, rec.ToNumber, rec.StartedAt, rec.EndedAt,
		rec.DurationSeconds, rec.Cost, rec.Transcript, rec.Summary,
		rec.Outcome, meta, rec.UpdatedAt,
	)
	if err != nil {
		return CallRecord{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return CallRecord{}, ErrNotFound
	}
	return rec, nil
}

func (r *PostgresRepo) ListByTenant(ctx context.Context, tenantID string, limit int) ([]CallRecord, error) {
	q := `SELECT ` + callRecordColumns + ` FROM call_records WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CallRecord
	for rows.Next() {
		rec, ok, err := r.scanOneRow(rows)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepo) scanOne(row *sql.Row) (CallRecord, bool, error) {
	rec, ok, err := r.scanOneRow(row)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return CallRecord{}, false, nil
	}
	return rec, ok, err
}

func (r *PostgresRepo) scanOneRow(row rowScanner) (CallRecord, bool, error) {
	var rec CallRecord
	var meta []byte
	err := row.Scan(
		&rec.ID, &rec.TenantID, &rec.ExternalCallID, &rec.Status,
		&rec.AssistantID, &rec.AssistantName,
		&rec.FromNumber, &rec.ToNumber,
		&rec.StartedAt, &rec.EndedAt,
		&rec.DurationSeconds, &rec.Cost,
		&rec.Transcript, &rec.Summary, &rec.Outcome,
		&meta, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return CallRecord{}, false, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
			return CallRecord{}, false, err
		}
	}
	return rec, true, nil
}

func marshalMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	return json.Marshal(m)
}
