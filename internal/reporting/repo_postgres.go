package reporting

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresSource aggregates directly in SQL.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Summarize(ctx context.Context, tenantID string) (Summary, error) {
	const q = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'ended'),
			COUNT(*) FILTER (WHERE status = 'hung'),
			COALESCE(SUM(duration_seconds), 0),
			COALESCE(AVG(duration_seconds), 0),
			COALESCE(SUM(cost), 0)
		FROM call_records
		WHERE tenant_id = $1`

	sum := Summary{TenantID: tenantID}
	err := s.db.QueryRowContext(ctx, q, tenantID).Scan(
		&sum.TotalCalls, &sum.EndedCalls, &sum.HungCalls,
		&sum.TotalDurationSeconds, &sum.AvgDurationSeconds, &sum.TotalCost,
	)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize calls: %w", err)
	}
	return sum, nil
}
