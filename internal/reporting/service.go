package reporting

import (
	"context"
	"errors"
)

var ErrInvalidArgument = errors.New("reporting: invalid argument")

// Summary is a tenant's aggregate view over its call records.
type Summary struct {
	TenantID string `json:"tenant_id"`

	TotalCalls int `json:"total_calls"`
	EndedCalls int `json:"ended_calls"`
	HungCalls  int `json:"hung_calls"`

	TotalDurationSeconds float64 `json:"total_duration_seconds"`
	AvgDurationSeconds   float64 `json:"avg_duration_seconds"`
	TotalCost            float64 `json:"total_cost"`
}

// Source produces summaries. The postgres source aggregates in SQL; the call
// list source computes in process for tests and small deployments.
type Source interface {
	Summarize(ctx context.Context, tenantID string) (Summary, error)
}

type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

func (s *Service) TenantSummary(ctx context.Context, tenantID string) (Summary, error) {
	if tenantID == "" {
		return Summary{}, ErrInvalidArgument
	}
	return s.src.Summarize(ctx, tenantID)
}
