package reporting

import (
	"context"

	"voicedesk-platform/internal/callrecords"
)

// CallLister is the slice of the call record store the in-process source needs.
type CallLister interface {
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]callrecords.CallRecord, error)
}

// CallListSource computes summaries by walking the tenant's recent calls.
type CallListSource struct {
	lister CallLister
	limit  int
}

func NewCallListSource(lister CallLister) *CallListSource {
	return &CallListSource{lister: lister, limit: 500}
}

func (s *CallListSource) Summarize(ctx context.Context, tenantID string) (Summary, error) {
	calls, err := s.lister.ListByTenant(ctx, tenantID, s.limit)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{TenantID: tenantID}
	withDuration := 0
	for _, c := range calls {
		sum.TotalCalls++
		switch c.Status {
		case callrecords.StatusEnded:
			sum.EndedCalls++
		case callrecords.StatusHung:
			sum.HungCalls++
		}
		if c.DurationSeconds != nil {
			sum.TotalDurationSeconds += *c.DurationSeconds
			withDuration++
		}
		if c.Cost != nil {
			sum.TotalCost += *c.Cost
		}
	}
	if withDuration > 0 {
		sum.AvgDurationSeconds = sum.TotalDurationSeconds / float64(withDuration)
	}
	return sum, nil
}
