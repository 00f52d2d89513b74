package automation

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repository used in tests and local runs.
type MemoryRepo struct {
	mu    sync.RWMutex
	rules []Rule
}

func NewMemoryRepo(rules ...Rule) *MemoryRepo {
	return &MemoryRepo{rules: append([]Rule(nil), rules...)}
}

func (r *MemoryRepo) Add(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule)
}

func (r *MemoryRepo) ListEnabled(_ context.Context, tenantID string) ([]Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Rule
	for _, rule := range r.rules {
		if rule.Enabled && rule.TenantID == tenantID {
			out = append(out, rule)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
