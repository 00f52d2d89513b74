package leads

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repository used in tests and local runs.
type MemoryRepo struct {
	mu    sync.RWMutex
	leads []Lead
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Create(_ context.Context, lead *Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads = append(r.leads, *lead)
	return nil
}

func (r *MemoryRepo) ListByTenant(_ context.Context, tenantID string, limit int) ([]Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Lead
	for i := len(r.leads) - 1; i >= 0 && len(out) < limit; i-- {
		if r.leads[i].TenantID == tenantID {
			out = append(out, r.leads[i])
		}
	}
	return out, nil
}

func (r *MemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.leads)
}
