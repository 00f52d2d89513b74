package tenants

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu      sync.Mutex
	tenants []Tenant
}

func NewMemoryRepo(tenants ...Tenant) *MemoryRepo {
	return &MemoryRepo{tenants: tenants}
}

func (r *MemoryRepo) Add(t Tenant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants = append(r.tenants, t)
}

func (r *MemoryRepo) FindByAssistantID(ctx context.Context, assistantID string) (Tenant, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if t.VoiceEnabled && t.AssistantID == assistantID {
			return t, true, nil
		}
	}
	return Tenant{}, false, nil
}

func (r *MemoryRepo) FirstVoiceEnabled(ctx context.Context) (Tenant, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if t.VoiceEnabled {
			return t, true, nil
		}
	}
	return Tenant{}, false, nil
}
