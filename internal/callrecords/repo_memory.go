package callrecords

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu      sync.Mutex
	records map[string]CallRecord // keyed by external call id
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: make(map[string]CallRecord)}
}

func (r *MemoryRepo) FindByExternalID(ctx context.Context, externalID string) (CallRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[externalID]
	return rec, ok, nil
}

func (r *MemoryRepo) Create(ctx context.Context, rec CallRecord) (CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ExternalCallID] = rec
	return rec, nil
}

func (r *MemoryRepo) Update(ctx context.Context, rec CallRecord) (CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ExternalCallID] = rec
	return rec, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, tenantID, id string) (CallRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.TenantID == tenantID && rec.ID == id {
			return rec, true, nil
		}
	}
	return CallRecord{}, false, nil
}

func (r *MemoryRepo) ListByTenant(ctx context.Context, tenantID string, limit int) ([]CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []CallRecord
	for _, rec := range r.records {
		if rec.TenantID == tenantID {
			out = append(out, rec)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Len reports the number of stored records; test helper.
func (r *MemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
