package callrecords

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for call records.
type Repository interface {
	FindByExternalID(ctx context.Context, externalID string) (CallRecord, bool, error)
	Create(ctx context.Context, rec CallRecord) (CallRecord, error)
	Update(ctx context.Context, rec CallRecord) (CallRecord, error)

	GetByID(ctx context.Context, tenantID, id string) (CallRecord, bool, error)
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]CallRecord, error)
}

var (
	ErrNotFound        = errors.New("callrecords: not found")
	ErrInvalidArgument = errors.New("callrecords: invalid argument")
)

// Service applies event patches to call records.
//
// Read-modify-write here is not transactional: concurrent deliveries for the
// same call can race (last write wins on scalar fields, transcript appends can
// be lost). Acceptable at current volume; a conditional append would close it.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) FindByExternalID(ctx context.Context, externalID string) (CallRecord, bool, error) {
	if externalID == "" {
		return CallRecord{}, false, ErrInvalidArgument
	}
	return s.repo.FindByExternalID(ctx, externalID)
}

// Upsert creates the record for an unseen external id and patches an existing
// one. The same external id always maps to the same record; a duplicate
// delivery overwrites fields rather than creating a sibling row.
func (s *Service) Upsert(ctx context.Context, tenantID, externalID string, p Patch) (CallRecord, error) {
	if tenantID == "" || externalID == "" {
		return CallRecord{}, ErrInvalidArgument
	}

	now := s.clock().UTC()

	rec, ok, err := s.repo.FindByExternalID(ctx, externalID)
	if err != nil {
		return CallRecord{}, err
	}
	if !ok {
		rec = CallRecord{
			ID:             uuid.NewString(),
			TenantID:       tenantID,
			ExternalCallID: externalID,
			CreatedAt:      now,
		}
		p.apply(&rec)
		rec.UpdatedAt = now
		return s.repo.Create(ctx, rec)
	}

	p.apply(&rec)
	rec.UpdatedAt = now
	return s.repo.Update(ctx, rec)
}

// ApplyIfExists patches the record for an external id, silently doing nothing
// when no record exists yet. Mid-call deliveries assume an earlier
// status-update created the record; when it didn't, absence is a valid state.
func (s *Service) ApplyIfExists(ctx context.Context, externalID string, p Patch) (CallRecord, bool, error) {
	if externalID == "" {
		return CallRecord{}, false, nil
	}

	rec, ok, err := s.repo.FindByExternalID(ctx, externalID)
	if err != nil {
		return CallRecord{}, false, err
	}
	if !ok {
		return CallRecord{}, false, nil
	}

	p.apply(&rec)
	rec.UpdatedAt = s.clock().UTC()
	out, err := s.repo.Update(ctx, rec)
	if err != nil {
		return CallRecord{}, false, err
	}
	return out, true, nil
}

func (s *Service) GetByID(ctx context.Context, tenantID, id string) (CallRecord, error) {
	if tenantID == "" || id == "" {
		return CallRecord{}, ErrInvalidArgument
	}
	rec, ok, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return CallRecord{}, err
	}
	if !ok {
		return CallRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *Service) ListByTenant(ctx context.Context, tenantID string, limit int) ([]CallRecord, error) {
	if tenantID == "" {
		return nil, ErrInvalidArgument
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListByTenant(ctx, tenantID, limit)
}
