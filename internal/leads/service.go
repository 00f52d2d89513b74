package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Repository persists leads.
type Repository interface {
	Create(ctx context.Context, lead *Lead) error
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]Lead, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewLeadInput describes a lead to capture. All contact fields are optional
// but at least one of name, phone or email must be present.
type NewLeadInput struct {
	CallID string
	Name   string
	Phone  string
	Email  string
	Source string
	Score  int
}

func (s *Service) Create(ctx context.Context, tenantID string, in NewLeadInput) (*Lead, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidArgument)
	}
	if in.Name == "" && in.Phone == "" && in.Email == "" {
		return nil, fmt.Errorf("%w: lead needs a name, phone or email", ErrInvalidArgument)
	}
	source := in.Source
	if source == "" {
		source = "voice_call"
	}

	now := s.now().UTC()
	lead := &Lead{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		CallID:    in.CallID,
		Name:      in.Name,
		Phone:     in.Phone,
		Email:     in.Email,
		Source:    source,
		Score:     in.Score,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *Service) ListByTenant(ctx context.Context, tenantID string, limit int) ([]Lead, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	return s.repo.ListByTenant(ctx, tenantID, limit)
}
