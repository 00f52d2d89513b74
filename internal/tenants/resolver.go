package tenants

import (
	"context"
	"errors"
	"fmt"
)

// Repository is the persistence contract for tenant lookups.
// Both methods only consider voice-enabled tenants; disabled tenants are
// invisible to the pipeline.
type Repository interface {
	FindByAssistantID(ctx context.Context, assistantID string) (Tenant, bool, error)
	FirstVoiceEnabled(ctx context.Context) (Tenant, bool, error)
}

// ResolutionStrategy controls what happens when an assistant id does not match
// any tenant. The fallback-to-first behavior is only safe for single-tenant
// deployments; multi-tenant deployments should run strict.
type ResolutionStrategy string

const (
	StrategyStrict               ResolutionStrategy = "strict"
	StrategyFallbackFirstEnabled ResolutionStrategy = "first_enabled"
)

func ParseStrategy(s string) (ResolutionStrategy, error) {
	switch ResolutionStrategy(s) {
	case StrategyStrict, StrategyFallbackFirstEnabled:
		return ResolutionStrategy(s), nil
	default:
		return "", fmt.Errorf("tenants: unknown resolution strategy %q", s)
	}
}

// Resolver attributes an inbound call event to a tenant.
type Resolver struct {
	repo     Repository
	strategy ResolutionStrategy
}

func NewResolver(repo Repository, strategy ResolutionStrategy) (*Resolver, error) {
	if repo == nil {
		return nil, errors.New("tenants: repository is required")
	}
	if strategy == "" {
		strategy = StrategyStrict
	}
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}
	return &Resolver{repo: repo, strategy: strategy}, nil
}

// Resolve finds the tenant for an assistant id.
//
// With an assistant id: the tenant configured with that assistant wins. If
// none matches, the fallback strategy decides whether the first voice-enabled
// tenant is used instead. Without an assistant id, only the fallback applies.
// A false return means the event has no owner and must be dropped.
func (r *Resolver) Resolve(ctx context.Context, assistantID string) (Tenant, bool, error) {
	if assistantID != "" {
		t, ok, err := r.repo.FindByAssistantID(ctx, assistantID)
		if err != nil {
			return Tenant{}, false, err
		}
		if ok {
			return t, true, nil
		}
	}

	if r.strategy != StrategyFallbackFirstEnabled {
		return Tenant{}, false, nil
	}
	return r.repo.FirstVoiceEnabled(ctx)
}
