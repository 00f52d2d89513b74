package automation

import (
	"context"
	"strings"

	"voicedesk-platform/internal/callrecords"
)

// Repository loads rule configuration for evaluation.
type Repository interface {
	// ListEnabled returns the tenant's enabled rules in stable creation order.
	ListEnabled(ctx context.Context, tenantID string) ([]Rule, error)
}

// Evaluator matches a call record against a tenant's enabled rules.
type Evaluator struct {
	repo Repository
}

func NewEvaluator(repo Repository) *Evaluator {
	return &Evaluator{repo: repo}
}

// Evaluate returns every enabled rule whose conditions the call satisfies,
// in rule order. Rules are re-evaluated on every invocation; a rule that
// matched a previous event for the same call matches again.
func (e *Evaluator) Evaluate(ctx context.Context, call *callrecords.CallRecord) ([]Rule, error) {
	rules, err := e.repo.ListEnabled(ctx, call.TenantID)
	if err != nil {
		return nil, err
	}

	var matched []Rule
	for _, rule := range rules {
		if ruleMatches(rule, call) {
			matched = append(matched, rule)
		}
	}
	return matched, nil
}

func ruleMatches(rule Rule, call *callrecords.CallRecord) bool {
	switch rule.Trigger {
	case TriggerKeywordMatch:
		return matchKeywords(rule.Conditions.Keywords, call)
	case TriggerOutcomeMatch:
		return containsFold(rule.Conditions.Outcomes, call.Outcome)
	case TriggerDurationThreshold:
		return matchDuration(rule.Conditions, call.DurationSeconds)
	case TriggerStatusChange:
		return containsFold(rule.Conditions.Statuses, call.Status)
	default:
		return false
	}
}

func matchKeywords(keywords []string, call *callrecords.CallRecord) bool {
	if len(keywords) == 0 {
		return false
	}
	haystack := strings.ToLower(call.Transcript + "\n" + call.Summary)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// matchDuration treats min and max as independent alternatives, not a range.
// A call matches when it is at least the min or at most the max, whichever
// bounds are configured.
func matchDuration(c Conditions, duration *float64) bool {
	if duration == nil {
		return false
	}
	if c.MinDurationSeconds != nil && *duration >= *c.MinDurationSeconds {
		return true
	}
	if c.MaxDurationSeconds != nil && *duration <= *c.MaxDurationSeconds {
		return true
	}
	return false
}

func containsFold(values []string, target string) bool {
	if target == "" {
		return false
	}
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}
