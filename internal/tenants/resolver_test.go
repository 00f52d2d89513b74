package tenants

import (
	"context"
	"testing"
)

func twoTenants() *MemoryRepo {
	return NewMemoryRepo(
		Tenant{ID: "t1", Name: "Alpha", AssistantID: "asst-1", VoiceEnabled: true},
		Tenant{ID: "t2", Name: "Beta", AssistantID: "asst-2", VoiceEnabled: true},
		Tenant{ID: "t3", Name: "Gamma", AssistantID: "asst-3", VoiceEnabled: false},
	)
}

func TestResolver_MatchingAssistantWins(t *testing.T) {
	r, err := NewResolver(twoTenants(), StrategyStrict)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	got, ok, err := r.Resolve(context.Background(), "asst-2")
	if err != nil || !ok {
		t.Fatalf("expected match, ok=%v err=%v", ok, err)
	}
	if got.ID != "t2" {
		t.Fatalf("expected t2, got %q", got.ID)
	}
}

func TestResolver_DisabledTenantNeverMatches(t *testing.T) {
	r, _ := NewResolver(twoTenants(), StrategyStrict)
	_, ok, err := r.Resolve(context.Background(), "asst-3")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ok {
		t.Fatalf("expected no match for voice-disabled tenant")
	}
}

func TestResolver_StrictDropsUnknownAssistant(t *testing.T) {
	r, _ := NewResolver(twoTenants(), StrategyStrict)
	_, ok, err := r.Resolve(context.Background(), "asst-missing")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ok {
		t.Fatalf("strict strategy must not fall back")
	}
}

func TestResolver_FallbackUsesFirstEnabled(t *testing.T) {
	r, _ := NewResolver(twoTenants(), StrategyFallbackFirstEnabled)

	got, ok, err := r.Resolve(context.Background(), "asst-missing")
	if err != nil || !ok {
		t.Fatalf("expected fallback match, ok=%v err=%v", ok, err)
	}
	if got.ID != "t1" {
		t.Fatalf("expected first enabled tenant t1, got %q", got.ID)
	}

	// No assistant id at all goes straight to the fallback.
	got, ok, err = r.Resolve(context.Background(), "")
	if err != nil || !ok {
		t.Fatalf("expected fallback match, ok=%v err=%v", ok, err)
	}
	if got.ID != "t1" {
		t.Fatalf("expected t1, got %q", got.ID)
	}
}

func TestResolver_StrictWithoutAssistantDrops(t *testing.T) {
	r, _ := NewResolver(twoTenants(), StrategyStrict)
	_, ok, err := r.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ok {
		t.Fatalf("expected drop without assistant id under strict")
	}
}

func TestParseStrategy(t *testing.T) {
	if _, err := ParseStrategy("strict"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := ParseStrategy("first_enabled"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := ParseStrategy("nearest"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
