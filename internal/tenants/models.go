package tenants

import "time"

// Tenant is one customer organization on the platform.
//
// Multi-tenant invariant: every record the pipeline writes carries a tenant id;
// an event that cannot be attributed to a tenant is dropped, never stored
// orphaned.
type Tenant struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	// AssistantID is the voice provider's assistant configured for this tenant.
	AssistantID string `json:"assistant_id,omitempty" db:"assistant_id"`

	// VoiceEnabled gates call-event processing. Tenants without it never
	// receive call records or automation runs.
	VoiceEnabled bool `json:"voice_enabled" db:"voice_enabled"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
