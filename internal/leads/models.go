package leads

import "time"

// Lead is a sales contact captured from an inbound call.
type Lead struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`
	CallID   string `json:"call_id,omitempty" db:"call_id"`

	Name  string `json:"name,omitempty" db:"name"`
	Phone string `json:"phone,omitempty" db:"phone"`
	Email string `json:"email,omitempty" db:"email"`

	Source string `json:"source" db:"source"`
	Score  int    `json:"score" db:"score"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
