package actions

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"voicedesk-platform/internal/callrecords"
)

// WebhookConfig is a tenant-configured outbound endpoint.
type WebhookConfig struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`
	URL      string `json:"url" db:"url"`
	Secret   string `json:"secret" db:"secret"`
	Enabled  bool   `json:"enabled" db:"enabled"`
}

type WebhookConfigRepository interface {
	// GetByID returns (nil, nil) when no config exists for the id.
	GetByID(ctx context.Context, tenantID, id string) (*WebhookConfig, error)
}

type MemoryWebhookConfigRepo struct {
	mu      sync.RWMutex
	configs map[string]WebhookConfig
}

func NewMemoryWebhookConfigRepo(configs ...WebhookConfig) *MemoryWebhookConfigRepo {
	r := &MemoryWebhookConfigRepo{configs: make(map[string]WebhookConfig)}
	for _, c := range configs {
		r.configs[c.ID] = c
	}
	return r
}

func (r *MemoryWebhookConfigRepo) GetByID(_ context.Context, tenantID, id string) (*WebhookConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.configs[id]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	out := c
	return &out, nil
}

type PostgresWebhookConfigRepo struct {
	db *sql.DB
}

func NewPostgresWebhookConfigRepo(db *sql.DB) *PostgresWebhookConfigRepo {
	return &PostgresWebhookConfigRepo{db: db}
}

func (r *PostgresWebhookConfigRepo) GetByID(ctx context.Context, tenantID, id string) (*WebhookConfig, error) {
	const q = `
		SELECT id, tenant_id, url, secret, enabled
		FROM webhook_configs
		WHERE id = $1 AND tenant_id = $2`

	var c WebhookConfig
	err := r.db.QueryRowContext(ctx, q, id, tenantID).Scan(&c.ID, &c.TenantID, &c.URL, &c.Secret, &c.Enabled)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get webhook config: %w", err)
	}
	return &c, nil
}

// webhookPayload is the fixed envelope posted to tenant endpoints.
type webhookPayload struct {
	Event     string      `json:"event"`
	Call      webhookCall `json:"call"`
	Timestamp time.Time   `json:"timestamp"`
}

type webhookCall struct {
	ID             string     `json:"id"`
	ExternalCallID string     `json:"externalCallId"`
	Status         string     `json:"status,omitempty"`
	FromNumber     string     `json:"fromNumber,omitempty"`
	ToNumber       string     `json:"toNumber,omitempty"`
	Duration       *float64   `json:"duration,omitempty"`
	Cost           *float64   `json:"cost,omitempty"`
	Summary        string     `json:"summary,omitempty"`
	Outcome        string     `json:"outcome,omitempty"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	EndedAt        *time.Time `json:"endedAt,omitempty"`
}

// Dispatcher posts call updates to tenant webhooks. Delivery runs in a
// detached goroutine with its own timeout; failures are logged and dropped,
// never retried and never reported to the caller.
type Dispatcher struct {
	configs WebhookConfigRepository
	client  *http.Client
	log     *slog.Logger
	timeout time.Duration
	now     func() time.Time

	// inflight lets tests wait for detached deliveries to finish.
	inflight sync.WaitGroup
}

func NewDispatcher(configs WebhookConfigRepository, log *slog.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		configs: configs,
		client:  &http.Client{Timeout: timeout},
		log:     log,
		timeout: timeout,
		now:     time.Now,
	}
}

// Dispatch fires a call_updated delivery for the given webhook id. A missing
// or disabled config is a no-op. The returned error only covers config
// lookup; delivery outcomes surface in logs.
func (d *Dispatcher) Dispatch(ctx context.Context, call *callrecords.CallRecord, webhookID string) error {
	cfg, err := d.configs.GetByID(ctx, call.TenantID, webhookID)
	if err != nil {
		return fmt.Errorf("resolve webhook %s: %w", webhookID, err)
	}
	if cfg == nil || !cfg.Enabled || cfg.URL == "" {
		return nil
	}

	payload := webhookPayload{
		Event: "call_updated",
		Call: webhookCall{
			ID:             call.ID,
			ExternalCallID: call.ExternalCallID,
			Status:         call.Status,
			FromNumber:     call.FromNumber,
			ToNumber:       call.ToNumber,
			Duration:       call.DurationSeconds,
			Cost:           call.Cost,
			Summary:        call.Summary,
			Outcome:        call.Outcome,
			StartedAt:      call.StartedAt,
			EndedAt:        call.EndedAt,
		},
		Timestamp: d.now().UTC(),
	}

	errCh := make(chan error, 1)
	d.inflight.Add(2)
	go func() {
		defer d.inflight.Done()
		errCh <- d.deliver(*cfg, payload)
	}()
	go func() {
		defer d.inflight.Done()
		if err := <-errCh; err != nil {
			d.log.Error("webhook delivery failed",
				"webhook_id", cfg.ID,
				"tenant_id", cfg.TenantID,
				"error", err,
			)
		}
	}()
	return nil
}

// deliver runs on its own context so a finished inbound request does not
// cancel the outbound POST.
func (d *Dispatcher) deliver(cfg WebhookConfig, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.Secret != "" {
		req.Header.Set("X-Webhook-Secret", cfg.Secret)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", cfg.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("post %s: unexpected status %d", cfg.URL, resp.StatusCode)
	}
	return nil
}

// Wait blocks until all detached deliveries have completed. Used by tests
// and graceful shutdown.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}
