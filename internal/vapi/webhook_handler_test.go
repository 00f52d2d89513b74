package vapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type stubProcessor struct {
	events []CallEvent
	err    error
}

func (s *stubProcessor) Process(_ context.Context, ev CallEvent) error {
	s.events = append(s.events, ev)
	return s.err
}

func newWebhookRouter(h *WebhookHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook/vapi", h.Handle)
	r.GET("/webhook/vapi", h.Health)
	return r
}

func postWebhook(t *testing.T, r *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/vapi", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookAcknowledgesValidEvent(t *testing.T) {
	proc := &stubProcessor{}
	r := newWebhookRouter(NewWebhookHandler(proc, ""))

	w := postWebhook(t, r, `{"message":{"type":"status-update","status":"ringing","call":{"id":"ext-1"}}}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["success"] != true || resp["received"] != true {
		t.Fatalf("unexpected ack body: %v", resp)
	}
	if len(proc.events) != 1 || proc.events[0].ExternalCallID != "ext-1" {
		t.Fatalf("processor saw %v", proc.events)
	}
}

func TestWebhookEmptyBodyStillAcknowledged(t *testing.T) {
	proc := &stubProcessor{}
	r := newWebhookRouter(NewWebhookHandler(proc, ""))

	w := postWebhook(t, r, "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(proc.events) != 1 || proc.events[0].Type != EventInformational {
		t.Fatalf("expected informational event, got %v", proc.events)
	}
}

func TestWebhookMalformedBodyAcknowledged(t *testing.T) {
	proc := &stubProcessor{}
	r := newWebhookRouter(NewWebhookHandler(proc, ""))

	w := postWebhook(t, r, `{"message":`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(proc.events) != 0 {
		t.Fatalf("parse failures must not reach the processor, got %v", proc.events)
	}
}

func TestWebhookStoreFailureReturns500(t *testing.T) {
	proc := &stubProcessor{err: errors.New("constraint violation")}
	r := newWebhookRouter(NewWebhookHandler(proc, ""))

	w := postWebhook(t, r, `{"type":"status-update","call":{"id":"ext-1"}}`, nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] == "" {
		t.Fatalf("expected error field, got %v", resp)
	}
}

func TestWebhookSecretEnforcedWhenConfigured(t *testing.T) {
	proc := &stubProcessor{}
	r := newWebhookRouter(NewWebhookHandler(proc, "topsecret"))

	w := postWebhook(t, r, `{"type":"status-update"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing secret: status = %d, want 401", w.Code)
	}

	w = postWebhook(t, r, `{"type":"status-update"}`, map[string]string{"X-Vapi-Secret": "topsecret"})
	if w.Code != http.StatusOK {
		t.Fatalf("correct secret: status = %d, want 200", w.Code)
	}
}

func TestWebhookHealthProbe(t *testing.T) {
	r := newWebhookRouter(NewWebhookHandler(&stubProcessor{}, ""))

	req := httptest.NewRequest(http.MethodGet, "/webhook/vapi", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" || resp["timestamp"] == "" {
		t.Fatalf("unexpected health body: %v", resp)
	}
}
