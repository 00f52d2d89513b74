package vapi

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voicedesk-platform/pkg/logger"
)

const headerVapiSecret = "X-Vapi-Secret"

// EventProcessor consumes normalized call events. An error return signals a
// persistence failure; anything recoverable is handled inside.
type EventProcessor interface {
	Process(ctx context.Context, ev CallEvent) error
}

// WebhookHandler terminates the provider's event webhook. The contract with
// the provider is acknowledgment-first: any outcome short of a store failure
// answers 200 so the provider never enters a retry storm.
type WebhookHandler struct {
	processor EventProcessor
	secret    string
	now       func() time.Time
}

func NewWebhookHandler(processor EventProcessor, secret string) *WebhookHandler {
	return &WebhookHandler{processor: processor, secret: secret, now: time.Now}
}

// Handle processes POST deliveries.
func (h *WebhookHandler) Handle(c *gin.Context) {
	log := logger.FromGin(c)

	if h.secret != "" {
		given := c.GetHeader(headerVapiSecret)
		if subtle.ConstantTimeCompare([]byte(given), []byte(h.secret)) != 1 {
			log.Warn("webhook secret mismatch")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Error("reading webhook body failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read request body"})
		return
	}

	ev, err := Normalize(body)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			// Malformed payloads are acknowledged; a 4xx/5xx would only make
			// the provider redeliver the same broken body.
			log.Warn("unparseable webhook payload acknowledged", "error", err)
			c.JSON(http.StatusOK, gin.H{"success": true, "received": true})
			return
		}
		log.Error("normalize failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "normalization failed", "details": err.Error()})
		return
	}

	if err := h.processor.Process(c.Request.Context(), ev); err != nil {
		log.Error("event processing failed",
			"type", string(ev.Type),
			"external_call_id", ev.ExternalCallID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event processing failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "received": true})
}

// Health answers GET probes on the webhook path.
func (h *WebhookHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "voice webhook endpoint is live",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
