package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"voicedesk-platform/internal/audit"
	"voicedesk-platform/internal/automation"
	"voicedesk-platform/internal/callrecords"
	"voicedesk-platform/internal/leads"
	"voicedesk-platform/internal/reporting"
	"voicedesk-platform/pkg/logger"
)

// Handlers serves the authenticated, tenant-scoped read API. Writes happen
// through the webhook pipeline; this surface only exposes what it produced.
type Handlers struct {
	calls  *callrecords.Service
	leads  *leads.Service
	rules  automation.Repository
	report *reporting.Service
	trail  *audit.Recorder
}

func NewHandlers(
	calls *callrecords.Service,
	leadSvc *leads.Service,
	rules automation.Repository,
	report *reporting.Service,
	trail *audit.Recorder,
) *Handlers {
	return &Handlers{calls: calls, leads: leadSvc, rules: rules, report: report, trail: trail}
}

func tenantID(c *gin.Context) (string, bool) {
	id := c.GetString("tenant_id")
	if id == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "tenant scope required"})
		return "", false
	}
	return id, true
}

func limitParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func (h *Handlers) ListCalls(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	calls, err := h.calls.ListByTenant(c.Request.Context(), tenant, limitParam(c))
	if err != nil {
		logger.FromGin(c).Error("list calls failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list calls"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": calls})
}

func (h *Handlers) GetCall(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	rec, err := h.calls.GetByID(c.Request.Context(), tenant, c.Param("id"))
	if err != nil {
		if errors.Is(err, callrecords.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "call not found"})
			return
		}
		logger.FromGin(c).Error("get call failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load call"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"call": rec})
}

func (h *Handlers) GetCallAudit(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	entries, err := h.trail.ListByCall(c.Request.Context(), tenant, c.Param("id"), limitParam(c))
	if err != nil {
		logger.FromGin(c).Error("list call audit failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit trail"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *Handlers) ListLeads(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	out, err := h.leads.ListByTenant(c.Request.Context(), tenant, limitParam(c))
	if err != nil {
		logger.FromGin(c).Error("list leads failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list leads"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": out})
}

func (h *Handlers) ListRules(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	rules, err := h.rules.ListEnabled(c.Request.Context(), tenant)
	if err != nil {
		logger.FromGin(c).Error("list rules failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

func (h *Handlers) CallSummary(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	sum, err := h.report.TenantSummary(c.Request.Context(), tenant)
	if err != nil {
		logger.FromGin(c).Error("call summary failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": sum})
}
