package main

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"voicedesk-platform/internal/auth"
	"voicedesk-platform/internal/httpapi"
	"voicedesk-platform/internal/rbac"
	"voicedesk-platform/internal/reporting"
	"voicedesk-platform/internal/vapi"
)

func reportingService(db *sql.DB) *reporting.Service {
	return reporting.NewService(reporting.NewPostgresSource(db))
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(
	r *gin.Engine,
	webhook *vapi.WebhookHandler,
	api *httpapi.Handlers,
	authManager *auth.Manager,
) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider webhook (public, optionally guarded by a shared secret).
	r.POST("/webhook/vapi", webhook.Handle)
	r.GET("/webhook/vapi", webhook.Health)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(authManager))
	v1.Use(rbac.RequireTenant())
	{
		v1.GET("/me", func(c *gin.Context) {
			uid, _ := auth.UserID(c.Request.Context())
			tid, _ := auth.TenantID(c.Request.Context())
			role, _ := auth.Role(c.Request.Context())
			c.JSON(200, gin.H{"user_id": uid, "tenant_id": tid, "role": role})
		})

		calls := v1.Group("/calls")
		calls.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAgent, rbac.RoleAnalyst))
		{
			calls.GET("", api.ListCalls)
			calls.GET("/:id", api.GetCall)
			calls.GET("/:id/audit", api.GetCallAudit)
		}

		leadsGroup := v1.Group("/leads")
		leadsGroup.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAgent))
		{
			leadsGroup.GET("", api.ListLeads)
		}

		rules := v1.Group("/automation")
		rules.Use(rbac.RequireAnyRole(rbac.RoleOwner))
		{
			rules.GET("/rules", api.ListRules)
		}

		reports := v1.Group("/reports")
		reports.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAnalyst))
		{
			reports.GET("/calls", api.CallSummary)
		}
	}
}
