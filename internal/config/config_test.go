package config

import "testing"

func validBase() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "voicedesk", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	c.Auth.JWTIssuer = "voicedesk"
	c.Auth.JWTAudience = "api"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Vapi.TenantFallback != "first_enabled" {
		t.Fatalf("expected first_enabled fallback default, got %q", c.Vapi.TenantFallback)
	}
	if c.Vapi.WebhookTimeout <= 0 {
		t.Fatalf("expected webhook timeout default")
	}
}

func TestValidate_RejectsUnknownTenantFallback(t *testing.T) {
	c := validBase()
	c.Vapi.TenantFallback = "round_robin"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unknown tenant fallback")
	}
}
