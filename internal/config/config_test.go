package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{
			Host: "localhost", Port: 5432, Name: "taskboard", User: "taskboard",
			Password: "pw", SSLMode: "disable",
		},
		Auth:    AuthConfig{JWTSecret: "0123456789abcdef0123456789abcdef", TokenTTL: 24 * time.Hour},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_BadPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for port 0")
	}
}

func TestValidate_MissingDatabaseFields(t *testing.T) {
	for _, clear := range []func(*Config){
		func(c *Config) { c.Database.Host = "" },
		func(c *Config) { c.Database.Name = "" },
		func(c *Config) { c.Database.User = "" },
	} {
		cfg := validConfig()
		clear(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate() = nil for %+v, want error", cfg.Database)
		}
	}
}

func TestValidate_MissingJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for missing jwt_secret outside dev mode")
	}
}

func TestValidate_DevModeGeneratesSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = ""
	cfg.Auth.DevMode = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil in dev mode", err)
	}
	if len(cfg.Auth.JWTSecret) < 32 {
		t.Errorf("generated secret length = %d, want >= 32", len(cfg.Auth.JWTSecret))
	}
}

func TestValidate_NegativeTokenTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.TokenTTL = -time.Hour
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for negative token_ttl")
	}
}

func TestValidate_TLSRequiresFiles(t *testing.T) {
	cfg := validConfig()
	cfg.Security.TLS.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for TLS without cert/key")
	}
	cfg.Security.TLS.CertFile = "/tmp/cert.pem"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for TLS without key")
	}
	cfg.Security.TLS.KeyFile = "/tmp/key.pem"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil with cert and key", err)
	}
}

func TestValidate_BadLoggingLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for unknown logging level")
	}
}

func TestGetDSN(t *testing.T) {
	cfg := validConfig()
	want := "host=localhost port=5432 user=taskboard password=pw dbname=taskboard sslmode=disable"
	if got := cfg.Database.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}

func TestGetAddress(t *testing.T) {
	cfg := validConfig()
	if got := cfg.Server.GetAddress(); got != "0.0.0.0:8080" {
		t.Errorf("GetAddress() = %q, want 0.0.0.0:8080", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TASKBOARD_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := Load(writeConfigFile(t, "{}"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("auth.token_ttl = %v, want 24h", cfg.Auth.TokenTTL)
	}
	if !cfg.Security.RateLimiting.Enabled {
		t.Error("rate limiting should default to enabled")
	}
	if cfg.Bootstrap.OrganizationName != "Default Org" {
		t.Errorf("bootstrap.organization_name = %q, want Default Org", cfg.Bootstrap.OrganizationName)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TASKBOARD_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("TASKBOARD_SERVER_PORT", "9999")
	t.Setenv("TASKBOARD_DATABASE_HOST", "db.internal")
	t.Setenv("TASKBOARD_LOGGING_LEVEL", "debug")

	cfg, err := Load(writeConfigFile(t, "{}"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("database.host = %q, want db.internal", cfg.Database.Host)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_FileValues(t *testing.T) {
	t.Setenv("TASKBOARD_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	path := writeConfigFile(t, `
server:
  port: 8443
database:
  name: tasks_prod
  ssl_mode: verify-full
auth:
  token_ttl: 1h
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8443 {
		t.Errorf("server.port = %d, want 8443", cfg.Server.Port)
	}
	if cfg.Database.Name != "tasks_prod" {
		t.Errorf("database.name = %q, want tasks_prod", cfg.Database.Name)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("auth.token_ttl = %v, want 1h", cfg.Auth.TokenTTL)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
