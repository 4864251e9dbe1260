package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `
server:
  listen_addr: ":9090"

database:
  path: "/tmp/test-app.db"
  history_path: "/tmp/test-history.db"

auth:
  session_secret: "0123456789abcdef0123456789abcdef"
  session_ttl: 1h

delivery:
  provider: smtp
  smtp:
    host: "smtp.test.com"
    port: 2525
    username: "user"
    password: "pass"
    starttls: true

sending:
  default_from: "news@test.com"
  send_delay: 250ms
  company_name: "Test Co"

logging:
  level: debug
  format: text
`
	path := writeConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("expected listen addr ':9090', got '%s'", cfg.Server.ListenAddr)
	}
	if cfg.Database.Path != "/tmp/test-app.db" {
		t.Errorf("unexpected database path '%s'", cfg.Database.Path)
	}
	if cfg.Auth.SessionTTL != time.Hour {
		t.Errorf("expected session TTL 1h, got %s", cfg.Auth.SessionTTL)
	}
	if cfg.Delivery.Provider != "smtp" {
		t.Errorf("expected provider smtp, got '%s'", cfg.Delivery.Provider)
	}
	if cfg.Delivery.SMTP.Port != 2525 {
		t.Errorf("expected SMTP port 2525, got %d", cfg.Delivery.SMTP.Port)
	}
	if !cfg.Delivery.SMTP.StartTLS {
		t.Error("expected starttls enabled")
	}
	if cfg.Sending.SendDelay != 250*time.Millisecond {
		t.Errorf("expected send delay 250ms, got %s", cfg.Sending.SendDelay)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
auth:
  session_secret: "0123456789abcdef0123456789abcdef"

delivery:
  provider: api
  api:
    base_url: "https://api.test.com"
    api_key: "key"
`
	path := writeConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddr != ":8087" {
		t.Errorf("expected default listen addr ':8087', got '%s'", cfg.Server.ListenAddr)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("expected default session TTL 24h, got %s", cfg.Auth.SessionTTL)
	}
	if cfg.Sending.SendDelay != 100*time.Millisecond {
		t.Errorf("expected default send delay 100ms, got %s", cfg.Sending.SendDelay)
	}
	if cfg.Sending.DefaultFrom != "noreply@localhost" {
		t.Errorf("expected default from 'noreply@localhost', got '%s'", cfg.Sending.DefaultFrom)
	}
	if cfg.Sending.CompanyName != "Your Company" {
		t.Errorf("expected default company name, got '%s'", cfg.Sending.CompanyName)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected default log format json, got '%s'", cfg.Logging.Format)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing session secret",
			content: "delivery:\n  provider: api\n  api:\n    base_url: x\n    api_key: y\n",
			wantErr: "session_secret is required",
		},
		{
			name:    "short session secret",
			content: "auth:\n  session_secret: short\ndelivery:\n  provider: api\n  api:\n    base_url: x\n    api_key: y\n",
			wantErr: "at least 32 characters",
		},
		{
			name:    "api provider without key",
			content: "auth:\n  session_secret: \"0123456789abcdef0123456789abcdef\"\ndelivery:\n  provider: api\n  api:\n    base_url: x\n",
			wantErr: "api_key is required",
		},
		{
			name:    "smtp provider without host",
			content: "auth:\n  session_secret: \"0123456789abcdef0123456789abcdef\"\ndelivery:\n  provider: smtp\n",
			wantErr: "smtp.host is required",
		},
		{
			name:    "unknown provider",
			content: "auth:\n  session_secret: \"0123456789abcdef0123456789abcdef\"\ndelivery:\n  provider: carrier-pigeon\n",
			wantErr: "must be api or smtp",
		},
		{
			name: "dkim enabled without key file",
			content: "auth:\n  session_secret: \"0123456789abcdef0123456789abcdef\"\n" +
				"delivery:\n  provider: smtp\n  smtp:\n    host: h\n  dkim:\n    enabled: true\n    domain: d\n",
			wantErr: "dkim requires",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
