package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Sending  SendingConfig  `yaml:"sending"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	ListenAddr string    `yaml:"listen_addr"`
	TLS        TLSConfig `yaml:"tls"`
}

type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type DatabaseConfig struct {
	Path        string `yaml:"path"`
	HistoryPath string `yaml:"history_path"`
}

type AuthConfig struct {
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
}

type DeliveryConfig struct {
	Provider string     `yaml:"provider"` // api or smtp
	API      APIConfig  `yaml:"api"`
	SMTP     SMTPConfig `yaml:"smtp"`
	DKIM     DKIMConfig `yaml:"dkim"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	StartTLS bool   `yaml:"starttls"`
}

type DKIMConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Domain   string `yaml:"domain"`
	Selector string `yaml:"selector"`
	KeyFile  string `yaml:"key_file"`
}

// SendingConfig controls campaign defaults and the fixed placeholder values
// substituted into templates.
type SendingConfig struct {
	DefaultFrom        string        `yaml:"default_from"`
	SendDelay          time.Duration `yaml:"send_delay"`
	CompanyName        string        `yaml:"company_name"`
	NewsletterSubtitle string        `yaml:"newsletter_subtitle"`
	CompanyAddress     string        `yaml:"company_address"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8087"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "/var/lib/lunamail/app.db"
	}
	if cfg.Database.HistoryPath == "" {
		cfg.Database.HistoryPath = "/var/lib/lunamail/history.db"
	}
	if cfg.Auth.SessionTTL == 0 {
		cfg.Auth.SessionTTL = 24 * time.Hour
	}
	if cfg.Delivery.Provider == "" {
		cfg.Delivery.Provider = "api"
	}
	if cfg.Delivery.SMTP.Port == 0 {
		cfg.Delivery.SMTP.Port = 587
	}
	if cfg.Sending.DefaultFrom == "" {
		cfg.Sending.DefaultFrom = "noreply@localhost"
	}
	if cfg.Sending.SendDelay == 0 {
		cfg.Sending.SendDelay = 100 * time.Millisecond
	}
	if cfg.Sending.CompanyName == "" {
		cfg.Sending.CompanyName = "Your Company"
	}
	if cfg.Sending.NewsletterSubtitle == "" {
		cfg.Sending.NewsletterSubtitle = "Your weekly newsletter"
	}
	if cfg.Sending.CompanyAddress == "" {
		cfg.Sending.CompanyAddress = "123 Main Street"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	if cfg.Auth.SessionSecret == "" {
		return fmt.Errorf("auth.session_secret is required")
	}
	if len(cfg.Auth.SessionSecret) < 32 {
		return fmt.Errorf("auth.session_secret must be at least 32 characters")
	}
	switch cfg.Delivery.Provider {
	case "api":
		if cfg.Delivery.API.BaseURL == "" {
			return fmt.Errorf("delivery.api.base_url is required when provider is api")
		}
		if cfg.Delivery.API.APIKey == "" {
			return fmt.Errorf("delivery.api.api_key is required when provider is api")
		}
	case "smtp":
		if cfg.Delivery.SMTP.Host == "" {
			return fmt.Errorf("delivery.smtp.host is required when provider is smtp")
		}
	default:
		return fmt.Errorf("delivery.provider must be api or smtp, got %q", cfg.Delivery.Provider)
	}
	if cfg.Delivery.DKIM.Enabled {
		if cfg.Delivery.DKIM.Domain == "" || cfg.Delivery.DKIM.Selector == "" || cfg.Delivery.DKIM.KeyFile == "" {
			return fmt.Errorf("delivery.dkim requires domain, selector and key_file when enabled")
		}
	}
	return nil
}
