package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	MailDriverGraph = "graph"
	MailDriverSMTP  = "smtp"
)

// ErrMissingEnvironment is returned when none of the core variables are set.
var ErrMissingEnvironment = errors.New("missing environment variables: set CLIENT_ID, TENANT_ID, BASEROW_URL, BASEROW_API_TOKEN, CONFIG_TABLE_ID, ERROR_TABLE_ID")

type Config struct {
	// ----------------------------
	// Microsoft 365 / Graph
	// ----------------------------
	ClientID       string `envconfig:"CLIENT_ID"`
	TenantID       string `envconfig:"TENANT_ID"`
	AuthorityHost  string `envconfig:"AUTHORITY_HOST" default:"https://login.microsoftonline.com"`
	TokenCachePath string `envconfig:"TOKEN_CACHE_PATH" default:"token_cache.json"`
	GraphBaseURL   string `envconfig:"GRAPH_BASE_URL" default:"https://graph.microsoft.com/v1.0"`

	// ----------------------------
	// Mail delivery
	// ----------------------------
	MailDriver string  `envconfig:"MAIL_DRIVER" default:"graph"`
	MailFrom   string  `envconfig:"MAIL_FROM" default:""`
	RateLimit  float64 `envconfig:"RATE_LIMIT" default:"0"`

	// ----------------------------
	// SMTP
	// ----------------------------
	SMTPHost     string `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"1025"`
	SMTPUser     string `envconfig:"SMTP_USER" default:""`
	SMTPPassword string `envconfig:"SMTP_PASSWORD" default:""`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:""`

	// ----------------------------
	// Row store
	// ----------------------------
	BaserowURL      string `envconfig:"BASEROW_URL"`
	BaserowAPIToken string `envconfig:"BASEROW_API_TOKEN"`
	ConfigTableID   string `envconfig:"CONFIG_TABLE_ID"`
	ErrorTableID    string `envconfig:"ERROR_TABLE_ID"`
	RowPageSize     int    `envconfig:"ROW_PAGE_SIZE" default:"200"`

	// ----------------------------
	// Runtime
	// ----------------------------
	HTTPTimeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	PushgatewayURL string        `envconfig:"PUSHGATEWAY_URL" default:""`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate fails only when every core variable is absent; partially
// configured environments are left to fail at the point of use.
func (c *Config) Validate() error {
	core := []string{
		c.ClientID,
		c.TenantID,
		c.BaserowURL,
		c.BaserowAPIToken,
		c.ConfigTableID,
		c.ErrorTableID,
	}

	anySet := false
	for _, v := range core {
		if v != "" {
			anySet = true
			break
		}
	}
	if !anySet {
		return ErrMissingEnvironment
	}

	switch c.MailDriver {
	case MailDriverGraph, MailDriverSMTP:
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.MailDriver)
	}

	return nil
}
