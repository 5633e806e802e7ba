package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aaearon/mcp-privilege-cloud-sub001/secret"
)

// Environment variables read at startup.
const (
	EnvTenantID     = "CYBERARK_IDENTITY_TENANT_ID"
	EnvClientID     = "CYBERARK_CLIENT_ID"
	EnvClientSecret = "CYBERARK_CLIENT_SECRET"
	EnvSubdomain    = "CYBERARK_SUBDOMAIN"

	EnvTimeout         = "CYBERARK_API_TIMEOUT"
	EnvMaxRetries      = "CYBERARK_MAX_RETRIES"
	EnvLogLevel        = "CYBERARK_LOG_LEVEL"
	EnvMetricsExporter = "CYBERARK_METRICS_EXPORTER"
	EnvConfigFile      = "PRIVILEGE_CLOUD_CONFIG"
)

// Defaults applied when the optional settings are absent.
const (
	DefaultTimeout         = 30 * time.Second
	DefaultMaxRetries      = 1
	DefaultLogLevel        = "info"
	DefaultMetricsExporter = "none"
)

// Config is the immutable process configuration.
type Config struct {
	// TenantID is the CyberArk Identity tenant identifier.
	TenantID string `yaml:"tenant_id"`

	// ClientID is the OAuth2 service account client id.
	ClientID string `yaml:"client_id"`

	// ClientSecret is the OAuth2 client secret. May be given as a
	// secretref (see package secret). Never logged.
	ClientSecret string `yaml:"client_secret"`

	// Subdomain is the Privilege Cloud tenant subdomain.
	Subdomain string `yaml:"subdomain"`

	// Timeout applies to each upstream HTTP call.
	Timeout time.Duration `yaml:"-"`

	// MaxRetries bounds automatic re-authentication cycles after a 401.
	MaxRetries int `yaml:"-"`

	// LogLevel is one of debug|info|warn|error.
	LogLevel string `yaml:"log_level"`

	// MetricsExporter is one of stdout|prometheus|none.
	MetricsExporter string `yaml:"metrics_exporter"`

	// Raw string values for YAML unmarshaling.
	TimeoutRaw    string `yaml:"timeout"`
	MaxRetriesRaw string `yaml:"max_retries"`
}

// IdentityBaseURL returns the CyberArk Identity tenant base URL.
func (c *Config) IdentityBaseURL() string {
	return fmt.Sprintf("https://%s.id.cyberark.cloud", c.TenantID)
}

// TokenURL returns the OAuth2 platform token endpoint.
func (c *Config) TokenURL() string {
	return c.IdentityBaseURL() + "/oauth2/platformtoken"
}

// APIBaseURL returns the Privilege Cloud REST API base URL.
func (c *Config) APIBaseURL() string {
	return fmt.Sprintf("https://%s.privilegecloud.cyberark.cloud/PasswordVault/API", c.Subdomain)
}

// Load builds the configuration from the optional config file and the
// environment, resolves credential references, and validates the result.
// Validation reports every missing required variable, not just the first.
func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{
		Timeout:         DefaultTimeout,
		MaxRetries:      DefaultMaxRetries,
		LogLevel:        DefaultLogLevel,
		MetricsExporter: DefaultMetricsExporter,
	}

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.overlayEnv()

	if err := cfg.parseRaw(); err != nil {
		return nil, err
	}

	if err := cfg.resolveSecrets(ctx); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile reads a YAML config file, expanding ${VAR} references in the raw
// content before parsing.
func (c *Config) loadFile(path string) (err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	expanded, err := secret.ExpandEnvStrict(string(data))
	if err != nil {
		return fmt.Errorf("expanding config file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// overlayEnv applies environment variables over file-provided values.
func (c *Config) overlayEnv() {
	overlay := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	overlay(&c.TenantID, EnvTenantID)
	overlay(&c.ClientID, EnvClientID)
	overlay(&c.ClientSecret, EnvClientSecret)
	overlay(&c.Subdomain, EnvSubdomain)
	overlay(&c.LogLevel, EnvLogLevel)
	overlay(&c.MetricsExporter, EnvMetricsExporter)
	overlay(&c.TimeoutRaw, EnvTimeout)
	overlay(&c.MaxRetriesRaw, EnvMaxRetries)
}

// parseRaw converts string-form settings into their typed fields.
func (c *Config) parseRaw() error {
	if c.TimeoutRaw != "" {
		d, err := parseTimeout(c.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if c.MaxRetriesRaw != "" {
		n, err := strconv.Atoi(c.MaxRetriesRaw)
		if err != nil || n < 0 {
			return fmt.Errorf("%s: must be a non-negative integer, got %q", EnvMaxRetries, c.MaxRetriesRaw)
		}
		c.MaxRetries = n
	}
	return nil
}

// parseTimeout accepts either a duration string ("45s") or a bare number of
// seconds, which is how the setting was historically expressed.
func parseTimeout(raw string) (time.Duration, error) {
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("must be positive, got %d", secs)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

// resolveSecrets resolves secretref values in credential fields.
func (c *Config) resolveSecrets(ctx context.Context) error {
	resolver := secret.NewResolver(true, secret.EnvProvider{}, secret.FileProvider{})

	for _, field := range []struct {
		name  string
		value *string
	}{
		{EnvClientID, &c.ClientID},
		{EnvClientSecret, &c.ClientSecret},
	} {
		if _, _, ok := secret.ParseSecretRef(*field.value); !ok {
			continue
		}
		resolved, err := resolver.ResolveValue(ctx, *field.value)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", field.name, err)
		}
		*field.value = resolved
	}
	return nil
}

// Valid log levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Valid metrics exporters.
var validMetricsExporters = map[string]bool{
	"stdout":     true,
	"prometheus": true,
	"none":       true,
}

// Validate checks the configuration. All missing required variables are
// reported in a single error.
func (c *Config) Validate() error {
	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{EnvTenantID, c.TenantID},
		{EnvClientID, c.ClientID},
		{EnvClientSecret, c.ClientSecret},
		{EnvSubdomain, c.Subdomain},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("unknown log level: %q", c.LogLevel)
	}
	if !validMetricsExporters[c.MetricsExporter] {
		return fmt.Errorf("unknown metrics exporter: %q", c.MetricsExporter)
	}
	return nil
}
