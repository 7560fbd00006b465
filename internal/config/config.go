// Package config loads the server configuration from defaults, an optional
// TOML file and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
)

// Backend names.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendREST     = "rest"
)

// Duration is a time.Duration that reads "90s"-style strings from TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the complete server configuration.
type Config struct {
	Addr            string   `toml:"addr"`
	WebDir          string   `toml:"web_dir"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`

	// memory, postgres or rest
	Backend     string   `toml:"backend"`
	DatabaseURL string   `toml:"database_url"`
	APIURL      string   `toml:"api_url"`
	APITimeout  Duration `toml:"api_timeout"`
	SeedDemo    bool     `toml:"seed_demo"`

	Auth    Auth    `toml:"auth"`
	OIDC    OIDC    `toml:"oidc"`
	Program Program `toml:"program"`
	Log     Log     `toml:"log"`
	Metrics Metrics `toml:"metrics"`
}

// Auth controls local sign-in and session lifetime.
type Auth struct {
	// Disabled makes every request act as the local user.
	Disabled         bool     `toml:"disabled"`
	TrustForwardAuth bool     `toml:"trust_forward_auth"`
	SessionTTL       Duration `toml:"session_ttl"`
	PurgeInterval    Duration `toml:"purge_interval"`
	// Initial user created at startup when no user exists yet.
	InitialUser     string `toml:"initial_user"`
	InitialPassword string `toml:"initial_password"`
}

// OIDC configures single sign-on. It is off unless Issuer and ClientID are set.
type OIDC struct {
	Issuer       string `toml:"issuer"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
}

// Enabled reports whether SSO is configured.
func (o OIDC) Enabled() bool {
	return o.Issuer != "" && o.ClientID != ""
}

// Program holds the placeholders used by the progress stats until per-user
// height and goals exist.
type Program struct {
	HeightMeters float64 `toml:"height_meters"`
	TargetLoss   float64 `toml:"target_loss"`
}

// Log selects the log level and sinks.
type Log struct {
	Level    string `toml:"level"`
	File     string `toml:"file"`
	ToStdout bool   `toml:"to_stdout"`
	JSON     bool   `toml:"json"`
}

// Metrics toggles the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Addr:            ":8080",
		WebDir:          "web",
		ShutdownTimeout: Duration{10 * time.Second},
		Backend:         BackendMemory,
		APITimeout:      Duration{15 * time.Second},
		Auth: Auth{
			SessionTTL:    Duration{24 * time.Hour},
			PurgeInterval: Duration{time.Hour},
		},
		Program: Program{HeightMeters: 1.7, TargetLoss: 20},
		Log:     Log{Level: "info"},
		Metrics: Metrics{Enabled: true, Path: "/metrics"},
	}
}

// Load reads path (if not empty) over the defaults, then applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from the environment. lookup is os.LookupEnv
// outside tests.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *Duration) {
		if v, ok := lookup(key); ok && v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}

	str("ADDR", &c.Addr)
	str("WEB_DIR", &c.WebDir)
	duration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout)
	str("BACKEND", &c.Backend)
	str("DATABASE_URL", &c.DatabaseURL)
	str("API_URL", &c.APIURL)
	duration("API_TIMEOUT", &c.APITimeout)
	boolean("SEED_DEMO", &c.SeedDemo)

	boolean("DISABLE_AUTH", &c.Auth.Disabled)
	boolean("TRUST_FORWARD_AUTH", &c.Auth.TrustForwardAuth)
	duration("SESSION_TTL", &c.Auth.SessionTTL)
	duration("SESSION_PURGE_INTERVAL", &c.Auth.PurgeInterval)
	str("INITIAL_USER", &c.Auth.InitialUser)
	str("INITIAL_PASSWORD", &c.Auth.InitialPassword)

	str("OIDC_ISSUER", &c.OIDC.Issuer)
	str("OIDC_CLIENT_ID", &c.OIDC.ClientID)
	str("OIDC_CLIENT_SECRET", &c.OIDC.ClientSecret)
	str("OIDC_REDIRECT_URL", &c.OIDC.RedirectURL)

	float("HEIGHT_METERS", &c.Program.HeightMeters)
	float("TARGET_LOSS", &c.Program.TargetLoss)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FILE", &c.Log.File)
	boolean("LOG_TO_STDOUT", &c.Log.ToStdout)
	boolean("LOG_JSON", &c.Log.JSON)

	boolean("METRICS_ENABLED", &c.Metrics.Enabled)
	str("METRICS_PATH", &c.Metrics.Path)

	return errs
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs error
	add := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf(format, args...))
	}

	if c.Addr == "" {
		add("addr is required")
	}
	switch strings.ToLower(c.Backend) {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			add("database_url is required for the postgres backend")
		}
	case BackendREST:
		if err := validateAbsoluteURL(c.APIURL); err != nil {
			add("api_url: %v", err)
		}
		if c.APITimeout.Duration <= 0 {
			add("api_timeout must be positive")
		}
	default:
		add("backend must be one of %s, %s, %s; got %q", BackendMemory, BackendPostgres, BackendREST, c.Backend)
	}
	c.Backend = strings.ToLower(c.Backend)

	if c.Auth.SessionTTL.Duration <= 0 {
		add("auth.session_ttl must be positive")
	}
	if c.Auth.PurgeInterval.Duration <= 0 {
		add("auth.purge_interval must be positive")
	}
	if (c.Auth.InitialUser == "") != (c.Auth.InitialPassword == "") {
		add("auth.initial_user and auth.initial_password must be set together")
	}
	if c.OIDC.Enabled() && c.OIDC.RedirectURL == "" {
		add("oidc.redirect_url is required when SSO is enabled")
	}
	if c.Program.HeightMeters <= 0 {
		add("program.height_meters must be positive")
	}
	if c.Program.TargetLoss <= 0 {
		add("program.target_loss must be positive")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		add("metrics.path must start with /")
	}
	return errs
}

func validateAbsoluteURL(raw string) error {
	if raw == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q must be an absolute http(s) URL", raw)
	}
	return nil
}
