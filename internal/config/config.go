// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values used when neither the YAML file nor the environment sets them.
const (
	DefaultHTTPPort   = "8080"
	DefaultGRPCPort   = "9090"
	DefaultAPIBaseURL = "http://localhost:8180"
	DefaultLoginPath  = "/auth/login"
	DefaultSessionTTL = 2 * time.Hour
	DefaultLogLevel   = "info"
)

// Insecure development keys. Anything deployed must override them.
const (
	devSessionKey = "filmweb-dev-session-key-change-me"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	CSRF     CSRFConfig     `yaml:"csrf"`
	Limiter  LimiterConfig  `yaml:"limiter"`
	LogLevel string         `yaml:"log_level"`
}

type HTTPConfig struct {
	Port string `yaml:"port"`
}

type GRPCConfig struct {
	Port string `yaml:"port"`
}

// APIConfig points at the remote film catalog API.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"`
	LoginPath string `yaml:"login_path"`
}

// DatabaseConfig selects the session store. An empty URL keeps sessions in memory.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type SessionConfig struct {
	Key          string        `yaml:"key"`
	TTL          time.Duration `yaml:"ttl"`
	SecureCookie bool          `yaml:"secure_cookie"`
}

// CSRFConfig enables gorilla/csrf when Key is set. The key must be 32 bytes.
type CSRFConfig struct {
	Key string `yaml:"key"`
}

type LimiterConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

// Default returns a configuration usable for local development.
func Default() Config {
	return Config{
		HTTP:    HTTPConfig{Port: DefaultHTTPPort},
		GRPC:    GRPCConfig{Port: DefaultGRPCPort},
		API:     APIConfig{BaseURL: DefaultAPIBaseURL, LoginPath: DefaultLoginPath},
		Session: SessionConfig{Key: devSessionKey, TTL: DefaultSessionTTL},
		Limiter: LimiterConfig{Enabled: true, RPS: 4, Burst: 8},

		LogLevel: DefaultLogLevel,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment overrides.
func Load(path string, logger *slog.Logger) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to open configuration: %w", err)
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse configuration %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Session.Key == devSessionKey {
		logger.Warn("FILMWEB_SESSION_KEY not set, using the development session key. Do not use this in production.")
	}
	if cfg.API.BaseURL == DefaultAPIBaseURL {
		logger.Warn("TOAD_API_URL not set, using default catalog API URL.", slog.String("url", cfg.API.BaseURL))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.HTTP.Port, "FILMWEB_HTTP_PORT")
	setString(&cfg.GRPC.Port, "FILMWEB_GRPC_PORT")
	setString(&cfg.API.BaseURL, "TOAD_API_URL")
	setString(&cfg.API.LoginPath, "TOAD_API_LOGIN_PATH")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Session.Key, "FILMWEB_SESSION_KEY")
	setString(&cfg.CSRF.Key, "FILMWEB_CSRF_KEY")
	setString(&cfg.LogLevel, "FILMWEB_LOG_LEVEL")

	if v := os.Getenv("FILMWEB_SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FILMWEB_SESSION_TTL %q: %w", v, err)
		}
		cfg.Session.TTL = ttl
	}
	if v := os.Getenv("FILMWEB_SECURE_COOKIE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid FILMWEB_SECURE_COOKIE %q: %w", v, err)
		}
		cfg.Session.SecureCookie = secure
	}
	if v := os.Getenv("FILMWEB_LIMITER_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid FILMWEB_LIMITER_ENABLED %q: %w", v, err)
		}
		cfg.Limiter.Enabled = enabled
	}
	if v := os.Getenv("FILMWEB_LIMITER_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid FILMWEB_LIMITER_RPS %q: %w", v, err)
		}
		cfg.Limiter.RPS = rps
	}
	if v := os.Getenv("FILMWEB_LIMITER_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FILMWEB_LIMITER_BURST %q: %w", v, err)
		}
		cfg.Limiter.Burst = burst
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate checks the values that would otherwise fail late at runtime.
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Port == "" {
		errs = append(errs, errors.New("http port must be set"))
	}
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api base url %q must be an absolute URL", c.API.BaseURL))
	}
	if !strings.HasPrefix(c.API.LoginPath, "/") {
		errs = append(errs, fmt.Errorf("api login path %q must start with /", c.API.LoginPath))
	}
	if c.Session.Key == "" {
		errs = append(errs, errors.New("session key must be set"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.CSRF.Key != "" && len(c.CSRF.Key) != 32 {
		errs = append(errs, errors.New("csrf key must be exactly 32 bytes"))
	}
	if c.Limiter.Enabled && (c.Limiter.RPS <= 0 || c.Limiter.Burst <= 0) {
		errs = append(errs, errors.New("limiter rps and burst must be positive when enabled"))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
