package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultBaseURL = "http://localhost:1337"
	DefaultTimeout = 10 * time.Second
	DefaultListen  = "127.0.0.1:8080"
	DefaultLevel   = "info"
	DefaultFormat  = "text"
)

// DotenvFile is read from the working directory by Load.
const DotenvFile = ".env"

// Environment variables. The backend URL is looked up under each of
// URLEnvVars in order.
const (
	EnvTimeout      = "TASKFLOW_TIMEOUT"
	EnvLogLevel     = "TASKFLOW_LOG_LEVEL"
	EnvListen       = "TASKFLOW_LISTEN"
	EnvCookieSecret = "TASKFLOW_COOKIE_SECRET"
)

// URLEnvVars name the variables that can hold the backend URL.
var URLEnvVars = []string{"TASKFLOW_URL", "STRAPI_URL", "NEXT_PUBLIC_STRAPI_URL"}

// Settings are user-tunable values.
type Settings struct {
	// BaseURL is the backend root, e.g. http://localhost:1337.
	BaseURL string `toml:"base_url"`

	// Timeout bounds each backend call.
	Timeout Duration `toml:"timeout"`

	Log LogSettings `toml:"log"`
	Web WebSettings `toml:"web"`
}

// LogSettings configure diagnostics.
type LogSettings struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json, logfmt
}

// WebSettings configure the browser front end.
type WebSettings struct {
	Listen string `toml:"listen"`

	// CookieSecret authenticates the session cookie. A random secret is
	// used when empty, so cookies do not survive a restart.
	CookieSecret string `toml:"cookie_secret"`
}

// Duration is a time.Duration written as a string such as "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("duration must be positive: %s", text)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		BaseURL: DefaultBaseURL,
		Timeout: Duration{DefaultTimeout},
		Log:     LogSettings{Level: DefaultLevel, Format: DefaultFormat},
		Web:     WebSettings{Listen: DefaultListen},
	}
}

// Load creates a Config and reads its settings in priority order:
//  1. Defaults
//  2. config.toml in the config directory
//  3. .env in the working directory (never overriding the real environment)
//  4. Environment variables
//
// Flags are applied by the caller afterwards.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(cfg.SettingsPath(), &cfg.Settings); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", cfg.SettingsPath(), err)
	}

	dotenv, err := godotenv.Read(DotenvFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", DotenvFile, err)
	}
	lookup := func(key string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(dotenv[key])
	}

	if err := cfg.Settings.applyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Settings) applyEnv(lookup func(string) string) error {
	for _, key := range URLEnvVars {
		if v := lookup(key); v != "" {
			s.BaseURL = v
			break
		}
	}
	if v := lookup(EnvTimeout); v != "" {
		if err := s.Timeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
	}
	if v := lookup(EnvLogLevel); v != "" {
		s.Log.Level = v
	}
	if v := lookup(EnvListen); v != "" {
		s.Web.Listen = v
	}
	if v := lookup(EnvCookieSecret); v != "" {
		s.Web.CookieSecret = v
	}
	return nil
}
