// Package config handles loading and resolving weatherfinder configuration.
// Resolution order (first non-empty value wins):
//  1. CLI flag --api-key
//  2. Environment variable OPENWEATHER_API_KEY (or VITE_WEATHER_API_KEY)
//  3. .env in the current working directory
//  4. config.json in the current working directory
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultConfigFile    = "config.json"
	DefaultEnvFile       = ".env"
	DefaultFormat        = "table"
	DefaultTimeout       = 15 * time.Second
	DefaultRate          = 5.0
	DefaultBaseURL       = "https://api.openweathermap.org/data/2.5/"
	DefaultIconBaseURL   = "https://openweathermap.org"
	DefaultProbeAddr     = "api.openweathermap.org:443"
	DefaultProbeInterval = 5 * time.Second
	DefaultLocale        = "en-US"

	EnvAPIKey       = "OPENWEATHER_API_KEY"
	EnvAPIKeyLegacy = "VITE_WEATHER_API_KEY"
	EnvDBPath       = "WEATHERFINDER_DB_PATH"
	EnvLocale       = "WEATHERFINDER_LOCALE"
)

// File is the on-disk representation of config.json.
// Booleans are pointers so that an absent key keeps the default.
type File struct {
	APIKey        string  `json:"api_key"`
	DefaultFormat string  `json:"default_format"`
	Timeout       string  `json:"timeout"`
	Rate          float64 `json:"rate"`
	BaseURL       string  `json:"base_url"`
	IconBaseURL   string  `json:"icon_base_url"`
	DBPath        string  `json:"db_path"`
	Locale        string  `json:"locale"`
	Forecast      *bool   `json:"forecast,omitempty"`
	Beep          *bool   `json:"beep,omitempty"`
	ProbeAddr     string  `json:"probe_addr"`
	ProbeInterval string  `json:"probe_interval"`
}

// Config is the fully-resolved runtime configuration.
// All callers use this struct; the File is only read during loading.
type Config struct {
	APIKey        string
	Format        string
	Timeout       time.Duration
	Rate          float64
	BaseURL       string
	IconBaseURL   string
	DBPath        string
	Locale        string
	Forecast      bool
	Beep          bool
	ProbeAddr     string
	ProbeInterval time.Duration
	ConfigPath    string // path of the config.json that was loaded (empty if none found)
	EnvPath       string // path of the .env that was loaded (empty if none found)

	// Runtime overrides set from CLI flags after Load()
	Quiet     bool
	Verbose   bool
	Debug     bool
	NoHistory bool
}

// Load resolves configuration from all sources.
// flagAPIKey is the value of --api-key (empty string if not set).
func Load(flagAPIKey string) (*Config, error) {
	cfg := &Config{
		Format:        DefaultFormat,
		Timeout:       DefaultTimeout,
		Rate:          DefaultRate,
		BaseURL:       DefaultBaseURL,
		IconBaseURL:   DefaultIconBaseURL,
		Forecast:      true,
		Beep:          true,
		ProbeAddr:     DefaultProbeAddr,
		ProbeInterval: DefaultProbeInterval,
	}

	// Layer 1: config.json (lowest priority)
	if f, path, err := loadFile(); err == nil {
		applyFile(cfg, f, path)
	}

	// Layer 2: .env, then the process environment
	env := map[string]string{}
	if path, err := filepath.Abs(DefaultEnvFile); err == nil {
		if vars, err := godotenv.Read(path); err == nil {
			env = vars
			cfg.EnvPath = path
		}
	}
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return env[key]
	}
	if v := lookup(EnvAPIKeyLegacy); v != "" {
		cfg.APIKey = v
	}
	if v := lookup(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := lookup(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := lookup(EnvLocale); v != "" {
		cfg.Locale = v
	}

	// Layer 3: CLI flag (highest priority)
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.DBPath = filepath.Join(home, ".weatherfinder", "weatherfinder.db")
		}
	}
	if cfg.Locale == "" {
		cfg.Locale = systemLocale()
	}

	return cfg, nil
}

// Validate returns an error if required fields are missing.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New(
			"API key not found.\n\n" +
				"Set it one of these ways:\n" +
				"  1. CLI flag:        weatherfinder --api-key YOUR_KEY ...\n" +
				"  2. Environment:     export OPENWEATHER_API_KEY=YOUR_KEY\n" +
				"  3. .env:            OPENWEATHER_API_KEY=YOUR_KEY\n" +
				"  4. config.json:     {\"api_key\": \"YOUR_KEY\"}\n\n" +
				"Get a free key at https://home.openweathermap.org/api_keys",
		)
	}
	return nil
}

// RedactedAPIKey returns the API key with most characters replaced by asterisks.
// Safe for logging and display.
func (c *Config) RedactedAPIKey() string {
	if len(c.APIKey) <= 4 {
		return "****"
	}
	return c.APIKey[:2] + "****" + c.APIKey[len(c.APIKey)-2:]
}

// systemLocale derives a BCP 47 tag from LC_ALL / LC_TIME / LANG,
// e.g. "de_DE.UTF-8" → "de-DE". Falls back to DefaultLocale.
func systemLocale() string {
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return DefaultLocale
}

// loadFile attempts to read config.json from the current working directory.
func loadFile() (*File, string, error) {
	path, err := filepath.Abs(DefaultConfigFile)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("config.json not found at %s", path)
		}
		return nil, "", fmt.Errorf("reading config.json: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("parsing config.json: %w", err)
	}
	return &f, path, nil
}

// ReadFile reads a config.json at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, nil
}

// applyFile copies values from a parsed File into cfg,
// skipping any fields that are zero/empty.
func applyFile(cfg *Config, f *File, path string) {
	cfg.ConfigPath = path
	if f.APIKey != "" {
		cfg.APIKey = f.APIKey
	}
	if f.DefaultFormat != "" {
		cfg.Format = f.DefaultFormat
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			cfg.Timeout = d
		}
	}
	if f.Rate > 0 {
		cfg.Rate = f.Rate
	}
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.IconBaseURL != "" {
		cfg.IconBaseURL = f.IconBaseURL
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
	if f.Locale != "" {
		cfg.Locale = f.Locale
	}
	if f.Forecast != nil {
		cfg.Forecast = *f.Forecast
	}
	if f.Beep != nil {
		cfg.Beep = *f.Beep
	}
	if f.ProbeAddr != "" {
		cfg.ProbeAddr = f.ProbeAddr
	}
	if f.ProbeInterval != "" {
		if d, err := time.ParseDuration(f.ProbeInterval); err == nil {
			cfg.ProbeInterval = d
		}
	}
}

// Template returns a File populated with sensible defaults, suitable for
// writing an initial config.json via `weatherfinder config init`.
func Template() File {
	forecast, beep := true, true
	return File{
		APIKey:        "",
		DefaultFormat: DefaultFormat,
		Timeout:       DefaultTimeout.String(),
		Rate:          DefaultRate,
		BaseURL:       DefaultBaseURL,
		IconBaseURL:   DefaultIconBaseURL,
		Locale:        DefaultLocale,
		Forecast:      &forecast,
		Beep:          &beep,
		ProbeAddr:     DefaultProbeAddr,
		ProbeInterval: DefaultProbeInterval.String(),
	}
}

// WriteFile serialises a File to the given path.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}
