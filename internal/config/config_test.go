package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/derickschaefer/weatherfinder/internal/config"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// chdir switches the working directory to dir for the duration of the test so
// that config.Load() looks for config.json and .env there.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

// writeConfig writes a config.json into dir and changes into it.
func writeConfig(t *testing.T, dir string, f config.File) {
	t.Helper()
	if err := config.WriteFile(filepath.Join(dir, "config.json"), f); err != nil {
		t.Fatalf("write config: %v", err)
	}
	chdir(t, dir)
}

func writeDotEnv(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(body), 0600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
}

// clearEnv blanks every variable Load consults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		config.EnvAPIKey, config.EnvAPIKeyLegacy, config.EnvDBPath, config.EnvLocale,
		"LC_ALL", "LC_TIME", "LANG",
	} {
		t.Setenv(k, "")
	}
}

// ─── Defaults ─────────────────────────────────────────────────────────────────

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Format != config.DefaultFormat {
		t.Errorf("Format: expected %q, got %q", config.DefaultFormat, cfg.Format)
	}
	if cfg.Timeout != config.DefaultTimeout {
		t.Errorf("Timeout: expected %v, got %v", config.DefaultTimeout, cfg.Timeout)
	}
	if cfg.Rate != config.DefaultRate {
		t.Errorf("Rate: expected %g, got %g", config.DefaultRate, cfg.Rate)
	}
	if cfg.BaseURL != config.DefaultBaseURL || cfg.IconBaseURL != config.DefaultIconBaseURL {
		t.Errorf("URLs: got %q, %q", cfg.BaseURL, cfg.IconBaseURL)
	}
	if !cfg.Forecast || !cfg.Beep {
		t.Error("forecast and beep should default on")
	}
	if cfg.ProbeAddr != config.DefaultProbeAddr || cfg.ProbeInterval != config.DefaultProbeInterval {
		t.Errorf("probe: got %q every %v", cfg.ProbeAddr, cfg.ProbeInterval)
	}
	if cfg.Locale != config.DefaultLocale {
		t.Errorf("Locale: expected %q, got %q", config.DefaultLocale, cfg.Locale)
	}
	if cfg.DBPath == "" {
		t.Error("DBPath should have a default (home dir based) value")
	}
	if cfg.ConfigPath != "" || cfg.EnvPath != "" {
		t.Errorf("no files should be recorded, got %q / %q", cfg.ConfigPath, cfg.EnvPath)
	}
}

// ─── Config file loading ──────────────────────────────────────────────────────

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	off := false
	writeConfig(t, t.TempDir(), config.File{
		APIKey:        "filekey123",
		DefaultFormat: "json",
		Timeout:       "60s",
		Rate:          2.5,
		BaseURL:       "https://custom.example.com/",
		DBPath:        "/tmp/test.db",
		Locale:        "de-DE",
		Forecast:      &off,
		Beep:          &off,
		ProbeAddr:     "localhost:9",
		ProbeInterval: "1s",
	})

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIKey != "filekey123" {
		t.Errorf("APIKey: expected filekey123, got %q", cfg.APIKey)
	}
	if cfg.Format != "json" {
		t.Errorf("Format: expected json, got %q", cfg.Format)
	}
	if cfg.Timeout != time.Minute {
		t.Errorf("Timeout: expected 1m0s, got %v", cfg.Timeout)
	}
	if cfg.Rate != 2.5 {
		t.Errorf("Rate: expected 2.5, got %g", cfg.Rate)
	}
	if cfg.BaseURL != "https://custom.example.com/" {
		t.Errorf("BaseURL: expected custom URL, got %q", cfg.BaseURL)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath: expected /tmp/test.db, got %q", cfg.DBPath)
	}
	if cfg.Locale != "de-DE" {
		t.Errorf("Locale: expected de-DE, got %q", cfg.Locale)
	}
	if cfg.Forecast || cfg.Beep {
		t.Error("forecast and beep should be disabled by the file")
	}
	if cfg.ProbeAddr != "localhost:9" || cfg.ProbeInterval != time.Second {
		t.Errorf("probe: got %q every %v", cfg.ProbeAddr, cfg.ProbeInterval)
	}
	if !strings.Contains(cfg.ConfigPath, "config.json") {
		t.Errorf("ConfigPath should contain config.json, got %q", cfg.ConfigPath)
	}
}

func TestLoadInvalidDurationsIgnored(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{
		APIKey:        "k",
		Timeout:       "not-a-duration",
		ProbeInterval: "soon",
	})

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout != config.DefaultTimeout {
		t.Errorf("invalid timeout should use default %v, got %v", config.DefaultTimeout, cfg.Timeout)
	}
	if cfg.ProbeInterval != config.DefaultProbeInterval {
		t.Errorf("invalid probe interval should use default, got %v", cfg.ProbeInterval)
	}
}

func TestLoadMalformedFileIgnored(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ConfigPath != "" {
		t.Errorf("malformed file should not be recorded, got %q", cfg.ConfigPath)
	}
}

// ─── .env and environment priority ───────────────────────────────────────────

func TestLoadDotEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeDotEnv(t, dir, "OPENWEATHER_API_KEY=dotenvkey\nWEATHERFINDER_LOCALE=fr-FR\n")
	writeConfig(t, dir, config.File{APIKey: "filekey"})

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "dotenvkey" {
		t.Errorf(".env should override config.json: got %q", cfg.APIKey)
	}
	if cfg.Locale != "fr-FR" {
		t.Errorf("Locale from .env: got %q", cfg.Locale)
	}
	if !strings.HasSuffix(cfg.EnvPath, ".env") {
		t.Errorf("EnvPath: got %q", cfg.EnvPath)
	}
}

func TestLoadLegacyKeyFromDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeDotEnv(t, dir, "VITE_WEATHER_API_KEY=legacykey\n")
	chdir(t, dir)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "legacykey" {
		t.Errorf("legacy key: got %q", cfg.APIKey)
	}
}

func TestLoadEnvOverridesDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeDotEnv(t, dir, "OPENWEATHER_API_KEY=dotenvkey\n")
	chdir(t, dir)
	t.Setenv(config.EnvAPIKey, "envkey")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "envkey" {
		t.Errorf("process env should override .env: got %q", cfg.APIKey)
	}
}

func TestLoadPrimaryKeyBeatsLegacy(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv(config.EnvAPIKeyLegacy, "legacy")
	t.Setenv(config.EnvAPIKey, "primary")

	cfg, _ := config.Load("")
	if cfg.APIKey != "primary" {
		t.Errorf("expected primary, got %q", cfg.APIKey)
	}
}

func TestLoadEnvDBPath(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv(config.EnvDBPath, "/custom/path/weatherfinder.db")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/custom/path/weatherfinder.db" {
		t.Errorf("WEATHERFINDER_DB_PATH: got %q", cfg.DBPath)
	}
}

func TestLoadSystemLocale(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"de_DE.UTF-8", "de-DE"},
		{"en_GB", "en-GB"},
		{"fr_FR@euro", "fr-FR"},
		{"C", config.DefaultLocale},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			clearEnv(t)
			chdir(t, t.TempDir())
			t.Setenv("LANG", tt.lang)

			cfg, _ := config.Load("")
			if cfg.Locale != tt.want {
				t.Errorf("LANG=%s: expected %q, got %q", tt.lang, tt.want, cfg.Locale)
			}
		})
	}
}

// ─── CLI flag priority ────────────────────────────────────────────────────────

func TestLoadFlagAPIKeyOverridesEnvAndFile(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{APIKey: "filekey"})
	t.Setenv(config.EnvAPIKey, "envkey")

	cfg, err := config.Load("flagkey")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "flagkey" {
		t.Errorf("flag --api-key should override env and file: expected flagkey, got %q", cfg.APIKey)
	}
}

func TestLoadFlagEmptyDoesNotOverride(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{APIKey: "filekey"})

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "filekey" {
		t.Errorf("empty flag should not override file value: expected filekey, got %q", cfg.APIKey)
	}
}

// ─── Validate ─────────────────────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	if err := (&config.Config{APIKey: "somekey"}).Validate(); err != nil {
		t.Errorf("Validate with API key should not error: %v", err)
	}
	err := (&config.Config{}).Validate()
	if err == nil {
		t.Fatal("Validate without API key should return error")
	}
	if !strings.Contains(err.Error(), "API key") || !strings.Contains(err.Error(), config.EnvAPIKey) {
		t.Errorf("error should explain how to set the key, got: %v", err)
	}
}

// ─── RedactedAPIKey ───────────────────────────────────────────────────────────

func TestRedactedAPIKey(t *testing.T) {
	cfg := &config.Config{APIKey: "abcdefghij"}
	if got := cfg.RedactedAPIKey(); got != "ab****ij" {
		t.Errorf("expected ab****ij, got %q", got)
	}
	for _, key := range []string{"", "a", "abcd"} {
		cfg := &config.Config{APIKey: key}
		if cfg.RedactedAPIKey() != "****" {
			t.Errorf("short key %q should redact to '****', got %q", key, cfg.RedactedAPIKey())
		}
	}
}

// ─── WriteFile / Template ─────────────────────────────────────────────────────

func TestWriteFileReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	on := true
	f := config.File{
		APIKey:        "testkey",
		DefaultFormat: "csv",
		Timeout:       "45s",
		Rate:          3.0,
		DBPath:        "/data/weatherfinder.db",
		Beep:          &on,
	}
	if err := config.WriteFile(path, f); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := config.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.APIKey != f.APIKey || got.DefaultFormat != f.DefaultFormat || got.DBPath != f.DBPath {
		t.Errorf("unexpected file: %+v", got)
	}
	if got.Beep == nil || !*got.Beep {
		t.Error("Beep should survive")
	}
	if got.Forecast != nil {
		t.Error("unset Forecast should stay absent")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file permissions: expected 0600, got %04o", info.Mode().Perm())
	}
}

func TestTemplateDefaults(t *testing.T) {
	tmpl := config.Template()

	data, err := json.Marshal(tmpl)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"forecast":true`) {
		t.Errorf("template should spell out forecast, got %s", data)
	}
	if tmpl.DefaultFormat != "table" {
		t.Errorf("Template.DefaultFormat: expected table, got %q", tmpl.DefaultFormat)
	}
	if tmpl.Timeout != "15s" {
		t.Errorf("Template.Timeout: expected 15s, got %q", tmpl.Timeout)
	}
	if tmpl.APIKey != "" {
		t.Error("Template.APIKey should be empty")
	}
	if tmpl.ProbeInterval != "5s" {
		t.Errorf("Template.ProbeInterval: expected 5s, got %q", tmpl.ProbeInterval)
	}
}
