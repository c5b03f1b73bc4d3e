package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/derickschaefer/weatherfinder/internal/config"
	"github.com/derickschaefer/weatherfinder/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage weatherfinder configuration",
	Long:  `Read and write weatherfinder configuration stored in config.json.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template config.json in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config.json already exists at %s (delete it first to re-initialise)", path)
		}
		if err := config.WriteFile(path, config.Template()); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created %s\n", path)
		fmt.Fprintln(out, "  Edit it and set your api_key to get started.")
		fmt.Fprintln(out, "  Get a free key at: https://home.openweathermap.org/api_keys")
		return nil
	},
}

var configGetShowSecrets bool

// configOut is the --format json shape of `config get`.
type configOut struct {
	APIKey        string  `json:"api_key"`
	Format        string  `json:"default_format"`
	Timeout       string  `json:"timeout"`
	Rate          float64 `json:"rate"`
	BaseURL       string  `json:"base_url"`
	IconBaseURL   string  `json:"icon_base_url"`
	DBPath        string  `json:"db_path"`
	Locale        string  `json:"locale"`
	Forecast      bool    `json:"forecast"`
	Beep          bool    `json:"beep"`
	ProbeAddr     string  `json:"probe_addr"`
	ProbeInterval string  `json:"probe_interval"`
	ConfigFile    string  `json:"config_file"`
	EnvFile       string  `json:"env_file"`
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(globalFlags.APIKey)
		if err != nil {
			return err
		}

		apiKey := cfg.RedactedAPIKey()
		if configGetShowSecrets {
			apiKey = cfg.APIKey
		}
		if cfg.APIKey == "" {
			apiKey = "(not set)"
		}

		notFound := func(p string) string {
			if p == "" {
				return "(not found)"
			}
			return p
		}

		format := cfg.Format
		if globalFlags.Format != "" {
			format = globalFlags.Format
		}

		o := configOut{
			APIKey:        apiKey,
			Format:        cfg.Format,
			Timeout:       cfg.Timeout.String(),
			Rate:          cfg.Rate,
			BaseURL:       cfg.BaseURL,
			IconBaseURL:   cfg.IconBaseURL,
			DBPath:        cfg.DBPath,
			Locale:        cfg.Locale,
			Forecast:      cfg.Forecast,
			Beep:          cfg.Beep,
			ProbeAddr:     cfg.ProbeAddr,
			ProbeInterval: cfg.ProbeInterval.String(),
			ConfigFile:    notFound(cfg.ConfigPath),
			EnvFile:       notFound(cfg.EnvPath),
		}

		if format == render.FormatJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(o)
		}
		printKVTable(cmd.OutOrStdout(), [][]string{
			{"api_key", o.APIKey},
			{"default_format", o.Format},
			{"timeout", o.Timeout},
			{"rate", fmt.Sprintf("%.1f req/s", o.Rate)},
			{"base_url", o.BaseURL},
			{"icon_base_url", o.IconBaseURL},
			{"db_path", o.DBPath},
			{"locale", o.Locale},
			{"forecast", strconv.FormatBool(o.Forecast)},
			{"beep", strconv.FormatBool(o.Beep)},
			{"probe_addr", o.ProbeAddr},
			{"probe_interval", o.ProbeInterval},
			{"config_file", o.ConfigFile},
			{"env_file", o.EnvFile},
		})
		return nil
	},
}

const validConfigKeys = "api_key, default_format, timeout, rate, base_url, icon_base_url, db_path, locale, forecast, beep, probe_addr, probe_interval"

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in config.json",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToLower(args[0])
		val := args[1]

		// Load existing file or start from template
		path := config.DefaultConfigFile
		f := config.Template()
		if existing, err := config.ReadFile(path); err == nil {
			f = *existing
		}

		if err := setConfigKey(&f, key, val); err != nil {
			return err
		}
		if err := config.WriteFile(path, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s in %s\n", key, path)
		return nil
	},
}

// setConfigKey validates val and stores it under key in f.
func setConfigKey(f *config.File, key, val string) error {
	switch key {
	case "api_key":
		f.APIKey = val
	case "default_format", "format":
		if !render.ValidFormat(val) {
			return fmt.Errorf("default_format must be one of %v", render.Formats)
		}
		f.DefaultFormat = val
	case "timeout", "probe_interval":
		if _, err := time.ParseDuration(val); err != nil {
			return fmt.Errorf("%s must be a duration such as 10s: %w", key, err)
		}
		if key == "timeout" {
			f.Timeout = val
		} else {
			f.ProbeInterval = val
		}
	case "rate":
		r, err := strconv.ParseFloat(val, 64)
		if err != nil || r <= 0 {
			return fmt.Errorf("rate must be a positive number")
		}
		f.Rate = r
	case "base_url":
		f.BaseURL = val
	case "icon_base_url":
		f.IconBaseURL = val
	case "db_path":
		f.DBPath = val
	case "locale":
		tag, err := language.Parse(val)
		if err != nil {
			return fmt.Errorf("locale must be a BCP 47 tag such as en-US: %w", err)
		}
		f.Locale = tag.String()
	case "forecast", "beep":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%s must be true or false", key)
		}
		if key == "forecast" {
			f.Forecast = &b
		} else {
			f.Beep = &b
		}
	case "probe_addr":
		f.ProbeAddr = val
	default:
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s", key, validConfigKeys)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configGetCmd.Flags().BoolVar(&configGetShowSecrets, "show-secrets", false, "show API key in plain text")
}
