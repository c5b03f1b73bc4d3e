// Package cmd implements the weatherfinder CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/weatherfinder/internal/app"
	"github.com/derickschaefer/weatherfinder/internal/config"
	"github.com/derickschaefer/weatherfinder/internal/render"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags struct {
	APIKey     string
	Format     string
	Out        string
	Timeout    string
	Rate       float64
	Quiet      bool
	Verbose    bool
	Debug      bool
	Locale     string
	NoForecast bool
	NoBeep     bool
	NoHistory  bool
}

// rootCmd is the base command. Running `weatherfinder` with no subcommand
// prints help.
var rootCmd = &cobra.Command{
	Use:   "weatherfinder",
	Short: "Current weather and a short forecast for any city",
	Long: `weatherfinder looks up the current weather for a city by name using the
OpenWeatherMap API, with a 12-slot (3-hourly) forecast, an icon for the
conditions, and a short audio cue when a search succeeds.

Get a free API key at: https://home.openweathermap.org/api_keys

Quick start:
  weatherfinder config init          # create a config.json
  weatherfinder search London        # one-shot lookup
  weatherfinder interactive          # type cities, one per line`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(globalFlags.Debug)
	},
}

// Execute is the entry point called by main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setupLogging installs the process-wide slog handler. Debug output goes to
// stderr so it never mixes with rendered results.
func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE.
func buildDeps() (*app.Deps, error) {
	cfg, err := config.Load(globalFlags.APIKey)
	if err != nil {
		return nil, err
	}

	// Apply CLI flag overrides
	cfg.Quiet = globalFlags.Quiet
	cfg.Verbose = globalFlags.Verbose
	cfg.Debug = globalFlags.Debug
	cfg.NoHistory = globalFlags.NoHistory

	if globalFlags.Format != "" {
		cfg.Format = globalFlags.Format
	}
	if !render.ValidFormat(cfg.Format) {
		return nil, fmt.Errorf("unknown format %q: choose one of %v", cfg.Format, render.Formats)
	}
	if globalFlags.Timeout != "" {
		d, err := time.ParseDuration(globalFlags.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid --timeout %q: %w", globalFlags.Timeout, err)
		}
		cfg.Timeout = d
	}
	if globalFlags.Rate > 0 {
		cfg.Rate = globalFlags.Rate
	}
	if globalFlags.Locale != "" {
		cfg.Locale = globalFlags.Locale
	}
	if globalFlags.NoForecast {
		cfg.Forecast = false
	}
	if globalFlags.NoBeep {
		cfg.Beep = false
	}

	return app.New(cfg), nil
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.APIKey, "api-key", "",
		"OpenWeatherMap API key (overrides env OPENWEATHER_API_KEY, .env and config.json)")
	pf.StringVar(&globalFlags.Format, "format", "",
		"output format: table|json|jsonl|csv|tsv|md (default: table)")
	pf.StringVar(&globalFlags.Out, "out", "",
		"write output to file instead of stdout")
	pf.StringVar(&globalFlags.Timeout, "timeout", "",
		"HTTP request timeout (e.g. 10s, 1m)")
	pf.Float64Var(&globalFlags.Rate, "rate", 0,
		"max API requests per second (default: 5.0)")
	pf.BoolVar(&globalFlags.Quiet, "quiet", false,
		"suppress the loading line and other non-result output")
	pf.BoolVar(&globalFlags.Verbose, "verbose", false,
		"show timing stats after output")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log HTTP requests and responses (API key redacted)")
	pf.StringVar(&globalFlags.Locale, "locale", "",
		"BCP 47 locale for times and text (e.g. en-US, de-DE)")
	pf.BoolVar(&globalFlags.NoForecast, "no-forecast", false,
		"skip the forecast request")
	pf.BoolVar(&globalFlags.NoBeep, "no-beep", false,
		"do not play the success cue")
	pf.BoolVar(&globalFlags.NoHistory, "no-history", false,
		"do not record searches in the local history")

	_ = rootCmd.RegisterFlagCompletionFunc("format", completeFormats)
}
