// Package app wires together configuration, the API client, and other
// dependencies into a single Deps struct that commands receive at runtime.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/derickschaefer/weatherfinder/internal/audio"
	"github.com/derickschaefer/weatherfinder/internal/config"
	"github.com/derickschaefer/weatherfinder/internal/connectivity"
	"github.com/derickschaefer/weatherfinder/internal/finder"
	"github.com/derickschaefer/weatherfinder/internal/icon"
	"github.com/derickschaefer/weatherfinder/internal/notify"
	"github.com/derickschaefer/weatherfinder/internal/owm"
	"github.com/derickschaefer/weatherfinder/internal/store"
)

// Deps holds all runtime dependencies injected into command Run functions.
// Store is opened lazily by RequireStore; commands that never touch history
// never open the database.
type Deps struct {
	Config  *config.Config
	Client  *owm.Client
	Icons   *icon.Resolver
	Toaster *notify.Toaster
	Beeper  *audio.Beeper // nil when the success cue is disabled
	Store   *store.Store

	// Prober backs NewMonitor; nil when no probe address is configured.
	Prober connectivity.Prober

	// Stderr receives loading lines. Toaster writes to the same stream;
	// change both with SetStderr.
	Stderr io.Writer
}

// New builds a Deps from resolved config.
func New(cfg *config.Config) *Deps {
	client := owm.NewClient(
		cfg.APIKey,
		cfg.BaseURL,
		cfg.Timeout,
		cfg.Rate,
		cfg.Debug,
	)
	d := &Deps{
		Config:  cfg,
		Client:  client,
		Icons:   icon.NewResolver(cfg.IconBaseURL),
	}
	d.SetStderr(os.Stderr)
	if cfg.ProbeAddr != "" {
		d.Prober = connectivity.DialProber{Addr: cfg.ProbeAddr}
	}
	if cfg.Beep {
		d.Beeper = audio.NewBeeper(audio.DefaultTone(), nil)
	}
	return d
}

// SetStderr points loading lines and notifications at w.
func (d *Deps) SetStderr(w io.Writer) {
	d.Stderr = w
	d.Toaster = notify.NewToaster(w)
}

// RequireStore opens the history database if it is not open yet.
func (d *Deps) RequireStore() error {
	if d.Store != nil {
		return nil
	}
	if d.Config.DBPath == "" {
		return fmt.Errorf("no database path configured (set db_path or WEATHERFINDER_DB_PATH)")
	}
	s, err := store.Open(d.Config.DBPath)
	if err != nil {
		return err
	}
	d.Store = s
	return nil
}

// Close releases anything Deps opened.
func (d *Deps) Close() error {
	if d.Store == nil {
		return nil
	}
	err := d.Store.Close()
	d.Store = nil
	return err
}

// NewFinder returns a Finder backed by the API client, honouring the
// forecast setting. Callers supply the change and success hooks.
func (d *Deps) NewFinder(onChange, onSuccess func(finder.Snapshot)) *finder.Finder {
	return finder.New(d.Client, finder.Options{
		Forecast:  d.Config.Forecast,
		OnChange:  onChange,
		OnSuccess: onSuccess,
	})
}

// NewMonitor returns a connectivity monitor polling d.Prober and reporting
// through the Toaster.
func (d *Deps) NewMonitor() *connectivity.Monitor {
	return connectivity.NewMonitor(d.Prober, d.Toaster, d.Config.ProbeInterval)
}
