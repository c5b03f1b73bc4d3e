// Package finder implements the search cycle: it holds the city text typed by
// the user, runs the current-conditions and forecast requests, and moves the
// fetch status through idle → loading → success|error.
//
// Overlapping searches are tagged with a generation number. Only the most
// recent search may change state; an older one that resolves later is
// discarded and its caller receives ErrSuperseded.
package finder

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/derickschaefer/weatherfinder/internal/model"
)

var (
	// ErrEmptyQuery is returned by Search when no city text is set.
	// No status change happens and no request is sent.
	ErrEmptyQuery = errors.New("empty city query")

	// ErrSuperseded is returned by Search when a newer search started
	// before this one resolved.
	ErrSuperseded = errors.New("search superseded by a newer one")
)

// Fetcher is the subset of the weather API client the finder needs.
type Fetcher interface {
	GetCurrent(ctx context.Context, city string) (*model.CurrentWeather, error)
	GetForecast(ctx context.Context, city string, limit int) ([]model.HourlyEntry, error)
}

// Snapshot is a read-only copy of the finder state.
type Snapshot struct {
	Query      string
	Status     model.Status
	Weather    *model.CurrentWeather
	Hourly     []model.HourlyEntry
	Error      string
	Generation uint64
}

// Options configures a Finder.
type Options struct {
	// Forecast enables the second (forecast) request.
	Forecast bool

	// OnChange is called after every status change, outside the lock.
	OnChange func(Snapshot)

	// OnSuccess is called once per search that ends in success.
	OnSuccess func(Snapshot)
}

// Finder owns the query text and the fetch state. It is safe for concurrent
// use.
type Finder struct {
	client Fetcher
	opts   Options

	mu    sync.Mutex
	city  string
	state *State
	gen   uint64
}

// New returns an idle Finder.
func New(client Fetcher, opts Options) *Finder {
	return &Finder{
		client: client,
		opts:   opts,
		state:  NewState(),
	}
}

// SetCityText replaces the stored city text unconditionally. It does not
// validate, trim, or trigger a search.
func (f *Finder) SetCityText(text string) {
	f.mu.Lock()
	f.city = text
	f.mu.Unlock()
}

// CityText returns the stored city text.
func (f *Finder) CityText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.city
}

// Snapshot returns a copy of the current state.
func (f *Finder) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked(f.city)
}

// Search runs one search cycle for the stored city text.
//
// It returns ErrEmptyQuery without touching state when the text is empty, and
// ErrSuperseded when a newer search started in the meantime. Otherwise it
// returns the final snapshot, whose Status is success or error; request
// failures are reported through the snapshot, not the error.
func (f *Finder) Search(ctx context.Context) (Snapshot, error) {
	f.mu.Lock()
	city := f.city
	if city == "" {
		f.mu.Unlock()
		return Snapshot{}, ErrEmptyQuery
	}
	if err := f.state.Begin(); err != nil {
		f.mu.Unlock()
		return Snapshot{}, err
	}
	f.gen++
	gen := f.gen
	loading := f.snapshotLocked(city)
	f.mu.Unlock()

	f.notify(f.opts.OnChange, loading)

	current, hourly, fetchErr := f.fetch(ctx, city)

	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		slog.Debug("discarding stale search", "city", city, "generation", gen)
		return Snapshot{}, ErrSuperseded
	}
	var err error
	if fetchErr != nil {
		slog.Debug("search failed", "city", city, "err", fetchErr)
		err = f.state.Fail(model.ErrorMessage)
	} else {
		err = f.state.Succeed(current, hourly)
	}
	if err != nil {
		f.mu.Unlock()
		return Snapshot{}, err
	}
	final := f.snapshotLocked(city)
	f.mu.Unlock()

	f.notify(f.opts.OnChange, final)
	if final.Status == model.StatusSuccess {
		f.notify(f.opts.OnSuccess, final)
	}
	return final, nil
}

// fetch issues the required requests sequentially. The forecast request is
// only sent after current conditions succeed.
func (f *Finder) fetch(ctx context.Context, city string) (*model.CurrentWeather, []model.HourlyEntry, error) {
	current, err := f.client.GetCurrent(ctx, city)
	if err != nil {
		return nil, nil, err
	}
	if !f.opts.Forecast {
		return current, nil, nil
	}
	hourly, err := f.client.GetForecast(ctx, city, model.MaxHourly)
	if err != nil {
		return nil, nil, err
	}
	return current, hourly, nil
}

func (f *Finder) snapshotLocked(query string) Snapshot {
	snap := Snapshot{
		Query:      query,
		Status:     f.state.Status(),
		Weather:    f.state.Weather(),
		Error:      f.state.ErrorMessage(),
		Generation: f.gen,
	}
	if h := f.state.Hourly(); len(h) > 0 {
		snap.Hourly = append([]model.HourlyEntry(nil), h...)
	}
	return snap
}

func (f *Finder) notify(fn func(Snapshot), snap Snapshot) {
	if fn != nil {
		fn(snap)
	}
}
