package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/derickschaefer/weatherfinder/internal/app"
	"github.com/derickschaefer/weatherfinder/internal/connectivity"
	"github.com/derickschaefer/weatherfinder/internal/finder"
	"github.com/derickschaefer/weatherfinder/internal/model"
	"github.com/derickschaefer/weatherfinder/internal/render"
)

// session ties one Finder to the side effects of a search: the loading line,
// the success cue, history records and the connectivity warning. Both
// `search` and `interactive` drive searches through a session.
type session struct {
	ctx     context.Context
	deps    *app.Deps
	finder  *finder.Finder
	monitor *connectivity.Monitor

	beeps sync.WaitGroup
}

// newSession builds a session. When watch is set the connectivity monitor
// is started and runs until close.
func newSession(ctx context.Context, deps *app.Deps, watch bool) *session {
	s := &session{ctx: ctx, deps: deps}
	s.finder = deps.NewFinder(s.onChange, s.onSuccess)
	if watch && deps.Prober != nil {
		s.monitor = deps.NewMonitor()
		if err := s.monitor.Start(ctx); err != nil {
			slog.Debug("connectivity monitor not started", "err", err)
			s.monitor = nil
		}
	}
	return s
}

func (s *session) onChange(snap finder.Snapshot) {
	if snap.Status == model.StatusLoading && !s.deps.Config.Quiet {
		render.Loading(s.deps.Stderr, snap.Query)
	}
}

// onSuccess plays the cue in the background so rendering is not held up;
// close waits for it.
func (s *session) onSuccess(finder.Snapshot) {
	if s.deps.Beeper == nil {
		return
	}
	s.beeps.Add(1)
	go func() {
		defer s.beeps.Done()
		s.deps.Beeper.Beep(s.ctx)
	}()
}

// search stores city as the query text verbatim and runs one search cycle.
// A search that ends in error still returns a Result; err is reserved for
// an empty query, a superseded search, or cancellation.
func (s *session) search(ctx context.Context, city string) (*model.Result, error) {
	start := time.Now()
	s.finder.SetCityText(city)
	snap, err := s.finder.Search(ctx)
	if err != nil {
		return nil, err
	}
	s.record(snap)

	rep := s.report(snap)
	items := 0
	if rep.Current != nil {
		items = 1 + len(rep.Hourly)
	}
	return &model.Result{
		Kind:        model.KindWeather,
		GeneratedAt: time.Now(),
		Command:     fmt.Sprintf("search %q", city),
		Data:        rep,
		Stats: model.ResultStats{
			DurationMs: time.Since(start).Milliseconds(),
			Items:      items,
		},
	}, nil
}

// report converts a final snapshot into the rendered payload.
func (s *session) report(snap finder.Snapshot) *model.WeatherReport {
	rep := &model.WeatherReport{
		Query:  snap.Query,
		Status: snap.Status,
		Error:  snap.Error,
		Locale: s.deps.Config.Locale,
	}
	if snap.Status != model.StatusSuccess {
		return rep
	}
	rep.Current = snap.Weather
	rep.Hourly = snap.Hourly
	ic := s.deps.Icons.Resolve(snap.Weather)
	if ic.HasURL() {
		rep.IconURL = ic.URL
	} else {
		rep.Symbol = ic.Fallback.Glyph()
	}
	return rep
}

// record appends the outcome to the history store. Failures are logged and
// never fail the search.
func (s *session) record(snap finder.Snapshot) {
	if s.deps.Config.NoHistory {
		return
	}
	if err := s.deps.RequireStore(); err != nil {
		slog.Warn("search history unavailable", "err", err)
		return
	}
	rec := model.HistoryRecord{City: snap.Query, Status: snap.Status}
	if snap.Weather != nil {
		rec.Name = snap.Weather.Name
		rec.Country = snap.Weather.Country
	}
	if _, err := s.deps.Store.AddHistory(rec); err != nil {
		slog.Warn("recording search history", "err", err)
	}
}

// render writes result to w in the configured format, followed by the footer.
func (s *session) render(w io.Writer, result *model.Result) error {
	if err := render.Render(w, result, s.deps.Config.Format); err != nil {
		return err
	}
	render.PrintFooter(w, result, s.deps.Config.Verbose)
	return nil
}

// close stops the monitor, waits for a pending cue and releases the store.
func (s *session) close() {
	if s.monitor != nil {
		s.monitor.Stop()
	}
	s.beeps.Wait()
	if err := s.deps.Close(); err != nil {
		slog.Debug("closing store", "err", err)
	}
}

// failed reports whether a search result ended in the error status.
func failed(result *model.Result) bool {
	rep, ok := result.Data.(*model.WeatherReport)
	return ok && rep.Status == model.StatusError
}

// ignorable reports whether a session error should be skipped silently in a
// multi-search loop.
func ignorable(err error) bool {
	return errors.Is(err, finder.ErrEmptyQuery) || errors.Is(err, finder.ErrSuperseded)
}
