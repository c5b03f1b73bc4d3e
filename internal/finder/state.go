package finder

import (
	"errors"
	"fmt"

	"github.com/derickschaefer/weatherfinder/internal/model"
)

// ErrInvalidTransition is returned when a status change is not in the
// transition table. The state is left untouched.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions is the complete table of allowed status changes.
// loading→loading happens when a newer search supersedes one in flight.
var transitions = map[model.Status][]model.Status{
	model.StatusIdle:    {model.StatusLoading},
	model.StatusLoading: {model.StatusSuccess, model.StatusError, model.StatusLoading},
	model.StatusSuccess: {model.StatusLoading},
	model.StatusError:   {model.StatusLoading},
}

// CanTransition reports whether from→to is in the transition table.
func CanTransition(from, to model.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// State is the fetch state container. It keeps the status flag and the data
// that depends on it consistent:
//
//	weather != nil        iff status == success
//	len(hourly) > 0       only if status == success
//	errMsg != ""          iff status == error
//
// State is not safe for concurrent use; Finder guards it.
type State struct {
	status  model.Status
	weather *model.CurrentWeather
	hourly  []model.HourlyEntry
	errMsg  string
}

// NewState returns a State in idle.
func NewState() *State {
	return &State{status: model.StatusIdle}
}

// Status returns the current status flag.
func (s *State) Status() model.Status { return s.status }

// Weather returns the stored result; nil unless status is success.
func (s *State) Weather() *model.CurrentWeather { return s.weather }

// Hourly returns the stored forecast entries.
func (s *State) Hourly() []model.HourlyEntry { return s.hourly }

// ErrorMessage returns the user-facing error text; empty unless status is error.
func (s *State) ErrorMessage() string { return s.errMsg }

func (s *State) transition(to model.Status) error {
	if !CanTransition(s.status, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, s.status, to)
	}
	s.status = to
	return nil
}

// Begin enters loading and clears the previous outcome.
func (s *State) Begin() error {
	if err := s.transition(model.StatusLoading); err != nil {
		return err
	}
	s.weather = nil
	s.hourly = nil
	s.errMsg = ""
	return nil
}

// Succeed stores a result and enters success. w must not be nil.
func (s *State) Succeed(w *model.CurrentWeather, hourly []model.HourlyEntry) error {
	if w == nil {
		return fmt.Errorf("%w: success without a result", ErrInvalidTransition)
	}
	if err := s.transition(model.StatusSuccess); err != nil {
		return err
	}
	if len(hourly) > model.MaxHourly {
		hourly = hourly[:model.MaxHourly]
	}
	s.weather = w
	s.hourly = hourly
	s.errMsg = ""
	return nil
}

// Fail clears any result and enters error with msg.
func (s *State) Fail(msg string) error {
	if err := s.transition(model.StatusError); err != nil {
		return err
	}
	s.weather = nil
	s.hourly = nil
	s.errMsg = msg
	return nil
}
