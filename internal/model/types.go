// Package model defines the canonical data types used throughout weatherfinder.
// These types are the single source of truth for weather entities, the fetch
// status flag, and the result envelope that every command returns.
package model

import (
	"time"
)

// ─── Weather Entity Types ─────────────────────────────────────────────────────

// Condition is one weather phenomenon reported by the provider.
// Icon is optional; an empty Icon means the provider supplied none.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

// CurrentWeather is the normalized current-conditions result for a city.
type CurrentWeather struct {
	Name       string      `json:"name"`
	Country    string      `json:"country"`
	Temp       float64     `json:"temp"`       // °C
	Humidity   int         `json:"humidity"`   // %
	WindSpeed  float64     `json:"wind_speed"` // m/s
	Conditions []Condition `json:"conditions"`
	FetchedAt  time.Time   `json:"fetched_at,omitempty"`
}

// Primary returns the first condition, or a zero Condition when the list is
// empty.
func (w *CurrentWeather) Primary() Condition {
	if w == nil || len(w.Conditions) == 0 {
		return Condition{}
	}
	return w.Conditions[0]
}

// HourlyEntry is a single 3-hour forecast slot.
// Time preserves the provider's dt_txt; At is its parsed value (UTC).
type HourlyEntry struct {
	Time      string    `json:"time"`
	At        time.Time `json:"at"`
	Temp      float64   `json:"temp"`
	Condition Condition `json:"condition"`
}

// MaxHourly is the number of forecast entries kept from a forecast response.
const MaxHourly = 12

// ─── Fetch Status ─────────────────────────────────────────────────────────────

// Status is the single authoritative fetch status flag.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrorMessage is the only user-facing failure text.
const ErrorMessage = "City not found. Try another."

// ─── Result Envelope ─────────────────────────────────────────────────────────

// ResultStats carries timing metadata for a command result.
type ResultStats struct {
	DurationMs int64 `json:"duration_ms"`
	Items      int   `json:"items"`
}

// Result is the uniform envelope returned by every command.
// The Data field holds the typed payload; Kind identifies what is in it.
// Renderers switch on Kind to format output appropriately.
type Result struct {
	Kind        string      `json:"kind"`
	GeneratedAt time.Time   `json:"generated_at"`
	Command     string      `json:"command"`
	Data        interface{} `json:"data"`
	Warnings    []string    `json:"warnings,omitempty"`
	Stats       ResultStats `json:"stats"`
}

// Kind constants for Result.Kind.
const (
	KindWeather = "weather"
	KindHistory = "history"
)

// WeatherReport is the payload for KindWeather: everything a rendered
// weather card shows.
type WeatherReport struct {
	Query   string          `json:"query"`
	Status  Status          `json:"status"`
	Error   string          `json:"error,omitempty"`
	Current *CurrentWeather `json:"current,omitempty"`
	Hourly  []HourlyEntry   `json:"hourly,omitempty"`
	IconURL string          `json:"icon_url,omitempty"`
	Symbol  string          `json:"symbol,omitempty"` // fallback glyph, set when IconURL is empty
	Locale  string          `json:"-"`                // BCP 47 tag used for display
}

// HistoryRecord is one completed search as kept in the local store.
// It records the query and outcome only, never the weather payload.
type HistoryRecord struct {
	ID      string    `json:"id"`
	City    string    `json:"city"`
	Status  Status    `json:"status"`
	Name    string    `json:"name,omitempty"`
	Country string    `json:"country,omitempty"`
	At      time.Time `json:"at"`
}
