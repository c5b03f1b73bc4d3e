// Package icon resolves the icon shown next to a weather result: either the
// provider's image URL, or a locally chosen fallback symbol when the provider
// sent no icon code.
package icon

import (
	"strings"

	"github.com/derickschaefer/weatherfinder/internal/model"
)

// DefaultBaseURL is the host serving provider icon images.
const DefaultBaseURL = "https://openweathermap.org"

// Category is a coarse fallback symbol.
type Category int

const (
	Sun Category = iota
	CloudSun
	Rain
	Snow
)

// String returns the category name used in machine-readable output.
func (c Category) String() string {
	switch c {
	case CloudSun:
		return "cloud-sun"
	case Rain:
		return "rain"
	case Snow:
		return "snow"
	default:
		return "sun"
	}
}

// Glyph returns the terminal symbol for the category.
func (c Category) Glyph() string {
	switch c {
	case CloudSun:
		return "⛅"
	case Rain:
		return "🌧"
	case Snow:
		return "❄"
	default:
		return "☀"
	}
}

// fallbacks is checked in order; the first substring match wins.
var fallbacks = []struct {
	substr   string
	category Category
}{
	{"cloud", CloudSun},
	{"rain", Rain},
	{"snow", Snow},
}

// Icon is the resolved icon for a result. Exactly one of URL or Fallback is
// meaningful: Fallback is only consulted when URL is empty.
type Icon struct {
	URL      string
	Fallback Category
}

// HasURL reports whether the provider supplied an icon code.
func (i Icon) HasURL() bool { return i.URL != "" }

// Resolver builds icon URLs against a configurable host.
type Resolver struct {
	baseURL string
}

// NewResolver returns a Resolver for baseURL; empty means DefaultBaseURL.
func NewResolver(baseURL string) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Resolver{baseURL: strings.TrimRight(baseURL, "/")}
}

// Resolve returns the icon for w. A nil result or an empty condition list
// resolves to the Sun fallback.
func (r *Resolver) Resolve(w *model.CurrentWeather) Icon {
	cond := w.Primary()
	if cond.Icon != "" {
		return Icon{URL: r.URL(cond.Icon)}
	}
	return Icon{Fallback: FallbackFor(cond.Main)}
}

// URL interpolates code into the icon template. The result is not checked
// for reachability.
func (r *Resolver) URL(code string) string {
	return r.baseURL + "/img/wn/" + code + "@2x.png"
}

// FallbackFor maps a condition's main category to a fallback symbol.
func FallbackFor(main string) Category {
	desc := strings.ToLower(main)
	for _, f := range fallbacks {
		if strings.Contains(desc, f.substr) {
			return f.category
		}
	}
	return Sun
}

// Resolve resolves w against DefaultBaseURL.
func Resolve(w *model.CurrentWeather) Icon {
	return defaultResolver.Resolve(w)
}

var defaultResolver = NewResolver(DefaultBaseURL)
