// Package owm implements the HTTP client for the OpenWeatherMap API.
// All methods are context-aware and respect the shared rate limiter.
// Failed requests are returned to the caller as-is; nothing is retried.
package owm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/derickschaefer/weatherfinder/internal/model"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5/"
	units          = "metric"

	// dtLayout is the layout of forecast dt_txt values.
	dtLayout = "2006-01-02 15:04:05"
)

// ErrNotFound is returned (wrapped in *APIError) when the provider answers 404.
var ErrNotFound = errors.New("city not found")

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Is makes errors.Is(err, ErrNotFound) true for 404 answers.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client is the OpenWeatherMap API HTTP client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	debug      bool
}

// NewClient creates a Client with the given API key and timeout.
func NewClient(apiKey, baseURL string, timeout time.Duration, ratePerSec float64, debug bool) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		debug:   debug,
	}
}

// ─── Current Conditions ───────────────────────────────────────────────────────

type rawCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// GetCurrent fetches current conditions for city.
func (c *Client) GetCurrent(ctx context.Context, city string) (*model.CurrentWeather, error) {
	var raw struct {
		Name string `json:"name"`
		Sys  struct {
			Country string `json:"country"`
		} `json:"sys"`
		Weather []rawCondition `json:"weather"`
		Main    struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}

	if err := c.get(ctx, "weather", queryParams(city), &raw); err != nil {
		return nil, fmt.Errorf("current weather %q: %w", city, err)
	}

	conds := make([]model.Condition, len(raw.Weather))
	for i, w := range raw.Weather {
		conds[i] = normalizeCondition(w)
	}
	return &model.CurrentWeather{
		Name:       raw.Name,
		Country:    raw.Sys.Country,
		Temp:       raw.Main.Temp,
		Humidity:   raw.Main.Humidity,
		WindSpeed:  raw.Wind.Speed,
		Conditions: conds,
		FetchedAt:  time.Now(),
	}, nil
}

// ─── Forecast ─────────────────────────────────────────────────────────────────

// GetForecast fetches the 5-day/3-hour forecast for city and returns at most
// limit entries, in provider order. limit <= 0 returns every entry.
func (c *Client) GetForecast(ctx context.Context, city string, limit int) ([]model.HourlyEntry, error) {
	var raw struct {
		List []struct {
			DtTxt string `json:"dt_txt"`
			Main  struct {
				Temp float64 `json:"temp"`
			} `json:"main"`
			Weather []rawCondition `json:"weather"`
		} `json:"list"`
	}

	if err := c.get(ctx, "forecast", queryParams(city), &raw); err != nil {
		return nil, fmt.Errorf("forecast %q: %w", city, err)
	}

	n := len(raw.List)
	if limit > 0 && n > limit {
		n = limit
	}
	entries := make([]model.HourlyEntry, 0, n)
	for _, item := range raw.List[:n] {
		var cond model.Condition
		if len(item.Weather) > 0 {
			cond = normalizeCondition(item.Weather[0])
		}
		at, _ := time.ParseInLocation(dtLayout, item.DtTxt, time.UTC) // zero on malformed
		entries = append(entries, model.HourlyEntry{
			Time:      item.DtTxt,
			At:        at,
			Temp:      item.Main.Temp,
			Condition: cond,
		})
	}
	return entries, nil
}

// ─── Low-level HTTP ───────────────────────────────────────────────────────────

// queryParams builds the shared query shape for both endpoints.
func queryParams(city string) url.Values {
	params := url.Values{}
	params.Set("q", city)
	params.Set("units", units)
	return params
}

// get performs a GET request to the API, waiting on the rate limiter first.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("appid", c.apiKey)
	reqURL := c.baseURL + endpoint + "?" + params.Encode()

	if c.debug {
		slog.Debug("owm request", "url", c.redact(reqURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "weatherfinder/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// *url.Error embeds the request URL, key included
		return fmt.Errorf("http: %s", c.redact(err.Error()))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}

	if c.debug {
		slog.Debug("owm response", "status", resp.StatusCode, "bytes", len(body))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// OpenWeatherMap error bodies look like {"cod":"404","message":"city not found"}
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// redact hides the API key in s. Safe for logging.
func (c *Client) redact(s string) string {
	if c.apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, url.QueryEscape(c.apiKey), "REDACTED")
}

func normalizeCondition(r rawCondition) model.Condition {
	return model.Condition{
		Main:        r.Main,
		Description: r.Description,
		Icon:        r.Icon,
	}
}
