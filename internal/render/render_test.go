package render_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/derickschaefer/weatherfinder/internal/model"
	"github.com/derickschaefer/weatherfinder/internal/render"
)

// ─── Fixtures ─────────────────────────────────────────────────────────────────

func londonReport() *model.WeatherReport {
	at := time.Date(2026, 10, 19, 15, 0, 0, 0, time.Local)
	return &model.WeatherReport{
		Query:  "London",
		Status: model.StatusSuccess,
		Current: &model.CurrentWeather{
			Name:       "London",
			Country:    "GB",
			Temp:       12.4,
			Humidity:   81,
			WindSpeed:  4.1,
			Conditions: []model.Condition{{Main: "Clouds", Description: "broken clouds", Icon: "04d"}},
		},
		Hourly: []model.HourlyEntry{
			{Time: "2026-10-19 15:00:00", At: at, Temp: 12.6, Condition: model.Condition{Main: "Rain", Description: "light rain"}},
			{Time: "2026-10-19 18:00:00", At: at.Add(3 * time.Hour), Temp: 10.2, Condition: model.Condition{Main: "Clouds", Description: "overcast clouds"}},
		},
		IconURL: "https://openweathermap.org/img/wn/04d@2x.png",
		Locale:  "en-GB",
	}
}

func weatherResult(rep *model.WeatherReport) *model.Result {
	return &model.Result{
		Kind:        model.KindWeather,
		GeneratedAt: time.Now(),
		Command:     "search " + rep.Query,
		Data:        rep,
	}
}

func historyResult() *model.Result {
	at := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	return &model.Result{
		Kind: model.KindHistory,
		Data: []model.HistoryRecord{
			{ID: "0f8fad5b-d9cb-469f-a165-70867728950e", City: "London", Status: model.StatusSuccess, Name: "London", Country: "GB", At: at},
			{ID: "7c9e6679-7425-40de-944b-e07fc1f90ae7", City: "Atlantis", Status: model.StatusError, At: at.Add(time.Minute)},
		},
	}
}

func renderString(t *testing.T, result *model.Result, format string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := render.Render(&buf, result, format); err != nil {
		t.Fatalf("Render(%s): %v", format, err)
	}
	return buf.String()
}

// ─── Display helpers ─────────────────────────────────────────────────────────

func TestFormatTemp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12.4, "12°C"},
		{12.5, "13°C"},
		{-3.6, "-4°C"},
		{0, "0°C"},
	}
	for _, tt := range tests {
		if got := render.FormatTemp(tt.in); got != tt.want {
			t.Errorf("FormatTemp(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestUses12Hour(t *testing.T) {
	tests := map[string]bool{
		"en-US":   true,
		"en":      true,
		"en-GB":   false,
		"de-DE":   false,
		"fr":      false,
		"hi-IN":   true,
		"garbage": true, // unparseable falls back to English
	}
	for locale, want := range tests {
		if got := render.Uses12Hour(locale); got != want {
			t.Errorf("Uses12Hour(%q): expected %v, got %v", locale, want, got)
		}
	}
}

func TestFormatHour(t *testing.T) {
	at := time.Date(2026, 10, 19, 15, 0, 0, 0, time.Local)
	if got := render.FormatHour(at, "en-US"); got != "3 PM" {
		t.Errorf("en-US: expected 3 PM, got %q", got)
	}
	if got := render.FormatHour(at, "de-DE"); got != "15:00" {
		t.Errorf("de-DE: expected 15:00, got %q", got)
	}
}

func TestCapitalize(t *testing.T) {
	if got := render.Capitalize("broken clouds", "en-US"); got != "Broken Clouds" {
		t.Errorf("expected Broken Clouds, got %q", got)
	}
}

func TestValidFormat(t *testing.T) {
	for _, f := range render.Formats {
		if !render.ValidFormat(f) {
			t.Errorf("%s should be valid", f)
		}
	}
	if render.ValidFormat("xml") {
		t.Error("xml should not be valid")
	}
}

func TestLoading(t *testing.T) {
	var buf bytes.Buffer
	render.Loading(&buf, "Paris")
	if buf.String() != "Searching Paris…\n" {
		t.Errorf("unexpected loading line %q", buf.String())
	}
}

// ─── Weather ─────────────────────────────────────────────────────────────────

func TestRenderWeatherTable(t *testing.T) {
	out := renderString(t, weatherResult(londonReport()), render.FormatTable)

	for _, want := range []string{
		"London, GB",
		"12°C",
		"81%",
		"4.1 m/s",
		"Broken Clouds",
		"04d@2x.png",
		"15:00",
		"18:00",
		"Light Rain",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderWeatherFallbackSymbol(t *testing.T) {
	rep := londonReport()
	rep.IconURL = ""
	rep.Symbol = "⛅"
	out := renderString(t, weatherResult(rep), render.FormatTable)
	if !strings.Contains(out, "London, GB  ⛅") {
		t.Errorf("expected fallback glyph beside place name:\n%s", out)
	}
	if strings.Contains(out, "Icon") {
		t.Error("no icon row expected without an icon URL")
	}
}

func TestRenderWeatherError(t *testing.T) {
	rep := &model.WeatherReport{Query: "Atlantis", Status: model.StatusError, Error: model.ErrorMessage}
	out := renderString(t, weatherResult(rep), render.FormatTable)
	if strings.TrimSpace(out) != model.ErrorMessage {
		t.Errorf("expected only the error message, got %q", out)
	}
	if md := renderString(t, weatherResult(rep), render.FormatMD); !strings.Contains(md, model.ErrorMessage) {
		t.Errorf("markdown should carry the error, got %q", md)
	}
}

func TestRenderWeatherRepeatable(t *testing.T) {
	a := renderString(t, weatherResult(londonReport()), render.FormatTable)
	b := renderString(t, weatherResult(londonReport()), render.FormatTable)
	if a != b {
		t.Error("rendering the same report twice should be identical")
	}
}

func TestRenderWeatherJSON(t *testing.T) {
	out := renderString(t, weatherResult(londonReport()), render.FormatJSON)
	var decoded struct {
		Kind string `json:"kind"`
		Data struct {
			Status  string `json:"status"`
			Current struct {
				Name string  `json:"name"`
				Temp float64 `json:"temp"`
			} `json:"current"`
			Hourly []json.RawMessage `json:"hourly"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Kind != "weather" || decoded.Data.Status != "success" {
		t.Errorf("unexpected envelope: %+v", decoded)
	}
	if decoded.Data.Current.Name != "London" || decoded.Data.Current.Temp != 12.4 {
		t.Errorf("unexpected current: %+v", decoded.Data.Current)
	}
	if len(decoded.Data.Hourly) != 2 {
		t.Errorf("expected 2 hourly entries, got %d", len(decoded.Data.Hourly))
	}
	if strings.Contains(out, "en-GB") {
		t.Error("locale is display-only and should not be serialized")
	}
}

func TestRenderWeatherJSONL(t *testing.T) {
	out := renderString(t, weatherResult(londonReport()), render.FormatJSONL)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected current + 2 hourly lines, got %d:\n%s", len(lines), out)
	}
	for i, l := range lines {
		if !json.Valid([]byte(l)) {
			t.Errorf("line %d is not valid JSON: %s", i, l)
		}
	}
	if !strings.Contains(lines[1], `"time":"2026-10-19 15:00:00"`) {
		t.Errorf("unexpected hourly row: %s", lines[1])
	}
}

func TestRenderWeatherCSV(t *testing.T) {
	out := renderString(t, weatherResult(londonReport()), render.FormatCSV)
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + current + 2 hourly, got %d rows", len(rows))
	}
	if rows[1][0] != "London" || rows[1][2] != "now" || rows[1][3] != "12.4" {
		t.Errorf("unexpected current row: %v", rows[1])
	}
	if rows[2][8] != "forecast" {
		t.Errorf("unexpected hourly row: %v", rows[2])
	}
}

func TestRenderWeatherTSV(t *testing.T) {
	out := renderString(t, weatherResult(londonReport()), render.FormatTSV)
	first := strings.SplitN(out, "\n", 2)[0]
	if !strings.Contains(first, "city\tcountry\ttime") {
		t.Errorf("expected tab-separated header, got %q", first)
	}
}

func TestRenderWeatherMarkdown(t *testing.T) {
	out := renderString(t, weatherResult(londonReport()), render.FormatMD)
	if !strings.HasPrefix(out, "### London, GB") {
		t.Errorf("expected heading, got %q", out)
	}
	if !strings.Contains(out, "| Temperature | 12°C |") {
		t.Errorf("missing temperature row:\n%s", out)
	}
	if !strings.Contains(out, "| 15:00 | 13°C | Light Rain |") {
		t.Errorf("missing hourly row:\n%s", out)
	}
}

// ─── History ─────────────────────────────────────────────────────────────────

func TestRenderHistoryTable(t *testing.T) {
	out := renderString(t, historyResult(), render.FormatTable)
	for _, want := range []string{"0f8fad5b", "London, GB", "Atlantis", "error"} {
		if !strings.Contains(out, want) {
			t.Errorf("history table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0f8fad5b-d9cb") {
		t.Error("IDs should be shortened in the table")
	}
}

func TestRenderHistoryEmpty(t *testing.T) {
	out := renderString(t, &model.Result{Kind: model.KindHistory, Data: []model.HistoryRecord{}}, render.FormatTable)
	if !strings.Contains(out, "No searches recorded.") {
		t.Errorf("unexpected empty output %q", out)
	}
}

func TestRenderHistoryCSVAndJSONL(t *testing.T) {
	rows, err := csv.NewReader(strings.NewReader(renderString(t, historyResult(), render.FormatCSV))).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[1][2] != "London" || rows[2][3] != "error" {
		t.Errorf("unexpected CSV rows: %v", rows)
	}

	lines := strings.Split(strings.TrimSpace(renderString(t, historyResult(), render.FormatJSONL)), "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 JSONL lines, got %d", len(lines))
	}
}

// ─── Footer ───────────────────────────────────────────────────────────────────

func TestPrintFooter(t *testing.T) {
	result := weatherResult(londonReport())
	result.Warnings = []string{"forecast unavailable"}
	result.Stats = model.ResultStats{DurationMs: 42, Items: 3}

	var quiet bytes.Buffer
	render.PrintFooter(&quiet, result, false)
	if !strings.Contains(quiet.String(), "⚠  forecast unavailable") || strings.Contains(quiet.String(), "42ms") {
		t.Errorf("non-verbose footer: %q", quiet.String())
	}

	var verbose bytes.Buffer
	render.PrintFooter(&verbose, result, true)
	if !strings.Contains(verbose.String(), "3 items • 42ms") {
		t.Errorf("verbose footer: %q", verbose.String())
	}
}
