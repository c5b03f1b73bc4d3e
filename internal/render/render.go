// Package render converts Result values into human-readable or machine-parseable
// output. Each format is a separate function; the top-level Render dispatcher
// selects based on the format string.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/derickschaefer/weatherfinder/internal/model"
)

// Format constants matching --format flag values.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatMD    = "md"
)

// Formats lists every accepted --format value.
var Formats = []string{FormatTable, FormatJSON, FormatJSONL, FormatCSV, FormatTSV, FormatMD}

// ValidFormat reports whether f is an accepted --format value.
func ValidFormat(f string) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// Render writes result to w in the specified format.
func Render(w io.Writer, result *model.Result, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatJSONL:
		return renderJSONL(w, result)
	case FormatCSV:
		return renderDelimited(w, result, ',')
	case FormatTSV:
		return renderDelimited(w, result, '\t')
	case FormatMD:
		return renderMarkdown(w, result)
	default:
		return renderTable(w, result)
	}
}

// Loading writes the single-line progress indicator shown while a search is
// in flight.
func Loading(w io.Writer, city string) {
	fmt.Fprintf(w, "Searching %s…\n", city)
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

func renderJSON(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// ─── JSONL ────────────────────────────────────────────────────────────────────

// hourlyRow is a canonical JSONL record for one forecast slot.
type hourlyRow struct {
	City        string  `json:"city"`
	Time        string  `json:"time"`
	Temp        float64 `json:"temp"`
	Main        string  `json:"main"`
	Description string  `json:"description"`
}

func renderJSONL(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	switch result.Kind {
	case model.KindWeather:
		rep, ok := result.Data.(*model.WeatherReport)
		if !ok || rep.Status != model.StatusSuccess {
			return enc.Encode(result.Data)
		}
		if err := enc.Encode(rep.Current); err != nil {
			return err
		}
		for _, h := range rep.Hourly {
			row := hourlyRow{
				City:        rep.Current.Name,
				Time:        h.Time,
				Temp:        h.Temp,
				Main:        h.Condition.Main,
				Description: h.Condition.Description,
			}
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	case model.KindHistory:
		recs, ok := result.Data.([]model.HistoryRecord)
		if !ok {
			return enc.Encode(result.Data)
		}
		for _, r := range recs {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	default:
		return enc.Encode(result.Data)
	}
}

// ─── Table ────────────────────────────────────────────────────────────────────

func renderTable(w io.Writer, result *model.Result) error {
	switch result.Kind {
	case model.KindWeather:
		rep, ok := result.Data.(*model.WeatherReport)
		if !ok {
			return fmt.Errorf("unexpected data type for weather")
		}
		return renderWeatherTable(w, rep)
	case model.KindHistory:
		recs, ok := result.Data.([]model.HistoryRecord)
		if !ok {
			return fmt.Errorf("unexpected data type for history")
		}
		return renderHistoryTable(w, recs)
	default:
		// Fallback: JSON
		return renderJSON(w, result)
	}
}

func renderWeatherTable(w io.Writer, rep *model.WeatherReport) error {
	switch rep.Status {
	case model.StatusError:
		fmt.Fprintln(w, rep.Error)
		return nil
	case model.StatusSuccess:
	default:
		return nil
	}

	cur := rep.Current
	fmt.Fprintln(w, strings.TrimSpace("📍 "+Place(cur)+"  "+Symbol(rep)))

	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"FIELD", "VALUE"})
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	for _, r := range cardRows(rep) {
		tw.Append(r)
	}
	tw.Render()

	if len(rep.Hourly) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	ht := tablewriter.NewWriter(w)
	ht.SetHeader([]string{"TIME", "TEMP", "CONDITION"})
	ht.SetBorder(true)
	ht.SetRowLine(false)
	ht.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	ht.SetAlignment(tablewriter.ALIGN_LEFT)
	ht.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
	})
	ht.SetAutoWrapText(false)
	for _, h := range rep.Hourly {
		ht.Append([]string{
			FormatHour(h.At, rep.Locale),
			FormatTemp(h.Temp),
			Capitalize(h.Condition.Description, rep.Locale),
		})
	}
	ht.Render()
	return nil
}

// cardRows is the field/value view of the current conditions.
func cardRows(rep *model.WeatherReport) [][]string {
	cur := rep.Current
	rows := [][]string{
		{"Temperature", FormatTemp(cur.Temp)},
		{"Humidity", fmt.Sprintf("%d%%", cur.Humidity)},
		{"Wind", fmt.Sprintf("%g m/s", cur.WindSpeed)},
		{"Condition", Capitalize(cur.Primary().Description, rep.Locale)},
	}
	if rep.IconURL != "" {
		rows = append(rows, []string{"Icon", rep.IconURL})
	}
	return rows
}

func renderHistoryTable(w io.Writer, recs []model.HistoryRecord) error {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No searches recorded.")
		return nil
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"ID", "TIME", "QUERY", "STATUS", "RESOLVED"})
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	for _, r := range recs {
		tw.Append(historyRow(r))
	}
	tw.Render()
	return nil
}

func historyRow(r model.HistoryRecord) []string {
	id := r.ID
	if len(id) > 8 {
		id = id[:8]
	}
	resolved := ""
	if r.Name != "" {
		resolved = r.Name
		if r.Country != "" {
			resolved += ", " + r.Country
		}
	}
	return []string{id, r.At.Local().Format("2006-01-02 15:04:05"), r.City, string(r.Status), resolved}
}

// ─── CSV / TSV ────────────────────────────────────────────────────────────────

func renderDelimited(w io.Writer, result *model.Result, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	switch result.Kind {
	case model.KindWeather:
		rep, ok := result.Data.(*model.WeatherReport)
		if !ok {
			return fmt.Errorf("unexpected data type for weather")
		}
		_ = cw.Write([]string{"city", "country", "time", "temp", "humidity", "wind_speed", "main", "description", "status"})
		if rep.Status != model.StatusSuccess {
			_ = cw.Write([]string{rep.Query, "", "", "", "", "", "", rep.Error, string(rep.Status)})
			break
		}
		cur := rep.Current
		c := cur.Primary()
		_ = cw.Write([]string{
			cur.Name, cur.Country, "now",
			fmt.Sprintf("%g", cur.Temp),
			fmt.Sprintf("%d", cur.Humidity),
			fmt.Sprintf("%g", cur.WindSpeed),
			c.Main, c.Description, string(rep.Status),
		})
		for _, h := range rep.Hourly {
			_ = cw.Write([]string{
				cur.Name, cur.Country, h.Time,
				fmt.Sprintf("%g", h.Temp), "", "",
				h.Condition.Main, h.Condition.Description, "forecast",
			})
		}
	case model.KindHistory:
		recs, ok := result.Data.([]model.HistoryRecord)
		if !ok {
			return fmt.Errorf("unexpected data type for history")
		}
		_ = cw.Write([]string{"id", "at", "query", "status", "name", "country"})
		for _, r := range recs {
			_ = cw.Write([]string{r.ID, r.At.UTC().Format(time.RFC3339), r.City, string(r.Status), r.Name, r.Country})
		}
	default:
		// Fallback: serialize as JSON on a single line
		b, _ := json.Marshal(result.Data)
		_ = cw.Write([]string{string(b)})
	}

	cw.Flush()
	return cw.Error()
}

// ─── Markdown ─────────────────────────────────────────────────────────────────

func renderMarkdown(w io.Writer, result *model.Result) error {
	switch result.Kind {
	case model.KindWeather:
		rep, ok := result.Data.(*model.WeatherReport)
		if !ok {
			return renderJSON(w, result)
		}
		if rep.Status != model.StatusSuccess {
			fmt.Fprintf(w, "> %s\n", mdEscape(rep.Error))
			return nil
		}
		fmt.Fprintf(w, "### %s\n\n", strings.TrimSpace(mdEscape(Place(rep.Current))+" "+Symbol(rep)))
		fmt.Fprintf(w, "| FIELD | VALUE |\n|-------|-------|\n")
		for _, r := range cardRows(rep) {
			fmt.Fprintf(w, "| %s | %s |\n", r[0], mdEscape(r[1]))
		}
		if len(rep.Hourly) > 0 {
			fmt.Fprintf(w, "\n| TIME | TEMP | CONDITION |\n|------|------|-----------|\n")
			for _, h := range rep.Hourly {
				fmt.Fprintf(w, "| %s | %s | %s |\n",
					FormatHour(h.At, rep.Locale),
					FormatTemp(h.Temp),
					mdEscape(Capitalize(h.Condition.Description, rep.Locale)),
				)
			}
		}
		return nil
	case model.KindHistory:
		recs, ok := result.Data.([]model.HistoryRecord)
		if !ok {
			return renderJSON(w, result)
		}
		fmt.Fprintf(w, "| ID | TIME | QUERY | STATUS | RESOLVED |\n|----|----|----|----|----|\n")
		for _, r := range recs {
			row := historyRow(r)
			for i := range row {
				row[i] = mdEscape(row[i])
			}
			fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | "))
		}
		return nil
	default:
		return renderJSON(w, result)
	}
}

// ─── Warnings / Stats Footer ─────────────────────────────────────────────────

// PrintFooter writes warnings and stats to w when verbose mode is on.
func PrintFooter(w io.Writer, result *model.Result, verbose bool) {
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "⚠  %s\n", warn)
	}
	if verbose {
		fmt.Fprintf(w, "\n[%s • %d items • %dms • live]\n",
			result.GeneratedAt.Format(time.RFC3339),
			result.Stats.Items,
			result.Stats.DurationMs,
		)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// Place formats "Name, CC".
func Place(w *model.CurrentWeather) string {
	if w.Country == "" {
		return w.Name
	}
	return w.Name + ", " + w.Country
}

// Symbol returns the fallback glyph shown next to the place name. It is empty
// when the report carries an icon URL.
func Symbol(rep *model.WeatherReport) string {
	if rep.IconURL != "" {
		return ""
	}
	return rep.Symbol
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
