package render

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatTemp renders a Celsius temperature rounded to the nearest degree.
func FormatTemp(c float64) string {
	return fmt.Sprintf("%d°C", int(math.Round(c)))
}

// twelveHourRegions use a 12-hour clock by default.
var twelveHourRegions = map[string]bool{
	"US": true, "CA": true, "AU": true, "NZ": true, "IN": true, "PH": true,
	"PK": true, "BD": true, "EG": true, "SA": true, "MY": true, "CO": true,
}

// parseLocale returns the tag for locale, or English on parse failure.
func parseLocale(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	return tag
}

// Uses12Hour reports whether locale conventionally shows a 12-hour clock.
// A bare language such as "en" is resolved to its most likely region.
func Uses12Hour(locale string) bool {
	region, _ := parseLocale(locale).Region()
	return twelveHourRegions[region.String()]
}

// FormatHour renders the local hour of a forecast slot in the locale's clock
// convention: "3 PM" or "15:00".
func FormatHour(at time.Time, locale string) string {
	at = at.Local()
	if Uses12Hour(locale) {
		return at.Format("3 PM")
	}
	return at.Format("15:04")
}

// Capitalize upper-cases the first letter of each word using locale rules.
func Capitalize(s, locale string) string {
	return cases.Title(parseLocale(locale)).String(s)
}
