// Package pipeline provides helpers for reading city queries from stdin so
// that searches can be chained in shell pipelines.
//
// Each input line is either a bare city name or a JSON object with a "city"
// field, which makes `history list --format jsonl` output valid input.
package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadCities reads one query per line from r. Blank lines and lines starting
// with "//" or "#" are skipped.
func ReadCities(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	type row struct {
		City string `json:"city"`
	}

	var cities []string
	lineNum := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "{") {
			var rec row
			if err := json.Unmarshal([]byte(line), &rec); err != nil {
				return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
			}
			if rec.City == "" {
				return nil, fmt.Errorf("line %d: missing \"city\" field", lineNum)
			}
			cities = append(cities, rec.City)
			continue
		}
		cities = append(cities, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if len(cities) == 0 {
		return nil, fmt.Errorf("no cities read from input (is stdin empty?)")
	}
	return cities, nil
}

// StdinIsTTY returns true if stdin is a terminal.
func StdinIsTTY() bool {
	return isCharDevice(os.Stdin)
}

func isCharDevice(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
