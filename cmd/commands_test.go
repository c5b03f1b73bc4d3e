package cmd

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/derickschaefer/weatherfinder/internal/audio"
	"github.com/derickschaefer/weatherfinder/internal/config"
	"github.com/derickschaefer/weatherfinder/internal/model"
	"github.com/derickschaefer/weatherfinder/internal/store"
)

// runRoot executes the command tree with args from an empty working
// directory and returns stdout.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(orig)
		globalFlags.Format = ""
		globalFlags.Out = ""
		historyListLimit = 20
		iconMain = ""
		toneFrequency, toneDuration = 0, 0
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err = rootCmd.Execute()
	return out.String(), err
}

func seedHistory(t *testing.T, cities ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range cities {
		if _, err := s.AddHistory(model.HistoryRecord{City: c, Status: model.StatusSuccess, Name: c}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHistoryListCSV(t *testing.T) {
	t.Setenv(config.EnvDBPath, seedHistory(t, "Oslo", "Lima", "Quito"))

	out, err := runRoot(t, "history", "list", "--limit", "2", "--format", "csv")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parsing csv: %v\n%s", err, out)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d:\n%s", len(rows), out)
	}
	if rows[1][2] != "Quito" || rows[2][2] != "Lima" {
		t.Errorf("expected newest first, got %v", rows[1:])
	}
}

func TestHistoryClear(t *testing.T) {
	t.Setenv(config.EnvDBPath, seedHistory(t, "Oslo"))

	if _, err := runRoot(t, "history", "clear"); err != nil {
		t.Fatalf("history clear: %v", err)
	}
	out, err := runRoot(t, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	if !strings.Contains(out, "No searches recorded.") {
		t.Errorf("expected empty history, got:\n%s", out)
	}
}

func TestSearchRequiresAPIKey(t *testing.T) {
	for _, k := range []string{config.EnvAPIKey, config.EnvAPIKeyLegacy} {
		t.Setenv(k, "")
	}
	_, err := runRoot(t, "search", "London")
	if err == nil || !strings.Contains(err.Error(), config.EnvAPIKey) {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestUnknownFormatRejected(t *testing.T) {
	t.Setenv(config.EnvDBPath, seedHistory(t))
	_, err := runRoot(t, "history", "list", "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected format error, got %v", err)
	}
}

// ─── icon / tone ─────────────────────────────────────────────────────────────

func TestIconCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"icon", "01d"}, "https://openweathermap.org/img/wn/01d@2x.png\n"},
		{[]string{"icon", "--main", "Rain"}, "🌧  rain\n"},
		{[]string{"icon", "--main", "Thunderstorm"}, "☀  sun\n"},
	}
	for _, tt := range tests {
		out, err := runRoot(t, tt.args...)
		if err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		if out != tt.want {
			t.Errorf("%v: expected %q, got %q", tt.args, tt.want, out)
		}
		iconMain = ""
	}
}

func TestIconCommandNeedsInput(t *testing.T) {
	if _, err := runRoot(t, "icon"); err == nil {
		t.Fatal("expected error without code or --main")
	}
}

func TestToneWritesWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cue.wav")
	if _, err := runRoot(t, "tone", "--out", path); err != nil {
		t.Fatalf("tone: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, audio.DefaultTone().WAV()) {
		t.Errorf("written WAV differs from the default tone (%d bytes)", len(data))
	}
}

func TestToneRejectsShortDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cue.wav")
	if _, err := runRoot(t, "tone", "--duration", "5ms", "--out", path); err == nil {
		t.Fatal("expected error for duration inside the attack")
	}
}
