package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/weatherfinder/internal/finder"
	"github.com/derickschaefer/weatherfinder/internal/pipeline"
)

var searchNoWatch bool

var searchCmd = &cobra.Command{
	Use:   "search <city>",
	Short: "Look up the current weather and forecast for a city",
	Long: `Look up the current weather for a city by name.

The city text is sent exactly as given. While the request is in flight a
"Searching <city>…" line is printed to stderr (suppressed by --quiet). A
successful search shows the current conditions, an icon, and up to 12
three-hourly forecast slots, and plays a short tone (disable with --no-beep).
An unknown city prints "City not found. Try another." and exits with status 1.

Pass "-" to read cities from stdin, one per line. Lines may also be JSON
objects with a "city" field, such as 'history list --format jsonl' output.`,
	Example: `  weatherfinder search London
  weatherfinder search "New York" --format json
  weatherfinder search Paris --no-forecast --no-beep
  printf 'Oslo\nLima\n' | weatherfinder search -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.Config.Validate(); err != nil {
			return err
		}

		cities := []string{args[0]}
		if args[0] == "-" {
			if cities, err = pipeline.ReadCities(cmd.InOrStdin()); err != nil {
				return err
			}
		}

		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeFn()

		s := newSession(cmd.Context(), deps, !searchNoWatch)
		defer s.close()

		anyFailed := false
		for _, city := range cities {
			result, err := s.search(cmd.Context(), city)
			if errors.Is(err, finder.ErrEmptyQuery) {
				return fmt.Errorf("city must not be empty")
			}
			if err != nil {
				return err
			}
			if err := s.render(w, result); err != nil {
				return err
			}
			if failed(result) {
				anyFailed = true
			}
		}
		if anyFailed {
			return &exitError{code: 1}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&searchNoWatch, "no-watch", false, "skip the connectivity check")
}
