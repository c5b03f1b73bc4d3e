package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/weatherfinder/internal/config"
	"github.com/derickschaefer/weatherfinder/internal/icon"
	"github.com/derickschaefer/weatherfinder/internal/model"
	"github.com/derickschaefer/weatherfinder/internal/render"
)

var iconMain string

// iconInfo is the structured payload for --format json output.
type iconInfo struct {
	Code     string `json:"code,omitempty"`
	Main     string `json:"main,omitempty"`
	URL      string `json:"url,omitempty"`
	Fallback string `json:"fallback,omitempty"`
	Glyph    string `json:"glyph,omitempty"`
}

var iconCmd = &cobra.Command{
	Use:   "icon [code]",
	Short: "Resolve a condition icon without calling the API",
	Long: `Show the icon a search would display.

With an icon code (e.g. 01d) the provider image URL is printed. The URL is
built from a template and is not checked for reachability.

Without a code the local fallback symbol for --main is printed. The condition
category is matched case-insensitively in order: cloud, rain, snow; anything
else falls back to the sun.`,
	Example: `  weatherfinder icon 01d
  weatherfinder icon --main Rain
  weatherfinder icon --main Thunderstorm --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(globalFlags.APIKey)
		if err != nil {
			return err
		}
		if len(args) == 0 && iconMain == "" {
			return fmt.Errorf("specify an icon code or --main <category>")
		}

		w := &model.CurrentWeather{}
		info := iconInfo{Main: iconMain}
		if len(args) == 1 {
			info.Code = args[0]
		}
		w.Conditions = []model.Condition{{Main: info.Main, Icon: info.Code}}

		ic := icon.NewResolver(cfg.IconBaseURL).Resolve(w)
		if ic.HasURL() {
			info.URL = ic.URL
		} else {
			info.Fallback = ic.Fallback.String()
			info.Glyph = ic.Fallback.Glyph()
		}

		format := cfg.Format
		if globalFlags.Format != "" {
			format = globalFlags.Format
		}
		out := cmd.OutOrStdout()
		switch format {
		case render.FormatJSON, render.FormatJSONL:
			enc := json.NewEncoder(out)
			if format == render.FormatJSON {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(info)
		default:
			if info.URL != "" {
				fmt.Fprintln(out, info.URL)
			} else {
				fmt.Fprintf(out, "%s  %s\n", info.Glyph, info.Fallback)
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(iconCmd)
	iconCmd.Flags().StringVar(&iconMain, "main", "", "condition category for the fallback symbol (e.g. Rain, Clouds)")
}
