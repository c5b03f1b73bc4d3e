package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/weatherfinder/internal/config"
)

// Version is the canonical release string. The default here is the fallback
// for `go run` and untagged builds. Production builds overwrite this via:
//
//	go build -ldflags "-X github.com/derickschaefer/weatherfinder/cmd.Version=v0.3.1"
var Version = "v0.3.0"

// versionInfo is the structured payload for --format json output.
// All fields are exported so encoding/json picks them up.
type versionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	GOOS      string `json:"goos"`
	GOARCH    string `json:"goarch"`
	APIBase   string `json:"api_base"`
	BuildTime string `json:"build_time,omitempty"`
}

// BuildTime is optionally injected at build time alongside Version:
//
//	-ldflags "-X github.com/derickschaefer/weatherfinder/cmd.Version=v0.3.1
//	           -X github.com/derickschaefer/weatherfinder/cmd.BuildTime=2026-10-19T12:00:00Z"
var BuildTime = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the weatherfinder version and build information",
	Long: `Print the weatherfinder version string and build metadata.

Default output is plain text, suitable for shell scripts and pipelines.
Use --format json for structured output.

Examples:
  weatherfinder version
  weatherfinder version --format json
  weatherfinder version --format json | jq .version`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := globalFlags.Format
		if format == "" {
			format = "text"
		}

		info := versionInfo{
			Version:   Version,
			GoVersion: runtime.Version(),
			GOOS:      runtime.GOOS,
			GOARCH:    runtime.GOARCH,
			BuildTime: BuildTime,
			APIBase:   config.DefaultBaseURL,
		}

		switch format {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)

		case "jsonl":
			// Single object, one line, useful for mixing into a JSONL pipeline.
			b, err := json.Marshal(info)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", b)
			return nil

		default:
			// Plain text: one value per line, grep/awk friendly.
			fmt.Fprintf(cmd.OutOrStdout(), "weatherfinder %s\n", info.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "go            %s\n", info.GoVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "os            %s/%s\n", info.GOOS, info.GOARCH)
			fmt.Fprintf(cmd.OutOrStdout(), "api           %s\n", info.APIBase)
			if info.BuildTime != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built         %s\n", info.BuildTime)
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
