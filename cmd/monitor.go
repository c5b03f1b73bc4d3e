package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	monitorOnce     bool
	monitorInterval time.Duration
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch network connectivity and show the offline warning",
	Long: `Poll the configured probe address (probe_addr, default
api.openweathermap.org:443) and keep a single offline warning in sync with
the result. The warning appears once when the connection drops and clears
when it returns. Runs until interrupted unless --once is given.`,
	Example: `  weatherfinder monitor
  weatherfinder monitor --interval 2s
  weatherfinder monitor --once`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if monitorInterval > 0 {
			deps.Config.ProbeInterval = monitorInterval
		}
		if deps.Prober == nil {
			return fmt.Errorf("probe_addr is not set")
		}
		out := cmd.OutOrStdout()

		if monitorOnce {
			if deps.Prober.Probe(cmd.Context()) {
				fmt.Fprintf(out, "online  (%s reachable)\n", deps.Config.ProbeAddr)
				return nil
			}
			fmt.Fprintf(out, "offline (%s unreachable)\n", deps.Config.ProbeAddr)
			return &exitError{code: 1}
		}

		m := deps.NewMonitor()
		if err := m.Start(cmd.Context()); err != nil {
			return err
		}
		defer m.Stop()

		if !deps.Config.Quiet {
			fmt.Fprintf(out, "Watching %s every %s (Ctrl-C to stop)\n",
				deps.Config.ProbeAddr, deps.Config.ProbeInterval)
		}
		<-cmd.Context().Done()
		if cmd.Context().Err() == context.Canceled && !deps.Config.Quiet {
			fmt.Fprintln(out, "\nstopped")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&monitorOnce, "once", false, "probe once, print the result and exit (status 1 when offline)")
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 0, "polling interval (default: probe_interval, 5s)")
}
