package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/weatherfinder/internal/audio"
)

var (
	toneFrequency float64
	toneDuration  time.Duration
)

var toneCmd = &cobra.Command{
	Use:   "tone",
	Short: "Play (or save) the success cue",
	Long: `Synthesize the tone played after a successful search: a sine wave with a
10 ms linear attack and an exponential decay, 600 Hz over 500 ms by default.

With --out the tone is written as a 16-bit mono WAV file instead of played.
Playback uses the first of paplay, aplay or afplay found on PATH.`,
	Example: `  weatherfinder tone
  weatherfinder tone --out cue.wav
  weatherfinder tone --frequency 880 --duration 250ms`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tone := audio.DefaultTone()
		if toneFrequency > 0 {
			tone.Frequency = toneFrequency
		}
		if toneDuration > 0 {
			if toneDuration <= tone.Attack {
				return fmt.Errorf("--duration must be longer than the %s attack", tone.Attack)
			}
			tone.Duration = toneDuration
		}
		wav := tone.WAV()

		if globalFlags.Out != "" {
			if err := os.WriteFile(globalFlags.Out, wav, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", globalFlags.Out, err)
			}
			if !globalFlags.Quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%d bytes)\n", globalFlags.Out, len(wav))
			}
			return nil
		}

		player, err := audio.NewSystemContext()
		if err != nil {
			return err
		}
		return player.Play(cmd.Context(), wav)
	},
}

func init() {
	rootCmd.AddCommand(toneCmd)
	toneCmd.Flags().Float64Var(&toneFrequency, "frequency", 0, "tone frequency in Hz (default: 600)")
	toneCmd.Flags().DurationVar(&toneDuration, "duration", 0, "tone length (default: 500ms)")
}
