package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/weatherfinder/internal/render"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage the local search history",
	Long: `Commands for inspecting and clearing the local bbolt database of past
searches.

Each completed search records the query text, its outcome, the resolved place
name and a timestamp. Weather data itself is never stored; every search asks
the API again. Pass --no-history to skip recording.`,
}

// ─── history list ─────────────────────────────────────────────────────────────

var historyListLimit int

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent searches, newest first",
	Example: `  weatherfinder history list
  weatherfinder history list --limit 5 --format csv
  weatherfinder history list --format jsonl | weatherfinder search -`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()

		recs, err := deps.Store.ListHistory(historyListLimit)
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeFn()

		result := buildHistoryResult("history list", recs)
		if err := render.Render(w, result, deps.Config.Format); err != nil {
			return err
		}
		render.PrintFooter(w, result, deps.Config.Verbose)
		return nil
	},
}

// ─── history stats ────────────────────────────────────────────────────────────

var historyStatsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show row counts and sizes for each bucket",
	Example: `  weatherfinder history stats`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()

		stats, err := deps.Store.Stats()
		if err != nil {
			return fmt.Errorf("reading store stats: %w", err)
		}

		// Sort by bucket name for deterministic output
		sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })

		fmt.Fprintf(cmd.OutOrStdout(), "Database: %s\n\n", deps.Store.Path())
		printSimpleTable(cmd.OutOrStdout(), []string{"BUCKET", "ROWS", "SIZE"}, func(add func(...string)) {
			for _, s := range stats {
				add(s.Name, fmt.Sprintf("%d", s.Count), humanBytes(s.Bytes))
			}
		})
		return nil
	},
}

// ─── history clear ────────────────────────────────────────────────────────────

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded searches",
	Long: `Delete every recorded search.

Note: bbolt does not shrink the database file automatically after clearing.
Free pages are reused internally on the next write. To reclaim disk space,
run 'weatherfinder history compact' after clearing.`,
	Example: `  weatherfinder history clear`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()

		if err := deps.Store.ClearAll(); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Cleared search history")
		fmt.Fprintln(cmd.OutOrStdout(), "  Run 'weatherfinder history compact' to reclaim disk space.")
		return nil
	},
}

// ─── history compact ──────────────────────────────────────────────────────────

var historyCompactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Rewrite the database file to reclaim freed disk space",
	Long: `Compact rewrites the entire bbolt database to a new file, recovering space
freed by prior 'history clear' operations.

All live data is copied to a temporary file first, then the original is
replaced. The database remains fully usable after compaction completes.`,
	Example: `  weatherfinder history compact`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		// Compact() closes and reopens the underlying bolt.DB itself; the
		// Store handle stays valid, so it is closed normally at the end.
		defer deps.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Compacting %s ...\n", deps.Store.Path())

		before, after, err := deps.Store.Compact()
		if err != nil {
			return fmt.Errorf("compaction failed: %w", err)
		}

		saved := before - after
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Compaction complete\n")
		fmt.Fprintf(cmd.OutOrStdout(), "  Before: %s\n", humanBytes(before))
		fmt.Fprintf(cmd.OutOrStdout(), "  After:  %s\n", humanBytes(after))
		if saved > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "  Saved:  %s\n", humanBytes(saved))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "  No space reclaimed (database was already compact).")
		}
		return nil
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyCompactCmd)

	historyListCmd.Flags().IntVar(&historyListLimit, "limit", 20, "max records to show (0 = all)")
}
