package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/weatherfinder/internal/pipeline"
)

const interactivePrompt = "city> "

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Search repeatedly, one city per line",
	Long: `Read city names from stdin and search each one as it is entered.

Every line replaces the current query text and starts a search; an empty line
does nothing. The connectivity monitor runs for the whole session: losing the
network shows a single "You are offline" warning, which clears when the
connection returns. Enter "quit" or press Ctrl-D to leave.`,
	Example: `  weatherfinder interactive
  weatherfinder interactive --no-beep --format md`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.Config.Validate(); err != nil {
			return err
		}

		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeFn()

		s := newSession(cmd.Context(), deps, true)
		defer s.close()

		prompt := !deps.Config.Quiet && pipeline.StdinIsTTY()
		return runInteractive(cmd.Context(), s, cmd.InOrStdin(), w, cmd.ErrOrStderr(), prompt)
	},
}

// runInteractive drives s from lines read on in until EOF, "quit", or ctx
// cancellation.
func runInteractive(ctx context.Context, s *session, in io.Reader, out, errOut io.Writer, prompt bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		if prompt {
			fmt.Fprint(errOut, interactivePrompt)
		}
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			select {
			case err := <-readErr:
				return err
			default:
				return nil
			}
		}
		switch strings.TrimSpace(line) {
		case "quit", "exit":
			return nil
		}

		result, err := s.search(ctx, line)
		if ignorable(err) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.render(out, result); err != nil {
			return err
		}
	}
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
