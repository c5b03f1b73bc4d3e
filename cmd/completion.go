package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/weatherfinder/internal/render"
)

// completionCmd wraps Cobra's built-in shell completion generator.
// Running `weatherfinder completion bash` prints a script the user can source.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for weatherfinder.

To load completions in the current shell session:

  # bash
  source <(weatherfinder completion bash)

  # zsh
  source <(weatherfinder completion zsh)

  # fish
  weatherfinder completion fish | source

Persist across sessions by adding the source line to your shell profile
(~/.bashrc, ~/.zshrc, ~/.config/fish/completions/weatherfinder.fish, etc.).

Besides subcommands, completion knows the --format values and the keys
accepted by 'config set':

  weatherfinder search London --format <TAB>   # table json jsonl csv tsv md
  weatherfinder config set <TAB>               # api_key default_format ...`,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		switch args[0] {
		case "bash":
			return root.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return root.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return root.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
		default:
			return cmd.Help()
		}
	},
}

// completeFormats offers the --format values.
func completeFormats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return render.Formats, cobra.ShellCompDirectiveNoFileComp
}

// completeConfigKeys offers config keys for the first argument of
// `config set` and nothing after it.
func completeConfigKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return strings.Split(validConfigKeys, ", "), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(completionCmd)
	configSetCmd.ValidArgsFunction = completeConfigKeys
}
