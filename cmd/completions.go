package cmd

import (
	"github.com/spf13/cobra"
)

var completionsCmd = &cobra.Command{
	Use:   "completions [shell]",
	Short: "Generate a shell completion script for upv",
	Long: `Completions prints a completion script for the given shell on stdout.

The script is a pure function of the command grammar: it never changes
between runs of the same upv version. PowerShell is the default; source
the output from your PowerShell profile:

  upv completions | Out-String | Invoke-Expression`,
	ValidArgs: []string{"powershell", "bash", "zsh", "fish"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		shell := "powershell"
		if len(args) == 1 {
			shell = args[0]
		}

		out := cmd.OutOrStdout()
		switch shell {
		case "bash":
			return cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		default:
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionsCmd)
}
