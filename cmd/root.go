// Package cmd implements the upv command-line interface.
// It routes subcommands to the VPN and drive managers and maps every
// failure to the fixed exit code of its category.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/upv-tools/upv-cli/common"
	"github.com/upv-tools/upv-cli/config"
)

var verbose bool

// argsParsed flips once cobra has accepted the command line and handed
// control to a command. Errors raised before that point (unknown
// subcommands, bad flags, wrong argument counts) are argument errors.
var argsParsed bool

var rootCmd = &cobra.Command{
	Use:   common.AppName,
	Short: "Manage UPV's VPN connection and Personal Network Drive (Disco W)",
	Long: `upv manages the UPV VPN connection and the Personal Network Drive
(Disco W) on Windows by wrapping the OS utilities (rasdial, the
PowerShell VPN cmdlets, and net use) behind a consistent interface.

Examples:
  upv vpn create "UPV" --connect
  upv vpn status
  upv drive mount myuser ALUMNO --open
  upv drive unmount --force`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		argsParsed = true

		level := common.LevelInfo
		if verbose {
			level = common.LevelDebug
		}
		if err := common.InitLogger(common.LogConfig{Level: level, EnableFile: true}); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not initialize file logging: %v\n", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")

	// The completions subcommand below replaces cobra's default one.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// SetVersion records build information injected via ldflags.
func SetVersion(version, buildTime, commit string) {
	rootCmd.Version = version
	if buildTime != "unknown" {
		rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", version, buildTime, commit)
	}
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return common.ExitSuccess
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if !argsParsed {
		// Argument error: remind the user what is valid here.
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, cmd.UsageString())
		return common.ExitUsage
	}
	return common.ExitCode(err)
}

// loadConfig loads the tool configuration for a command invocation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, common.Wrap(common.ExitToolError, err, "failed to load configuration")
	}
	return cfg, nil
}
