package cmd

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/upv-tools/upv-cli/common"
	"github.com/upv-tools/upv-cli/config"
	"github.com/upv-tools/upv-cli/drive"
	"github.com/upv-tools/upv-cli/keyring"
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Manage the Personal Network Drive (Disco W)",
}

var (
	driveMountPass   string
	driveMountLetter string
	driveMountOpen   bool
	driveMountSave   bool

	driveUnmountLetter string
	driveUnmountForce  bool

	driveOpenLetter string
)

var driveMountCmd = &cobra.Command{
	Use:   "mount USERNAME DOMAIN",
	Short: "Mount the personal network drive (Disco W)",
	Long: `Mount maps your personal share to a local drive letter.

USERNAME is your UPV username (if your email is "user@upv.es", it is
"user") and DOMAIN is ALUMNO for students or UPVNET for staff. Without
--password, the mapping uses the identity of the active VPN session.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		if strings.TrimSpace(username) == "" {
			return common.Errorf(common.ExitUsage, "username cannot be empty")
		}

		domain, err := drive.ParseDomain(args[1])
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		letter, err := resolveDriveLetter(cmd, "drive", driveMountLetter, cfg)
		if err != nil {
			return err
		}

		password := driveMountPass
		if password == "" && keyring.Exists(driveCredentialKey(username, domain)) {
			password, _ = keyring.Get(driveCredentialKey(username, domain))
		}
		if driveMountSave && password != "" {
			if err := keyring.Store(driveCredentialKey(username, domain), password); err != nil {
				common.LogWarn("could not save password to keyring: %v", err)
			}
		}

		m := drive.NewManager(cfg, common.NewRunner())
		return m.Mount(username, domain, password, letter, driveMountOpen)
	},
}

var driveUnmountCmd = &cobra.Command{
	Use:   "unmount",
	Short: "Unmount the personal network drive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		letter, err := resolveDriveLetter(cmd, "drive", driveUnmountLetter, cfg)
		if err != nil {
			return err
		}

		m := drive.NewManager(cfg, common.NewRunner())
		return m.Unmount(letter, driveUnmountForce)
	},
}

var driveOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the personal network drive in Explorer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		letter, err := resolveDriveLetter(cmd, "drive", driveOpenLetter, cfg)
		if err != nil {
			return err
		}

		m := drive.NewManager(cfg, common.NewRunner())
		return m.Open(letter)
	},
}

var driveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check network drive status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		m := drive.NewManager(cfg, common.NewRunner())
		return m.Status()
	},
}

func init() {
	driveMountCmd.Flags().StringVarP(&driveMountPass, "password", "p", "", "password for the share (default: current VPN or Wi-Fi credentials)")
	driveMountCmd.Flags().StringVarP(&driveMountLetter, "drive", "d", "W", "drive letter to mount to")
	driveMountCmd.Flags().BoolVarP(&driveMountOpen, "open", "o", false, "open the drive in Explorer after mounting")
	driveMountCmd.Flags().BoolVar(&driveMountSave, "save-password", false, "save the password in the system keyring")

	driveUnmountCmd.Flags().StringVarP(&driveUnmountLetter, "drive", "d", "W", "drive letter to unmount")
	driveUnmountCmd.Flags().BoolVarP(&driveUnmountForce, "force", "f", false, "unmount even if files are open (unsaved data may be lost)")

	driveOpenCmd.Flags().StringVarP(&driveOpenLetter, "drive", "d", "W", "drive letter to open")

	driveCmd.AddCommand(driveMountCmd, driveUnmountCmd, driveOpenCmd, driveStatusCmd)
	rootCmd.AddCommand(driveCmd)
}

// resolveDriveLetter validates the drive letter flag, falling back to the
// configured default when the flag was not given explicitly.
func resolveDriveLetter(cmd *cobra.Command, flag, value string, cfg *config.Config) (rune, error) {
	if !cmd.Flags().Changed(flag) {
		value = cfg.DefaultDriveLetter
	}
	return parseDriveLetter(value)
}

// parseDriveLetter parses a single-character A-Z drive letter, accepting
// lowercase and an optional trailing colon.
func parseDriveLetter(s string) (rune, error) {
	runes := []rune(strings.TrimSuffix(strings.TrimSpace(s), ":"))
	if len(runes) != 1 {
		return 0, common.Errorf(common.ExitUsage,
			"invalid drive letter %q: must be a single character A-Z", s)
	}

	letter := unicode.ToUpper(runes[0])
	if letter < 'A' || letter > 'Z' {
		return 0, common.Errorf(common.ExitUsage,
			"invalid drive letter %q: must be a single character A-Z", s)
	}
	return letter, nil
}

// driveCredentialKey namespaces keyring entries for share credentials.
func driveCredentialKey(username string, domain drive.Domain) string {
	return fmt.Sprintf("drive/%s@%s", username, domain)
}
