package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/upv-tools/upv-cli/common"
	"github.com/upv-tools/upv-cli/keyring"
	"github.com/upv-tools/upv-cli/vpn"
)

var vpnCmd = &cobra.Command{
	Use:   "vpn",
	Short: "Manage the UPV VPN connection",
}

var (
	vpnCreateConnect bool

	vpnConnectUser string
	vpnConnectPass string
	vpnConnectSave bool

	vpnDeleteForce bool

	vpnPurgeForce  bool
	vpnPurgeExcept []string
)

var vpnCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a new UPV VPN connection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newVPNManager()
		if err != nil {
			return err
		}
		return m.Create(args[0], vpnCreateConnect)
	},
}

var vpnConnectCmd = &cobra.Command{
	Use:   "connect NAME",
	Short: "Connect to an existing UPV VPN connection",
	Long: `Connect dials an existing UPV VPN connection.

Without --username, the credentials the OS has stored for the entry are
used. With --username but no --password, the password is taken from the
keyring if previously saved with --save-password, and prompted for
otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		password := vpnConnectPass

		// rasdial only accepts a password alongside a username.
		if password != "" && vpnConnectUser == "" {
			return common.Errorf(common.ExitUsage,
				"--password requires --username")
		}

		if vpnConnectUser != "" && password == "" {
			if saved, err := keyring.Get(vpnCredentialKey(name)); err == nil {
				password = saved
			} else {
				password, err = promptPassword(fmt.Sprintf("Password for %s", vpnConnectUser))
				if err != nil {
					return err
				}
			}
		}

		if vpnConnectSave && password != "" {
			if err := keyring.Store(vpnCredentialKey(name), password); err != nil {
				common.LogWarn("could not save password to keyring: %v", err)
			}
		}

		m, err := newVPNManager()
		if err != nil {
			return err
		}
		return m.Connect(name, vpnConnectUser, password)
	},
}

var vpnDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect from the UPV VPN",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newVPNManager()
		if err != nil {
			return err
		}
		return m.Disconnect()
	},
}

var vpnDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete an existing UPV VPN connection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newVPNManager()
		if err != nil {
			return err
		}
		if err := m.Delete(args[0], vpnDeleteForce); err != nil {
			return err
		}
		// Drop any password saved for the deleted entry.
		keyring.Delete(vpnCredentialKey(args[0]))
		return nil
	},
}

var vpnListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all UPV VPN connections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newVPNManager()
		if err != nil {
			return err
		}
		return m.List()
	},
}

var vpnPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete ALL UPV VPN connections (with double confirmation)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newVPNManager()
		if err != nil {
			return err
		}
		return m.Purge(vpnPurgeForce, vpnPurgeExcept)
	},
}

var vpnStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the VPN connection status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newVPNManager()
		if err != nil {
			return err
		}
		return m.Status()
	},
}

func init() {
	vpnCreateCmd.Flags().BoolVarP(&vpnCreateConnect, "connect", "c", false, "connect immediately after creating")

	vpnConnectCmd.Flags().StringVarP(&vpnConnectUser, "username", "u", "", "username to dial with")
	vpnConnectCmd.Flags().StringVarP(&vpnConnectPass, "password", "p", "", "password to dial with (requires --username; prompted if omitted)")
	vpnConnectCmd.Flags().BoolVar(&vpnConnectSave, "save-password", false, "save the password in the system keyring")

	vpnDeleteCmd.Flags().BoolVarP(&vpnDeleteForce, "force", "f", false, "skip confirmation prompt")

	vpnPurgeCmd.Flags().BoolVarP(&vpnPurgeForce, "force", "f", false, "skip confirmation prompts")
	vpnPurgeCmd.Flags().StringArrayVarP(&vpnPurgeExcept, "except", "e", nil, "connection name to exclude from deletion (repeatable)")

	vpnCmd.AddCommand(vpnCreateCmd, vpnConnectCmd, vpnDisconnectCmd,
		vpnDeleteCmd, vpnListCmd, vpnPurgeCmd, vpnStatusCmd)
	rootCmd.AddCommand(vpnCmd)
}

func newVPNManager() (*vpn.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return vpn.NewManager(cfg, common.NewRunner()), nil
}

// vpnCredentialKey namespaces keyring entries for dial-up credentials.
func vpnCredentialKey(name string) string {
	return "vpn/" + name
}
