// Package common provides shared constants, types, and utilities
// used across upv-cli.
package common

// Application metadata.
const (
	// AppName is the command name of the tool.
	AppName = "upv"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "upv-cli"
)

// File names used by the application.
const (
	ConfigFileName      = "config.yaml"
	CredentialsFileName = ".credentials"
	LogFileName         = "upv-cli.log"
)

// Names of the Windows utilities the adapters shell out to. All durable
// VPN and drive state lives behind these commands, not in this tool.
const (
	// PowerShellCommand runs the VPN cmdlets (Add/Get/Remove-VpnConnection).
	PowerShellCommand = "powershell"
	// RasdialCommand dials and hangs up dial-up entries and reports status.
	RasdialCommand = "rasdial"
	// NetCommand maps and unmaps SMB shares (net use).
	NetCommand = "net"
	// ExplorerCommand opens a mounted drive in the file browser.
	ExplorerCommand = "explorer.exe"
)
