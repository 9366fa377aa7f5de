// Package main is the entry point for upv-cli, a Windows command-line
// tool that manages UPV's VPN connection and the Personal Network Drive
// (Disco W) by wrapping the OS-native utilities (rasdial, the PowerShell
// VPN cmdlets, net use, and explorer.exe).
//
// Usage:
//
//	upv vpn create "UPV" --connect
//	upv vpn status
//	upv drive mount myuser ALUMNO --open
//	upv completions
//
// Exit codes: 0 success, 1 general failure, 2 argument error, 10 tool
// error, 11 VPN error, 12 drive error, 13 drive in use.
package main

import (
	"os"

	"github.com/upv-tools/upv-cli/cmd"
	"github.com/upv-tools/upv-cli/common"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z).
// Default values are used for local development builds.
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

func main() {
	cmd.SetVersion(appVersion, buildTime, commitSHA)

	code := cmd.Execute()

	common.CloseLogger()
	os.Exit(code)
}
