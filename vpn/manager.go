// Package vpn manages the institutional dial-up VPN entries.
// This file contains the Manager type which wraps the Windows dial-up
// utilities (rasdial and the PowerShell VPN cmdlets).
package vpn

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/upv-tools/upv-cli/common"
	"github.com/upv-tools/upv-cli/config"
)

// Manager wraps the OS dial-up utilities behind the tool's VPN
// operations. All durable VPN state lives in the OS; the manager only
// translates operations into subprocess invocations and interprets
// their textual output.
type Manager struct {
	cfg    *config.Config
	runner common.Runner
	in     *bufio.Reader
	out    io.Writer
}

// NewManager creates a VPN manager that reads confirmations from stdin
// and writes progress to stdout.
func NewManager(cfg *config.Config, runner common.Runner) *Manager {
	return &Manager{
		cfg:    cfg,
		runner: runner,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Create registers a new dial-up entry with the institutional EAP/SSTP
// defaults. With autoConnect it dials the entry right after.
func (m *Manager) Create(name string, autoConnect bool) error {
	fmt.Fprintf(m.out, "Creating VPN connection '%s'...\n", name)

	// The EAP XML is streamed through a PowerShell here-string; piping
	// the whole script on stdin avoids quoting the XML on the command
	// line.
	script := fmt.Sprintf(
		"Add-VpnConnection -Name '%s' -ServerAddress '%s' -AuthenticationMethod Eap -EncryptionLevel Required -TunnelType Sstp -EapConfigXmlStream @'\r\n%s\r\n'@\r\n\r\n",
		psQuote(name), psQuote(m.cfg.ServerAddress), eapConfig())

	out, err := m.runner.RunInput(script, common.PowerShellCommand, "-Command", "-")
	if err != nil {
		return err
	}
	if !out.Success() {
		return common.Errorf(common.ExitVPNError,
			"failed to create VPN connection '%s': %s", name, diagnostic(out))
	}

	fmt.Fprintf(m.out, "VPN connection '%s' created successfully\n", name)
	common.LogInfo("created VPN connection '%s' (server %s)", name, m.cfg.ServerAddress)

	if autoConnect {
		return m.Connect(name, "", "")
	}
	return nil
}

// Connect dials an existing entry. Username and password are optional;
// when empty, rasdial uses the credentials the OS has stored for the
// entry.
func (m *Manager) Connect(name, username, password string) error {
	fmt.Fprintf(m.out, "Connecting to '%s'...\n", name)

	args := []string{name}
	if username != "" {
		args = append(args, username)
		if password != "" {
			args = append(args, password)
		}
	}

	out, err := m.runner.Run(common.RasdialCommand, args...)
	if err != nil {
		return err
	}
	if !out.Success() {
		return common.Errorf(common.ExitVPNError,
			"failed to connect to '%s': %s", name, diagnostic(out))
	}

	if strings.Contains(out.Stdout, "Successfully connected") {
		fmt.Fprintf(m.out, "Connected to '%s'\n", name)
	} else {
		// Exit code says success but the marker is missing (localized
		// output, unexpected dialog). Surface the raw text instead of
		// guessing.
		fmt.Fprintln(m.out, strings.TrimSpace(out.Stdout))
	}
	common.LogInfo("connected to VPN '%s'", name)
	return nil
}

// Disconnect hangs up the active connection.
func (m *Manager) Disconnect() error {
	fmt.Fprintln(m.out, "Disconnecting from VPN...")

	out, err := m.runner.Run(common.RasdialCommand, "/disconnect")
	if err != nil {
		return err
	}
	if !out.Success() {
		return common.Errorf(common.ExitVPNError,
			"failed to disconnect from VPN: %s", diagnostic(out))
	}

	fmt.Fprintln(m.out, "Disconnected from VPN successfully")
	common.LogInfo("disconnected from VPN")
	return nil
}

// Delete removes one entry, asking for confirmation unless forced.
func (m *Manager) Delete(name string, force bool) error {
	if !force {
		ok, err := m.confirm(fmt.Sprintf("Are you sure you want to delete VPN connection '%s'? (y/N): ", name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(m.out, "Operation cancelled.")
			return nil
		}
	}

	fmt.Fprintf(m.out, "Deleting VPN connection '%s'...\n", name)
	if err := m.deleteConnection(name); err != nil {
		return err
	}

	fmt.Fprintf(m.out, "VPN connection '%s' deleted successfully\n", name)
	common.LogInfo("deleted VPN connection '%s'", name)
	return nil
}

// List enumerates the registered institutional entries.
func (m *Manager) List() error {
	fmt.Fprintln(m.out, "Listing UPV VPN connections...")

	connections, err := m.institutionalConnections()
	if err != nil {
		return err
	}

	if len(connections) == 0 {
		fmt.Fprintln(m.out, "No UPV VPN connections found.")
		return nil
	}

	fmt.Fprintf(m.out, "Found %d UPV VPN connection(s):\n", len(connections))
	for _, conn := range connections {
		fmt.Fprintf(m.out, "  - %s\n", conn)
	}
	return nil
}

// Purge deletes all institutional entries except the given names. Unless
// forced, the user must confirm twice: first y/N, then by typing DELETE.
// A "no" at either step leaves every entry untouched.
func (m *Manager) Purge(force bool, except []string) error {
	all, err := m.institutionalConnections()
	if err != nil {
		return err
	}

	connections := make([]string, 0, len(all))
	for _, conn := range all {
		if !common.StringInSlice(conn, except) {
			connections = append(connections, conn)
		}
	}

	if len(connections) == 0 {
		fmt.Fprintln(m.out, "No UPV VPN connections found to delete.")
		return nil
	}

	fmt.Fprintf(m.out, "Found %d UPV VPN connection(s) to delete:\n", len(connections))
	for _, conn := range connections {
		fmt.Fprintf(m.out, "  - %s\n", conn)
	}

	if !force {
		ok, err := m.confirm(fmt.Sprintf("\nAre you sure you want to delete ALL %d UPV VPN connections? (y/N): ", len(connections)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(m.out, "Operation cancelled.")
			return nil
		}

		ok, err = m.confirmPhrase("This action cannot be undone. Type 'DELETE' to confirm: ", "DELETE")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(m.out, "Operation cancelled.")
			return nil
		}
	}

	fmt.Fprintf(m.out, "\nDeleting %d UPV VPN connections...\n", len(connections))

	deleted, failed := 0, 0
	for _, conn := range connections {
		if err := m.deleteConnection(conn); err != nil {
			fmt.Fprintf(m.out, "  ✗ Failed to delete '%s': %v\n", conn, err)
			failed++
			continue
		}
		fmt.Fprintf(m.out, "  ✓ Deleted '%s'\n", conn)
		deleted++
	}

	fmt.Fprintln(m.out, "\nPurge completed:")
	fmt.Fprintf(m.out, "  %d connections deleted successfully\n", deleted)
	if failed > 0 {
		fmt.Fprintf(m.out, "  %d connections failed to delete\n", failed)
		return common.Errorf(common.ExitVPNError, "%d connections failed to delete", failed)
	}
	return nil
}

// Status reports whether a connection is active and which entries are
// dialed, from the output of a bare rasdial invocation. Output that is
// neither a connection listing nor the disconnected notice is surfaced
// as an error rather than guessed at.
func (m *Manager) Status() error {
	out, err := m.runner.Run(common.RasdialCommand)
	if err != nil {
		return err
	}
	if !out.Success() {
		return common.Errorf(common.ExitVPNError,
			"failed to check VPN status: %s", diagnostic(out))
	}

	names := parseActiveConnections(out.Stdout)
	if len(names) == 0 {
		text := strings.TrimSpace(out.Stdout)
		if text != "" && !strings.Contains(text, "No connections") {
			return common.Errorf(common.ExitVPNError,
				"could not determine VPN status from: %s", text)
		}
		fmt.Fprintln(m.out, "VPN status: disconnected")
		return nil
	}

	fmt.Fprintln(m.out, "VPN status: connected")
	for _, name := range names {
		fmt.Fprintf(m.out, "  - %s\n", name)
	}
	return nil
}

// institutionalConnections returns the dial-up entries registered against
// the institutional server address. Entries pointing elsewhere are never
// touched.
func (m *Manager) institutionalConnections() ([]string, error) {
	script := fmt.Sprintf(
		"Get-VpnConnection | Where-Object {$_.ServerAddress -eq '%s'} | Select-Object -ExpandProperty Name",
		psQuote(m.cfg.ServerAddress))

	out, err := m.runner.Run(common.PowerShellCommand, "-Command", script)
	if err != nil {
		return nil, err
	}
	if !out.Success() {
		return nil, common.Errorf(common.ExitVPNError,
			"failed to get VPN connections: %s", diagnostic(out))
	}

	var connections []string
	for _, line := range strings.Split(out.Stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			connections = append(connections, line)
		}
	}
	return connections, nil
}

// deleteConnection removes a single dial-up entry by name.
func (m *Manager) deleteConnection(name string) error {
	script := fmt.Sprintf("Remove-VpnConnection -Name '%s' -Force", psQuote(name))

	out, err := m.runner.Run(common.PowerShellCommand, "-Command", script)
	if err != nil {
		return err
	}
	if !out.Success() {
		return common.Errorf(common.ExitVPNError,
			"failed to delete VPN connection '%s': %s", name, diagnostic(out))
	}
	return nil
}

// psQuote escapes a value for interpolation into a single-quoted
// PowerShell string literal.
func psQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// confirm asks a yes/no question and accepts "y" or "yes" (case-insensitive).
func (m *Manager) confirm(prompt string) (bool, error) {
	fmt.Fprint(m.out, prompt)
	line, err := m.in.ReadString('\n')
	if err != nil && line == "" {
		return false, common.Wrap(common.ExitToolError, err, "failed to read confirmation")
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// confirmPhrase asks the user to type an exact phrase.
func (m *Manager) confirmPhrase(prompt, phrase string) (bool, error) {
	fmt.Fprint(m.out, prompt)
	line, err := m.in.ReadString('\n')
	if err != nil && line == "" {
		return false, common.Wrap(common.ExitToolError, err, "failed to read confirmation")
	}
	return strings.TrimSpace(line) == phrase, nil
}

// parseActiveConnections extracts the active entry names from rasdial's
// status output. The output is a "Connected to" header followed by one
// entry name per line and a completion trailer, or a "No connections"
// notice. Anything unrecognized parses as no active entries.
func parseActiveConnections(output string) []string {
	var names []string
	seenHeader := false

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, "No connections") {
			return nil
		}
		if strings.Contains(line, "Connected to") {
			seenHeader = true
			continue
		}
		if strings.Contains(line, "Command completed") {
			break
		}
		if seenHeader {
			names = append(names, line)
		}
	}
	return names
}

// diagnostic picks the most useful text from a failed invocation: stderr
// when present, stdout otherwise, and a placeholder when the utility said
// nothing at all.
func diagnostic(out common.Output) string {
	if text := strings.TrimSpace(out.Stderr); text != "" {
		return text
	}
	if text := strings.TrimSpace(out.Stdout); text != "" {
		return text
	}
	return fmt.Sprintf("exit code %d with no output", out.ExitCode)
}
