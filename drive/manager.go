// Package drive manages the personal network drive (Disco W).
// This file contains the Manager type which wraps net use and
// explorer.exe.
package drive

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"text/tabwriter"

	"github.com/upv-tools/upv-cli/common"
	"github.com/upv-tools/upv-cli/config"
)

// Domain identifies the institutional account domain, which selects the
// share root the personal drive lives under.
type Domain string

const (
	// DomainAlumno is the student domain.
	DomainAlumno Domain = "ALUMNO"
	// DomainUPVNet is the staff domain.
	DomainUPVNet Domain = "UPVNET"
)

// String returns the domain name as used in /user: arguments.
func (d Domain) String() string {
	return string(d)
}

// ParseDomain parses a domain name case-insensitively.
func ParseDomain(s string) (Domain, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(DomainAlumno):
		return DomainAlumno, nil
	case string(DomainUPVNet):
		return DomainUPVNet, nil
	default:
		return "", common.Errorf(common.ExitUsage,
			"invalid domain %q: must be ALUMNO or UPVNET", s)
	}
}

// MountState represents the state of a drive letter during an operation.
// Each operation walks Unmounted → Mounting → Mounted → Unmounting →
// Unmounted; a failed transition returns to the prior stable state.
type MountState int

const (
	// StateUnmounted indicates no mapping exists for the letter.
	StateUnmounted MountState = iota
	// StateMounting indicates a mapping is being established.
	StateMounting
	// StateMounted indicates an established mapping.
	StateMounted
	// StateUnmounting indicates the mapping is being removed.
	StateUnmounting
)

// String returns a human-readable representation of the mount state.
func (s MountState) String() string {
	switch s {
	case StateUnmounted:
		return "Unmounted"
	case StateMounting:
		return "Mounting"
	case StateMounted:
		return "Mounted"
	case StateUnmounting:
		return "Unmounting"
	default:
		return "Unknown"
	}
}

// Mapping is one row of the OS network-drive table.
type Mapping struct {
	// Status is the OS-reported status of the mapping ("OK",
	// "Disconnected", ...). May be empty when the OS omits it.
	Status string
	// Letter is the local drive letter.
	Letter rune
	// Remote is the UNC path the letter is mapped to.
	Remote string
}

// Manager wraps the OS share-mounting utility behind the tool's drive
// operations.
type Manager struct {
	cfg    *config.Config
	runner common.Runner
	out    io.Writer
}

// NewManager creates a drive manager writing progress to stdout.
func NewManager(cfg *config.Config, runner common.Runner) *Manager {
	return &Manager{
		cfg:    cfg,
		runner: runner,
		out:    os.Stdout,
	}
}

// Mount attaches the personal share for username/domain to the given
// drive letter. With password empty, the mapping rides on the identity of
// the active VPN session. With openAfter, the mounted path is opened in
// the file browser.
func (m *Manager) Mount(username string, domain Domain, password string, letter rune, openAfter bool) error {
	sharePath, err := m.sharePath(username, domain)
	if err != nil {
		return err
	}

	fmt.Fprintf(m.out, "Mounting Disco W to drive %c:...\n", letter)
	common.LogDebug("drive %c: %s -> %s", letter, StateUnmounted, StateMounting)

	args := []string{"use", fmt.Sprintf("%c:", letter), sharePath}
	if password != "" {
		args = append(args, fmt.Sprintf(`/user:%s\%s`, domain, username), password)
	}

	out, err := m.runner.Run(common.NetCommand, args...)
	if err != nil {
		return err
	}
	if !out.Success() {
		common.LogDebug("drive %c: %s -> %s", letter, StateMounting, StateUnmounted)
		return classifyMountFailure(letter, out)
	}

	common.LogDebug("drive %c: %s -> %s", letter, StateMounting, StateMounted)
	fmt.Fprintf(m.out, "Disco W mounted successfully to drive %c:\n", letter)
	common.LogInfo("mounted %s on %c:", sharePath, letter)

	if openAfter {
		return m.openDrive(letter, false)
	}
	return nil
}

// Unmount detaches a drive letter. Without force, an unmount blocked by
// open files fails with the drive-in-use error; with force, the OS is
// told to disconnect anyway.
func (m *Manager) Unmount(letter rune, force bool) error {
	fmt.Fprintf(m.out, "Unmounting drive %c:...\n", letter)
	common.LogDebug("drive %c: %s -> %s", letter, StateMounted, StateUnmounting)

	args := []string{"use", fmt.Sprintf("%c:", letter), "/delete"}
	if force {
		args = append(args, "/y")
	}

	out, err := m.runner.Run(common.NetCommand, args...)
	if err != nil {
		return err
	}
	if !out.Success() {
		common.LogDebug("drive %c: %s -> %s", letter, StateUnmounting, StateMounted)

		// Without /y, net use answers an in-use drive with a (Y/N)
		// confirmation prompt instead of disconnecting.
		if !force && strings.Contains(out.Stdout, "/N") {
			return common.Wrap(common.ExitDriveInUse, common.ErrDriveInUse,
				fmt.Sprintf("drive %c: is currently in use; close any open files or folders on it and try again, or re-run with --force to unmount anyway, accepting that unsaved data could be lost", letter))
		}

		return common.Errorf(common.ExitDriveError,
			"failed to unmount drive %c:: %s", letter, diagnostic(out))
	}

	common.LogDebug("drive %c: %s -> %s", letter, StateUnmounting, StateUnmounted)
	fmt.Fprintf(m.out, "Drive %c: unmounted successfully\n", letter)
	common.LogInfo("unmounted drive %c:", letter)
	return nil
}

// Open launches the file browser at an already-mounted drive letter. No
// mount is performed; an unmapped letter is an error.
func (m *Manager) Open(letter rune) error {
	return m.openDrive(letter, true)
}

func (m *Manager) openDrive(letter rune, checkExists bool) error {
	path := fmt.Sprintf(`%c:\`, letter)

	if checkExists && !common.FileExists(path) {
		return common.Wrap(common.ExitDriveError, common.ErrNotMounted,
			fmt.Sprintf("drive %c:", letter))
	}

	fmt.Fprintf(m.out, "Opening drive %c: in Explorer...\n", letter)
	return m.runner.Start(common.ExplorerCommand, path)
}

// Status lists the currently mapped drive letters and their remote paths.
func (m *Manager) Status() error {
	out, err := m.runner.Run(common.NetCommand, "use")
	if err != nil {
		return err
	}
	if !out.Success() {
		return common.Errorf(common.ExitDriveError,
			"failed to check drive status: %s", diagnostic(out))
	}

	mappings := parseMappings(out.Stdout)
	if len(mappings) == 0 {
		fmt.Fprintln(m.out, "No network drives mapped.")
		return nil
	}

	w := tabwriter.NewWriter(m.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DRIVE\tREMOTE\tSTATUS")
	fmt.Fprintln(w, "-----\t------\t------")
	for _, mapping := range mappings {
		status := mapping.Status
		if status == "" {
			status = "-"
		}
		fmt.Fprintf(w, "%c:\t%s\t%s\n", mapping.Letter, mapping.Remote, status)
	}
	return w.Flush()
}

// sharePath builds the UNC path of the personal share: the NAS host, the
// domain's share root, the first letter of the username, the username.
func (m *Manager) sharePath(username string, domain Domain) (string, error) {
	runes := []rune(username)
	if len(runes) == 0 {
		return "", common.Errorf(common.ExitUsage, "username cannot be empty")
	}
	first := strings.ToLower(string(runes[0]))

	root := m.cfg.UPVNetShareRoot
	if domain == DomainAlumno {
		root = m.cfg.AlumnoShareRoot
	}

	return fmt.Sprintf(`\\%s\%s\%s\%s`, m.cfg.NASHost, root, first, username), nil
}

// systemErrorPattern extracts the numeric code from a "System error NNN
// has occurred." diagnostic.
var systemErrorPattern = regexp.MustCompile(`[Ee]rror (\d+)`)

// classifyMountFailure maps net use diagnostics to the specific mount
// failure cause. Codes that don't match a known cause fall through to a
// generic drive error carrying the OS text.
func classifyMountFailure(letter rune, out common.Output) error {
	text := out.Stdout + "\n" + out.Stderr

	code := ""
	if match := systemErrorPattern.FindStringSubmatch(text); match != nil {
		code = match[1]
	}

	switch code {
	case "85":
		return common.Wrap(common.ExitDriveError, common.ErrAlreadyMounted,
			fmt.Sprintf("cannot mount on %c:", letter))
	case "86", "1326":
		return common.Wrap(common.ExitDriveError, common.ErrAuthFailed,
			fmt.Sprintf("cannot mount on %c:", letter))
	case "53":
		return common.Wrap(common.ExitDriveError, common.ErrNetworkUnreachable,
			fmt.Sprintf("cannot mount on %c: (is the VPN connected?)", letter))
	case "1219":
		return common.Wrap(common.ExitDriveError, common.ErrCredentialConflict,
			fmt.Sprintf("cannot mount on %c:: disconnect existing mappings to the server first", letter))
	default:
		return common.Errorf(common.ExitDriveError,
			"failed to mount drive %c:: %s", letter, diagnostic(out))
	}
}

// parseMappings extracts drive mappings from the net use table. Rows
// carry an optional status word, a drive letter column, and the remote
// UNC path; the network-name column may wrap to its own line and is
// ignored.
func parseMappings(output string) []Mapping {
	var mappings []Mapping

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)

		idx := -1
		for i, f := range fields {
			if len(f) == 2 && f[1] == ':' && f[0] >= 'A' && f[0] <= 'Z' {
				idx = i
				break
			}
		}
		if idx < 0 || idx > 1 || idx+1 >= len(fields) {
			continue
		}

		remote := fields[idx+1]
		if !strings.HasPrefix(remote, `\\`) {
			continue
		}

		mapping := Mapping{
			Letter: rune(fields[idx][0]),
			Remote: remote,
		}
		if idx == 1 {
			mapping.Status = fields[0]
		}
		mappings = append(mappings, mapping)
	}
	return mappings
}

// diagnostic picks the most useful text from a failed invocation.
func diagnostic(out common.Output) string {
	if text := strings.TrimSpace(out.Stderr); text != "" {
		return text
	}
	if text := strings.TrimSpace(out.Stdout); text != "" {
		return text
	}
	return fmt.Sprintf("exit code %d with no output", out.ExitCode)
}
