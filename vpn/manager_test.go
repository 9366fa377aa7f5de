package vpn

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/upv-tools/upv-cli/common"
	"github.com/upv-tools/upv-cli/config"
)

// fakeRunner records invocations and serves canned output per command.
type fakeRunner struct {
	handler func(name string, args ...string) common.Output
	calls   [][]string
	stdins  []string
}

func (f *fakeRunner) Run(name string, args ...string) (common.Output, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.handler != nil {
		return f.handler(name, args...), nil
	}
	return common.Output{}, nil
}

func (f *fakeRunner) RunInput(stdin, name string, args ...string) (common.Output, error) {
	f.stdins = append(f.stdins, stdin)
	return f.Run(name, args...)
}

func (f *fakeRunner) Start(name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	return nil
}

func newTestManager(runner *fakeRunner, input string) (*Manager, *bytes.Buffer) {
	out := &bytes.Buffer{}
	m := &Manager{
		cfg:    config.Default(),
		runner: runner,
		in:     bufio.NewReader(strings.NewReader(input)),
		out:    out,
	}
	return m, out
}

func TestParseActiveConnections(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected []string
	}{
		{
			name:     "one active connection",
			output:   "Connected to\r\nUPV\r\n\r\nCommand completed successfully.\r\n",
			expected: []string{"UPV"},
		},
		{
			name:     "multiple active connections",
			output:   "Connected to\nUPV\nUPV Backup\nCommand completed successfully.\n",
			expected: []string{"UPV", "UPV Backup"},
		},
		{
			name:     "no connections",
			output:   "No connections\nCommand completed successfully.\n",
			expected: nil,
		},
		{
			name:     "empty output",
			output:   "",
			expected: nil,
		},
		{
			name:     "unrecognized output",
			output:   "something unexpected entirely",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseActiveConnections(tt.output)
			if len(got) != len(tt.expected) {
				t.Fatalf("parseActiveConnections() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("parseActiveConnections()[%d] = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestManager_Status(t *testing.T) {
	runner := &fakeRunner{
		handler: func(name string, args ...string) common.Output {
			return common.Output{Stdout: "Connected to\nUPV\nCommand completed successfully.\n"}
		},
	}
	m, out := newTestManager(runner, "")

	if err := m.Status(); err != nil {
		t.Fatalf("Status() returned error: %v", err)
	}
	if !strings.Contains(out.String(), "connected") {
		t.Errorf("Status() output should report connected, got %q", out.String())
	}
	if !strings.Contains(out.String(), "UPV") {
		t.Errorf("Status() output should name the active entry, got %q", out.String())
	}
}

func TestManager_StatusDisconnected(t *testing.T) {
	runner := &fakeRunner{
		handler: func(name string, args ...string) common.Output {
			return common.Output{Stdout: "No connections\nCommand completed successfully.\n"}
		},
	}
	m, out := newTestManager(runner, "")

	if err := m.Status(); err != nil {
		t.Fatalf("Status() returned error: %v", err)
	}
	if !strings.Contains(out.String(), "disconnected") {
		t.Errorf("Status() output should report disconnected, got %q", out.String())
	}
}

func TestManager_StatusFailure(t *testing.T) {
	runner := &fakeRunner{
		handler: func(name string, args ...string) common.Output {
			return common.Output{Stderr: "Error de acceso remoto 623.", ExitCode: 623}
		},
	}
	m, out := newTestManager(runner, "")

	err := m.Status()
	if err == nil {
		t.Fatal("Status() should fail when rasdial fails")
	}
	if common.ExitCode(err) != common.ExitVPNError {
		t.Errorf("ExitCode = %d, want %d", common.ExitCode(err), common.ExitVPNError)
	}
	if !strings.Contains(err.Error(), "623") {
		t.Errorf("error should carry the OS diagnostic, got %q", err.Error())
	}
	if strings.Contains(out.String(), "disconnected") {
		t.Errorf("a failed status check must not report disconnected, got %q", out.String())
	}
}

func TestManager_StatusUnrecognizedOutput(t *testing.T) {
	runner := &fakeRunner{
		handler: func(name string, args ...string) common.Output {
			return common.Output{Stdout: "Keine Verbindungen vorhanden\n"}
		},
	}
	m, out := newTestManager(runner, "")

	err := m.Status()
	if err == nil {
		t.Fatal("Status() should fail on output it cannot interpret")
	}
	if common.ExitCode(err) != common.ExitVPNError {
		t.Errorf("ExitCode = %d, want %d", common.ExitCode(err), common.ExitVPNError)
	}
	if !strings.Contains(err.Error(), "Keine Verbindungen vorhanden") {
		t.Errorf("error should surface the raw output, got %q", err.Error())
	}
	if strings.Contains(out.String(), "disconnected") {
		t.Errorf("unrecognized output must not report disconnected, got %q", out.String())
	}
}

func TestManager_Connect(t *testing.T) {
	runner := &fakeRunner{
		handler: func(name string, args ...string) common.Output {
			return common.Output{Stdout: "Successfully connected to UPV.\n"}
		},
	}
	m, out := newTestManager(runner, "")

	if err := m.Connect("UPV", "jdoe", "secret"); err != nil {
		t.Fatalf("Connect() returned error: %v", err)
	}

	if len(runner.calls) != 1 {
		t.Fatalf("Connect() made %d calls, want 1", len(runner.calls))
	}
	want := []string{"rasdial", "UPV", "jdoe", "secret"}
	for i, arg := range want {
		if runner.calls[0][i] != arg {
			t.Errorf("Connect() call arg %d = %q, want %q", i, runner.calls[0][i], arg)
		}
	}
	if !strings.Contains(out.String(), "Connected to 'UPV'") {
		t.Errorf("Connect() output = %q, want the success message", out.String())
	}
}

func TestManager_ConnectWithoutCredentials(t *testing.T) {
	runner := &fakeRunner{
		handler: func(name string, args ...string) common.Output {
			return common.Output{Stdout: "Successfully connected to UPV.\n"}
		},
	}
	m, _ := newTestManager(runner, "")

	if err := m.Connect("UPV", "", ""); err != nil {
		t.Fatalf("Connect() returned error: %v", err)
	}
	if got := len(runner.calls[0]); got != 2 {
		t.Errorf("Connect() without credentials passed %d args, want only the entry name", got-1)
	}
}

func TestManager_ConnectFailure(t *testing.T) {
	runner := &fakeRunner{
		handler: func(name string, args ...string) common.Output {
			return common.Output{Stdout: "Remote Access error 691 - Access denied.\n", ExitCode: 691}
		},
	}
	m, _ := newTestManager(runner, "")

	err := m.Connect("UPV", "jdoe", "wrong")
	if err == nil {
		t.Fatal("Connect() should fail when rasdial reports an error")
	}
	if common.ExitCode(err) != common.ExitVPNError {
		t.Errorf("ExitCode = %d, want %d", common.ExitCode(err), common.ExitVPNError)
	}
	if !strings.Contains(err.Error(), "error 691") {
		t.Errorf("error should carry the OS diagnostic, got %q", err.Error())
	}
}

func TestManager_Create(t *testing.T) {
	runner := &fakeRunner{}
	m, out := newTestManager(runner, "")

	if err := m.Create("UPV", false); err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}

	if len(runner.stdins) != 1 {
		t.Fatalf("Create() should pipe one script on stdin, got %d", len(runner.stdins))
	}
	script := runner.stdins[0]
	if !strings.Contains(script, "Add-VpnConnection -Name 'UPV'") {
		t.Errorf("script missing Add-VpnConnection invocation: %q", script)
	}
	if !strings.Contains(script, "-ServerAddress 'vpn.upv.es'") {
		t.Errorf("script missing institutional server address: %q", script)
	}
	if !strings.Contains(script, "-TunnelType Sstp") {
		t.Errorf("script missing tunnel type: %q", script)
	}
	if !strings.Contains(script, "EapHostConfig") {
		t.Errorf("script missing embedded EAP configuration: %q", script)
	}
	if !strings.Contains(out.String(), "created successfully") {
		t.Errorf("Create() output = %q, want the success message", out.String())
	}
}

func TestManager_CreateAndConnect(t *testing.T) {
	runner := &fakeRunner{
		handler: func(name string, args ...string) common.Output {
			if name == "rasdial" {
				return common.Output{Stdout: "Successfully connected to UPV.\n"}
			}
			return common.Output{}
		},
	}
	m, _ := newTestManager(runner, "")

	if err := m.Create("UPV", true); err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}
	if len(runner.calls) != 2 || runner.calls[1][0] != "rasdial" {
		t.Errorf("Create() with connect should dial after registering, calls: %v", runner.calls)
	}
}

func TestManager_CreateFailure(t *testing.T) {
	runner := &fakeRunner{
		handler: func(name string, args ...string) common.Output {
			return common.Output{Stderr: "Add-VpnConnection : A connection with this name already exists.\n", ExitCode: 1}
		},
	}
	m, _ := newTestManager(runner, "")

	err := m.Create("UPV", false)
	if err == nil {
		t.Fatal("Create() should fail when the cmdlet reports an error")
	}
	if common.ExitCode(err) != common.ExitVPNError {
		t.Errorf("ExitCode = %d, want %d", common.ExitCode(err), common.ExitVPNError)
	}
}

func TestManager_CreateQuotesName(t *testing.T) {
	runner := &fakeRunner{}
	m, _ := newTestManager(runner, "")

	if err := m.Create("Pepe's VPN", false); err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}

	script := runner.stdins[0]
	if !strings.Contains(script, "-Name 'Pepe''s VPN'") {
		t.Errorf("name with a quote should be escaped for the script, got %q", script)
	}
}

func TestPsQuote(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"UPV", "UPV"},
		{"Pepe's VPN", "Pepe''s VPN"},
		{"''", "''''"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := psQuote(tt.input); got != tt.expected {
				t.Errorf("psQuote(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestManager_DeleteQuotesName(t *testing.T) {
	runner := &fakeRunner{}
	m, _ := newTestManager(runner, "")

	if err := m.Delete("Pepe's VPN", true); err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}

	script := runner.calls[0][2]
	if !strings.Contains(script, "-Name 'Pepe''s VPN'") {
		t.Errorf("name with a quote should be escaped for the script, got %q", script)
	}
}

func TestManager_Disconnect(t *testing.T) {
	runner := &fakeRunner{}
	m, out := newTestManager(runner, "")

	if err := m.Disconnect(); err != nil {
		t.Fatalf("Disconnect() returned error: %v", err)
	}
	want := []string{"rasdial", "/disconnect"}
	for i, arg := range want {
		if runner.calls[0][i] != arg {
			t.Errorf("Disconnect() call arg %d = %q, want %q", i, runner.calls[0][i], arg)
		}
	}
	if !strings.Contains(out.String(), "Disconnected") {
		t.Errorf("Disconnect() output = %q, want the success message", out.String())
	}
}

func TestManager_DeleteConfirmed(t *testing.T) {
	runner := &fakeRunner{}
	m, _ := newTestManager(runner, "y\n")

	if err := m.Delete("UPV", false); err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("Delete() made %d calls, want 1", len(runner.calls))
	}
	if !strings.Contains(runner.calls[0][2], "Remove-VpnConnection -Name 'UPV' -Force") {
		t.Errorf("Delete() ran %v, want Remove-VpnConnection", runner.calls[0])
	}
}

func TestManager_DeleteCancelled(t *testing.T) {
	runner := &fakeRunner{}
	m, out := newTestManager(runner, "n\n")

	if err := m.Delete("UPV", false); err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("cancelled Delete() should not invoke anything, got %v", runner.calls)
	}
	if !strings.Contains(out.String(), "cancelled") {
		t.Errorf("Delete() output = %q, want cancellation notice", out.String())
	}
}

func TestManager_DeleteForced(t *testing.T) {
	runner := &fakeRunner{}
	m, _ := newTestManager(runner, "")

	if err := m.Delete("UPV", true); err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Errorf("forced Delete() should skip confirmation and delete, calls: %v", runner.calls)
	}
}

// listHandler serves a Get-VpnConnection listing and records deletions.
func listHandler(names string) func(name string, args ...string) common.Output {
	return func(name string, args ...string) common.Output {
		if len(args) >= 2 && strings.Contains(args[1], "Get-VpnConnection") {
			return common.Output{Stdout: names}
		}
		return common.Output{}
	}
}

func TestManager_PurgeCancelledFirstPrompt(t *testing.T) {
	runner := &fakeRunner{handler: listHandler("UPV\nUPV Old\n")}
	m, out := newTestManager(runner, "n\n")

	if err := m.Purge(false, nil); err != nil {
		t.Fatalf("Purge() returned error: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Errorf("cancelled Purge() should only list, calls: %v", runner.calls)
	}
	if !strings.Contains(out.String(), "cancelled") {
		t.Errorf("Purge() output = %q, want cancellation notice", out.String())
	}
}

func TestManager_PurgeCancelledSecondPrompt(t *testing.T) {
	runner := &fakeRunner{handler: listHandler("UPV\n")}
	m, out := newTestManager(runner, "y\nnot-the-phrase\n")

	if err := m.Purge(false, nil); err != nil {
		t.Fatalf("Purge() returned error: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Errorf("cancelled Purge() should only list, calls: %v", runner.calls)
	}
	if !strings.Contains(out.String(), "cancelled") {
		t.Errorf("Purge() output = %q, want cancellation notice", out.String())
	}
}

func TestManager_PurgeDoubleConfirmed(t *testing.T) {
	runner := &fakeRunner{handler: listHandler("UPV\nUPV Old\n")}
	m, out := newTestManager(runner, "y\nDELETE\n")

	if err := m.Purge(false, nil); err != nil {
		t.Fatalf("Purge() returned error: %v", err)
	}
	// One list call plus one delete per connection.
	if len(runner.calls) != 3 {
		t.Fatalf("Purge() made %d calls, want 3: %v", len(runner.calls), runner.calls)
	}
	if !strings.Contains(out.String(), "2 connections deleted successfully") {
		t.Errorf("Purge() output = %q, want deletion summary", out.String())
	}
}

func TestManager_PurgeExcept(t *testing.T) {
	runner := &fakeRunner{handler: listHandler("UPV\nUPV Old\nUPV Test\n")}
	m, _ := newTestManager(runner, "")

	if err := m.Purge(true, []string{"UPV"}); err != nil {
		t.Fatalf("Purge() returned error: %v", err)
	}

	deleted := make([]string, 0)
	for _, call := range runner.calls[1:] {
		deleted = append(deleted, call[2])
	}
	for _, script := range deleted {
		if strings.Contains(script, "'UPV' ") {
			t.Errorf("excepted connection was deleted: %q", script)
		}
	}
	if len(deleted) != 2 {
		t.Errorf("Purge() deleted %d connections, want 2", len(deleted))
	}
}

func TestManager_PurgeNothingToDelete(t *testing.T) {
	runner := &fakeRunner{handler: listHandler("UPV\n")}
	m, out := newTestManager(runner, "")

	if err := m.Purge(true, []string{"UPV"}); err != nil {
		t.Fatalf("Purge() returned error: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Errorf("Purge() with everything excepted should only list, calls: %v", runner.calls)
	}
	if !strings.Contains(out.String(), "No UPV VPN connections found") {
		t.Errorf("Purge() output = %q, want nothing-to-delete notice", out.String())
	}
}

func TestManager_List(t *testing.T) {
	runner := &fakeRunner{handler: listHandler("UPV\nUPV Old\n")}
	m, out := newTestManager(runner, "")

	if err := m.List(); err != nil {
		t.Fatalf("List() returned error: %v", err)
	}
	if !strings.Contains(out.String(), "UPV Old") {
		t.Errorf("List() output = %q, want the connection names", out.String())
	}
}

func TestDiagnostic(t *testing.T) {
	tests := []struct {
		name     string
		output   common.Output
		expected string
	}{
		{"prefers stderr", common.Output{Stdout: "out", Stderr: "err"}, "err"},
		{"falls back to stdout", common.Output{Stdout: "out"}, "out"},
		{"placeholder when silent", common.Output{ExitCode: 3}, "exit code 3 with no output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := diagnostic(tt.output); got != tt.expected {
				t.Errorf("diagnostic() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestEapConfig(t *testing.T) {
	cleaned := eapConfig()
	if strings.HasPrefix(cleaned, "\ufeff") {
		t.Error("eapConfig() should strip the BOM")
	}
	if !strings.HasPrefix(cleaned, "<EapHostConfig") {
		t.Errorf("eapConfig() should start with the root element, got %q", cleaned[:40])
	}
	if strings.HasSuffix(cleaned, "\n") {
		t.Error("eapConfig() should trim trailing whitespace")
	}
}
