// Package common provides shared constants, types, and utilities
// used across upv-cli.
package common

// Output captures the result of a finished subprocess invocation.
// ExitCode is the OS-reported exit status; the textual streams carry the
// utility's diagnostics and are what the adapters parse.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the subprocess exited cleanly.
func (o Output) Success() bool {
	return o.ExitCode == 0
}

// Runner abstracts subprocess execution. The adapters depend on this
// interface instead of os/exec directly so they can be exercised against
// canned command output.
type Runner interface {
	// Run executes a command and waits for it to finish.
	Run(name string, args ...string) (Output, error)
	// RunInput executes a command with the given string piped to stdin.
	RunInput(stdin, name string, args ...string) (Output, error)
	// Start launches a command without waiting for it. Used for
	// fire-and-forget invocations like opening the file browser.
	Start(name string, args ...string) error
}

// CredentialStore defines the interface for credential storage.
// Implementations may use the system keyring, encrypted files, etc.
type CredentialStore interface {
	// Store saves a secret under a key.
	Store(key, secret string) error
	// Get retrieves the secret for a key.
	Get(key string) (string, error)
	// Delete removes the secret for a key.
	Delete(key string) error
}

// Logger defines the interface for leveled logging.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...interface{})
	// Info logs an informational message.
	Info(msg string, args ...interface{})
	// Warn logs a warning message.
	Warn(msg string, args ...interface{})
	// Error logs an error message.
	Error(msg string, args ...interface{})
}
