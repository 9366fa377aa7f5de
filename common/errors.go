// Package common provides shared constants, types, and utilities
// used across upv-cli.
package common

import (
	"errors"
	"fmt"
)

// Exit codes returned by the tool. The categories are stable so scripts
// can branch on them.
const (
	// ExitSuccess indicates the operation completed.
	ExitSuccess = 0
	// ExitFailure indicates a general, uncategorized failure.
	ExitFailure = 1
	// ExitUsage indicates invalid arguments or an unknown subcommand.
	ExitUsage = 2
	// ExitToolError indicates the tool itself failed, e.g. a utility
	// could not be spawned at all.
	ExitToolError = 10
	// ExitVPNError indicates a VPN operation failed.
	ExitVPNError = 11
	// ExitDriveError indicates a network drive operation failed.
	ExitDriveError = 12
	// ExitDriveInUse indicates an unmount was blocked by open files.
	ExitDriveInUse = 13
)

// Sentinel errors for adapter operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Drive errors.
	ErrAlreadyMounted     = errors.New("drive letter already in use")
	ErrAuthFailed         = errors.New("authentication failed")
	ErrNetworkUnreachable = errors.New("network path unreachable")
	ErrCredentialConflict = errors.New("conflicting credentials for the same server")
	ErrDriveInUse         = errors.New("drive has open files or folders")
	ErrNotMounted         = errors.New("drive is not mounted")

	// VPN errors.
	ErrConnectionNotFound = errors.New("vpn connection not found")
	ErrNotConnected       = errors.New("no active vpn connection")

	// User interaction.
	ErrCancelled = errors.New("operation cancelled")
)

// CommandError pins an error to its exit-code category. Adapters return
// CommandError values so main can translate any failure into the fixed
// exit code for its origin.
type CommandError struct {
	// Code is the process exit code for this error category.
	Code int
	// Message describes the failure, usually including the diagnostic
	// text of the OS utility that produced it.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

// Error returns the message, followed by the underlying cause when present.
func (e *CommandError) Error() string {
	if e.Err != nil && e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// Errorf creates a CommandError with a formatted message.
func Errorf(code int, format string, args ...interface{}) *CommandError {
	return &CommandError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a CommandError around an underlying cause.
func Wrap(code int, err error, message string) *CommandError {
	return &CommandError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ExitCode maps an error to the process exit code for its category.
// Unrecognized errors map to the general failure code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, ErrDriveInUse) {
		return ExitDriveInUse
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}
	return ExitFailure
}
