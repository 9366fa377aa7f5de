// Package common provides shared constants, types, utilities, and interfaces
// used throughout upv-cli.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: tool-wide names for files, directories, and the wrapped
//     Windows utilities
//   - Errors: exit-code categories, sentinel errors, and the CommandError
//     type that carries an error's category to the process exit code
//   - Interfaces: the Runner abstraction over subprocess execution and the
//     CredentialStore abstraction over secret storage
//   - Logger: leveled logging with optional rotated file output
//
// # Usage
//
//	import "github.com/upv-tools/upv-cli/common"
//
//	// Run a subprocess through the abstraction
//	out, err := runner.Run(common.RasdialCommand, "/disconnect")
//
//	// Categorize a failure
//	return common.Errorf(common.ExitVPNError, "failed to disconnect: %s", out.Stderr)
//
//	// Map any error to its exit code in main
//	os.Exit(common.ExitCode(err))
package common
