// Package common provides shared constants, types, and utilities
// used across upv-cli.
package common

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
)

// ExecRunner is the os/exec backed Runner used in production.
type ExecRunner struct{}

// NewRunner returns a Runner that executes real subprocesses.
func NewRunner() Runner {
	return ExecRunner{}
}

// Run executes a command and waits for it to finish. A non-zero exit
// status is not an error here; it is reported through Output.ExitCode so
// the adapters can interpret the utility's diagnostics. Only a failure to
// spawn the process at all is returned as an error.
func (ExecRunner) Run(name string, args ...string) (Output, error) {
	return run("", name, args...)
}

// RunInput executes a command with the given string piped to stdin.
func (ExecRunner) RunInput(stdin, name string, args ...string) (Output, error) {
	return run(stdin, name, args...)
}

// Start launches a command without waiting for it to finish.
func (ExecRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return Wrap(ExitToolError, err, "failed to launch "+name)
	}
	LogDebug("launched %s %s (pid %d)", name, strings.Join(args, " "), cmd.Process.Pid)
	// Detach; the child outlives this invocation.
	return cmd.Process.Release()
}

func run(stdin, name string, args ...string) (Output, error) {
	cmd := exec.Command(name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	LogDebug("running %s %s", name, strings.Join(args, " "))
	err := cmd.Run()

	out := Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return out, Wrap(ExitToolError, err, "failed to execute "+name)
		}
		out.ExitCode = exitErr.ExitCode()
	}

	LogDebug("%s exited with code %d", name, out.ExitCode)
	return out, nil
}
