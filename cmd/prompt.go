package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/upv-tools/upv-cli/common"
)

// promptPassword reads a password from the terminal without echoing it.
// When stdin is not a terminal (piped input), it falls back to reading a
// plain line. The prompt goes to stderr so captured stdout stays clean.
func promptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", common.Wrap(common.ExitToolError, err, "failed to read password")
		}
		return string(password), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", common.Wrap(common.ExitToolError, err, "failed to read password")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
