package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

var errUsage = errors.New("wrong arguments")

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// readSecret prints prompt and reads one line from the terminal without echo.
func readSecret(prompt string) (string, error) {
	printlnFn(prompt)
	b, err := readPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("read from terminal: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// parseLocalID reads the first argument as a local document id.
func parseLocalID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w; usage: %s", errUsage, usage)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a local id; usage: %s", errUsage, args[0], usage)
	}
	return id, nil
}

// unquote re-splits arguments honoring double quotes, so that
// `add RG "Maria Silva"` and `edit 1 name="Maria Silva"` keep the spaces.
// An empty pair of quotes yields an empty argument.
func unquote(args []string) []string {
	var (
		out    []string
		b      strings.Builder
		quoted bool
		seen   bool
	)
	for _, r := range strings.Join(args, " ") {
		switch {
		case r == '"':
			quoted = !quoted
			seen = true
		case r == ' ' && !quoted:
			if seen || b.Len() > 0 {
				out = append(out, b.String())
			}
			b.Reset()
			seen = false
		default:
			b.WriteRune(r)
		}
	}
	if seen || b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
