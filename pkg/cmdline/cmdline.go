// pkg/cmdline/cmdline.go - splits recorded uninstall command lines into an
// executable path plus arguments.
//
// Registry UninstallString values are authored by installer vendors, not by
// us: they mix quoted and unquoted paths, GUIDs in braces, property
// assignments and stray switches. Splitting is done by escaping everything
// shell-significant and then letting a real shell grammar evaluate the string,
// so quoting rules are honored instead of approximated.

package cmdline

import (
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// CommandLine is a split uninstall command: the executable path and its
// ordered argument list. Treated as immutable once built.
type CommandLine struct {
	Executable string
	Args       []string
}

// ErrEmptyCommand is returned when the raw string contains no tokens at all.
var ErrEmptyCommand = errors.New("empty uninstall command line")

// ErrExpansion wraps tokenization failures (typically unbalanced quoting).
// There is no fallback tokenization; callers must treat this as fatal for
// the entry being removed.
var ErrExpansion = errors.New("uninstall command line expansion failed")

// Characters the shell evaluator would interpret outside quotes. Backslash is
// handled separately: in a Windows command line it is always a path separator,
// never an escape.
const unquotedMeta = "()[]{}@&$;|<>`~#*?!^"

// Split tokenizes a raw uninstall command line. The first token is the
// executable path, the rest are its arguments, with quoted substrings kept
// as single tokens.
func Split(raw string) (CommandLine, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return CommandLine{}, ErrEmptyCommand
	}

	fields, err := shell.Fields(escapeMeta(trimmed), nil)
	if err != nil {
		return CommandLine{}, fmt.Errorf("%w: %v (input %q)", ErrExpansion, err, raw)
	}
	if len(fields) == 0 {
		return CommandLine{}, ErrEmptyCommand
	}

	return CommandLine{Executable: fields[0], Args: fields[1:]}, nil
}

// escapeMeta neutralizes shell-significant characters while leaving quoting
// intact, so evaluation's only effect is argument splitting. The escape set
// depends on quoting state: outside quotes every metacharacter and backslash
// is escaped; inside double quotes only the characters the shell still
// interprets there ($, backtick, ", \); single-quoted text is copied verbatim.
func escapeMeta(raw string) string {
	var b strings.Builder
	b.Grow(len(raw) * 2)

	const (
		unquoted = iota
		singleQuoted
		doubleQuoted
	)
	state := unquoted

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch state {
		case unquoted:
			switch {
			case c == '\'':
				state = singleQuoted
				b.WriteByte(c)
			case c == '"':
				state = doubleQuoted
				b.WriteByte(c)
			case c == '\\' || strings.IndexByte(unquotedMeta, c) >= 0:
				b.WriteByte('\\')
				b.WriteByte(c)
			default:
				b.WriteByte(c)
			}
		case singleQuoted:
			if c == '\'' {
				state = unquoted
			}
			b.WriteByte(c)
		case doubleQuoted:
			switch c {
			case '"':
				state = unquoted
				b.WriteByte(c)
			case '$', '`', '\\':
				b.WriteByte('\\')
				b.WriteByte(c)
			default:
				b.WriteByte(c)
			}
		}
	}

	// An unterminated quote is left as-is; the evaluator reports it.
	return b.String()
}
