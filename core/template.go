package core

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/anmitsu/go-shlex"
)

// ErrEmptyCommand is the error resulting if a command template has no
// program name.
var ErrEmptyCommand = errors.New("no command to execute")

// Pattern recognizes placeholders in argument templates. The first capture
// group of the underlying expression holds the 0-based index of the record
// field to substitute.
type Pattern struct {
	re *regexp.Regexp
}

// CompilePattern compiles expr as a placeholder pattern using Go regexp
// syntax. The default pattern is `\$([0-9]+)`, matching $0, $1, ...
func CompilePattern(expr string) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid placeholder pattern %q: %w", expr, err)
	}
	return &Pattern{re: re}, nil
}

// Resolve replaces every placeholder in arg with the referenced field of
// record. A match whose capture group is missing, not a non-negative
// integer, or out of range for the record becomes the empty string; this is
// never an error. Text outside matches is preserved verbatim.
func (p *Pattern) Resolve(arg string, record []string) string {
	matches := p.re.FindAllStringSubmatchIndex(arg, -1)
	if matches == nil {
		return arg
	}

	var out strings.Builder
	prev := 0
	for _, m := range matches {
		out.WriteString(arg[prev:m[0]])
		if len(m) >= 4 && m[2] >= 0 {
			index, err := strconv.Atoi(arg[m[2]:m[3]])
			if err == nil && index >= 0 && index < len(record) {
				out.WriteString(record[index])
			}
		}
		prev = m[1]
	}
	out.WriteString(arg[prev:])
	return out.String()
}

// CommandTemplate is a parsed command: the program name followed by argument
// templates that may contain placeholders.
type CommandTemplate []string

// ParseCommandTemplate tokenizes command with POSIX shell word-splitting
// rules, so quoted arguments may contain spaces.
func ParseCommandTemplate(command string) (CommandTemplate, error) {
	tokens, err := shlex.Split(command, true)
	if err != nil {
		return nil, fmt.Errorf("invalid command %q: %w", command, err)
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyCommand
	}
	return CommandTemplate(tokens), nil
}

// Materialize builds the concrete argument vector for one record. The
// program name is returned as-is and is never templated; every other
// element is resolved against the record in template order.
func (t CommandTemplate) Materialize(p *Pattern, record []string) (program string, args []string, err error) {
	if len(t) == 0 {
		return "", nil, ErrEmptyCommand
	}

	args = make([]string, 0, len(t)-1)
	for _, arg := range t[1:] {
		args = append(args, p.Resolve(arg, record))
	}
	return t[0], args, nil
}
