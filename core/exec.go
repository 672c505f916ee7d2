package core

import (
	"errors"
	"fmt"
	"os/exec"
)

// Executor runs an external program and captures its standard output.
//
// It is the single seam between the record pipeline and the operating
// system: a pooled or parallel implementation could be substituted without
// touching templating, as long as it keeps the same blocking contract.
type Executor interface {
	// Invoke runs program with args, waits for it to exit and returns the
	// raw bytes it wrote to standard output.
	Invoke(program string, args []string) ([]byte, error)
}

// SystemExecutor is an Executor backed by os/exec.
//
// The exit status of the program is not inspected: a command that launches,
// runs and exits non-zero still counts as a successful invocation and
// whatever it wrote to stdout is used as-is. Only a failure to launch the
// program is an error. Standard error is discarded.
type SystemExecutor struct{}

func (SystemExecutor) Invoke(program string, args []string) ([]byte, error) {
	out, err := exec.Command(program, args...).Output()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to execute command %s with args %q: %w", program, args, err)
	}
	return out, nil
}
