package types

import (
	"fmt"
	"os"
	"syscall"
)

// ExitError carries the delegated application's exit code up to the CLI
// without reinterpreting it.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("application exited with status %d", e.Code)
}

// SignalError records the termination signal that cancelled the supervisor
// before the application was started.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("received signal %s", e.Signal)
}

// ExitCode follows the shell convention of 128 plus the signal number.
func (e *SignalError) ExitCode() int {
	if sig, ok := e.Signal.(syscall.Signal); ok {
		return 128 + int(sig)
	}
	return 1
}

// UnreachableError marks a dependency that never accepted a connection
// during the readiness phase.
type UnreachableError struct {
	Address  string
	Source   string
	Attempts int
	Err      error
}

func (e *UnreachableError) Error() string {
	msg := fmt.Sprintf("%s (%s) unreachable after %d attempts", e.Address, e.Source, e.Attempts)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}
