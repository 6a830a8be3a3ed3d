package adapters

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"chatbot-bootstrap/internal/ports"
)

// ProcessLauncherAdapter starts the application with the supervisor's
// stdio. A nil env inherits the current environment.
type ProcessLauncherAdapter struct{}

func NewProcessLauncherAdapter() ProcessLauncherAdapter {
	return ProcessLauncherAdapter{}
}

func (a ProcessLauncherAdapter) Start(argv []string, env []string) (ports.ProcessHandle, error) {
	path, err := lookupCommand(argv)
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(path, argv[1:]...)
	cmd.Args = argv
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to start %s", argv[0])).
			WithCause(err)
	}
	return processHandle{cmd: cmd}, nil
}

func lookupCommand(argv []string) (string, error) {
	if len(argv) == 0 || argv[0] == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("application command is empty")
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("application command not found: %s", argv[0])).
			WithCause(err)
	}
	return path, nil
}

type processHandle struct {
	cmd *exec.Cmd
}

func (h processHandle) Pid() int {
	return h.cmd.Process.Pid
}

func (h processHandle) Signal(sig os.Signal) error {
	return h.cmd.Process.Signal(sig)
}

func (h processHandle) Wait() (int, error) {
	err := h.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return -1, err
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal()), nil
	}
	return exitErr.ExitCode(), nil
}

var _ ports.ProcessLauncherPort = ProcessLauncherAdapter{}
