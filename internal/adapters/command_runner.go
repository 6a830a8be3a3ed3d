package adapters

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"

	"chatbot-bootstrap/internal/ports"
	"chatbot-bootstrap/internal/shared"
)

// CommandRunnerAdapter runs programs with the current environment plus Env.
type CommandRunnerAdapter struct {
	Env []string
}

func NewCommandRunnerAdapter(env ...string) CommandRunnerAdapter {
	return CommandRunnerAdapter{Env: env}
}

func (a CommandRunnerAdapter) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := a.command(ctx, name, args...)
	log.Ctx(ctx).Debug().Str("command", name).Strs("args", args).Msg("running command")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, shared.CommandError(output, err)
	}
	return output, nil
}

func (a CommandRunnerAdapter) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := a.command(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	log.Ctx(ctx).Debug().Str("command", name).Strs("args", args).Msg("running command")
	output, err := cmd.Output()
	if err != nil {
		return output, shared.CommandError(stderr.Bytes(), err)
	}
	return output, nil
}

func (a CommandRunnerAdapter) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(a.Env) > 0 {
		cmd.Env = append(os.Environ(), a.Env...)
	}
	return cmd
}

var _ ports.CommandRunnerPort = CommandRunnerAdapter{}
