package adapters

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"chatbot-bootstrap/internal/ports"
)

type RuntimeAdapter struct{}

func NewRuntimeAdapter() RuntimeAdapter {
	return RuntimeAdapter{}
}

func (a RuntimeAdapter) EnsureWorkdir(path string) error {
	if strings.TrimSpace(path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("working directory is empty")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create working directory").
			WithCause(err)
	}
	return nil
}

func (a RuntimeAdapter) LookupInterpreter(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("interpreter name is empty")
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("runtime interpreter %s not found on PATH", name)).
			WithCause(err)
	}
	return path, nil
}

var _ ports.RuntimePort = RuntimeAdapter{}
