package adapters

import (
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/joho/godotenv"

	"chatbot-bootstrap/internal/ports"
)

type EnvFileAdapter struct{}

func NewEnvFileAdapter() EnvFileAdapter {
	return EnvFileAdapter{}
}

// Load adds the variables in path to the process environment. Variables
// that are already set keep their value.
func (a EnvFileAdapter) Load(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("env file not found: %s", path)).
			WithCause(err)
	}
	if err := godotenv.Load(path); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse env file: %s", path)).
			WithCause(err)
	}
	return nil
}

var _ ports.EnvFilePort = EnvFileAdapter{}
