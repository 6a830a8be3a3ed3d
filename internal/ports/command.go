package ports

import "context"

// CommandRunnerPort runs external programs to completion.
type CommandRunnerPort interface {
	// Run returns the combined stdout and stderr of the program.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// Output returns stdout only. Stdout is returned even when the program
	// exits non-zero so callers can parse partial results.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}
