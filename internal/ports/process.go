package ports

import "os"

// ProcessHandle is a started child process.
type ProcessHandle interface {
	Pid() int
	Signal(sig os.Signal) error
	// Wait blocks until the process exits and returns its exit code. A
	// process killed by signal N reports 128+N.
	Wait() (int, error)
}

// ProcessLauncherPort hands control to the application process.
type ProcessLauncherPort interface {
	// Exec replaces the current process image. It only returns on failure.
	Exec(argv []string, env []string) error
	// Start runs argv as a child inheriting stdio.
	Start(argv []string, env []string) (ProcessHandle, error)
}
