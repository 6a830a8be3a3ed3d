//go:build unix

package adapters

import (
	"os"

	"golang.org/x/sys/unix"
)

// Exec replaces the current process image with argv. On success it never
// returns; the application keeps the supervisor's PID.
func (a ProcessLauncherAdapter) Exec(argv []string, env []string) error {
	path, err := lookupCommand(argv)
	if err != nil {
		return err
	}
	if env == nil {
		env = os.Environ()
	}
	return unix.Exec(path, argv, env)
}
