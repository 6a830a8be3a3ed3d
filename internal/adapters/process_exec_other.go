//go:build !unix

package adapters

import "github.com/ZanzyTHEbar/errbuilder-go"

func (a ProcessLauncherAdapter) Exec(argv []string, env []string) error {
	if _, err := lookupCommand(argv); err != nil {
		return err
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("exec delegation is not supported on this platform, use supervise mode")
}
