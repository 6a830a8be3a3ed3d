package adapters

import (
	"context"
	"strings"
)

type runnerCall struct {
	Name string
	Args []string
}

func (c runnerCall) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

type runnerResult struct {
	output []byte
	err    error
}

// fakeRunner records calls and replies by command line prefix.
type fakeRunner struct {
	calls   []runnerCall
	replies map[string]runnerResult
}

func (r *fakeRunner) reply(call runnerCall) ([]byte, error) {
	r.calls = append(r.calls, call)
	line := call.String()
	for prefix, result := range r.replies {
		if strings.HasPrefix(line, prefix) {
			return result.output, result.err
		}
	}
	return nil, nil
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	return r.reply(runnerCall{Name: name, Args: args})
}

func (r *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	return r.reply(runnerCall{Name: name, Args: args})
}

func (r *fakeRunner) lines() []string {
	out := make([]string, 0, len(r.calls))
	for _, call := range r.calls {
		out = append(out, call.String())
	}
	return out
}
