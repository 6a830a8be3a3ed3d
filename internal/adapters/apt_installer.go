package adapters

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"chatbot-bootstrap/internal/ports"
	"chatbot-bootstrap/internal/types"
)

const DefaultAptListsDir = "/var/lib/apt/lists"

type AptInstallerAdapter struct {
	Runner   ports.CommandRunnerPort
	ListsDir string
}

func NewAptInstallerAdapter(runner ports.CommandRunnerPort, listsDir string) AptInstallerAdapter {
	if strings.TrimSpace(listsDir) == "" {
		listsDir = DefaultAptListsDir
	}
	return AptInstallerAdapter{Runner: runner, ListsDir: listsDir}
}

func (a AptInstallerAdapter) Update(ctx context.Context) error {
	if _, err := a.Runner.Run(ctx, "apt-get", "update"); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("apt-get update failed").
			WithCause(err)
	}
	return nil
}

func (a AptInstallerAdapter) Install(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	cmdArgs := append([]string{"install", "-y", "--no-install-recommends"}, args...)
	if _, err := a.Runner.Run(ctx, "apt-get", cmdArgs...); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("apt-get install failed").
			WithCause(err)
	}
	return nil
}

// Installed queries dpkg for the given packages. Packages that are unknown
// or not fully installed are omitted from the result.
func (a AptInstallerAdapter) Installed(ctx context.Context, names []string) ([]types.InstalledPackage, error) {
	if len(names) == 0 {
		return nil, nil
	}
	args := append([]string{"-W", "--showformat=${Package}\\t${Version}\\t${db:Status-Abbrev}\\n"}, names...)
	output, err := a.Runner.Output(ctx, "dpkg-query", args...)
	if err != nil {
		// dpkg-query exits 1 when some packages are unknown but still
		// reports the ones it found.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("dpkg-query failed").
				WithCause(err)
		}
	}
	return parseDpkgQuery(output), nil
}

func parseDpkgQuery(output []byte) []types.InstalledPackage {
	var installed []types.InstalledPackage
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 3 {
			continue
		}
		name := strings.TrimSpace(fields[0])
		version := strings.TrimSpace(fields[1])
		if name == "" || version == "" || !strings.HasPrefix(strings.TrimSpace(fields[2]), "ii") {
			continue
		}
		// Multi-arch packages report "name:arch".
		if base, _, ok := strings.Cut(name, ":"); ok {
			name = base
		}
		installed = append(installed, types.InstalledPackage{Name: name, Version: version})
	}
	sort.Slice(installed, func(i, j int) bool {
		return installed[i].Name < installed[j].Name
	})
	return installed
}

// Clean drops the package cache and index lists. A missing lists
// directory is not an error.
func (a AptInstallerAdapter) Clean(ctx context.Context) error {
	if _, err := a.Runner.Run(ctx, "apt-get", "clean"); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("apt-get clean failed").
			WithCause(err)
	}
	entries, err := os.ReadDir(a.ListsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read apt lists directory").
			WithCause(err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(a.ListsDir, entry.Name())); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to remove apt lists").
				WithCause(err)
		}
	}
	return nil
}

var _ ports.SystemPackagePort = AptInstallerAdapter{}
