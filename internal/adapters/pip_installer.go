package adapters

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"chatbot-bootstrap/internal/ports"
	"chatbot-bootstrap/internal/shared"
	"chatbot-bootstrap/internal/types"
)

const DefaultPython = "python"

type PipInstallerAdapter struct {
	Runner   ports.CommandRunnerPort
	Python   string
	IndexURL string
}

func NewPipInstallerAdapter(runner ports.CommandRunnerPort, python string, indexURL string) PipInstallerAdapter {
	if strings.TrimSpace(python) == "" {
		python = DefaultPython
	}
	return PipInstallerAdapter{Runner: runner, Python: python, IndexURL: indexURL}
}

func (a PipInstallerAdapter) UpgradeInstaller(ctx context.Context) error {
	if _, err := a.Runner.Run(ctx, a.Python, a.installArgs("--upgrade", "pip")...); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("pip upgrade failed").
			WithCause(err)
	}
	return nil
}

func (a PipInstallerAdapter) InstallManifest(ctx context.Context, manifestPath string) error {
	if strings.TrimSpace(manifestPath) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest path is empty")
	}
	if _, err := a.Runner.Run(ctx, a.Python, a.installArgs("-r", manifestPath)...); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("pip install failed").
			WithCause(err)
	}
	return nil
}

func (a PipInstallerAdapter) installArgs(extra ...string) []string {
	args := []string{"-m", "pip", "install", "--no-cache-dir"}
	if strings.TrimSpace(a.IndexURL) != "" {
		args = append(args, "--index-url", a.IndexURL)
	}
	return append(args, extra...)
}

type pipListEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (a PipInstallerAdapter) Installed(ctx context.Context) ([]types.InstalledPackage, error) {
	output, err := a.Runner.Output(ctx, a.Python, "-m", "pip", "list", "--format=json", "--disable-pip-version-check")
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("pip list failed").
			WithCause(err)
	}
	var entries []pipListEntry
	if err := json.Unmarshal(output, &entries); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("pip list output is invalid").
			WithCause(err)
	}
	installed := make([]types.InstalledPackage, 0, len(entries))
	for _, entry := range entries {
		name := shared.NormalizePipName(entry.Name)
		if name == "" {
			continue
		}
		installed = append(installed, types.InstalledPackage{Name: name, Version: strings.TrimSpace(entry.Version)})
	}
	sort.Slice(installed, func(i, j int) bool {
		return installed[i].Name < installed[j].Name
	})
	return installed, nil
}

var _ ports.PythonPackagePort = PipInstallerAdapter{}
