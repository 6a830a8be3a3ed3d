package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"chatbot-bootstrap/internal/core"
	"chatbot-bootstrap/internal/types"
)

// DefaultSystemPackages provides the TCP probe used by shell health checks.
var DefaultSystemPackages = []string{"netcat-openbsd"}

const DefaultInterpreter = "python"

func (s Service) ProvisionRuntime(ctx context.Context, req RuntimeRequest) (RuntimeResult, error) {
	workdir := strings.TrimSpace(req.Workdir)
	if workdir == "" {
		return RuntimeResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("working directory is required")
	}
	interpreter := strings.TrimSpace(req.Interpreter)
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	if err := s.Runtime.EnsureWorkdir(workdir); err != nil {
		return RuntimeResult{}, err
	}
	path, err := s.Runtime.LookupInterpreter(interpreter)
	if err != nil {
		return RuntimeResult{}, err
	}
	log.Ctx(ctx).Info().Str("workdir", workdir).Str("interpreter", path).Msg("runtime provisioned")
	return RuntimeResult{Workdir: workdir, Interpreter: path}, nil
}

// InstallSystemPackages updates the package index, installs the requested
// packages, drops the index data and verifies every package is installed
// at an acceptable version.
func (s Service) InstallSystemPackages(ctx context.Context, req SystemPackagesRequest) (SystemPackagesResult, error) {
	deps, err := core.ParseAptEntries(req.Packages, "system packages")
	if err != nil {
		return SystemPackagesResult{}, err
	}
	logger := log.Ctx(ctx)
	if len(deps) == 0 {
		logger.Info().Msg("no system packages requested")
		return SystemPackagesResult{}, nil
	}
	if err := s.SystemPkgs.Update(ctx); err != nil {
		return SystemPackagesResult{}, err
	}
	args := core.AptInstallArgs(deps)
	logger.Info().Strs("packages", args).Msg("installing system packages")
	if err := s.SystemPkgs.Install(ctx, args); err != nil {
		return SystemPackagesResult{}, err
	}
	if err := s.SystemPkgs.Clean(ctx); err != nil {
		return SystemPackagesResult{}, err
	}
	names := lo.Map(deps, func(dep types.Dependency, _ int) string { return dep.Name })
	installed, err := s.SystemPkgs.Installed(ctx, names)
	if err != nil {
		return SystemPackagesResult{}, err
	}
	if err := core.VerifyInstalled(types.DependencyTypeApt, deps, installed); err != nil {
		return SystemPackagesResult{}, err
	}
	logger.Info().Int("packages", len(installed)).Msg("system packages verified")
	return SystemPackagesResult{Installed: installed}, nil
}

// Provision runs the runtime and system package stages in order.
func (s Service) Provision(ctx context.Context, req ProvisionRequest) (ProvisionResult, error) {
	runtime, err := s.ProvisionRuntime(ctx, req.Runtime)
	if err != nil {
		return ProvisionResult{}, err
	}
	system, err := s.InstallSystemPackages(ctx, req.SystemPackages)
	if err != nil {
		return ProvisionResult{Runtime: runtime}, err
	}
	return ProvisionResult{Runtime: runtime, SystemPackages: system}, nil
}
