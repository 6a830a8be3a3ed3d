package app

import (
	"context"
	"fmt"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"chatbot-bootstrap/internal/core"
	"chatbot-bootstrap/internal/types"
)

// Build runs every build step in order and records one layer per step.
// The first failing step aborts the build; layers recorded so far are
// returned with the error and still written to the report path.
func (s Service) Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	report := types.BuildReport{CreatedAt: s.Clock().UTC()}
	logger := log.Ctx(ctx)

	entrypoint := strings.TrimSpace(req.Entrypoint.Path)
	if entrypoint == "" {
		entrypoint = DefaultEntrypoint
	}
	for _, step := range types.BuildSteps() {
		content, summary, err := s.runStep(ctx, step, req, entrypoint)
		if err != nil {
			logger.Error().Str("step", string(step)).Err(err).Msg("build step failed")
			s.writePartialReport(ctx, req.ReportPath, report)
			return BuildResult{Report: report}, err
		}
		layer := core.AppendLayer(&report, step, content, summary)
		assert.NotEmpty(ctx, layer.Digest, "layer digest must be set")
		logger.Info().Int("layer", layer.Index).Str("step", string(step)).Str("digest", layer.Digest).Msg("layer recorded")
	}

	if path := strings.TrimSpace(req.ReportPath); path != "" {
		if err := s.Reports.WriteReport(path, report); err != nil {
			return BuildResult{Report: report}, err
		}
		logger.Debug().Str("report", path).Msg("build report written")
	}
	return BuildResult{Report: report}, nil
}

func (s Service) writePartialReport(ctx context.Context, path string, report types.BuildReport) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}
	if err := s.Reports.WriteReport(path, report); err != nil {
		log.Ctx(ctx).Warn().Str("report", path).Err(err).Msg("failed to write partial build report")
	}
}

func (s Service) runStep(ctx context.Context, step types.BuildStep, req BuildRequest, entrypoint string) ([]byte, string, error) {
	switch step {
	case types.BuildStepRuntime:
		result, err := s.ProvisionRuntime(ctx, req.Runtime)
		if err != nil {
			return nil, "", err
		}
		content := fmt.Sprintf("workdir=%s\ninterpreter=%s\n", result.Workdir, result.Interpreter)
		return []byte(content), fmt.Sprintf("workdir %s, interpreter %s", result.Workdir, result.Interpreter), nil
	case types.BuildStepSystem:
		result, err := s.InstallSystemPackages(ctx, req.SystemPackages)
		if err != nil {
			return nil, "", err
		}
		return packageContent(result.Installed, "="), fmt.Sprintf("%d system packages", len(result.Installed)), nil
	case types.BuildStepDeps:
		result, err := s.InstallDeps(ctx, req.Deps)
		if err != nil {
			return nil, "", err
		}
		return packageContent(result.Installed, "=="), fmt.Sprintf("%d declared, %d installed", result.Declared, len(result.Installed)), nil
	case types.BuildStepEntrypoint:
		normalize := req.Entrypoint
		normalize.Path = entrypoint
		result, err := s.Normalize(ctx, normalize)
		if err != nil {
			return nil, "", err
		}
		content := append([]byte(fmt.Sprintf("mode=%o\n", result.Mode)), result.Content...)
		return content, fmt.Sprintf("%s normalized, %d CRLF lines fixed", result.Path, result.CRLF), nil
	case types.BuildStepMaterialize:
		materialize := req.Materialize
		materialize.Preserve = append(append([]string(nil), materialize.Preserve...), entrypoint)
		result, err := s.Materialize(ctx, materialize)
		if err != nil {
			return nil, "", err
		}
		return []byte(result.Summary.Digest), fmt.Sprintf("%d files, %d skipped", result.Summary.Files, result.Summary.Skipped), nil
	default:
		return nil, "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("unknown build step %q", step))
	}
}

func packageContent(installed []types.InstalledPackage, sep string) []byte {
	var b strings.Builder
	for _, pkg := range installed {
		b.WriteString(pkg.Name)
		b.WriteString(sep)
		b.WriteString(pkg.Version)
		b.WriteString("\n")
	}
	return []byte(b.String())
}
