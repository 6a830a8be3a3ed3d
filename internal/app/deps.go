package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"chatbot-bootstrap/internal/core"
	"chatbot-bootstrap/internal/types"
)

const DefaultManifest = "requirements.txt"

// InstallDeps parses the manifest before touching pip so a malformed entry
// fails fast, then upgrades pip, installs the manifest and verifies the
// installed set against every declared constraint.
func (s Service) InstallDeps(ctx context.Context, req DepsRequest) (DepsResult, error) {
	path := strings.TrimSpace(req.ManifestPath)
	if path == "" {
		path = DefaultManifest
	}
	data, err := s.ReadFile(path)
	if err != nil {
		return DepsResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("dependency manifest not found: %s", path)).
			WithCause(err)
	}
	manifest, err := core.ParseManifest(ctx, path, data)
	if err != nil {
		return DepsResult{}, err
	}
	logger := log.Ctx(ctx)
	logger.Info().Str("manifest", path).Int("declared", len(manifest.Dependencies)).Msg("installing dependencies")

	if err := s.PythonPkgs.UpgradeInstaller(ctx); err != nil {
		return DepsResult{}, err
	}
	if err := s.PythonPkgs.InstallManifest(ctx, path); err != nil {
		return DepsResult{}, err
	}
	if len(manifest.Dependencies) == 0 {
		logger.Info().Msg("manifest declares no dependencies")
		return DepsResult{}, nil
	}
	installed, err := s.PythonPkgs.Installed(ctx)
	if err != nil {
		return DepsResult{}, err
	}
	if err := core.VerifyInstalled(types.DependencyTypePip, manifest.Dependencies, installed); err != nil {
		return DepsResult{}, err
	}
	logger.Info().Int("installed", len(installed)).Msg("dependencies verified")
	return DepsResult{Declared: len(manifest.Dependencies), Installed: installed}, nil
}
