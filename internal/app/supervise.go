package app

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"chatbot-bootstrap/internal/core"
	"chatbot-bootstrap/internal/types"
)

// DefaultEnvFile is the dotenv file the application itself loads at start.
const DefaultEnvFile = ".env.dev"

// ResolveEndpoints loads the optional env file and collects the endpoint
// list from literal specs and environment references. It runs once, before
// the supervisor starts.
func (s Service) ResolveEndpoints(ctx context.Context, req EndpointsRequest) ([]types.Endpoint, error) {
	if path := strings.TrimSpace(req.EnvFile); path != "" {
		if err := s.EnvFiles.Load(path); err != nil {
			if req.EnvFileRequired || errbuilder.CodeOf(err) != errbuilder.CodeNotFound {
				return nil, err
			}
			log.Ctx(ctx).Warn().Str("env_file", path).Msg("env file not found, using process environment")
		}
	}
	literal, err := core.ParseEndpointList(req.WaitFor)
	if err != nil {
		return nil, err
	}
	fromEnv, err := core.ResolveEnvEndpoints(req.WaitForEnv, s.LookupEnv)
	if err != nil {
		return nil, err
	}
	return core.UniqueEndpoints(append(literal, fromEnv...)), nil
}

// Wait runs the readiness phase only.
func (s Service) Wait(ctx context.Context, req WaitRequest) error {
	sup, err := s.supervisor(ctx, req.Endpoints, req.Config, req.Signals)
	if err != nil {
		return err
	}
	return sup.WaitReady(ctx)
}

// Run waits for every dependency and hands control to the application.
func (s Service) Run(ctx context.Context, req RunRequest) error {
	sup, err := s.supervisor(ctx, req.Endpoints, req.Config, req.Signals)
	if err != nil {
		return err
	}
	if sup.Config.Env == nil {
		sup.Config.Env = s.Environ()
	}
	err = sup.Run(ctx)
	var exitErr *types.ExitError
	if errors.As(err, &exitErr) {
		log.Ctx(ctx).Info().Int("exit_code", exitErr.Code).Msg("application exited with non-zero status")
	}
	return err
}

func (s Service) supervisor(ctx context.Context, endpoints EndpointsRequest, config core.SupervisorConfig, signals <-chan os.Signal) (core.Supervisor, error) {
	resolved, err := s.ResolveEndpoints(ctx, endpoints)
	if err != nil {
		return core.Supervisor{}, err
	}
	config.Endpoints = core.UniqueEndpoints(append(config.Endpoints, resolved...))
	addresses := make([]string, 0, len(config.Endpoints))
	for _, endpoint := range config.Endpoints {
		addresses = append(addresses, endpoint.Address())
	}
	log.Ctx(ctx).Info().Strs("endpoints", addresses).Str("mode", string(config.Mode)).Msg("supervisor configured")
	return core.NewSupervisor(config, s.Prober, s.Launcher, signals), nil
}
