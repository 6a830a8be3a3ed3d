package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"chatbot-bootstrap/internal/ports"
	"chatbot-bootstrap/internal/types"
)

const (
	DefaultRetryInterval  = time.Second
	DefaultConnectTimeout = 2 * time.Second
	DefaultWaitTimeout    = 60 * time.Second
)

// errWaitTimeout is the context cause used when the wall-clock ceiling for
// the readiness phase expires.
var errWaitTimeout = errors.New("readiness timeout elapsed")

// SupervisorConfig is the validated runtime configuration of the
// supervisor. It is collected once at startup.
type SupervisorConfig struct {
	Endpoints      []types.Endpoint
	Interval       time.Duration
	MaxInterval    time.Duration
	Backoff        types.BackoffKind
	MaxAttempts    int
	Timeout        time.Duration
	ConnectTimeout time.Duration
	AllowUnbounded bool
	Mode           types.DelegationMode
	Command        []string
	Env            []string
}

// ValidateWait checks the options that drive the readiness phase.
func (c SupervisorConfig) ValidateWait() error {
	if c.Interval <= 0 {
		return invalidConfig("retry interval must be positive")
	}
	if c.ConnectTimeout <= 0 {
		return invalidConfig("connect timeout must be positive")
	}
	if c.MaxAttempts < 0 {
		return invalidConfig("max attempts must not be negative")
	}
	if c.Timeout < 0 {
		return invalidConfig("wait timeout must not be negative")
	}
	switch c.Backoff {
	case types.BackoffConstant:
	case types.BackoffExponential:
		if c.MaxInterval > 0 && c.MaxInterval < c.Interval {
			return invalidConfig("max interval must not be shorter than the retry interval")
		}
	default:
		return invalidConfig(fmt.Sprintf("unsupported backoff %q", c.Backoff))
	}
	if len(c.Endpoints) > 0 && c.MaxAttempts == 0 && c.Timeout == 0 && !c.AllowUnbounded {
		return invalidConfig("waiting is unbounded: set a timeout or max attempts, or allow unbounded waiting explicitly")
	}
	return nil
}

// Validate checks the full configuration including the delegation target.
func (c SupervisorConfig) Validate() error {
	if err := c.ValidateWait(); err != nil {
		return err
	}
	switch c.Mode {
	case types.DelegationModeExec, types.DelegationModeSupervise:
	default:
		return invalidConfig(fmt.Sprintf("unsupported delegation mode %q", c.Mode))
	}
	if len(c.Command) == 0 || c.Command[0] == "" {
		return invalidConfig("application command is required")
	}
	return nil
}

func invalidConfig(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
}

func (c SupervisorConfig) newBackOff(ctx context.Context) backoff.BackOff {
	var policy backoff.BackOff
	switch c.Backoff {
	case types.BackoffExponential:
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = c.Interval
		exp.MaxInterval = c.MaxInterval
		if exp.MaxInterval <= 0 {
			exp.MaxInterval = 10 * c.Interval
		}
		exp.MaxElapsedTime = 0
		exp.Reset()
		policy = exp
	default:
		policy = backoff.NewConstantBackOff(c.Interval)
	}
	if c.MaxAttempts > 0 {
		policy = backoff.WithMaxRetries(policy, uint64(c.MaxAttempts-1))
	}
	return backoff.WithContext(policy, ctx)
}

// Supervisor runs the start-time state machine: wait for every endpoint,
// then hand control to the application.
type Supervisor struct {
	Config   SupervisorConfig
	Prober   ports.ProberPort
	Launcher ports.ProcessLauncherPort
	// Signals delivers termination requests from the container runtime.
	// A nil channel never fires.
	Signals <-chan os.Signal
	// Observer, when set, is called on every state transition.
	Observer func(types.SupervisorState)
}

func NewSupervisor(config SupervisorConfig, prober ports.ProberPort, launcher ports.ProcessLauncherPort, signals <-chan os.Signal) Supervisor {
	return Supervisor{
		Config:   config,
		Prober:   prober,
		Launcher: launcher,
		Signals:  signals,
	}
}

// Run waits for readiness and delegates. It returns nil when the
// application exits 0, *types.ExitError for any other application status,
// *types.SignalError when a signal arrived before delegation and an
// errbuilder error for configuration or readiness failures.
func (s Supervisor) Run(ctx context.Context) error {
	if s.Prober == nil || s.Launcher == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("supervisor requires prober and launcher ports")
	}
	if err := s.Config.Validate(); err != nil {
		return err
	}
	assert.NotEmpty(ctx, s.Config.Command[0], "application command must be set")
	assert.NotEmpty(ctx, string(s.Config.Mode), "delegation mode must be set")
	if err := s.WaitReady(ctx); err != nil {
		return err
	}
	switch s.Config.Mode {
	case types.DelegationModeSupervise:
		return s.supervise(ctx)
	default:
		return s.exec(ctx)
	}
}

// WaitReady performs the readiness phase only. A signal received while
// waiting cancels the wait immediately.
func (s Supervisor) WaitReady(ctx context.Context) error {
	if s.Prober == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("supervisor requires a prober port")
	}
	if err := s.Config.ValidateWait(); err != nil {
		return err
	}
	s.transition(ctx, types.SupervisorStateStart)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := make(chan struct{})
	var watcher sync.WaitGroup
	watcher.Add(1)
	go func() {
		defer watcher.Done()
		select {
		case sig := <-s.Signals:
			cancel(&types.SignalError{Signal: sig})
		case <-stop:
		case <-ctx.Done():
		}
	}()

	err := s.waitAll(ctx)
	close(stop)
	watcher.Wait()

	if err == nil {
		// A signal may have landed after the last probe succeeded.
		var sigErr *types.SignalError
		if errors.As(context.Cause(ctx), &sigErr) {
			err = sigErr
		}
	}
	if err != nil {
		var sigErr *types.SignalError
		if errors.As(err, &sigErr) {
			log.Ctx(ctx).Warn().Str("signal", sigErr.Signal.String()).Msg("termination requested while waiting for dependencies")
			s.transition(ctx, types.SupervisorStateCancelled)
			return sigErr
		}
		s.transition(ctx, types.SupervisorStateFailed)
		return err
	}
	s.transition(ctx, types.SupervisorStateReady)
	return nil
}

func (s Supervisor) waitAll(ctx context.Context) error {
	s.transition(ctx, types.SupervisorStateWaiting)
	if len(s.Config.Endpoints) == 0 {
		return nil
	}
	if s.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, s.Config.Timeout, errWaitTimeout)
		defer cancel()
	}
	for _, endpoint := range s.Config.Endpoints {
		if err := s.waitEndpoint(ctx, endpoint); err != nil {
			return err
		}
	}
	return nil
}

func (s Supervisor) waitEndpoint(ctx context.Context, endpoint types.Endpoint) error {
	logger := log.Ctx(ctx).With().Str("endpoint", endpoint.Address()).Logger()
	attempt := 0
	var lastErr error
	operation := func() error {
		attempt++
		probeCtx, cancel := context.WithTimeout(ctx, s.Config.ConnectTimeout)
		defer cancel()
		lastErr = s.Prober.Probe(probeCtx, endpoint)
		return lastErr
	}
	notify := func(err error, next time.Duration) {
		logger.Warn().
			Int("attempt", attempt).
			Dur("retry_in", next).
			Err(err).
			Msgf("waiting for %s, retrying", endpoint.Address())
	}

	err := backoff.RetryNotify(operation, s.Config.newBackOff(ctx), notify)
	if err == nil {
		logger.Info().Int("attempts", attempt).Msg("dependency reachable")
		return nil
	}

	cause := context.Cause(ctx)
	var sigErr *types.SignalError
	if errors.As(cause, &sigErr) {
		return sigErr
	}
	if errors.Is(cause, errWaitTimeout) {
		logger.Error().Int("attempts", attempt).Dur("timeout", s.Config.Timeout).Msg("dependency never became reachable")
		return unreachable(endpoint, fmt.Sprintf("not reachable within %s after %d attempts", s.Config.Timeout, attempt), attempt, lastErr)
	}
	if cause != nil {
		return cause
	}
	logger.Error().Int("attempts", attempt).Msg("dependency never became reachable")
	return unreachable(endpoint, fmt.Sprintf("not reachable after %d attempts", attempt), attempt, lastErr)
}

// UnreachablePrefix starts the message of every readiness failure.
const UnreachablePrefix = "dependency unreachable"

func unreachable(endpoint types.Endpoint, detail string, attempts int, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("%s: %s (%s) %s", UnreachablePrefix, endpoint.Address(), endpoint.Source, detail)).
		WithCause(&types.UnreachableError{
			Address:  endpoint.Address(),
			Source:   endpoint.Source,
			Attempts: attempts,
			Err:      cause,
		})
}

func (s Supervisor) exec(ctx context.Context) error {
	// The readiness watcher has stopped, so a signal delivered since then is
	// still queued. Exec would replace this process and drop it.
	select {
	case sig := <-s.Signals:
		log.Ctx(ctx).Warn().Str("signal", sig.String()).Msg("termination requested before handing over to application")
		s.transition(ctx, types.SupervisorStateCancelled)
		return &types.SignalError{Signal: sig}
	default:
	}
	s.transition(ctx, types.SupervisorStateRunning)
	log.Ctx(ctx).Info().Strs("command", s.Config.Command).Msg("replacing supervisor with application")
	err := s.Launcher.Exec(s.Config.Command, s.Config.Env)
	s.transition(ctx, types.SupervisorStateFailed)
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to exec application").
		WithCause(err)
}

func (s Supervisor) supervise(ctx context.Context) error {
	handle, err := s.Launcher.Start(s.Config.Command, s.Config.Env)
	if err != nil {
		s.transition(ctx, types.SupervisorStateFailed)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to start application").
			WithCause(err)
	}
	s.transition(ctx, types.SupervisorStateRunning)
	logger := log.Ctx(ctx).With().Int("pid", handle.Pid()).Logger()
	logger.Info().Strs("command", s.Config.Command).Msg("application started")

	exited := make(chan struct{})
	exitCode := 0
	var group errgroup.Group
	group.Go(func() error {
		defer close(exited)
		code, err := handle.Wait()
		exitCode = code
		return err
	})
	group.Go(func() error {
		for {
			select {
			case sig := <-s.Signals:
				logger.Info().Str("signal", sig.String()).Msg("forwarding signal to application")
				if err := handle.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
					logger.Warn().Err(err).Str("signal", sig.String()).Msg("failed to forward signal")
				}
			case <-exited:
				return nil
			}
		}
	})
	if err := group.Wait(); err != nil {
		s.transition(ctx, types.SupervisorStateFailed)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed waiting for application").
			WithCause(err)
	}
	s.transition(ctx, types.SupervisorStateTerminated)
	logger.Info().Int("exit_code", exitCode).Msg("application exited")
	if exitCode != 0 {
		return &types.ExitError{Code: exitCode}
	}
	return nil
}

func (s Supervisor) transition(ctx context.Context, state types.SupervisorState) {
	log.Ctx(ctx).Debug().Str("state", string(state)).Msg("supervisor state")
	if s.Observer != nil {
		s.Observer(state)
	}
}
