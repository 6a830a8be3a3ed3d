package cli

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chatbot-bootstrap/internal/app"
	"chatbot-bootstrap/internal/core"
	"chatbot-bootstrap/internal/types"
)

type waitOptions struct {
	WaitFor         []string
	WaitForEnv      []string
	EnvFile         string
	EnvFileRequired bool
	Interval        time.Duration
	MaxInterval     time.Duration
	Backoff         string
	MaxAttempts     int
	Timeout         time.Duration
	ConnectTimeout  time.Duration
	AllowUnbounded  bool
}

type runOptions struct {
	Wait waitOptions
	Mode string
}

func newWaitCommand() *cobra.Command {
	opts := waitOptions{}
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Block until every dependency endpoint accepts connections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWait(cmd.Context(), cmd, opts)
		},
	}
	addWaitFlags(cmd, &opts)
	return cmd
}

func newRunCommand() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Wait for dependencies, then start the application",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), cmd, opts, args)
		},
	}
	cmd.Flags().SetInterspersed(false)
	addWaitFlags(cmd, &opts.Wait)
	cmd.Flags().StringVar(&opts.Mode, "mode", string(types.DelegationModeExec), "Delegation mode (exec or supervise)")
	bindFlag(cmd, "mode", "mode")
	return cmd
}

func addWaitFlags(cmd *cobra.Command, opts *waitOptions) {
	cmd.Flags().StringSliceVar(&opts.WaitFor, "wait-for", nil, "Endpoint to wait for (host:port or URL)")
	cmd.Flags().StringSliceVar(&opts.WaitForEnv, "wait-for-env", nil, "Environment variable holding an endpoint URL")
	cmd.Flags().StringVar(&opts.EnvFile, "env-file", app.DefaultEnvFile, "Dotenv file loaded before resolving endpoints")
	cmd.Flags().BoolVar(&opts.EnvFileRequired, "env-file-required", false, "Fail when the env file is missing")
	cmd.Flags().DurationVar(&opts.Interval, "interval", core.DefaultRetryInterval, "Delay between connection attempts")
	cmd.Flags().DurationVar(&opts.MaxInterval, "max-interval", 0, "Upper bound for exponential backoff delays")
	cmd.Flags().StringVar(&opts.Backoff, "backoff", string(types.BackoffConstant), "Retry policy (constant or exponential)")
	cmd.Flags().IntVar(&opts.MaxAttempts, "max-attempts", 0, "Attempts per endpoint before giving up (0 for no limit)")
	cmd.Flags().DurationVar(&opts.Timeout, "wait-timeout", core.DefaultWaitTimeout, "Overall readiness deadline (0 for none)")
	cmd.Flags().DurationVar(&opts.ConnectTimeout, "connect-timeout", core.DefaultConnectTimeout, "Timeout for a single connection attempt")
	cmd.Flags().BoolVar(&opts.AllowUnbounded, "allow-unbounded", false, "Permit waiting with neither a timeout nor an attempt limit")
	bindFlag(cmd, "wait_for", "wait-for")
	bindFlag(cmd, "wait_for_env", "wait-for-env")
	bindFlag(cmd, "env_file", "env-file")
	bindFlag(cmd, "env_file_required", "env-file-required")
	bindFlag(cmd, "interval", "interval")
	bindFlag(cmd, "max_interval", "max-interval")
	bindFlag(cmd, "backoff", "backoff")
	bindFlag(cmd, "max_attempts", "max-attempts")
	bindFlag(cmd, "wait_timeout", "wait-timeout")
	bindFlag(cmd, "connect_timeout", "connect-timeout")
	bindFlag(cmd, "allow_unbounded", "allow-unbounded")
}

func (o waitOptions) endpoints(cmd *cobra.Command) app.EndpointsRequest {
	return app.EndpointsRequest{
		WaitFor:         resolveStrings(cmd, o.WaitFor, "wait_for", "wait-for"),
		WaitForEnv:      resolveStrings(cmd, o.WaitForEnv, "wait_for_env", "wait-for-env"),
		EnvFile:         resolveString(cmd, o.EnvFile, "env_file", "env-file"),
		EnvFileRequired: resolveBool(cmd, o.EnvFileRequired, "env_file_required", "env-file-required"),
	}
}

func (o waitOptions) config(cmd *cobra.Command) core.SupervisorConfig {
	return core.SupervisorConfig{
		Interval:       resolveDuration(cmd, o.Interval, "interval", "interval"),
		MaxInterval:    resolveDuration(cmd, o.MaxInterval, "max_interval", "max-interval"),
		Backoff:        types.BackoffKind(resolveString(cmd, o.Backoff, "backoff", "backoff")),
		MaxAttempts:    resolveInt(cmd, o.MaxAttempts, "max_attempts", "max-attempts"),
		Timeout:        resolveDuration(cmd, o.Timeout, "wait_timeout", "wait-timeout"),
		ConnectTimeout: resolveDuration(cmd, o.ConnectTimeout, "connect_timeout", "connect-timeout"),
		AllowUnbounded: resolveBool(cmd, o.AllowUnbounded, "allow_unbounded", "allow-unbounded"),
	}
}

func runWait(ctx context.Context, cmd *cobra.Command, opts waitOptions) error {
	signals, stop := notifySignals()
	defer stop()
	service := newAppService(cmd)
	return service.Wait(ctx, app.WaitRequest{
		Endpoints: opts.endpoints(cmd),
		Config:    opts.config(cmd),
		Signals:   signals,
	})
}

func runRun(ctx context.Context, cmd *cobra.Command, opts runOptions, args []string) error {
	config := opts.Wait.config(cmd)
	config.Mode = types.DelegationMode(resolveString(cmd, opts.Mode, "mode", "mode"))
	config.Command = commandArgs(args)

	signals, stop := notifySignals()
	defer stop()
	service := newAppService(cmd)
	return service.Run(ctx, app.RunRequest{
		Endpoints: opts.Wait.endpoints(cmd),
		Config:    config,
		Signals:   signals,
	})
}

// commandArgs prefers positional arguments and falls back to the configured
// command list.
func commandArgs(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return lo.Filter(viper.GetStringSlice("command"), func(item string, _ int) bool {
		return item != ""
	})
}

func notifySignals() (<-chan os.Signal, func()) {
	signals := make(chan os.Signal, 4)
	signal.Notify(signals, forwardedSignals()...)
	return signals, func() { signal.Stop(signals) }
}
