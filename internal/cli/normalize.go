package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"chatbot-bootstrap/internal/app"
)

type normalizeOptions struct {
	Entrypoint string
	Source     string
}

func newNormalizeCommand() *cobra.Command {
	opts := normalizeOptions{}
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize entrypoint line endings and make it executable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNormalize(cmd.Context(), cmd, opts)
		},
	}
	addNormalizeFlags(cmd, &opts)
	return cmd
}

func addNormalizeFlags(cmd *cobra.Command, opts *normalizeOptions) {
	cmd.Flags().StringVar(&opts.Entrypoint, "entrypoint", app.DefaultEntrypoint, "Installed entrypoint script path")
	cmd.Flags().StringVar(&opts.Source, "entrypoint-source", "", "Copy the entrypoint from this path first")
	bindFlag(cmd, "entrypoint", "entrypoint")
	bindFlag(cmd, "entrypoint_source", "entrypoint-source")
}

func (o normalizeOptions) request(cmd *cobra.Command) app.NormalizeRequest {
	return app.NormalizeRequest{
		Path:     resolveString(cmd, o.Entrypoint, "entrypoint", "entrypoint"),
		CopyFrom: resolveString(cmd, o.Source, "entrypoint_source", "entrypoint-source"),
	}
}

func runNormalize(ctx context.Context, cmd *cobra.Command, opts normalizeOptions) error {
	service := newAppService(cmd)
	result, err := service.Normalize(ctx, opts.request(cmd))
	if err != nil {
		return err
	}
	fmt.Printf("entrypoint: %s (mode %s, changed %t, crlf %d)\n", result.Path, result.Mode, result.Changed, result.CRLF)
	return nil
}
