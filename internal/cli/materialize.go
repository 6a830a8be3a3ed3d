package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"chatbot-bootstrap/internal/app"
)

type materializeOptions struct {
	Source      string
	Destination string
	Preserve    []string
}

func newMaterializeCommand() *cobra.Command {
	opts := materializeOptions{}
	cmd := &cobra.Command{
		Use:   "materialize",
		Short: "Copy the application source tree into the working directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMaterialize(cmd.Context(), cmd, opts)
		},
	}
	addMaterializeFlags(cmd, &opts)
	return cmd
}

func addMaterializeFlags(cmd *cobra.Command, opts *materializeOptions) {
	cmd.Flags().StringVar(&opts.Source, "source", ".", "Build context directory")
	cmd.Flags().StringVar(&opts.Destination, "dest", "/app", "Destination directory")
	cmd.Flags().StringSliceVar(&opts.Preserve, "preserve", nil, "Destination paths left untouched by the copy")
	bindFlag(cmd, "source", "source")
	bindFlag(cmd, "dest", "dest")
	bindFlag(cmd, "preserve", "preserve")
}

func (o materializeOptions) request(cmd *cobra.Command) app.MaterializeRequest {
	return app.MaterializeRequest{
		Source:      resolveString(cmd, o.Source, "source", "source"),
		Destination: resolveString(cmd, o.Destination, "dest", "dest"),
		Preserve:    resolveStrings(cmd, o.Preserve, "preserve", "preserve"),
	}
}

func runMaterialize(ctx context.Context, cmd *cobra.Command, opts materializeOptions) error {
	service := newAppService(cmd)
	result, err := service.Materialize(ctx, opts.request(cmd))
	if err != nil {
		return err
	}
	fmt.Printf("files: %d\nskipped: %d\ndigest: %s\n", result.Summary.Files, result.Summary.Skipped, result.Summary.Digest)
	return nil
}
