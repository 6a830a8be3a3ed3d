package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"chatbot-bootstrap/internal/app"
)

type buildOptions struct {
	Provision   provisionOptions
	Deps        depsOptions
	Normalize   normalizeOptions
	Materialize materializeOptions
	Report      string
}

func newBuildCommand() *cobra.Command {
	opts := buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run every image build step in order and record the layers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), cmd, opts)
		},
	}
	addProvisionFlags(cmd, &opts.Provision)
	addDepsFlags(cmd, &opts.Deps)
	addNormalizeFlags(cmd, &opts.Normalize)
	addMaterializeFlags(cmd, &opts.Materialize)
	cmd.Flags().StringVar(&opts.Report, "report", "", "Write the layer report to this path")
	bindFlag(cmd, "report", "report")
	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, opts buildOptions) error {
	provision := opts.Provision.request(cmd)
	service := newAppService(cmd)
	result, err := service.Build(ctx, app.BuildRequest{
		Runtime:        provision.Runtime,
		SystemPackages: provision.SystemPackages,
		Deps:           opts.Deps.request(cmd),
		Entrypoint:     opts.Normalize.request(cmd),
		Materialize:    opts.Materialize.request(cmd),
		ReportPath:     resolveString(cmd, opts.Report, "report", "report"),
	})
	for _, layer := range result.Report.Layers {
		fmt.Printf("%d\t%s\t%s\t%s\n", layer.Index, layer.Step, layer.Digest, layer.Summary)
	}
	return err
}
