package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"chatbot-bootstrap/internal/app"
)

type depsOptions struct {
	Manifest    string
	Python      string
	PipIndexURL string
}

func newDepsCommand() *cobra.Command {
	opts := depsOptions{}
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Install Python dependencies from the requirements manifest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeps(cmd.Context(), cmd, opts)
		},
	}
	addDepsFlags(cmd, &opts)
	return cmd
}

func addDepsFlags(cmd *cobra.Command, opts *depsOptions) {
	cmd.Flags().StringVar(&opts.Manifest, "manifest", app.DefaultManifest, "Requirements manifest path")
	cmd.Flags().StringVar(&opts.PipIndexURL, "pip-index-url", "", "Package index URL passed to pip")
	if cmd.Flags().Lookup("python") == nil {
		cmd.Flags().StringVar(&opts.Python, "python", app.DefaultInterpreter, "Python interpreter")
		bindFlag(cmd, "python", "python")
	}
	bindFlag(cmd, "manifest", "manifest")
	bindFlag(cmd, "pip_index_url", "pip-index-url")
}

func (o depsOptions) request(cmd *cobra.Command) app.DepsRequest {
	return app.DepsRequest{
		ManifestPath: resolveString(cmd, o.Manifest, "manifest", "manifest"),
	}
}

func runDeps(ctx context.Context, cmd *cobra.Command, opts depsOptions) error {
	service := newAppService(cmd)
	result, err := service.InstallDeps(ctx, opts.request(cmd))
	if err != nil {
		return err
	}
	fmt.Printf("declared: %d\n", result.Declared)
	for _, pkg := range result.Installed {
		fmt.Printf("%s==%s\n", pkg.Name, pkg.Version)
	}
	return nil
}
