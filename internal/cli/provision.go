package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"chatbot-bootstrap/internal/app"
)

type provisionOptions struct {
	Workdir        string
	Python         string
	SystemPackages []string
	AptListsDir    string
}

func newProvisionCommand() *cobra.Command {
	opts := provisionOptions{}
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Prepare the working directory and install system packages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProvision(cmd.Context(), cmd, opts)
		},
	}
	addProvisionFlags(cmd, &opts)
	return cmd
}

func addProvisionFlags(cmd *cobra.Command, opts *provisionOptions) {
	cmd.Flags().StringVar(&opts.Workdir, "workdir", "/app", "Application working directory")
	cmd.Flags().StringVar(&opts.Python, "python", app.DefaultInterpreter, "Python interpreter")
	cmd.Flags().StringSliceVar(&opts.SystemPackages, "system-package", app.DefaultSystemPackages, "System packages to install (name or name=version)")
	cmd.Flags().StringVar(&opts.AptListsDir, "apt-lists-dir", "", "Package index directory removed after install")
	bindFlag(cmd, "workdir", "workdir")
	bindFlag(cmd, "python", "python")
	bindFlag(cmd, "system_packages", "system-package")
	bindFlag(cmd, "apt_lists_dir", "apt-lists-dir")
}

func (o provisionOptions) request(cmd *cobra.Command) app.ProvisionRequest {
	return app.ProvisionRequest{
		Runtime: app.RuntimeRequest{
			Workdir:     resolveString(cmd, o.Workdir, "workdir", "workdir"),
			Interpreter: resolveString(cmd, o.Python, "python", "python"),
		},
		SystemPackages: app.SystemPackagesRequest{
			Packages: resolveStrings(cmd, o.SystemPackages, "system_packages", "system-package"),
		},
	}
}

func runProvision(ctx context.Context, cmd *cobra.Command, opts provisionOptions) error {
	service := newAppService(cmd)
	result, err := service.Provision(ctx, opts.request(cmd))
	if err != nil {
		return err
	}
	fmt.Printf("workdir: %s\n", result.Runtime.Workdir)
	fmt.Printf("interpreter: %s\n", result.Runtime.Interpreter)
	for _, pkg := range result.SystemPackages.Installed {
		fmt.Printf("%s=%s\n", pkg.Name, pkg.Version)
	}
	return nil
}
