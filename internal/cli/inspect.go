package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"chatbot-bootstrap/internal/app"
)

type inspectOptions struct {
	Report string
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show and verify the layers recorded in a build report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Report, "report", app.DefaultReportPath, "Build report path")
	bindFlag(cmd, "inspect_report", "report")
	return cmd
}

func runInspect(ctx context.Context, cmd *cobra.Command, opts inspectOptions) error {
	service := newAppService(cmd)
	result, err := service.Inspect(ctx, app.InspectRequest{
		ReportPath: resolveString(cmd, opts.Report, "inspect_report", "report"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("created: %s\n", result.Report.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	for _, layer := range result.Report.Layers {
		fmt.Printf("%d\t%s\t%s\t%s\n", layer.Index, layer.Step, layer.Digest, layer.Summary)
	}
	if !result.Complete {
		fmt.Println("incomplete: build stopped before the last step")
	}
	return nil
}
