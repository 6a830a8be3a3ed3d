package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"chatbot-bootstrap/internal/core"
	"chatbot-bootstrap/internal/types"
)

const DefaultReportPath = "bootstrap.report.yaml"

// Inspect reads a build report and verifies its layer chain.
func (s Service) Inspect(ctx context.Context, req InspectRequest) (InspectResult, error) {
	path := strings.TrimSpace(req.ReportPath)
	if path == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("report path is required")
	}
	report, err := s.Reports.ReadReport(path)
	if err != nil {
		return InspectResult{}, err
	}
	if err := core.VerifyLayerChain(report); err != nil {
		return InspectResult{}, err
	}
	complete := len(report.Layers) == len(types.BuildSteps())
	log.Ctx(ctx).Debug().Str("report", path).Int("layers", len(report.Layers)).Bool("complete", complete).Msg("build report verified")
	return InspectResult{Report: report, Complete: complete}, nil
}
