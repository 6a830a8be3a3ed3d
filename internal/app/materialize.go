package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

// Materialize copies the application source into the image root. Paths in
// Preserve are never overwritten.
func (s Service) Materialize(ctx context.Context, req MaterializeRequest) (MaterializeResult, error) {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "."
	}
	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		return MaterializeResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("destination directory is required")
	}
	summary, err := s.SourceTree.Copy(ctx, source, destination, req.Preserve)
	if err != nil {
		return MaterializeResult{}, err
	}
	log.Ctx(ctx).Info().
		Str("source", source).
		Str("destination", destination).
		Int("files", summary.Files).
		Int("skipped", summary.Skipped).
		Str("digest", summary.Digest).
		Msg("source materialized")
	return MaterializeResult{Summary: summary}, nil
}
