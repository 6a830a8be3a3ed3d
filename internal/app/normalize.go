package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"chatbot-bootstrap/internal/core"
)

const DefaultEntrypoint = "/usr/local/bin/entrypoint.sh"

// Normalize rewrites the entrypoint with canonical line endings and makes
// it executable. The script is only rewritten when its bytes change.
func (s Service) Normalize(ctx context.Context, req NormalizeRequest) (NormalizeResult, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		path = DefaultEntrypoint
	}
	logger := log.Ctx(ctx).With().Str("entrypoint", path).Logger()
	if from := strings.TrimSpace(req.CopyFrom); from != "" {
		if err := s.Scripts.Copy(from, path); err != nil {
			return NormalizeResult{}, err
		}
		logger.Debug().Str("source", from).Msg("entrypoint copied")
	}
	data, mode, err := s.Scripts.Read(path)
	if err != nil {
		return NormalizeResult{}, err
	}
	normalized := core.NormalizeLineEndings(data)
	if err := s.Scripts.CheckSyntax(path, normalized); err != nil {
		return NormalizeResult{}, err
	}
	if !core.HasShebang(normalized) {
		logger.Warn().Msg("entrypoint has no shebang line")
	}
	crlf, _ := core.LineEndingStats(data)
	changed := string(normalized) != string(data)
	executable := mode | 0o111
	if changed || executable != mode {
		if err := s.Scripts.Write(path, normalized, executable); err != nil {
			return NormalizeResult{}, err
		}
	}
	if !core.HasCanonicalLineEndings(normalized) {
		return NormalizeResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("entrypoint still contains carriage returns after normalization")
	}
	logger.Info().Bool("changed", changed).Int("crlf", crlf).Msg("entrypoint normalized")
	return NormalizeResult{Path: path, Changed: changed, CRLF: crlf, Mode: executable, Content: normalized}, nil
}
