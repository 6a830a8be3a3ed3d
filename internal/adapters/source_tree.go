package adapters

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/moby/patternmatcher"
	"github.com/moby/patternmatcher/ignorefile"
	"github.com/opencontainers/go-digest"
	"github.com/rs/zerolog/log"

	"chatbot-bootstrap/internal/ports"
	"chatbot-bootstrap/internal/types"
)

const ignoreFileName = ".dockerignore"

type SourceTreeAdapter struct{}

func NewSourceTreeAdapter() SourceTreeAdapter {
	return SourceTreeAdapter{}
}

// Copy mirrors src into dst. Paths matched by src/.dockerignore are
// skipped, as is dst itself when it lies inside src. Destination paths
// listed in preserve are left untouched when they already exist. The
// returned digest covers every copied relative path and its content in
// walk order.
func (a SourceTreeAdapter) Copy(ctx context.Context, src string, dst string, preserve []string) (types.TreeSummary, error) {
	srcAbs, err := filepath.Abs(src)
	if err != nil {
		return types.TreeSummary{}, invalidPath("source", src, err)
	}
	dstAbs, err := filepath.Abs(dst)
	if err != nil {
		return types.TreeSummary{}, invalidPath("destination", dst, err)
	}
	info, err := os.Stat(srcAbs)
	if err != nil || !info.IsDir() {
		builder := errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("source tree not found: %s", src))
		if err != nil {
			builder = builder.WithCause(err)
		}
		return types.TreeSummary{}, builder
	}
	if srcAbs == dstAbs {
		return types.TreeSummary{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("source and destination are the same directory")
	}
	matcher, err := loadIgnoreMatcher(srcAbs)
	if err != nil {
		return types.TreeSummary{}, err
	}
	kept := map[string]bool{}
	for _, path := range preserve {
		if strings.TrimSpace(path) == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return types.TreeSummary{}, invalidPath("preserved", path, err)
		}
		kept[abs] = true
	}
	if err := os.MkdirAll(dstAbs, 0o755); err != nil {
		return types.TreeSummary{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create destination directory").
			WithCause(err)
	}

	summary := types.TreeSummary{}
	digester := digest.Canonical.Digester()
	logger := log.Ctx(ctx)
	walkErr := filepath.WalkDir(srcAbs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(srcAbs, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() && path == dstAbs {
			return filepath.SkipDir
		}
		slashed := filepath.ToSlash(rel)
		if matcher != nil && rel != ignoreFileName {
			ignored, err := matcher.MatchesOrParentMatches(slashed)
			if err != nil {
				return err
			}
			if ignored {
				summary.Skipped++
				if d.IsDir() && !matcher.Exclusions() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		target := filepath.Join(dstAbs, rel)
		if kept[target] {
			if _, err := os.Lstat(target); err == nil {
				logger.Debug().Str("path", target).Msg("preserving existing file")
				summary.Skipped++
				return nil
			}
		}
		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				return err
			}
			fmt.Fprintf(digester.Hash(), "%s\x00link:%s\x00", slashed, link)
			summary.Files++
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			fmt.Fprintf(digester.Hash(), "%s\x00", slashed)
			if err := copyTreeFile(path, target, digester.Hash()); err != nil {
				return err
			}
			summary.Files++
			return nil
		default:
			logger.Debug().Str("path", path).Msg("skipping special file")
			summary.Skipped++
			return nil
		}
	})
	if walkErr != nil {
		return types.TreeSummary{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to copy source tree").
			WithCause(walkErr)
	}
	summary.Digest = digester.Digest().String()
	return summary, nil
}

func loadIgnoreMatcher(root string) (*patternmatcher.PatternMatcher, error) {
	file, err := os.Open(filepath.Join(root, ignoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open ignore file").
			WithCause(err)
	}
	defer file.Close()
	patterns, err := ignorefile.ReadAll(file)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read ignore file").
			WithCause(err)
	}
	if len(patterns) == 0 {
		return nil, nil
	}
	matcher, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid ignore pattern").
			WithCause(err)
	}
	return matcher, nil
}

func copyTreeFile(src string, dst string, hash io.Writer) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(io.MultiWriter(out, hash), in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, info.Mode().Perm())
}

func invalidPath(kind string, path string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid %s path: %s", kind, path)).
		WithCause(err)
}

var _ ports.SourceTreePort = SourceTreeAdapter{}
