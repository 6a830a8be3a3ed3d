package core

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
	debversion "github.com/knqyf263/go-deb-version"
	"github.com/rs/zerolog/log"

	"chatbot-bootstrap/internal/shared"
	"chatbot-bootstrap/internal/types"
)

var (
	pipNameRe = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)
	aptNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9+.-]+$`)
)

// ParseManifest parses a pip requirements manifest. Option lines (-r,
// --index-url, ...) are left to pip and produce no dependency. A malformed
// requirement fails the whole manifest.
func ParseManifest(ctx context.Context, path string, data []byte) (types.Manifest, error) {
	manifest := types.Manifest{Path: path}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0
	startLine := 0
	var pending strings.Builder

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if pending.Len() == 0 {
			startLine = lineNum
		}
		if strings.HasSuffix(line, "\\") {
			pending.WriteString(strings.TrimSuffix(line, "\\"))
			pending.WriteString(" ")
			continue
		}
		pending.WriteString(line)
		raw := pending.String()
		pending.Reset()

		dep, ok, err := parseRequirement(raw, path, startLine)
		if err != nil {
			return types.Manifest{}, err
		}
		if ok {
			manifest.Dependencies = append(manifest.Dependencies, dep)
		}
	}
	if err := scanner.Err(); err != nil {
		return types.Manifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read dependency manifest").
			WithCause(err)
	}
	if pending.Len() > 0 {
		dep, ok, err := parseRequirement(pending.String(), path, startLine)
		if err != nil {
			return types.Manifest{}, err
		}
		if ok {
			manifest.Dependencies = append(manifest.Dependencies, dep)
		}
	}

	log.Ctx(ctx).Debug().Int("deps", len(manifest.Dependencies)).Str("manifest", path).Msg("manifest parsed")
	return manifest, nil
}

// parseRequirement handles a single logical requirements line. The bool
// result is false for blank, comment and option lines.
func parseRequirement(raw string, path string, line int) (types.Dependency, bool, error) {
	text := strings.TrimSpace(raw)
	if idx := strings.Index(text, " #"); idx >= 0 {
		text = strings.TrimSpace(text[:idx])
	}
	if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "-") {
		return types.Dependency{}, false, nil
	}
	marker := ""
	if idx := strings.Index(text, ";"); idx >= 0 {
		marker = strings.TrimSpace(text[idx+1:])
		text = strings.TrimSpace(text[:idx])
	}
	source := fmt.Sprintf("%s:%d", path, line)

	// Direct references carry no version constraint.
	if idx := strings.Index(text, " @ "); idx >= 0 {
		name := stripExtras(strings.TrimSpace(text[:idx]))
		if !pipNameRe.MatchString(name) {
			return types.Dependency{}, false, invalidRequirement(raw, source)
		}
		return types.Dependency{
			Name:   shared.NormalizePipName(name),
			Type:   types.DependencyTypePip,
			Marker: marker,
			Line:   line,
		}, true, nil
	}

	nameEnd := strings.IndexAny(text, "[<>=!~ (")
	name := text
	spec := ""
	if nameEnd >= 0 {
		name = text[:nameEnd]
		spec = stripExtras(text[nameEnd:])
		spec = strings.Trim(strings.TrimSpace(spec), "()")
	}
	if !pipNameRe.MatchString(name) {
		return types.Dependency{}, false, invalidRequirement(raw, source)
	}
	normalized := shared.NormalizePipName(name)
	dep := types.Dependency{Name: normalized, Type: types.DependencyTypePip, Marker: marker, Line: line}
	if strings.TrimSpace(spec) == "" {
		return dep, true, nil
	}
	if _, err := pep440.NewSpecifiers(spec); err != nil {
		return types.Dependency{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid version specifier for %s at %s", normalized, source)).
			WithCause(err)
	}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		constraint, err := ParseConstraint(normalized+part, source)
		if err != nil {
			return types.Dependency{}, false, err
		}
		dep.Constraints = append(dep.Constraints, constraint)
	}
	return dep, true, nil
}

// stripExtras removes a leading "[extra,...]" group.
func stripExtras(value string) string {
	value = strings.TrimSpace(value)
	if open := strings.Index(value, "["); open >= 0 {
		if closing := strings.Index(value, "]"); closing > open {
			return strings.TrimSpace(value[:open] + value[closing+1:])
		}
	}
	return value
}

func invalidRequirement(raw string, source string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid requirement %q at %s", strings.TrimSpace(raw), source))
}

// ParseAptEntries parses system package entries such as "netcat-openbsd",
// "curl=7.88.1-10" or "ca-certificates>=20230311".
func ParseAptEntries(entries []string, source string) ([]types.Dependency, error) {
	var deps []types.Dependency
	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		constraint, err := ParseConstraint(entry, source)
		if err != nil {
			return nil, err
		}
		if !aptNameRe.MatchString(constraint.Name) {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid system package name: %s", constraint.Name))
		}
		dep := types.Dependency{
			Name: constraint.Name,
			Type: types.DependencyTypeApt,
		}
		if constraint.Op != types.ConstraintOpNone {
			if constraint.Op == types.ConstraintOpCompat || constraint.Op == types.ConstraintOpArbitrary {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("unsupported operator %s for system package %s", constraint.Op, constraint.Name))
			}
			if _, err := debversion.NewVersion(constraint.Version); err != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("invalid version for system package %s", constraint.Name)).
					WithCause(err)
			}
			dep.Constraints = []types.Constraint{constraint}
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// AptInstallArgs renders dependencies as apt-get install arguments. Only
// exact pins are passed to apt; range constraints are verified afterwards.
func AptInstallArgs(deps []types.Dependency) []string {
	args := make([]string, 0, len(deps))
	for _, dep := range deps {
		arg := dep.Name
		for _, constraint := range dep.Constraints {
			if constraint.Op == types.ConstraintOpEq || constraint.Op == types.ConstraintOpEq2 {
				arg = fmt.Sprintf("%s=%s", dep.Name, constraint.Version)
			}
		}
		args = append(args, arg)
	}
	return args
}
