package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
	debversion "github.com/knqyf263/go-deb-version"

	"chatbot-bootstrap/internal/shared"
	"chatbot-bootstrap/internal/types"
)

// preparedConstraint is a pre-parsed version constraint ready for
// repeated comparison. For APT it holds a parsed Debian version; for
// Pip it holds a PEP 440 specifier set.
type preparedConstraint struct {
	op  types.ConstraintOp
	deb debversion.Version
	pep pep440.Specifiers
}

// versionCache memoizes parsed version objects to avoid repeated parsing
// during constraint evaluation and sorting.
type versionCache struct {
	depType types.DependencyType
	deb     map[string]debversion.Version
	pep     map[string]pep440.Version
	spec    map[string]pep440.Specifiers
}

// newVersionCache creates an empty cache for the given dependency type.
func newVersionCache(depType types.DependencyType) *versionCache {
	return &versionCache{
		depType: depType,
		deb:     map[string]debversion.Version{},
		pep:     map[string]pep440.Version{},
		spec:    map[string]pep440.Specifiers{},
	}
}

// debVersion returns a parsed Debian version, caching the result.
func (c *versionCache) debVersion(value string) (debversion.Version, error) {
	if parsed, ok := c.deb[value]; ok {
		return parsed, nil
	}
	parsed, err := debversion.NewVersion(value)
	if err != nil {
		return debversion.Version{}, err
	}
	c.deb[value] = parsed
	return parsed, nil
}

// pepVersion returns a parsed PEP 440 version, caching the result.
func (c *versionCache) pepVersion(value string) (pep440.Version, error) {
	if parsed, ok := c.pep[value]; ok {
		return parsed, nil
	}
	parsed, err := pep440.Parse(value)
	if err != nil {
		return pep440.Version{}, err
	}
	c.pep[value] = parsed
	return parsed, nil
}

// pepSpec returns parsed PEP 440 specifiers, caching the result.
func (c *versionCache) pepSpec(value string) (pep440.Specifiers, error) {
	if parsed, ok := c.spec[value]; ok {
		return parsed, nil
	}
	parsed, err := pep440.NewSpecifiers(value)
	if err != nil {
		return pep440.Specifiers{}, err
	}
	c.spec[value] = parsed
	return parsed, nil
}

// Satisfies reports whether an installed version meets every constraint
// declared for dep.
func Satisfies(dep types.Dependency, version string) (bool, error) {
	cache := newVersionCache(dep.Type)
	prepared, err := prepareConstraints(dep.Type, dep.Constraints, cache)
	if err != nil {
		return false, err
	}
	return satisfiesAll(dep.Type, version, prepared, cache)
}

// VerifyInstalled checks that every declared dependency is present in the
// installed set and satisfies its constraints. Marker-gated dependencies
// may be absent; when present they must still satisfy their constraints. All problems are reported in
// one error so a failed build lists every missing entry.
func VerifyInstalled(depType types.DependencyType, deps []types.Dependency, installed []types.InstalledPackage) error {
	versions := map[string]string{}
	for _, pkg := range installed {
		versions[packageKey(depType, pkg.Name)] = pkg.Version
	}
	var problems []string
	for _, dep := range deps {
		version, ok := versions[packageKey(depType, dep.Name)]
		if !ok {
			// pip skips requirements whose environment marker does not
			// match the interpreter.
			if dep.Marker != "" {
				continue
			}
			problems = append(problems, fmt.Sprintf("%s: not installed", dep.Name))
			continue
		}
		ok, err := Satisfies(dep, version)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: cannot compare version %s: %v", dep.Name, version, err))
			continue
		}
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: installed %s does not satisfy %s", dep.Name, version, describeConstraints(dep)))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("dependency verification failed: %s", strings.Join(problems, "; ")))
}

func packageKey(depType types.DependencyType, name string) string {
	if depType == types.DependencyTypePip {
		return shared.NormalizePipName(name)
	}
	return strings.TrimSpace(name)
}

func describeConstraints(dep types.Dependency) string {
	parts := make([]string, 0, len(dep.Constraints))
	for _, constraint := range dep.Constraints {
		parts = append(parts, fmt.Sprintf("%s%s", constraint.Op, constraint.Version))
	}
	return strings.Join(parts, ",")
}

// prepareConstraints parses each constraint's version string upfront so
// it can be reused across multiple candidate comparisons.
func prepareConstraints(depType types.DependencyType, constraints []types.Constraint, cache *versionCache) ([]preparedConstraint, error) {
	var out []preparedConstraint
	for _, constraint := range constraints {
		if constraint.Op == types.ConstraintOpNone {
			continue
		}
		switch depType {
		case types.DependencyTypeApt:
			parsed, err := cache.debVersion(constraint.Version)
			if err != nil {
				return nil, err
			}
			out = append(out, preparedConstraint{op: constraint.Op, deb: parsed})
		case types.DependencyTypePip:
			spec, err := cache.pepSpec(toPep440Spec(constraint))
			if err != nil {
				return nil, err
			}
			out = append(out, preparedConstraint{op: constraint.Op, pep: spec})
		default:
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unsupported dependency type")
		}
	}
	return out, nil
}

// satisfiesAll dispatches to the type-specific constraint checker.
func satisfiesAll(depType types.DependencyType, version string, constraints []preparedConstraint, cache *versionCache) (bool, error) {
	if len(constraints) == 0 {
		return true, nil
	}
	switch depType {
	case types.DependencyTypeApt:
		return satisfiesDeb(version, constraints, cache)
	case types.DependencyTypePip:
		return satisfiesPep440(version, constraints, cache)
	default:
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported dependency type")
	}
}

// satisfiesDeb checks a Debian version against all prepared constraints.
func satisfiesDeb(version string, constraints []preparedConstraint, cache *versionCache) (bool, error) {
	v, err := cache.debVersion(version)
	if err != nil {
		return false, err
	}
	for _, constraint := range constraints {
		c := constraint.deb
		switch constraint.op {
		case types.ConstraintOpEq, types.ConstraintOpEq2:
			if !v.Equal(c) {
				return false, nil
			}
		case types.ConstraintOpNe:
			if v.Equal(c) {
				return false, nil
			}
		case types.ConstraintOpGte:
			if v.LessThan(c) && !v.Equal(c) {
				return false, nil
			}
		case types.ConstraintOpLte:
			if v.GreaterThan(c) && !v.Equal(c) {
				return false, nil
			}
		case types.ConstraintOpGt:
			if !v.GreaterThan(c) {
				return false, nil
			}
		case types.ConstraintOpLt:
			if !v.LessThan(c) {
				return false, nil
			}
		default:
			return false, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unsupported constraint operator")
		}
	}
	return true, nil
}

// satisfiesPep440 checks a PEP 440 version against all prepared specifiers.
func satisfiesPep440(version string, constraints []preparedConstraint, cache *versionCache) (bool, error) {
	parsed, err := cache.pepVersion(version)
	if err != nil {
		return false, err
	}
	for _, constraint := range constraints {
		if !constraint.pep.Check(parsed) {
			return false, nil
		}
	}
	return true, nil
}

// toPep440Spec converts an internal constraint to a PEP 440 specifier
// string (e.g. ">= 1.0", "~= 2.3").
func toPep440Spec(constraint types.Constraint) string {
	op := string(constraint.Op)
	switch constraint.Op {
	case types.ConstraintOpEq:
		op = "=="
	case types.ConstraintOpEq2:
		op = "=="
	case types.ConstraintOpNe:
		op = "!="
	case types.ConstraintOpCompat:
		op = "~="
	case types.ConstraintOpArbitrary:
		op = "==="
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s", op, constraint.Version))
}
