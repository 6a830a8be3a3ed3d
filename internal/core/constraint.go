package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"chatbot-bootstrap/internal/types"
)

// constraintOps lists every operator accepted in a requirement or system
// package entry, longest first so "===" wins over "==" and "=".
var constraintOps = []types.ConstraintOp{
	types.ConstraintOpArbitrary,
	types.ConstraintOpEq2,
	types.ConstraintOpGte,
	types.ConstraintOpLte,
	types.ConstraintOpCompat,
	types.ConstraintOpNe,
	types.ConstraintOpEq,
	types.ConstraintOpGt,
	types.ConstraintOpLt,
}

const operatorChars = "<>=!~"

// ParseConstraint splits one "name<op>version" entry such as
// "django>=4.2", "django===4.2.7" or "curl=7.88.1-10". The operator is
// taken from the first operator character, so versions containing "=" or
// "~" are kept intact. An entry without an operator is a bare package name.
func ParseConstraint(raw string, source string) (types.Constraint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Constraint{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("empty package entry at %s", source))
	}
	start := strings.IndexAny(raw, operatorChars)
	if start < 0 {
		return types.Constraint{Name: raw, Op: types.ConstraintOpNone, Source: source}, nil
	}
	name := strings.TrimSpace(raw[:start])
	rest := raw[start:]
	for _, op := range constraintOps {
		if !strings.HasPrefix(rest, string(op)) {
			continue
		}
		version := strings.TrimSpace(rest[len(op):])
		if name == "" || version == "" || strings.ContainsAny(version[:1], operatorChars) {
			return types.Constraint{}, invalidConstraint(raw, source)
		}
		return types.Constraint{Name: name, Op: op, Version: version, Source: source}, nil
	}
	return types.Constraint{}, invalidConstraint(raw, source)
}

func invalidConstraint(raw string, source string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid version constraint %q at %s", raw, source))
}
