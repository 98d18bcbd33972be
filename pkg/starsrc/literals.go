package starsrc

import (
	"github.com/pkg/errors"
	"go.starlark.net/syntax"
)

// ErrBadParameter reports a parameter source line that is not a plain
// literal assignment.
var ErrBadParameter = errors.New("parameter source must be literal assignments")

// Literals parses a parameter source into a name to value mapping. The
// source may contain only assignments of scalar literals (ints, floats,
// strings, booleans, None) to plain names; a leading docstring is ignored.
// Later assignments to the same name win.
func (c *Checker) Literals(source string) (map[string]any, error) {
	f, err := c.parse(source)
	if err != nil {
		return nil, err
	}

	params := make(map[string]any)
	for i, stmt := range f.Stmts {
		if i == 0 && isDocstring(stmt) {
			continue
		}

		assign, ok := stmt.(*syntax.AssignStmt)
		if !ok || assign.Op != syntax.EQ {
			start, _ := stmt.Span()

			return nil, errors.Wrapf(ErrBadParameter, "%s: not an assignment", start)
		}

		ident, ok := assign.LHS.(*syntax.Ident)
		if !ok {
			start, _ := assign.LHS.Span()

			return nil, errors.Wrapf(ErrBadParameter, "%s: target must be a plain name", start)
		}

		value, err := literalValue(assign.RHS)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %q", ident.Name)
		}
		params[ident.Name] = value
	}

	return params, nil
}

func isDocstring(stmt syntax.Stmt) bool {
	expr, ok := stmt.(*syntax.ExprStmt)
	if !ok {
		return false
	}
	lit, ok := expr.X.(*syntax.Literal)

	return ok && lit.Token == syntax.STRING
}

func literalValue(expr syntax.Expr) (any, error) {
	switch e := expr.(type) {
	case *syntax.Literal:
		switch e.Token {
		case syntax.INT:
			v, ok := e.Value.(int64)
			if !ok {
				return nil, errors.Wrapf(ErrBadParameter, "%s: integer out of range", e.TokenPos)
			}

			return v, nil
		case syntax.FLOAT:
			return e.Value.(float64), nil
		case syntax.STRING:
			return e.Value.(string), nil
		}
	case *syntax.Ident:
		switch e.Name {
		case "True":
			return true, nil
		case "False":
			return false, nil
		case "None":
			return nil, nil
		}
	case *syntax.ParenExpr:
		return literalValue(e.X)
	case *syntax.UnaryExpr:
		if e.X == nil || e.Op != syntax.MINUS && e.Op != syntax.PLUS {
			break
		}
		v, err := literalValue(e.X)
		if err != nil {
			return nil, err
		}
		if e.Op == syntax.PLUS {
			return v, nil
		}
		switch n := v.(type) {
		case int64:
			return -n, nil
		case float64:
			return -n, nil
		}
	}
	start, _ := expr.Span()

	return nil, errors.Wrapf(ErrBadParameter, "%s: not a scalar literal", start)
}
