package starsrc

import (
	"go.starlark.net/syntax"

	"github.com/stardag/stardag/pkg/blockgraph"
)

// ModuleBindings returns the names bound at the top level of the source:
// assignment targets, function names, loop variables and load-bound names.
// Bodies of if, for and while statements execute in module scope and are
// descended into; function bodies are not.
func (c *Checker) ModuleBindings(source string) (blockgraph.NameSet, error) {
	f, err := c.parse(source)
	if err != nil {
		return nil, err
	}

	bound := blockgraph.NewNameSet()
	bindStmts(f.Stmts, bound)

	return bound, nil
}

func bindStmts(stmts []syntax.Stmt, bound blockgraph.NameSet) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *syntax.AssignStmt:
			bindTargets(s.LHS, bound)
		case *syntax.DefStmt:
			bound.Add(s.Name.Name)
		case *syntax.ForStmt:
			bindTargets(s.Vars, bound)
			bindStmts(s.Body, bound)
		case *syntax.IfStmt:
			bindStmts(s.True, bound)
			bindStmts(s.False, bound)
		case *syntax.LoadStmt:
			for _, to := range s.To {
				bound.Add(to.Name)
			}
		case *syntax.WhileStmt:
			bindStmts(s.Body, bound)
		}
	}
}

// bindTargets records the identifiers an assignment target binds. Index and
// dot targets mutate existing values and bind nothing.
func bindTargets(target syntax.Expr, bound blockgraph.NameSet) {
	switch t := target.(type) {
	case *syntax.Ident:
		bound.Add(t.Name)
	case *syntax.ListExpr:
		for _, x := range t.List {
			bindTargets(x, bound)
		}
	case *syntax.ParenExpr:
		bindTargets(t.X, bound)
	case *syntax.TupleExpr:
		for _, x := range t.List {
			bindTargets(x, bound)
		}
	}
}
