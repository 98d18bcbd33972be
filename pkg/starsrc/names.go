package starsrc

import (
	"go.starlark.net/syntax"

	"github.com/stardag/stardag/pkg/blockgraph"
)

// AllNames returns every identifier appearing anywhere in the source,
// bound or referenced: assignment targets, call targets, loop variables,
// function names, names inside function bodies. Attribute names after a
// dot, keyword names at call sites and declared parameter names are field
// labels rather than identifiers in scope, so they are skipped; the
// expressions behind them are walked as usual.
func (c *Checker) AllNames(source string) (blockgraph.NameSet, error) {
	f, err := c.parse(source)
	if err != nil {
		return nil, err
	}

	names := blockgraph.NewNameSet()
	collectStmts(f.Stmts, names)

	return names, nil
}

func collectStmts(stmts []syntax.Stmt, names blockgraph.NameSet) {
	for _, stmt := range stmts {
		collectStmt(stmt, names)
	}
}

func collectStmt(stmt syntax.Stmt, names blockgraph.NameSet) {
	switch s := stmt.(type) {
	case *syntax.AssignStmt:
		collectExpr(s.LHS, names)
		collectExpr(s.RHS, names)
	case *syntax.BranchStmt:
	case *syntax.DefStmt:
		names.Add(s.Name.Name)
		collectParams(s.Params, names)
		collectStmts(s.Body, names)
	case *syntax.ExprStmt:
		collectExpr(s.X, names)
	case *syntax.ForStmt:
		collectExpr(s.Vars, names)
		collectExpr(s.X, names)
		collectStmts(s.Body, names)
	case *syntax.IfStmt:
		collectExpr(s.Cond, names)
		collectStmts(s.True, names)
		collectStmts(s.False, names)
	case *syntax.LoadStmt:
		for _, to := range s.To {
			names.Add(to.Name)
		}
	case *syntax.ReturnStmt:
		if s.Result != nil {
			collectExpr(s.Result, names)
		}
	case *syntax.WhileStmt:
		collectExpr(s.Cond, names)
		collectStmts(s.Body, names)
	}
}

// collectParams walks parameter default expressions. The declared names
// themselves are not part of the name universe.
func collectParams(params []syntax.Expr, names blockgraph.NameSet) {
	for _, p := range params {
		if def, ok := p.(*syntax.BinaryExpr); ok && def.Op == syntax.EQ {
			collectExpr(def.Y, names)
		}
	}
}

func collectExpr(expr syntax.Expr, names blockgraph.NameSet) {
	switch e := expr.(type) {
	case *syntax.BinaryExpr:
		collectExpr(e.X, names)
		collectExpr(e.Y, names)
	case *syntax.CallExpr:
		collectExpr(e.Fn, names)
		for _, arg := range e.Args {
			if kw, ok := arg.(*syntax.BinaryExpr); ok && kw.Op == syntax.EQ {
				collectExpr(kw.Y, names)

				continue
			}
			collectExpr(arg, names)
		}
	case *syntax.Comprehension:
		collectExpr(e.Body, names)
		for _, clause := range e.Clauses {
			switch cl := clause.(type) {
			case *syntax.ForClause:
				collectExpr(cl.Vars, names)
				collectExpr(cl.X, names)
			case *syntax.IfClause:
				collectExpr(cl.Cond, names)
			}
		}
	case *syntax.CondExpr:
		collectExpr(e.Cond, names)
		collectExpr(e.True, names)
		collectExpr(e.False, names)
	case *syntax.DictEntry:
		collectExpr(e.Key, names)
		collectExpr(e.Value, names)
	case *syntax.DictExpr:
		for _, entry := range e.List {
			collectExpr(entry, names)
		}
	case *syntax.DotExpr:
		collectExpr(e.X, names)
	case *syntax.Ident:
		names.Add(e.Name)
	case *syntax.IndexExpr:
		collectExpr(e.X, names)
		collectExpr(e.Y, names)
	case *syntax.LambdaExpr:
		collectParams(e.Params, names)
		collectExpr(e.Body, names)
	case *syntax.ListExpr:
		for _, x := range e.List {
			collectExpr(x, names)
		}
	case *syntax.Literal:
	case *syntax.ParenExpr:
		collectExpr(e.X, names)
	case *syntax.SliceExpr:
		collectExpr(e.X, names)
		if e.Lo != nil {
			collectExpr(e.Lo, names)
		}
		if e.Hi != nil {
			collectExpr(e.Hi, names)
		}
		if e.Step != nil {
			collectExpr(e.Step, names)
		}
	case *syntax.TupleExpr:
		for _, x := range e.List {
			collectExpr(x, names)
		}
	case *syntax.UnaryExpr:
		if e.X != nil {
			collectExpr(e.X, names)
		}
	}
}
