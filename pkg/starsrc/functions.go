package starsrc

import (
	"strings"
	"unicode/utf8"

	"go.starlark.net/syntax"

	"github.com/stardag/stardag/pkg/deps"
)

// Functions returns the functions defined directly at the top level of the
// source, in declaration order. Definitions nested inside other statements
// belong to an inner scope and are not reported.
func (c *Checker) Functions(source string) ([]deps.Function, error) {
	f, err := c.parse(source)
	if err != nil {
		return nil, err
	}

	var fns []deps.Function
	for _, stmt := range f.Stmts {
		def, ok := stmt.(*syntax.DefStmt)
		if !ok {
			continue
		}
		fns = append(fns, deps.Function{
			Name:   def.Name.Name,
			Params: paramNames(def.Params),
			Source: sliceSpan(source, def),
		})
	}

	return fns, nil
}

// paramNames flattens a parameter list into declared names. Defaulted
// parameters parse as assignments and variadic ones as unary expressions; a
// bare star separator carries no name.
func paramNames(params []syntax.Expr) []string {
	var names []string
	for _, p := range params {
		switch param := p.(type) {
		case *syntax.Ident:
			names = append(names, param.Name)
		case *syntax.BinaryExpr:
			if ident, ok := param.X.(*syntax.Ident); ok && param.Op == syntax.EQ {
				names = append(names, ident.Name)
			}
		case *syntax.UnaryExpr:
			if ident, ok := param.X.(*syntax.Ident); ok {
				names = append(names, ident.Name)
			}
		}
	}

	return names
}

// sliceSpan cuts the text a node spans out of the source it was parsed from.
func sliceSpan(source string, node syntax.Node) string {
	start, end := node.Span()

	from := byteOffset(source, start)
	to := byteOffset(source, end)
	if from < 0 || to < 0 || from > to {
		return ""
	}

	return source[from:to]
}

// byteOffset converts a 1-based line/column position, with columns counted
// in runes, into a byte offset.
func byteOffset(source string, pos syntax.Position) int {
	offset := 0
	for line := int32(1); line < pos.Line; line++ {
		nl := strings.IndexByte(source[offset:], '\n')
		if nl < 0 {
			return -1
		}
		offset += nl + 1
	}

	for col := int32(1); col < pos.Col; col++ {
		_, size := utf8.DecodeRuneInString(source[offset:])
		if size == 0 {
			return -1
		}
		offset += size
	}

	return offset
}
