package starsrc

import (
	"strings"

	"github.com/pkg/errors"
	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/stardag/stardag/pkg/blockgraph"
	"github.com/stardag/stardag/pkg/deps"
)

// checkFilename names the synthetic file handed to the parser; it shows up
// in diagnostic positions.
const checkFilename = "stardag"

const undefinedPrefix = "undefined: "

// Checker implements deps.Oracle and deps.Inspector for Starlark source.
// It is stateless across calls and safe for concurrent use.
type Checker struct {
	opts        *syntax.FileOptions
	predeclared blockgraph.NameSet
}

var (
	_ deps.Oracle    = (*Checker)(nil)
	_ deps.Inspector = (*Checker)(nil)
)

// Option configures a Checker.
type Option func(c *Checker)

// WithPredeclared declares names the runtime provides to every unit, e.g.
// a marshalling helper. They resolve without being reported undefined.
func WithPredeclared(names ...string) Option {
	return func(c *Checker) {
		c.predeclared.Add(names...)
	}
}

// New creates a Checker with the permissive notebook dialect.
func New(opts ...Option) *Checker {
	c := &Checker{
		opts: &syntax.FileOptions{
			Set:               true,
			While:             true,
			TopLevelControl:   true,
			GlobalReassign:    true,
			LoadBindsGlobally: true,
			Recursion:         true,
		},
		predeclared: blockgraph.NewNameSet(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Checker) isPredeclared(name string) bool {
	return c.predeclared.Has(name)
}

func (c *Checker) parse(source string) (*syntax.File, error) {
	f, err := c.opts.Parse(checkFilename, source, 0)
	if err != nil {
		return nil, errors.Wrapf(deps.ErrSyntaxAnalysis, "parse: %v", err)
	}

	return f, nil
}

// Undefined reports the distinct names the source references without
// binding them, evaluated as a standalone unit. Resolver diagnostics other
// than undefined names mean the unit is structurally invalid and yield
// deps.ErrSyntaxAnalysis; a resolver failure that is not a diagnostic list
// yields deps.ErrOracleInternal since its output cannot be trusted.
func (c *Checker) Undefined(source string) (blockgraph.NameSet, error) {
	f, err := c.parse(source)
	if err != nil {
		return nil, err
	}

	resErr := resolve.File(f, c.isPredeclared, starlark.Universe.Has)
	if resErr == nil {
		return blockgraph.NewNameSet(), nil
	}

	var list resolve.ErrorList
	if !errors.As(resErr, &list) {
		return nil, errors.Wrapf(deps.ErrOracleInternal, "resolver: %v", resErr)
	}

	undefined := blockgraph.NewNameSet()
	for _, e := range list {
		name, ok := strings.CutPrefix(e.Msg, undefinedPrefix)
		if !ok || name == "" {
			return nil, errors.Wrapf(deps.ErrSyntaxAnalysis, "%s: %s", e.Pos, e.Msg)
		}
		// The resolver may append a spelling hint after the name.
		name, _, _ = strings.Cut(name, " ")
		undefined.Add(name)
	}

	return undefined, nil
}
