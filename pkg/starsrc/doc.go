// Package starsrc backs the dependency analysis with a Starlark frontend
// built on go.starlark.net: the undefined-name oracle and the structural
// inspector over one shared parser configuration.
//
// The oracle runs the Starlark resolver over a unit of source and collects
// its "undefined: NAME" diagnostics, one per occurrence, into a
// deduplicated set. Names from the Starlark universe (len, print, range,
// ...) and any configured predeclared names resolve and are never
// reported. Every call builds a fresh parse tree and receives a fresh
// diagnostic list, so calls cannot leak results into each other.
//
// The dialect is permissive on purpose. Notebook cells rebind top-level
// names freely and use control flow outside functions, so the checker
// parses with reassignment, top-level control, while loops, sets and
// recursion all enabled.
package starsrc
