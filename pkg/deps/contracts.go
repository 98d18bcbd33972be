package deps

import "github.com/stardag/stardag/pkg/blockgraph"

// Oracle reports which names a unit of source references without binding
// them, evaluated standalone. Implementations must return a deduplicated
// set, keep no state between calls and classify their failures as
// ErrSyntaxAnalysis when the unit does not parse and ErrOracleInternal when
// the checker itself malfunctioned.
type Oracle interface {
	Undefined(source string) (blockgraph.NameSet, error)
}

// Inspector extracts structural facts from a unit of source. It must be
// total over any unit the Oracle accepts.
type Inspector interface {
	// AllNames returns every identifier appearing anywhere in the source,
	// bound or referenced.
	AllNames(source string) (blockgraph.NameSet, error)

	// ModuleBindings returns the names bound at the top level of the
	// source, outside any function body.
	ModuleBindings(source string) (blockgraph.NameSet, error)

	// Functions returns the functions defined directly at the top level of
	// the source.
	Functions(source string) ([]Function, error)
}

// Function is one function definition found by an Inspector.
type Function struct {
	// Name as declared.
	Name string

	// Params holds the declared parameter names, including variadic ones.
	Params []string

	// Source is the full definition text, sliced out of the enclosing
	// block.
	Source string
}
