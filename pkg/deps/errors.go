package deps

import "github.com/pkg/errors"

var (
	// ErrSyntaxAnalysis reports a unit of source the checker could not
	// parse or resolve structurally. It isolates to the offending block.
	ErrSyntaxAnalysis = errors.New("source failed syntax analysis")

	// ErrOracleInternal reports a malfunction of the checker itself. Its
	// output cannot be trusted, so the whole run aborts.
	ErrOracleInternal = errors.New("name oracle internal failure")

	ErrNilOracle    = errors.New("oracle must be set")
	ErrNilInspector = errors.New("inspector must be set")
	ErrNilGraph     = errors.New("graph must be set")
)
