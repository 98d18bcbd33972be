package deps

// Option configures an Analyzer.
type Option func(a *Analyzer)

// WithConcurrency bounds how many units of work run at once across the
// passes. Values below one fall back to sequential analysis.
func WithConcurrency(concurrent int) Option {
	return func(a *Analyzer) {
		a.concurrent = concurrent
	}
}

// WithPrelude supplies source that is executed before every block at run
// time, typically shared imports and helper functions. The free-variable
// analysis prepends it to each function before consulting the oracle.
func WithPrelude(source string) Option {
	return func(a *Analyzer) {
		a.prelude = source
	}
}
