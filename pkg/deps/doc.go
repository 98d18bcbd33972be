// Package deps infers data dependencies between the code blocks of a
// pipeline graph.
//
// The analysis runs in two passes over a blockgraph.Graph. The in-pass asks
// an external name oracle which identifiers each block references without
// binding them, removes the pipeline parameters from that set and records
// the remainder as the block's ins, the names it must load before running.
// The out-pass walks every block's ancestors and intersects the block's ins
// with each ancestor's name universe: whatever matches is a name that
// ancestor must export, accumulated into its outs by set union.
//
// The package never parses source itself. It consumes the narrow Oracle and
// Inspector contracts, so any static checker able to report undefined names
// can back it. Resolution is approximate by construction: there is no
// interpreter and no symbol table, only the oracle's best-effort report,
// and the analysis is deterministic and order-independent on top of it.
//
// Per-block source failures never abort a run. They are collected in the
// Result while every healthy block is annotated, letting the caller decide
// whether a partial analysis is usable. Only an oracle malfunction or a
// cyclic graph is fatal.
package deps
