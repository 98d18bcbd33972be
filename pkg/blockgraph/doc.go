// Package blockgraph models the directed acyclic graph of code blocks that
// the dependency analysis annotates.
//
// The graph keeps two layers apart. The structural skeleton, blocks and the
// execution-order edges between them, is built once by a loader and never
// mutated afterwards. The annotation layer, per block the all-names
// universe, the marshal-in list with its consumed parameters and the
// marshal-out set, is written by the analysis passes. Every annotation slot
// is write-once except outs, which only grows by commutative set union as
// descendants claim names from their ancestors. The split lets concurrent
// passes share the skeleton read-only while each annotation stays
// race-free behind its own lock.
package blockgraph
