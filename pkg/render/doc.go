// Package render turns an annotated block graph into runnable step sources.
//
// Each step opens by loading its in-dependencies through the marshal helper
// and assigning its parameters, then runs the block source and closes by
// saving its out-dependencies for descendant steps. Output is deterministic:
// steps come in topological order and names within a step are sorted.
package render
