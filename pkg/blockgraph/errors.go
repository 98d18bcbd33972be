package blockgraph

import "github.com/pkg/errors"

var (
	// ErrCyclicGraph reports that the graph is not a DAG. Dependency edges
	// refuse to close a cycle unless the graph was built with AllowCycles,
	// in which case Validate surfaces the error instead.
	ErrCyclicGraph = errors.New("block graph contains a cycle")

	// ErrBlockNotFound reports an operation on an unknown block id.
	ErrBlockNotFound = errors.New("block not found")

	// ErrDuplicateBlock reports a second AddBlock with an id already taken.
	ErrDuplicateBlock = errors.New("block already exists")

	// ErrEmptyBlockID reports an AddBlock with an empty id.
	ErrEmptyBlockID = errors.New("block id is empty")

	// ErrAnnotationSet reports a second write to a write-once annotation.
	ErrAnnotationSet = errors.New("annotation already set")
)
