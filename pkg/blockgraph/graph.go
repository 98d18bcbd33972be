package blockgraph

import (
	"sort"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/stardag/stardag/internal/store"
)

// Graph is the directed acyclic graph of code blocks. Zero value is not
// usable, call New.
type Graph struct {
	dag   graph.Graph[string, *Block]
	store *store.OrderedStore[string, *Block]
	notes map[string]*annotation

	guardCycles bool
}

// Option configures a Graph at construction time.
type Option func(*Graph)

// AllowCycles disables the edge-time cycle guard. Loaders that ingest edges
// in bulk from untrusted input can add everything first and let Validate or
// the analysis surface ErrCyclicGraph once at the end.
func AllowCycles() Option {
	return func(g *Graph) {
		g.guardCycles = false
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		notes:       make(map[string]*annotation),
		guardCycles: true,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.store = store.New[string, *Block]()

	traits := []func(*graph.Traits){graph.Directed()}
	if g.guardCycles {
		traits = append(traits, graph.PreventCycles())
	}
	g.dag = graph.NewWithStore(blockHash, g.store, traits...)

	return g
}

func blockHash(b *Block) string {
	return b.id
}

// AddBlock registers a new block under the given id. The source lines are
// copied, so later mutation of the argument does not leak into the graph.
func (g *Graph) AddBlock(id string, source []string) error {
	if id == "" {
		return ErrEmptyBlockID
	}

	src := make([]string, len(source))
	copy(src, source)

	err := g.dag.AddVertex(&Block{id: id, source: src})
	switch {
	case err == nil:
	case errors.Is(err, graph.ErrVertexAlreadyExists):
		return errors.Wrapf(ErrDuplicateBlock, "block %s", id)
	default:
		return errors.Wrapf(err, "unable to add block %s", id)
	}

	g.notes[id] = newAnnotation()

	return nil
}

// AddDependency records that child runs after parent. Re-declaring an
// existing dependency is a no-op. Both endpoints must already exist.
func (g *Graph) AddDependency(parent, child string) error {
	err := g.dag.AddEdge(parent, child)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, graph.ErrEdgeAlreadyExists):
		return nil
	case errors.Is(err, graph.ErrEdgeCreatesCycle):
		return errors.Wrapf(ErrCyclicGraph, "dependency %s -> %s", parent, child)
	case errors.Is(err, graph.ErrVertexNotFound):
		return errors.Wrapf(ErrBlockNotFound, "dependency %s -> %s", parent, child)
	default:
		return errors.Wrapf(err, "unable to add dependency %s -> %s", parent, child)
	}
}

// Block returns the block registered under id.
func (g *Graph) Block(id string) (*Block, error) {
	b, err := g.dag.Vertex(id)
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, graph.ErrVertexNotFound):
		return nil, errors.Wrapf(ErrBlockNotFound, "block %s", id)
	default:
		return nil, errors.Wrapf(err, "unable to get block %s", id)
	}
}

// BlockIDs returns every block id in insertion order.
func (g *Graph) BlockIDs() []string {
	return g.store.Ordered()
}

// Len returns the number of blocks.
func (g *Graph) Len() int {
	return len(g.notes)
}

// Ancestors returns the ids of every block from which id is reachable,
// direct and transitive parents alike, ordered by insertion rank. A block
// reachable from itself means the graph is cyclic and yields
// ErrCyclicGraph.
func (g *Graph) Ancestors(id string) ([]string, error) {
	if _, ok := g.notes[id]; !ok {
		return nil, errors.Wrapf(ErrBlockNotFound, "block %s", id)
	}

	preds, err := g.dag.PredecessorMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to build predecessor map")
	}

	visited := make(map[string]struct{})
	queue := make([]string, 0, len(preds[id]))
	for p := range preds[id] {
		queue = append(queue, p)
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		if curr == id {
			return nil, errors.Wrapf(ErrCyclicGraph, "block %s is its own ancestor", id)
		}
		if _, ok := visited[curr]; ok {
			continue
		}
		visited[curr] = struct{}{}

		for p := range preds[curr] {
			queue = append(queue, p)
		}
	}

	res := make([]string, 0, len(visited))
	for v := range visited {
		res = append(res, v)
	}
	sort.Slice(res, func(i, j int) bool {
		return g.store.Rank(res[i]) < g.store.Rank(res[j])
	})

	return res, nil
}

// TopologicalOrder returns the block ids so that every block appears after
// all of its ancestors. Ties break by insertion rank, keeping the order
// stable across runs. Cyclic graphs yield ErrCyclicGraph.
func (g *Graph) TopologicalOrder() ([]string, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	order, err := graph.StableTopologicalSort(g.dag, func(a, b string) bool {
		return g.store.Rank(a) < g.store.Rank(b)
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to sort blocks")
	}

	return order, nil
}

// Validate checks the acyclicity invariant. Graphs built with the default
// edge-time guard cannot fail it; graphs built with AllowCycles surface
// ErrCyclicGraph here before any analysis runs.
func (g *Graph) Validate() error {
	adj, err := g.dag.AdjacencyMap()
	if err != nil {
		return errors.Wrap(err, "unable to build adjacency map")
	}

	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[string]int, len(adj))

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case visiting:
			return errors.Wrapf(ErrCyclicGraph, "cycle through block %s", id)
		case done:
			return nil
		}
		state[id] = visiting

		for _, next := range sortedKeys(adj[id]) {
			if err := visit(next); err != nil {
				return err
			}
		}

		state[id] = done

		return nil
	}

	for _, id := range g.BlockIDs() {
		if err := visit(id); err != nil {
			return err
		}
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
