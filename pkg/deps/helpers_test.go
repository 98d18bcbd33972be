package deps_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stardag/stardag/pkg/blockgraph"
	"github.com/stardag/stardag/pkg/deps"
)

// scriptedChecker fakes the oracle and the inspector with canned answers
// keyed by source text. It is safe for concurrent use.
type scriptedChecker struct {
	mu            sync.Mutex
	undefined     map[string][]string
	allNames      map[string][]string
	bindings      map[string][]string
	functions     map[string][]deps.Function
	undefinedErrs map[string]error
	allNamesErrs  map[string]error
}

func newScriptedChecker() *scriptedChecker {
	return &scriptedChecker{
		undefined:     make(map[string][]string),
		allNames:      make(map[string][]string),
		bindings:      make(map[string][]string),
		functions:     make(map[string][]deps.Function),
		undefinedErrs: make(map[string]error),
		allNamesErrs:  make(map[string]error),
	}
}

func (c *scriptedChecker) Undefined(source string) (blockgraph.NameSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.undefinedErrs[source]; err != nil {
		return nil, err
	}

	return blockgraph.NewNameSet(c.undefined[source]...), nil
}

func (c *scriptedChecker) AllNames(source string) (blockgraph.NameSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.allNamesErrs[source]; err != nil {
		return nil, err
	}

	return blockgraph.NewNameSet(c.allNames[source]...), nil
}

func (c *scriptedChecker) ModuleBindings(source string) (blockgraph.NameSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return blockgraph.NewNameSet(c.bindings[source]...), nil
}

func (c *scriptedChecker) Functions(source string) ([]deps.Function, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.functions[source], nil
}

type testBlock struct {
	id     string
	source string
}

func buildGraph(t *testing.T, blocks []testBlock, edges [][2]string, opts ...blockgraph.Option) *blockgraph.Graph {
	t.Helper()

	g := blockgraph.New(opts...)
	for _, b := range blocks {
		require.NoError(t, g.AddBlock(b.id, []string{b.source}))
	}
	for _, e := range edges {
		require.NoError(t, g.AddDependency(e[0], e[1]))
	}

	return g
}

// annotations is a comparable snapshot of everything an analysis writes.
type annotations struct {
	ins    map[string][]string
	outs   map[string][]string
	params map[string]map[string]any
}

func snapshot(t *testing.T, g *blockgraph.Graph) annotations {
	t.Helper()

	snap := annotations{
		ins:    make(map[string][]string),
		outs:   make(map[string][]string),
		params: make(map[string]map[string]any),
	}
	for _, id := range g.BlockIDs() {
		ins, err := g.Ins(id)
		require.NoError(t, err)
		snap.ins[id] = ins

		outs, err := g.Outs(id)
		require.NoError(t, err)
		snap.outs[id] = outs

		params, err := g.Params(id)
		require.NoError(t, err)
		snap.params[id] = params
	}

	return snap
}
