package deps

import (
	"sort"
	"sync"
)

// Result collects the non-fatal findings of one analysis run. The
// annotations themselves live on the graph.
type Result struct {
	// Failures lists the blocks whose source could not be analyzed, sorted
	// by block id. Failed blocks carry no annotations and are skipped by
	// later passes.
	Failures []BlockFailure

	// Unresolved lists ins entries no ancestor produces and no parameter
	// covers, sorted by block id then name. Usually an authored bug in the
	// source notebook, surfaced for the caller to act on.
	Unresolved []UnresolvedName
}

// BlockFailure ties an analysis error to the block it occurred in.
type BlockFailure struct {
	BlockID string
	Err     error
}

// UnresolvedName is an in-dependency with no known producer.
type UnresolvedName struct {
	BlockID string
	Name    string
}

// collector accumulates findings from concurrent workers. Pass order is
// nondeterministic, so the final Result is sorted on the way out.
type collector struct {
	mu         sync.Mutex
	failed     map[string]struct{}
	failures   []BlockFailure
	unresolved []UnresolvedName
}

func newCollector() *collector {
	return &collector{failed: make(map[string]struct{})}
}

func (c *collector) fail(id string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.failed[id]; ok {
		return
	}
	c.failed[id] = struct{}{}
	c.failures = append(c.failures, BlockFailure{BlockID: id, Err: err})
}

func (c *collector) isFailed(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.failed[id]

	return ok
}

func (c *collector) addUnresolved(id string, names []string) {
	if len(names) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range names {
		c.unresolved = append(c.unresolved, UnresolvedName{BlockID: id, Name: name})
	}
}

func (c *collector) result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := &Result{
		Failures:   make([]BlockFailure, len(c.failures)),
		Unresolved: make([]UnresolvedName, len(c.unresolved)),
	}
	copy(res.Failures, c.failures)
	copy(res.Unresolved, c.unresolved)

	sort.Slice(res.Failures, func(i, j int) bool {
		return res.Failures[i].BlockID < res.Failures[j].BlockID
	})
	sort.Slice(res.Unresolved, func(i, j int) bool {
		if res.Unresolved[i].BlockID != res.Unresolved[j].BlockID {
			return res.Unresolved[i].BlockID < res.Unresolved[j].BlockID
		}

		return res.Unresolved[i].Name < res.Unresolved[j].Name
	})

	return res
}
