package blockgraph

import (
	"sync"

	"github.com/pkg/errors"
)

// annotation carries the analysis results of one block. allNames and ins
// are write-once; outs accumulates by union. The mutex makes the outs
// merges of concurrent descendants safe and keeps readers consistent.
type annotation struct {
	mu sync.Mutex

	allNames    NameSet
	hasAllNames bool

	ins    []string
	params map[string]any
	hasIns bool

	outs NameSet
}

func newAnnotation() *annotation {
	return &annotation{outs: NameSet{}}
}

func (g *Graph) note(id string) (*annotation, error) {
	n, ok := g.notes[id]
	if !ok {
		return nil, errors.Wrapf(ErrBlockNotFound, "block %s", id)
	}

	return n, nil
}

// SetAllNames records the block's name universe: every identifier the block
// binds or references anywhere in its source. Write-once.
func (g *Graph) SetAllNames(id string, names NameSet) error {
	n, err := g.note(id)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.hasAllNames {
		return errors.Wrapf(ErrAnnotationSet, "all names of block %s", id)
	}
	n.allNames = names.Clone()
	n.hasAllNames = true

	return nil
}

// AllNames returns a copy of the block's name universe, empty when the slot
// has not been populated yet.
func (g *Graph) AllNames(id string) (NameSet, error) {
	n, err := g.note(id)
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	return n.allNames.Clone(), nil
}

// HasAllNames reports whether the block's name universe has been recorded.
func (g *Graph) HasAllNames(id string) bool {
	n, err := g.note(id)
	if err != nil {
		return false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	return n.hasAllNames
}

// SetIns records the names the block must load before running together
// with the pipeline parameters it consumes. Write-once. The parameter map
// is copied; a nil map is stored as empty.
func (g *Graph) SetIns(id string, ins NameSet, params map[string]any) error {
	n, err := g.note(id)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.hasIns {
		return errors.Wrapf(ErrAnnotationSet, "ins of block %s", id)
	}

	n.ins = ins.Sorted()
	n.params = make(map[string]any, len(params))
	for k, v := range params {
		n.params[k] = v
	}
	n.hasIns = true

	return nil
}

// Ins returns the block's load list in lexical order, empty when the slot
// has not been populated yet.
func (g *Graph) Ins(id string) ([]string, error) {
	n, err := g.note(id)
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	ins := make([]string, len(n.ins))
	copy(ins, n.ins)

	return ins, nil
}

// InsSet returns the block's load list as a set.
func (g *Graph) InsSet(id string) (NameSet, error) {
	ins, err := g.Ins(id)
	if err != nil {
		return nil, err
	}

	return NewNameSet(ins...), nil
}

// HasIns reports whether the block's load list has been recorded.
func (g *Graph) HasIns(id string) bool {
	n, err := g.note(id)
	if err != nil {
		return false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	return n.hasIns
}

// Params returns a copy of the pipeline parameters the block consumes.
func (g *Graph) Params(id string) (map[string]any, error) {
	n, err := g.note(id)
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	params := make(map[string]any, len(n.params))
	for k, v := range n.params {
		params[k] = v
	}

	return params, nil
}

// MergeOuts adds names to the block's export set. Merges are commutative
// and idempotent, so concurrent descendants may claim names in any order
// and any interleaving yields the same set.
func (g *Graph) MergeOuts(id string, names NameSet) error {
	n, err := g.note(id)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.outs.Union(names)

	return nil
}

// Outs returns the block's export set in lexical order.
func (g *Graph) Outs(id string) ([]string, error) {
	n, err := g.note(id)
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	return n.outs.Sorted(), nil
}
