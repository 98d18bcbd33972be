package notebook

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/stardag/stardag/pkg/blockgraph"
)

var (
	// ErrOrphanCell reports a code cell that has nothing to continue.
	ErrOrphanCell = errors.New("code cell continues no block")

	// ErrNilParser is returned by Build when no parameter parser is given.
	ErrNilParser = errors.New("param parser must be set")
)

// ParamParser parses a parameter cell into a name to value mapping.
// starsrc.Checker satisfies it.
type ParamParser interface {
	Literals(source string) (map[string]any, error)
}

// Notebook holds the code cells of one .ipynb document, in order.
type Notebook struct {
	cells []cell
}

// Load reads and parses a notebook file.
func Load(path string) (*Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read notebook %s", path)
	}

	return Parse(data)
}

// Parse decodes a notebook document, keeping only its code cells.
func Parse(data []byte) (*Notebook, error) {
	var file notebookFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "unable to decode notebook")
	}

	n := &Notebook{}
	for _, c := range file.Cells {
		if c.Type != "code" {
			continue
		}
		n.cells = append(n.cells, c)
	}

	return n, nil
}

// Pipeline is the analyzable form of a notebook.
type Pipeline struct {
	// Graph holds one block per block tag, each carrying the prelude cells
	// ahead of its own so the source reads the way the generated step runs.
	Graph *blockgraph.Graph

	// Prelude is the merged imports and functions cells.
	Prelude string

	// Params maps parameter names to their declared literal values.
	Params map[string]any
}

// Build routes the code cells by their tags and assembles the block graph.
// A dependency cycle spelled via prev tags surfaces as
// blockgraph.ErrCyclicGraph, an edge to an unknown block as
// blockgraph.ErrBlockNotFound and a reused block tag as
// blockgraph.ErrDuplicateBlock.
func (n *Notebook) Build(parser ParamParser) (*Pipeline, error) {
	if parser == nil {
		return nil, ErrNilParser
	}

	var (
		current      roleKind
		currentBlock string
		order        []string
		edges        [][2]string
		prelude      []string
		paramCells   []string
	)
	sources := make(map[string][]string)

	for i, c := range n.cells {
		ct, err := parseTags(c.Metadata.Tags)
		if err != nil {
			return nil, errors.Wrapf(err, "cell %d", i)
		}

		if ct.kind != roleNone {
			current = ct.kind
		}
		if ct.kind == roleBlock {
			if _, ok := sources[ct.block]; ok {
				return nil, errors.Wrapf(blockgraph.ErrDuplicateBlock, "cell %d: block %s", i, ct.block)
			}
			sources[ct.block] = []string{}
			order = append(order, ct.block)
			currentBlock = ct.block
			for _, parent := range ct.prevs {
				edges = append(edges, [2]string{parent, ct.block})
			}
		}

		text := neutralizeDirectives(c.Source.text())
		if text == "" {
			continue
		}

		switch current {
		case roleBlock:
			sources[currentBlock] = append(sources[currentBlock], text)
		case rolePrelude:
			prelude = append(prelude, text)
		case roleParameters:
			paramCells = append(paramCells, text)
		case roleSkip:
		default:
			return nil, errors.Wrapf(ErrOrphanCell, "cell %d", i)
		}
	}

	params := make(map[string]any)
	for _, src := range paramCells {
		vals, err := parser.Literals(src)
		if err != nil {
			return nil, errors.Wrap(err, "pipeline parameters")
		}
		for k, v := range vals {
			params[k] = v
		}
	}

	g := blockgraph.New()
	for _, name := range order {
		src := sources[name]
		if len(prelude) > 0 {
			merged := make([]string, 0, len(prelude)+len(src))
			merged = append(merged, prelude...)
			merged = append(merged, src...)
			src = merged
		}
		if err := g.AddBlock(name, src); err != nil {
			return nil, err
		}
	}
	for _, edge := range edges {
		if err := g.AddDependency(edge[0], edge[1]); err != nil {
			return nil, err
		}
	}

	return &Pipeline{
		Graph:   g,
		Prelude: strings.Join(prelude, "\n"),
		Params:  params,
	}, nil
}
