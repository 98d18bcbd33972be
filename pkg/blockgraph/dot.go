package blockgraph

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	colors "gopkg.in/go-playground/colors.v1"
)

const dotTemplate = `strict {{.GraphType}} {
{{- range $k, $v := .Attributes}}
	{{$k}}="{{$v}}";
{{- end}}
{{- range $s := .Statements}}
	"{{$s.Source}}" {{if $s.Target}}{{$.EdgeOperator}} "{{$s.Target}}"{{else}}[ {{range $k, $v := $s.Attributes}}{{$k}}="{{$v}}", {{end}}]{{end}};
{{- end}}
}
`

// maxRGB caps the heat ramp short of pure red and pure blue so node labels
// stay readable on the fill.
const maxRGB = 240

// DOTOption configures WriteDOT.
type DOTOption func(*dotConfig)

type dotConfig struct {
	highlighted NameSet
}

// Highlight outlines the given blocks in red, typically the blocks whose
// ins no ancestor resolves.
func Highlight(ids ...string) DOTOption {
	return func(c *dotConfig) {
		c.highlighted.Add(ids...)
	}
}

type description struct {
	GraphType    string
	EdgeOperator string
	Attributes   map[string]string
	Statements   []statement
}

type statement struct {
	Source     string
	Target     string
	Attributes map[string]string
}

// WriteDOT renders the graph in graphviz DOT format. Each node carries its
// ins and outs summary and a fill color ramped by how many names the block
// exports, so hub blocks stand out in the rendered graph.
func (g *Graph) WriteDOT(w io.Writer, opts ...DOTOption) error {
	cfg := dotConfig{highlighted: NewNameSet()}
	for _, opt := range opts {
		opt(&cfg)
	}

	desc := description{
		GraphType:    "digraph",
		EdgeOperator: "->",
		Attributes: map[string]string{
			"rankdir": "TB",
		},
	}

	maxOuts := 0
	for _, id := range g.BlockIDs() {
		outs, err := g.Outs(id)
		if err != nil {
			return err
		}
		if len(outs) > maxOuts {
			maxOuts = len(outs)
		}
	}

	for _, id := range g.BlockIDs() {
		ins, err := g.Ins(id)
		if err != nil {
			return err
		}

		outs, err := g.Outs(id)
		if err != nil {
			return err
		}

		fill, err := heatColor(len(outs), maxOuts)
		if err != nil {
			return err
		}

		label := id
		if len(ins) > 0 {
			label += fmt.Sprintf("\\nin: %s", strings.Join(ins, ", "))
		}
		if len(outs) > 0 {
			label += fmt.Sprintf("\\nout: %s", strings.Join(outs, ", "))
		}

		attrs := map[string]string{
			"label":     label,
			"shape":     "box",
			"style":     "filled",
			"fillcolor": fill,
			"fontcolor": "white",
		}
		if cfg.highlighted.Has(id) {
			attrs["color"] = "red"
			attrs["penwidth"] = "3"
		}

		desc.Statements = append(desc.Statements, statement{
			Source:     id,
			Attributes: attrs,
		})
	}

	adj, err := g.dag.AdjacencyMap()
	if err != nil {
		return errors.Wrap(err, "unable to build adjacency map")
	}

	for _, src := range g.BlockIDs() {
		for _, tgt := range sortedKeys(adj[src]) {
			desc.Statements = append(desc.Statements, statement{Source: src, Target: tgt})
		}
	}

	tpl, err := template.New("blockgraph").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "unable to parse dot template")
	}

	if err := tpl.Execute(w, desc); err != nil {
		return errors.Wrap(err, "unable to render dot template")
	}

	return nil
}

// heatColor maps count onto a blue-to-red ramp. Zero exports render deep
// blue, the block with the most exports renders near red.
func heatColor(count, max int) (string, error) {
	fraction := 0.0
	if max > 0 {
		fraction = float64(count) / float64(max)
	}

	red := maxRGB * fraction
	blue := maxRGB - red

	c, err := colors.RGB(uint8(red), 0, uint8(blue))
	if err != nil {
		return "", errors.Wrap(err, "unable to build heat color")
	}

	return c.ToHEX().String(), nil
}
