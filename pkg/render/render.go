package render

import (
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/stardag/stardag/pkg/blockgraph"
)

// ErrNotAnnotated reports a block the analysis never annotated, either
// because it failed or because no analysis ran.
var ErrNotAnnotated = errors.New("block has no annotations to render")

const stepText = `{{range .Ins}}{{.}} = marshal.load("{{.}}")
{{end}}{{range .Params}}{{.Name}} = {{.Value}}
{{end}}{{.Source}}
{{range .Outs}}marshal.save({{.}}, "{{.}}")
{{end}}`

var stepTemplate = template.Must(template.New("step").Parse(stepText))

// Step is one rendered pipeline step.
type Step struct {
	Name   string
	Source string
}

type config struct {
	force bool
}

// Option configures rendering.
type Option func(*config)

// Force renders blocks without annotations as their bare source instead of
// failing, useful for inspecting a partially analyzed pipeline.
func Force() Option {
	return func(c *config) {
		c.force = true
	}
}

type stepData struct {
	Ins    []string
	Params []paramAssign
	Source string
	Outs   []string
}

type paramAssign struct {
	Name  string
	Value string
}

// Steps renders every block of the graph in topological order.
func Steps(g *blockgraph.Graph, opts ...Option) ([]Step, error) {
	if g == nil {
		return nil, errors.New("graph must be set")
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	steps := make([]Step, 0, len(order))
	for _, id := range order {
		step, err := renderStep(g, id, cfg)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}

	return steps, nil
}

func renderStep(g *blockgraph.Graph, id string, cfg config) (Step, error) {
	b, err := g.Block(id)
	if err != nil {
		return Step{}, err
	}

	data := stepData{Source: b.SourceText()}

	if !g.HasIns(id) {
		if !cfg.force {
			return Step{}, errors.Wrapf(ErrNotAnnotated, "block %s", id)
		}

		return Step{Name: id, Source: data.Source + "\n"}, nil
	}

	if data.Ins, err = g.Ins(id); err != nil {
		return Step{}, err
	}
	if data.Outs, err = g.Outs(id); err != nil {
		return Step{}, err
	}

	params, err := g.Params(id)
	if err != nil {
		return Step{}, err
	}
	for _, name := range sortedParamNames(params) {
		value, err := literal(params[name])
		if err != nil {
			return Step{}, errors.Wrapf(err, "block %s parameter %s", id, name)
		}
		data.Params = append(data.Params, paramAssign{Name: name, Value: value})
	}

	var sb strings.Builder
	if err := stepTemplate.Execute(&sb, data); err != nil {
		return Step{}, errors.Wrapf(err, "unable to render block %s", id)
	}

	return Step{Name: id, Source: sb.String()}, nil
}

func sortedParamNames(params map[string]any) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// literal formats a parameter value as source text.
func literal(v any) (string, error) {
	switch n := v.(type) {
	case nil:
		return "None", nil
	case bool:
		if n {
			return "True", nil
		}

		return "False", nil
	case string:
		return strconv.Quote(n), nil
	case int:
		return strconv.Itoa(n), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case float64:
		s := strconv.FormatFloat(n, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}

		return s, nil
	default:
		return "", errors.Errorf("parameter value %v (%T) has no literal form", v, v)
	}
}
