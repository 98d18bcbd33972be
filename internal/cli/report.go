package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/stardag/stardag/pkg/blockgraph"
	"github.com/stardag/stardag/pkg/deps"
	"github.com/stardag/stardag/pkg/render"
)

type report struct {
	Blocks     []blockReport      `json:"blocks"`
	Failures   []failureReport    `json:"failures,omitempty"`
	Unresolved []unresolvedReport `json:"unresolved,omitempty"`
}

type blockReport struct {
	ID     string   `json:"id"`
	Ins    []string `json:"ins"`
	Outs   []string `json:"outs"`
	Params []string `json:"params"`
}

type failureReport struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type unresolvedReport struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func writeReport(out io.Writer, g *blockgraph.Graph, res *deps.Result) error {
	rep, err := buildReport(g, res)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	return errors.Wrap(enc.Encode(rep), "unable to encode report")
}

// buildReport lists the annotated blocks in topological order. Failed
// blocks carry no annotations and appear under failures instead.
func buildReport(g *blockgraph.Graph, res *deps.Result) (*report, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	rep := &report{Blocks: make([]blockReport, 0, len(order))}
	for _, id := range order {
		if !g.HasIns(id) {
			continue
		}

		ins, err := g.Ins(id)
		if err != nil {
			return nil, err
		}
		outs, err := g.Outs(id)
		if err != nil {
			return nil, err
		}
		params, err := g.Params(id)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)

		rep.Blocks = append(rep.Blocks, blockReport{ID: id, Ins: ins, Outs: outs, Params: names})
	}

	for _, f := range res.Failures {
		rep.Failures = append(rep.Failures, failureReport{ID: f.BlockID, Error: f.Err.Error()})
	}
	for _, u := range res.Unresolved {
		rep.Unresolved = append(rep.Unresolved, unresolvedReport{ID: u.BlockID, Name: u.Name})
	}

	return rep, nil
}

func writeSteps(out io.Writer, g *blockgraph.Graph, force bool) error {
	var opts []render.Option
	if force {
		opts = append(opts, render.Force())
	}

	steps, err := render.Steps(g, opts...)
	if err != nil {
		return err
	}

	for i, step := range steps {
		if i > 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return errors.Wrap(err, "unable to write steps")
			}
		}
		if _, err := fmt.Fprintf(out, "# step: %s\n%s", step.Name, step.Source); err != nil {
			return errors.Wrap(err, "unable to write steps")
		}
	}

	return nil
}
