package deps

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/stardag/stardag/internal/ctxlog"
	"github.com/stardag/stardag/internal/measure"
	"github.com/stardag/stardag/pkg/blockgraph"
)

// Analyzer runs the dependency inference. It holds no per-run state, so a
// single Analyzer may serve any number of Analyze calls.
type Analyzer struct {
	oracle     Oracle
	inspector  Inspector
	prelude    string
	concurrent int
}

// New builds an Analyzer around the given oracle and inspector.
func New(oracle Oracle, inspector Inspector, opts ...Option) (*Analyzer, error) {
	if oracle == nil {
		return nil, ErrNilOracle
	}
	if inspector == nil {
		return nil, ErrNilInspector
	}

	a := &Analyzer{
		oracle:     oracle,
		inspector:  inspector,
		concurrent: 1,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.concurrent <= 0 {
		a.concurrent = 1
	}

	return a, nil
}

// Analyze annotates every block of g with its name universe, its ins with
// the consumed parameters, and its outs. Parameters are the pipeline-wide
// name/value mapping; names a block references that match a parameter are
// recorded on the block instead of becoming inter-block dependencies.
//
// Blocks whose source fails analysis are reported in the Result and left
// unannotated; the remaining blocks are analyzed normally. A cyclic graph
// or an oracle malfunction aborts the run before any outs are produced.
func (a *Analyzer) Analyze(ctx context.Context, g *blockgraph.Graph, params map[string]any) (*Result, error) {
	if g == nil {
		return nil, ErrNilGraph
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	col := newCollector()
	met := measure.New()

	if err := a.universePass(ctx, g, col, met.Metric("universe")); err != nil {
		return nil, err
	}

	if err := a.inPass(ctx, g, params, col, met.Metric("ins")); err != nil {
		return nil, err
	}

	if err := a.outPass(ctx, g, col, met.Metric("outs")); err != nil {
		return nil, err
	}

	res := col.result()

	log := ctxlog.FromContext(ctx)
	for _, u := range res.Unresolved {
		log.Warn("in-dependency has no producing ancestor and no matching parameter",
			"block", u.BlockID, "name", u.Name)
	}
	for _, mt := range met.Metrics() {
		log.Debug("pass finished",
			"pass", mt.Name(),
			"blocks", mt.Count(),
			"avg", mt.AVGDuration(),
			"total", mt.TotalDuration())
	}
	log.Debug("analysis finished",
		"blocks", g.Len(),
		"failures", len(res.Failures),
		"unresolved", len(res.Unresolved))

	return res, nil
}

// universePass records every block's name universe, the sets the out-pass
// later intersects against.
func (a *Analyzer) universePass(ctx context.Context, g *blockgraph.Graph, col *collector, mt *measure.Metric) error {
	start := time.Now()
	defer func() { mt.SetTotalDuration(time.Since(start)) }()

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(a.concurrent)

	for _, id := range g.BlockIDs() {
		id := id
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			b, err := g.Block(id)
			if err != nil {
				return err
			}

			begin := time.Now()
			names, err := a.inspector.AllNames(b.SourceText())
			mt.AddDuration(time.Since(begin))
			switch {
			case err == nil:
			case errors.Is(err, ErrSyntaxAnalysis):
				col.fail(id, err)

				return nil
			default:
				return errors.Wrapf(err, "unable to collect the names of block %s", id)
			}

			return g.SetAllNames(id, names)
		})
	}

	return grp.Wait()
}

// inPass computes what every block needs before it runs: the oracle's
// undefined names minus the pipeline parameters it consumes. Each block
// reads only its own source, so blocks are fully independent.
func (a *Analyzer) inPass(ctx context.Context, g *blockgraph.Graph, params map[string]any, col *collector, mt *measure.Metric) error {
	start := time.Now()
	defer func() { mt.SetTotalDuration(time.Since(start)) }()

	paramNames := blockgraph.NewNameSet()
	for name := range params {
		paramNames.Add(name)
	}

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(a.concurrent)

	for _, id := range g.BlockIDs() {
		id := id
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if col.isFailed(id) {
				return nil
			}

			b, err := g.Block(id)
			if err != nil {
				return err
			}

			begin := time.Now()
			undefined, err := a.oracle.Undefined(b.SourceText())
			mt.AddDuration(time.Since(begin))
			switch {
			case err == nil:
			case errors.Is(err, ErrSyntaxAnalysis):
				col.fail(id, err)

				return nil
			default:
				return errors.Wrapf(err, "unable to resolve the names of block %s", id)
			}

			consumed := undefined.Intersect(paramNames)
			ins := undefined.Diff(consumed)

			blockParams := make(map[string]any, consumed.Len())
			for name := range consumed {
				blockParams[name] = params[name]
			}

			return g.SetIns(id, ins, blockParams)
		})
	}

	return grp.Wait()
}

// outPass propagates every block's ins backwards across all of its
// ancestors: an ancestor whose name universe covers a needed name must
// export it. Contributions are commutative-idempotent set unions, so
// blocks run concurrently in no particular order. Ins entries left without
// a producer are surfaced as unresolved, never dropped.
func (a *Analyzer) outPass(ctx context.Context, g *blockgraph.Graph, col *collector, mt *measure.Metric) error {
	start := time.Now()
	defer func() { mt.SetTotalDuration(time.Since(start)) }()

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(a.concurrent)

	for _, id := range g.BlockIDs() {
		id := id
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if col.isFailed(id) {
				return nil
			}

			begin := time.Now()
			defer func() { mt.AddDuration(time.Since(begin)) }()

			ins, err := g.InsSet(id)
			if err != nil {
				return err
			}
			if ins.Len() == 0 {
				return nil
			}

			ancestors, err := g.Ancestors(id)
			if err != nil {
				return err
			}

			resolved := blockgraph.NewNameSet()
			for _, ancestor := range ancestors {
				// A failed block has no name universe and exports nothing.
				if !g.HasAllNames(ancestor) {
					continue
				}

				allNames, err := g.AllNames(ancestor)
				if err != nil {
					return err
				}

				candidate := ins.Intersect(allNames)
				if candidate.Len() == 0 {
					continue
				}

				if err := g.MergeOuts(ancestor, candidate); err != nil {
					return err
				}
				resolved.Union(candidate)
			}

			col.addUnresolved(id, ins.Diff(resolved).Sorted())

			return nil
		})
	}

	return grp.Wait()
}
