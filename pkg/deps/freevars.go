package deps

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/stardag/stardag/pkg/blockgraph"
)

// FreeVars is the analysis result for one function: the names its body
// uses without binding them, split from the pipeline parameters it
// consumes.
type FreeVars struct {
	Free     []string
	Consumed map[string]any
}

// FunctionFreeVars analyzes every function defined directly in the block
// source. Each function is checked as prelude plus its own definition, so
// names the prelude provides are never free. Names bound at the block's
// top level are subtracted as well: they exist by the time the function
// runs, even though the oracle cannot see them from the definition alone.
//
// The result maps function names to their free variables; a name collision
// between functions of different blocks is the caller's concern. This is a
// standalone utility, it reads nothing from and writes nothing to a graph.
func (a *Analyzer) FunctionFreeVars(ctx context.Context, source []string, params map[string]any) (map[string]FreeVars, error) {
	text := strings.Join(source, "\n")

	fns, err := a.inspector.Functions(text)
	if err != nil {
		return nil, errors.Wrap(err, "unable to extract functions")
	}

	bindings, err := a.inspector.ModuleBindings(text)
	if err != nil {
		return nil, errors.Wrap(err, "unable to collect top-level bindings")
	}

	paramNames := blockgraph.NewNameSet()
	for name := range params {
		paramNames.Add(name)
	}

	res := make(map[string]FreeVars, len(fns))

	var mu sync.Mutex

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(a.concurrent)

	for _, fn := range fns {
		fn := fn
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			undefined, err := a.oracle.Undefined(a.prelude + "\n" + fn.Source)
			if err != nil {
				return errors.Wrapf(err, "unable to resolve the free variables of %s", fn.Name)
			}

			free := undefined.Diff(blockgraph.NewNameSet(fn.Params...))
			free = free.Diff(bindings)

			consumed := free.Intersect(paramNames)
			free = free.Diff(consumed)

			consumedParams := make(map[string]any, consumed.Len())
			for name := range consumed {
				consumedParams[name] = params[name]
			}

			mu.Lock()
			res[fn.Name] = FreeVars{Free: free.Sorted(), Consumed: consumedParams}
			mu.Unlock()

			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	return res, nil
}
