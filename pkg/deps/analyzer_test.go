package deps_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stardag/stardag/pkg/blockgraph"
	"github.com/stardag/stardag/pkg/deps"
)

func TestNew(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()

	tcs := map[string]struct {
		oracle    deps.Oracle
		inspector deps.Inspector
		wantErr   error
	}{
		"nominal":       {oracle: checker, inspector: checker},
		"nil oracle":    {inspector: checker, wantErr: deps.ErrNilOracle},
		"nil inspector": {oracle: checker, wantErr: deps.ErrNilInspector},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := deps.New(tc.oracle, tc.inspector)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAnalyzeNilGraph(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()
	analyzer, err := deps.New(checker, checker)
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), nil, nil)
	require.ErrorIs(t, err, deps.ErrNilGraph)
}

func TestAnalyzeChain(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()
	checker.allNames["x = 1"] = []string{"x"}
	checker.allNames["y = x + 1"] = []string{"x", "y"}
	checker.allNames["print(y)"] = []string{"print", "y"}
	checker.undefined["y = x + 1"] = []string{"x"}
	checker.undefined["print(y)"] = []string{"y"}

	g := buildGraph(t,
		[]testBlock{{"a", "x = 1"}, {"b", "y = x + 1"}, {"c", "print(y)"}},
		[][2]string{{"a", "b"}, {"b", "c"}},
	)

	analyzer, err := deps.New(checker, checker)
	require.NoError(t, err)

	res, err := analyzer.Analyze(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.Empty(t, res.Unresolved)

	snap := snapshot(t, g)
	assert.Equal(t, []string{}, snap.ins["a"])
	assert.Equal(t, []string{"x"}, snap.ins["b"])
	assert.Equal(t, []string{"y"}, snap.ins["c"])
	assert.Equal(t, []string{"x"}, snap.outs["a"])
	assert.Equal(t, []string{"y"}, snap.outs["b"])
	assert.Equal(t, []string{}, snap.outs["c"])
}

func TestAnalyzeDiamond(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()
	checker.allNames["z = 1"] = []string{"z"}
	checker.allNames["u = z + 1"] = []string{"u", "z"}
	checker.allNames["v = z + 2"] = []string{"v", "z"}
	checker.allNames["pass"] = nil
	checker.undefined["u = z + 1"] = []string{"z"}
	checker.undefined["v = z + 2"] = []string{"z"}

	g := buildGraph(t,
		[]testBlock{{"a", "z = 1"}, {"b", "u = z + 1"}, {"c", "v = z + 2"}, {"d", "pass"}},
		[][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
	)

	analyzer, err := deps.New(checker, checker)
	require.NoError(t, err)

	res, err := analyzer.Analyze(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.Empty(t, res.Unresolved)

	snap := snapshot(t, g)
	// Both consumers need z, the union collapses the two contributions.
	assert.Equal(t, []string{"z"}, snap.outs["a"])
	assert.Equal(t, []string{}, snap.outs["b"])
	assert.Equal(t, []string{}, snap.outs["c"])
	assert.Equal(t, []string{}, snap.outs["d"])
}

func TestAnalyzeParameters(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()
	checker.allNames["x = 1"] = []string{"x"}
	checker.allNames["y = x * alpha"] = []string{"alpha", "x", "y"}
	checker.undefined["y = x * alpha"] = []string{"alpha", "x"}

	g := buildGraph(t,
		[]testBlock{{"a", "x = 1"}, {"b", "y = x * alpha"}},
		[][2]string{{"a", "b"}},
	)

	analyzer, err := deps.New(checker, checker)
	require.NoError(t, err)

	res, err := analyzer.Analyze(context.Background(), g, map[string]any{"alpha": 10, "unused": true})
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.Empty(t, res.Unresolved)

	snap := snapshot(t, g)
	assert.Equal(t, []string{"x"}, snap.ins["b"])
	assert.Equal(t, map[string]any{"alpha": 10}, snap.params["b"])
	assert.Empty(t, snap.params["a"])

	// Partition: a name is a parameter or an in-dependency, never both.
	for _, id := range g.BlockIDs() {
		for _, in := range snap.ins[id] {
			_, ok := snap.params[id][in]
			assert.False(t, ok, "name %s of block %s is double-counted", in, id)
		}
	}
}

func TestAnalyzeUnresolved(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()
	checker.allNames["x = 1"] = []string{"x"}
	checker.allNames["y = x + ghost"] = []string{"ghost", "x", "y"}
	checker.undefined["y = x + ghost"] = []string{"ghost", "x"}

	g := buildGraph(t,
		[]testBlock{{"a", "x = 1"}, {"b", "y = x + ghost"}},
		[][2]string{{"a", "b"}},
	)

	analyzer, err := deps.New(checker, checker)
	require.NoError(t, err)

	res, err := analyzer.Analyze(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.Equal(t, []deps.UnresolvedName{{BlockID: "b", Name: "ghost"}}, res.Unresolved)

	// The unresolved name stays in ins, it is a diagnostic, not a removal.
	snap := snapshot(t, g)
	assert.Equal(t, []string{"ghost", "x"}, snap.ins["b"])
	assert.Equal(t, []string{"x"}, snap.outs["a"])
}

func TestAnalyzeFailureIsolation(t *testing.T) {
	t.Parallel()

	syntaxErr := deps.ErrSyntaxAnalysis

	checker := newScriptedChecker()
	checker.allNames["x = 1"] = []string{"x"}
	checker.allNamesErrs["x = ("] = syntaxErr
	checker.allNames["z = x + w"] = []string{"w", "x", "z"}
	checker.undefined["z = x + w"] = []string{"w", "x"}

	g := buildGraph(t,
		[]testBlock{{"good", "x = 1"}, {"bad", "x = ("}, {"tail", "z = x + w"}},
		[][2]string{{"good", "bad"}, {"bad", "tail"}},
	)

	analyzer, err := deps.New(checker, checker)
	require.NoError(t, err)

	res, err := analyzer.Analyze(context.Background(), g, nil)
	require.NoError(t, err)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, "bad", res.Failures[0].BlockID)
	require.ErrorIs(t, res.Failures[0].Err, deps.ErrSyntaxAnalysis)

	// The failed block carries no annotations.
	assert.False(t, g.HasAllNames("bad"))
	assert.False(t, g.HasIns("bad"))

	// Healthy blocks are annotated as usual; the name the failed block
	// would have produced surfaces as unresolved.
	snap := snapshot(t, g)
	assert.Equal(t, []string{"w", "x"}, snap.ins["tail"])
	assert.Equal(t, []string{"x"}, snap.outs["good"])
	assert.Equal(t, []deps.UnresolvedName{{BlockID: "tail", Name: "w"}}, res.Unresolved)
}

func TestAnalyzeInPassFailureIsolation(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()
	checker.allNames["x = 1"] = []string{"x"}
	checker.allNames["y ="] = []string{"y"}
	checker.undefinedErrs["y ="] = deps.ErrSyntaxAnalysis

	g := buildGraph(t,
		[]testBlock{{"good", "x = 1"}, {"bad", "y ="}},
		[][2]string{{"good", "bad"}},
	)

	analyzer, err := deps.New(checker, checker)
	require.NoError(t, err)

	res, err := analyzer.Analyze(context.Background(), g, nil)
	require.NoError(t, err)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, "bad", res.Failures[0].BlockID)
	assert.True(t, g.HasAllNames("bad"))
	assert.False(t, g.HasIns("bad"))
	assert.True(t, g.HasIns("good"))
}

func TestAnalyzeOracleInternalFatal(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()
	checker.allNames["x = 1"] = []string{"x"}
	checker.undefinedErrs["x = 1"] = deps.ErrOracleInternal

	g := buildGraph(t, []testBlock{{"a", "x = 1"}}, nil)

	analyzer, err := deps.New(checker, checker)
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), g, nil)
	require.ErrorIs(t, err, deps.ErrOracleInternal)
}

func TestAnalyzeCyclicGraph(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()
	checker.allNames["x = y"] = []string{"x", "y"}
	checker.allNames["y = x"] = []string{"x", "y"}

	g := buildGraph(t,
		[]testBlock{{"a", "x = y"}, {"b", "y = x"}},
		[][2]string{{"a", "b"}, {"b", "a"}},
		blockgraph.AllowCycles(),
	)

	analyzer, err := deps.New(checker, checker)
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), g, nil)
	require.ErrorIs(t, err, blockgraph.ErrCyclicGraph)

	// The run aborted before producing any annotation.
	for _, id := range g.BlockIDs() {
		assert.False(t, g.HasAllNames(id))
		outs, outsErr := g.Outs(id)
		require.NoError(t, outsErr)
		assert.Empty(t, outs)
	}
}

func TestAnalyzeConcurrencyIndependence(t *testing.T) {
	t.Parallel()

	blocks := []testBlock{
		{"load", "raw = read()"},
		{"clean", "data = scrub(raw)"},
		{"split", "train, test = cut(data)"},
		{"fit", "model = fit(train, lr)"},
		{"eval", "score = rate(model, test)"},
	}
	edges := [][2]string{
		{"load", "clean"}, {"clean", "split"},
		{"split", "fit"}, {"split", "eval"}, {"fit", "eval"},
	}

	script := func() *scriptedChecker {
		checker := newScriptedChecker()
		checker.allNames["raw = read()"] = []string{"raw", "read"}
		checker.allNames["data = scrub(raw)"] = []string{"data", "raw", "scrub"}
		checker.allNames["train, test = cut(data)"] = []string{"cut", "data", "test", "train"}
		checker.allNames["model = fit(train, lr)"] = []string{"fit", "lr", "model", "train"}
		checker.allNames["score = rate(model, test)"] = []string{"model", "rate", "score", "test"}
		checker.undefined["data = scrub(raw)"] = []string{"raw"}
		checker.undefined["train, test = cut(data)"] = []string{"data"}
		checker.undefined["model = fit(train, lr)"] = []string{"lr", "train"}
		checker.undefined["score = rate(model, test)"] = []string{"model", "test"}

		return checker
	}

	run := func(concurrent int) annotations {
		g := buildGraph(t, blocks, edges)
		analyzer, err := deps.New(script(), script(), deps.WithConcurrency(concurrent))
		require.NoError(t, err)

		_, err = analyzer.Analyze(context.Background(), g, map[string]any{"lr": 0.5})
		require.NoError(t, err)

		return snapshot(t, g)
	}

	sequential := run(1)
	for _, concurrent := range []int{2, 8} {
		assert.Equal(t, sequential, run(concurrent), "concurrency %d diverged", concurrent)
	}

	// Containment: a block never exports a name outside its universe.
	// Completeness: whatever an ancestor can produce for a consumer, it
	// must export.
	g := buildGraph(t, blocks, edges)
	analyzer, err := deps.New(script(), script(), deps.WithConcurrency(4))
	require.NoError(t, err)
	_, err = analyzer.Analyze(context.Background(), g, map[string]any{"lr": 0.5})
	require.NoError(t, err)

	for _, id := range g.BlockIDs() {
		all, err := g.AllNames(id)
		require.NoError(t, err)
		outs, err := g.Outs(id)
		require.NoError(t, err)
		for _, out := range outs {
			assert.True(t, all.Has(out), "block %s exports %s outside its universe", id, out)
		}
	}
	for _, id := range g.BlockIDs() {
		ins, err := g.InsSet(id)
		require.NoError(t, err)
		ancestors, err := g.Ancestors(id)
		require.NoError(t, err)
		for _, ancestor := range ancestors {
			all, err := g.AllNames(ancestor)
			require.NoError(t, err)
			exported, err := g.Outs(ancestor)
			require.NoError(t, err)
			exportedSet := blockgraph.NewNameSet(exported...)
			for name := range ins.Intersect(all) {
				assert.True(t, exportedSet.Has(name),
					"ancestor %s misses export %s needed by %s", ancestor, name, id)
			}
		}
	}
}

func TestAnalyzeCanceledContext(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()
	checker.allNames["x = 1"] = []string{"x"}

	g := buildGraph(t, []testBlock{{"a", "x = 1"}}, nil)

	analyzer, err := deps.New(checker, checker)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = analyzer.Analyze(ctx, g, nil)
	require.ErrorIs(t, err, context.Canceled)
}
