package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/stardag/stardag/internal/ctxlog"
	"github.com/stardag/stardag/pkg/blockgraph"
	"github.com/stardag/stardag/pkg/deps"
	"github.com/stardag/stardag/pkg/notebook"
	"github.com/stardag/stardag/pkg/starsrc"
)

// marshalHelper is the runtime name rendered steps use to exchange data.
// The analysis treats it as predeclared so it never reports as missing.
const marshalHelper = "marshal"

// Run executes one full analysis: load the notebook, build the block graph,
// analyze it and emit the report in the configured format.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	logger := newLogger(cfg, os.Stderr)
	ctx = ctxlog.WithLogger(ctx, logger)

	checker := starsrc.New(starsrc.WithPredeclared(marshalHelper))

	n, err := notebook.Load(cfg.NotebookPath)
	if err != nil {
		return err
	}

	p, err := n.Build(checker)
	if err != nil {
		return err
	}

	params, err := mergeParams(p.Params, cfg)
	if err != nil {
		return err
	}

	analyzer, err := deps.New(checker, checker,
		deps.WithConcurrency(cfg.Workers),
		deps.WithPrelude(p.Prelude),
	)
	if err != nil {
		return err
	}

	res, err := analyzer.Analyze(ctx, p.Graph, params)
	if err != nil {
		return err
	}

	logger.Info("analysis finished",
		"notebook", cfg.NotebookPath,
		"blocks", p.Graph.Len(),
		"failures", len(res.Failures),
		"unresolved", len(res.Unresolved),
	)

	switch cfg.Output {
	case "dot":
		flagged := make([]string, 0, len(res.Unresolved))
		for _, u := range res.Unresolved {
			flagged = append(flagged, u.BlockID)
		}

		return p.Graph.WriteDOT(out, blockgraph.Highlight(flagged...))
	case "steps":
		return writeSteps(out, p.Graph, cfg.Force)
	default:
		return writeReport(out, p.Graph, res)
	}
}

// mergeParams layers the parameter sources: the notebook's declarations,
// then the YAML file, then the -param flags. Later layers win.
func mergeParams(declared map[string]any, cfg *Config) (map[string]any, error) {
	params := make(map[string]any, len(declared))
	for k, v := range declared {
		params[k] = v
	}

	if cfg.ParamsFile != "" {
		data, err := os.ReadFile(cfg.ParamsFile)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read params file %s", cfg.ParamsFile)
		}
		var fileParams map[string]any
		if err := yaml.Unmarshal(data, &fileParams); err != nil {
			return nil, errors.Wrapf(err, "unable to decode params file %s", cfg.ParamsFile)
		}
		for k, v := range fileParams {
			params[k] = v
		}
	}

	for k, v := range cfg.Params {
		params[k] = v
	}

	return params, nil
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}
