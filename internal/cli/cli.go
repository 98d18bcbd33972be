// Package cli parses the command line and drives a full analysis run:
// load notebook, build the block graph, analyze, emit the report.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ExitError carries the process exit code an error should produce. Usage
// errors exit 2, runtime failures exit 1.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Config is the validated command line.
type Config struct {
	NotebookPath string
	Output       string
	Workers      int
	Force        bool
	LogFormat    string
	LogLevel     string
	ParamsFile   string

	// Params holds -param overrides, already typed.
	Params map[string]any
}

// paramFlags collects repeated -param name=value flags.
type paramFlags map[string]any

func (p paramFlags) String() string {
	return ""
}

func (p paramFlags) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	p[name] = paramValue(value)

	return nil
}

// paramValue types a raw flag value the way a parameter cell would:
// ints, floats, booleans and None parse, anything else stays a string.
func paramValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "True", "true":
		return true
	case "False", "false":
		return false
	case "None", "none", "null":
		return nil
	}

	return s
}

// Parse processes command-line arguments. The boolean is true when the
// program should exit cleanly without running, e.g. after -h.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	flagSet := flag.NewFlagSet("stardag", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `stardag - dependency analysis for tagged Starlark notebooks.

Usage:
  stardag [options] NOTEBOOK.ipynb

Options:
`)
		flagSet.PrintDefaults()
	}

	params := paramFlags{}
	flagSet.Var(params, "param", "Override one pipeline parameter as name=value. Repeatable.")
	paramsFileFlag := flagSet.String("params", "", "YAML file with pipeline parameter overrides.")
	outputFlag := flagSet.String("o", "json", "Report format. Options: 'json', 'dot' or 'steps'.")
	workersFlag := flagSet.Int("workers", 1, "Number of concurrent analysis workers.")
	forceFlag := flagSet.Bool("force", false, "Render steps even for blocks the analysis could not annotate.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Log level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}

		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()

		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, usageError("expected one notebook path, got %d", flagSet.NArg())
	}

	format := strings.ToLower(*outputFlag)
	switch format {
	case "json", "dot", "steps":
	default:
		return nil, false, usageError("invalid -o: must be 'json', 'dot' or 'steps'")
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	return &Config{
		NotebookPath: flagSet.Arg(0),
		Output:       format,
		Workers:      *workersFlag,
		Force:        *forceFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		ParamsFile:   *paramsFileFlag,
		Params:       params,
	}, false, nil
}
