// Package cmd is the kvi command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kvi/internal/cel"
	"github.com/oakwood-commons/kvi/internal/config"
	"github.com/oakwood-commons/kvi/internal/formatter"
	"github.com/oakwood-commons/kvi/internal/highlight"
	"github.com/oakwood-commons/kvi/internal/limiter"
	"github.com/oakwood-commons/kvi/internal/path"
	"github.com/oakwood-commons/kvi/internal/ui"
	"github.com/oakwood-commons/kvi/internal/value"
	"github.com/oakwood-commons/kvi/internal/watch"
	"github.com/oakwood-commons/kvi/pkg/inspector"
	"github.com/oakwood-commons/kvi/pkg/loader"
	"github.com/oakwood-commons/kvi/pkg/logger"
	"github.com/oakwood-commons/kvi/pkg/settings"
)

var (
	interactive       bool
	output            string
	configOutput      string
	versionOutput     string
	expression        string
	searchTerm        string
	themeName         string
	configFile        string
	debug             bool
	noColor           bool
	width             int
	height            int
	limitRecords      int
	offsetRecords     int
	tailRecords       int
	expandPaths       []string
	rememberExpansion bool
	highlightMode     string
	timestampLayout   string
	watchFile         bool
	decodeScalars     bool
	arrayStyle        string

	// Tree output options
	treeNoValues     bool
	treeMaxDepth     int
	treeMaxStringLen int // 0 = auto; -1 = unlimited
)

var rootCtx = context.Background()

// errNoMatch reports a search that matched nothing.
var errNoMatch = errors.New("no match")

// usageError marks an invalid invocation. It exits with code 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

// ExitCode maps an Execute error to the process exit code.
func ExitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue):
		return 2
	default:
		return 1
	}
}

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " [file]",
	Short: "Browse, fold and search structured data",
	Long: `kvi renders JSON, YAML, TOML, NDJSON or a JWT as a foldable tree.

A search keeps only the leaves whose text contains the query (case-insensitive)
together with their ancestors, and highlights the last match.`,
	Example: `  kvi data.json
  kvi data.yaml --search alice
  curl -s https://api.example.com/items | kvi -i
  kvi data.json -e '_.items.filter(x, x.active)' -o yaml
  kvi config.yaml --watch -i`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var level int8
		if debug {
			level = logger.DebugLevel
		}
		lgr := logger.Get(level)
		source := "stdin"
		if len(args) > 0 {
			source = args[0]
		}
		lgr = logger.WithValues(lgr, logger.CommandKey, cmd.Name(), logger.SourceKey, source)
		rootCtx = logger.WithLogger(context.Background(), lgr)
	},
	RunE: runRoot,
}

func runRoot(cmd *cobra.Command, args []string) error {
	run, err := runSettings(args)
	if err != nil {
		return err
	}
	ctx := settings.IntoContext(rootCtx, run)
	lgr := *logger.FromContext(ctx)

	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	mode, _ := formatter.ParseMode(run.Output)

	pipe, err := newPipeline(run.Expression, decodeScalars,
		limiter.Config{Limit: limitRecords, Offset: offsetRecords, Tail: tailRecords})
	if err != nil {
		return err
	}
	root, err := readInput(cmd.InOrStdin(), run.Source)
	if err != nil {
		return err
	}
	if root, err = pipe.apply(root); err != nil {
		return err
	}

	in, err := newInspector(cfg, run, lgr)
	if err != nil {
		return err
	}
	tree := in.Render(root, inspector.RenderOptions{Query: run.Query})
	for _, p := range expandPaths {
		if !in.Expand(path.Path(p)) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: --expand %s: no such node\n", p)
		}
	}

	if run.Interactive {
		return runInteractive(ctx, in, cfg, run, pipe)
	}

	if tree.Empty() {
		return fmt.Errorf("%w for %q", errNoMatch, run.Query)
	}
	projected, _ := in.Projection()
	out, err := formatter.Format(projected, formatter.Options{
		Mode:   mode,
		Root:   in.Tree().Root,
		Styles: outputStyles(cmd.OutOrStdout(), cfg, run),
		Indent: cfg.Indent(),
		Tree:   treeOptions(cmd.OutOrStdout(), in),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// runSettings validates the flags and collects them into a run.
func runSettings(args []string) (*settings.Run, error) {
	run := settings.NewCliParams()
	var level int8
	if debug {
		level = logger.DebugLevel
	}
	run.MinLogLevel = level
	run.Interactive = interactive
	run.NoColor = noColor
	run.Query = searchTerm
	run.Expression = strings.TrimSpace(expression)
	run.RememberExpansion = rememberExpansion
	run.HighlightMode = highlightMode
	run.TimestampLayout = timestampLayout

	if len(args) > 0 && args[0] != "-" {
		run.Source = settings.Source{Path: args[0], Watch: watchFile}
	}
	if watchFile && run.Source.Path == "" {
		return nil, usageErrorf("--watch needs a file argument")
	}
	if watchFile && !interactive {
		return nil, usageErrorf("--watch only applies to the interactive view (-i)")
	}

	mode, err := formatter.ParseMode(output)
	if err != nil {
		return nil, usageError{err: err}
	}
	run.Output = string(mode)

	if highlightMode != "" {
		if _, err := highlight.ParseMode(highlightMode); err != nil {
			return nil, usageError{err: err}
		}
	}
	lim := limiter.Config{Limit: limitRecords, Offset: offsetRecords, Tail: tailRecords}
	if err := lim.Validate(); err != nil {
		return nil, usageErrorf("record limiting: %w", err)
	}
	if err := formatter.ValidateArrayStyle(arrayStyle); err != nil {
		return nil, usageError{err: err}
	}
	if width < 0 || height < 0 {
		return nil, usageErrorf("--width and --height must not be negative")
	}
	return run, nil
}

// readInput loads the document named by src, or stdin.
func readInput(stdin io.Reader, src settings.Source) (value.Value, error) {
	if src.Path != "" {
		return loader.LoadFile(src.Path)
	}
	v, err := loader.LoadReader(stdin)
	if errors.Is(err, loader.ErrEmptyInput) {
		return value.Value{}, usageErrorf("no input: pass a file or pipe a document on stdin")
	}
	return v, err
}

// newInspector applies the config file, then the flags that override it.
func newInspector(cfg config.File, run *settings.Run, lgr logr.Logger) (*inspector.Inspector, error) {
	hl := cfg.UI.Behavior.Highlight
	if run.HighlightMode != "" {
		hl = run.HighlightMode
	}
	mode, err := highlight.ParseMode(hl)
	if err != nil {
		return nil, err
	}
	layout := cfg.UI.Behavior.TimestampLayout
	if run.TimestampLayout != "" {
		layout = run.TimestampLayout
	}
	return inspector.New(
		inspector.WithRememberExpansion(run.RememberExpansion || cfg.RememberExpansion()),
		inspector.WithHighlightMode(mode),
		inspector.WithTimestampLayout(layout),
		inspector.WithLogger(lgr),
	), nil
}

// pipeline is the processing applied to a freshly read document, on the
// first load and on every --watch reload.
type pipeline struct {
	decode bool
	expr   string
	eval   *cel.Evaluator
	limit  limiter.Config
}

func newPipeline(expr string, decode bool, limit limiter.Config) (*pipeline, error) {
	p := &pipeline{decode: decode, expr: expr, limit: limit}
	if expr != "" {
		eval, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		p.eval = eval
	}
	return p, nil
}

// apply decodes embedded documents, selects with the expression, then
// limits records.
func (p *pipeline) apply(root value.Value) (value.Value, error) {
	if p.decode {
		root = loader.RecursiveDecode(root)
	}
	if p.eval != nil {
		var err error
		root, err = p.eval.Evaluate(p.expr, root)
		if err != nil {
			return value.Value{}, fmt.Errorf("expression: %w", err)
		}
	}
	return p.limit.Apply(root), nil
}

// loadFile reads file and runs it through the pipeline.
func (p *pipeline) loadFile(file string) (value.Value, error) {
	v, err := loader.LoadFile(file)
	if err != nil {
		return value.Value{}, err
	}
	return p.apply(v)
}

func runInteractive(ctx context.Context, in *inspector.Inspector, cfg config.File, run *settings.Run, pipe *pipeline) error {
	lgr := *logger.FromContext(ctx)
	theme, err := interactiveTheme(cfg, run)
	if err != nil {
		return err
	}
	opts := ui.RunOptions{Theme: theme, Logger: lgr, Width: width, Height: height}

	if run.Source.Stdin || run.Source.Path == "" {
		if stdinIsPiped() {
			ttyIn, ttyOut, err := openTerminalIOFn()
			if err != nil {
				return fmt.Errorf("interactive mode needs a terminal: %w", err)
			}
			defer func() {
				_ = ttyIn.Close()
				if ttyOut != ttyIn {
					_ = ttyOut.Close()
				}
			}()
			opts.Input, opts.Output = ttyIn, ttyOut
		}
	}

	if run.Source.Watch {
		debounce, err := cfg.Debounce()
		if err != nil {
			return err
		}
		w, err := watch.New(run.Source.Path, debounce, lgr)
		if err != nil {
			return err
		}
		opts.Watcher = w
		opts.Reload = pipe.loadFile
	}
	return ui.Run(ctx, in, opts)
}

func interactiveTheme(cfg config.File, run *settings.Run) (ui.Theme, error) {
	if run.NoColor || os.Getenv("NO_COLOR") != "" {
		return ui.PlainTheme(cfg.Indent()), nil
	}
	tc, err := cfg.Theme(themeName)
	if err != nil {
		return ui.Theme{}, usageError{err: err}
	}
	return ui.ThemeFromConfig(tc, cfg.Hyperlinks(), cfg.Indent()), nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the kvi version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printVersion(cmd.OutOrStdout(), versionOutput)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits
	f := rootCmd.Flags()
	f.BoolVarP(&interactive, "interactive", "i", false, "start the interactive tree view")
	f.StringVarP(&output, "output", "o", "text", "output format: text|tree|json|yaml|toml")
	f.StringVarP(&expression, "expression", "e", "", "CEL expression selecting the inspected root, with '_' as the document. Example: '_.items[0]'")
	f.StringVar(&searchTerm, "search", "", "keep only leaves containing this text (case-insensitive) and their ancestors")
	f.StringArrayVar(&expandPaths, "expand", nil, "open the node at PATH (e.g. '$.items[0].spec'); repeatable")
	f.BoolVar(&rememberExpansion, "remember-expansion", false, "keep expanded/collapsed nodes by path across searches and reloads")
	f.StringVar(&highlightMode, "highlight", "", "highlight matching: prefix|segment (default from config)")
	f.StringVar(&timestampLayout, "timestamp-layout", "", "Go time layout for epoch timestamp comments (default from config)")
	f.BoolVar(&watchFile, "watch", false, "reload the file when it changes (interactive only)")
	f.BoolVar(&decodeScalars, "decode", false, "decode string scalars that hold JSON, YAML or a JWT")
	f.StringVar(&themeName, "theme", "", "theme name (default from config; see 'kvi config themes')")
	f.BoolVar(&noColor, "no-color", false, "disable color output")
	f.IntVar(&width, "width", 0, "output width in columns (0 = terminal width)")
	f.IntVar(&height, "height", 0, "interactive view height in rows (0 = terminal height)")
	f.IntVar(&limitRecords, "limit", 0, "limit the number of records displayed")
	f.IntVar(&offsetRecords, "offset", 0, "skip the first N records")
	f.IntVar(&tailRecords, "tail", 0, "show the last N records (mutually exclusive with --limit; ignores --offset)")
	f.StringVar(&arrayStyle, "array-style", "index", "tree output array index style: index|numbered|bullet|none")
	f.BoolVar(&treeNoValues, "tree-no-values", false, "show structure only (hide values) in tree output")
	f.IntVar(&treeMaxDepth, "tree-depth", 0, "limit tree output depth (0 = unlimited)")
	f.IntVar(&treeMaxStringLen, "tree-max-string", 0, "max value width in tree output (0 = auto, -1 = unlimited)")

	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug logs to stderr")

	versionCmd.Flags().StringVarP(&versionOutput, "output", "o", "text", "output format: text|json|yaml")
	rootCmd.Version = settings.VersionInformation.BuildVersion
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(versionCmd, configCmd)
}
