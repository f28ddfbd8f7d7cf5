package ui

import (
	"context"
	"errors"
	"io"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/kvi/internal/value"
	"github.com/oakwood-commons/kvi/internal/watch"
	"github.com/oakwood-commons/kvi/pkg/inspector"
	"github.com/oakwood-commons/kvi/pkg/loader"
)

// RunOptions configures Run.
type RunOptions struct {
	Theme Theme
	// Watcher, when set, reloads its file into the inspector on change.
	Watcher *watch.Watcher
	// Reload reads the watched file. Nil means loader.LoadFile.
	Reload  func(path string) (value.Value, error)
	Logger  logr.Logger
	Input   io.Reader
	Output  io.Writer
	// Width and Height force the window size; zero means the terminal's.
	Width  int
	Height int
}

// Run starts the interactive view and blocks until the user quits or ctx is
// done.
func Run(ctx context.Context, in *inspector.Inspector, opts RunOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mopts := Options{
		Theme:  opts.Theme,
		Logger: opts.Logger,
		Width:  opts.Width,
		Height: opts.Height,
	}
	if w := opts.Watcher; w != nil {
		mopts.Changes = w.Changes()
		mopts.Reload = opts.Reload
		if mopts.Reload == nil {
			mopts.Reload = loader.LoadFile
		}
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				opts.Logger.Error(err, "watcher stopped", "path", w.Path())
			}
		}()
	}

	popts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		popts = append(popts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		popts = append(popts, tea.WithOutput(opts.Output))
	}
	if opts.Width > 0 && opts.Height > 0 {
		popts = append(popts, tea.WithWindowSize(opts.Width, opts.Height))
	}

	_, err := tea.NewProgram(NewModel(in, mopts), popts...).Run()
	if err != nil && ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return ctx.Err()
	}
	return err
}

// Snapshot renders a single frame without starting a program.
func Snapshot(in *inspector.Inspector, opts Options) string {
	return NewModel(in, opts).render()
}
