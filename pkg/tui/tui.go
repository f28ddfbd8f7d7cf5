// Package tui lets host programs open the kvi tree view on their own data.
package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/term"

	"github.com/oakwood-commons/kvi/internal/path"
	"github.com/oakwood-commons/kvi/internal/ui"
	"github.com/oakwood-commons/kvi/pkg/inspector"
	"github.com/oakwood-commons/kvi/pkg/loader"
)

// defaultFallbackTermWidth is used when terminal size cannot be detected.
const defaultFallbackTermWidth = 120

// DetectTerminalSize returns the best-effort terminal width and height by
// probing stdout, stderr and stdin, then falling back to COLUMNS.
func DetectTerminalSize() (width int, height int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 24
}

// Run opens the interactive view on root and blocks until the user quits.
// Strings and byte slices are parsed as JSON, YAML, TOML, NDJSON or JWT;
// other values are walked as plain Go data.
func Run(ctx context.Context, root any, cfg Config) error {
	in, err := prepare(root, cfg)
	if err != nil {
		return err
	}
	theme, err := cfg.theme()
	if err != nil {
		return err
	}
	return ui.Run(ctx, in, ui.RunOptions{
		Theme:  theme,
		Logger: cfg.logger(),
		Input:  cfg.Input,
		Output: cfg.Output,
		Width:  cfg.Width,
		Height: cfg.Height,
	})
}

// RenderSnapshot renders one frame of the view as a string, for previews and
// golden tests.
func RenderSnapshot(root any, cfg Config) (string, error) {
	in, err := prepare(root, cfg)
	if err != nil {
		return "", err
	}
	theme, err := cfg.theme()
	if err != nil {
		return "", err
	}
	return ui.Snapshot(in, ui.Options{
		Theme:  theme,
		Logger: cfg.logger(),
		Width:  cfg.Width,
		Height: cfg.Height,
	}), nil
}

// CopyToClipboard writes text to the system clipboard.
func CopyToClipboard(text string) error {
	return ui.CopyToClipboard(text)
}

func prepare(root any, cfg Config) (*inspector.Inspector, error) {
	v, err := loader.LoadObject(root)
	if err != nil {
		return nil, err
	}
	in, err := cfg.inspector()
	if err != nil {
		return nil, err
	}
	in.Render(v, inspector.RenderOptions{Query: cfg.Query})
	for _, p := range cfg.Expand {
		if !in.Expand(path.Path(p)) {
			return nil, fmt.Errorf("expand %s: no such node", p)
		}
	}
	return in, nil
}
