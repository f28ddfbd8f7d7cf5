package tui

import (
	"io"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/kvi/internal/config"
	"github.com/oakwood-commons/kvi/internal/highlight"
	"github.com/oakwood-commons/kvi/internal/ui"
	"github.com/oakwood-commons/kvi/pkg/inspector"
)

// Config holds host-provided settings for running the tree view.
type Config struct {
	// ThemeName picks a built-in palette; empty uses the configured default.
	ThemeName string
	NoColor   bool
	Width     int
	Height    int
	// Query is the initial search query.
	Query string
	// Expand lists paths to open on start, e.g. "$.items[3]".
	Expand            []string
	RememberExpansion bool
	// HighlightMode is "prefix" (default) or "segment".
	HighlightMode   string
	TimestampLayout string
	Logger          logr.Logger
	Input           io.Reader
	Output          io.Writer
}

// DefaultConfig returns the same defaults as the CLI.
func DefaultConfig() Config {
	cfg := Config{Logger: logr.Discard()}
	if f, err := config.Defaults(); err == nil {
		cfg.ThemeName = f.UI.Theme.Default
		cfg.RememberExpansion = f.RememberExpansion()
		cfg.HighlightMode = f.UI.Behavior.Highlight
		cfg.TimestampLayout = f.UI.Behavior.TimestampLayout
	}
	return cfg
}

func (c Config) logger() logr.Logger {
	if c.Logger.GetSink() == nil {
		return logr.Discard()
	}
	return c.Logger
}

func (c Config) inspector() (*inspector.Inspector, error) {
	mode, err := highlight.ParseMode(c.HighlightMode)
	if err != nil {
		return nil, err
	}
	return inspector.New(
		inspector.WithRememberExpansion(c.RememberExpansion),
		inspector.WithHighlightMode(mode),
		inspector.WithTimestampLayout(c.TimestampLayout),
		inspector.WithLogger(c.logger()),
	), nil
}

func (c Config) theme() (ui.Theme, error) {
	f, err := config.Defaults()
	if err != nil {
		return ui.Theme{}, err
	}
	if c.NoColor {
		return ui.PlainTheme(f.Indent()), nil
	}
	tc, err := f.Theme(c.ThemeName)
	if err != nil {
		return ui.Theme{}, err
	}
	return ui.ThemeFromConfig(tc, f.Hyperlinks(), f.Indent()), nil
}
