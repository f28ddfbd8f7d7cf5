// Package config holds the kvi configuration file: an embedded default merged
// with an optional user file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kvi/internal/highlight"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// File is the whole configuration document.
type File struct {
	App AppConfig `yaml:"app" json:"app"`
	UI  UIConfig  `yaml:"ui" json:"ui"`
}

// AppConfig describes the application.
type AppConfig struct {
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// UIConfig groups the display settings.
type UIConfig struct {
	Theme    ThemeSelection         `yaml:"theme" json:"theme"`
	Behavior BehaviorConfig         `yaml:"behavior" json:"behavior"`
	Themes   map[string]ThemeConfig `yaml:"themes,omitempty" json:"themes,omitempty"`
}

// ThemeSelection names the active palette.
type ThemeSelection struct {
	Default string `yaml:"default,omitempty" json:"default,omitempty"`
}

// BehaviorConfig tunes rendering and interaction. Pointer fields distinguish
// "unset" from the zero value when merging.
type BehaviorConfig struct {
	RememberExpansion *bool  `yaml:"remember_expansion,omitempty" json:"remember_expansion,omitempty"`
	Highlight         string `yaml:"highlight,omitempty" json:"highlight,omitempty"`
	TimestampLayout   string `yaml:"timestamp_layout,omitempty" json:"timestamp_layout,omitempty"`
	Indent            *int   `yaml:"indent,omitempty" json:"indent,omitempty"`
	Hyperlinks        *bool  `yaml:"hyperlinks,omitempty" json:"hyperlinks,omitempty"`
	WatchDebounce     string `yaml:"watch_debounce,omitempty" json:"watch_debounce,omitempty"`
}

// ThemeConfig is a palette of color tokens (ANSI numbers or hex).
type ThemeConfig struct {
	Key         string `yaml:"key,omitempty" json:"key,omitempty"`
	String      string `yaml:"string,omitempty" json:"string,omitempty"`
	Number      string `yaml:"number,omitempty" json:"number,omitempty"`
	Bool        string `yaml:"bool,omitempty" json:"bool,omitempty"`
	Null        string `yaml:"null,omitempty" json:"null,omitempty"`
	Link        string `yaml:"link,omitempty" json:"link,omitempty"`
	Comment     string `yaml:"comment,omitempty" json:"comment,omitempty"`
	Punct       string `yaml:"punct,omitempty" json:"punct,omitempty"`
	Hint        string `yaml:"hint,omitempty" json:"hint,omitempty"`
	HighlightFG string `yaml:"highlight_fg,omitempty" json:"highlight_fg,omitempty"`
	HighlightBG string `yaml:"highlight_bg,omitempty" json:"highlight_bg,omitempty"`
	CursorFG    string `yaml:"cursor_fg,omitempty" json:"cursor_fg,omitempty"`
	CursorBG    string `yaml:"cursor_bg,omitempty" json:"cursor_bg,omitempty"`
	InputFG     string `yaml:"input_fg,omitempty" json:"input_fg,omitempty"`
	Status      string `yaml:"status,omitempty" json:"status,omitempty"`
	Error       string `yaml:"error,omitempty" json:"error,omitempty"`
}

// DefaultYAML returns a copy of the embedded default configuration.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Defaults parses the embedded configuration.
func Defaults() (File, error) {
	var f File
	if err := yaml.Unmarshal(embeddedDefaultConfig, &f); err != nil {
		return File{}, fmt.Errorf("decode embedded default config: %w", err)
	}
	if f.UI.Theme.Default == "" || len(f.UI.Themes) == 0 {
		return File{}, errors.New("default config is missing required theme defaults")
	}
	return f, nil
}

// Load returns the defaults merged with the file at path. An empty path
// yields the defaults.
func Load(path string) (File, error) {
	cfg, err := Defaults()
	if err != nil {
		return File{}, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}
	var user File
	if err := yaml.Unmarshal(data, &user); err != nil {
		return File{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg = Merge(cfg, user)
	if err := cfg.Validate(); err != nil {
		return File{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ResolvePath returns explicit when set, otherwise the first existing file
// among $XDG_CONFIG_HOME/kvi/config.yaml and ~/.config/kvi/config.yaml.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, "kvi", "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", "kvi", "config.yaml")
	}
	if candidate == "" {
		return ""
	}
	if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
		return candidate
	}
	return ""
}

// Merge lays the set fields of over on top of base. Themes merge per color.
func Merge(base, over File) File {
	out := base
	out.App.Name = pick(base.App.Name, over.App.Name)
	out.App.Description = pick(base.App.Description, over.App.Description)
	out.UI.Theme.Default = pick(base.UI.Theme.Default, over.UI.Theme.Default)

	b, o := base.UI.Behavior, over.UI.Behavior
	out.UI.Behavior = BehaviorConfig{
		RememberExpansion: pickPtr(b.RememberExpansion, o.RememberExpansion),
		Highlight:         pick(b.Highlight, o.Highlight),
		TimestampLayout:   pick(b.TimestampLayout, o.TimestampLayout),
		Indent:            pickPtr(b.Indent, o.Indent),
		Hyperlinks:        pickPtr(b.Hyperlinks, o.Hyperlinks),
		WatchDebounce:     pick(b.WatchDebounce, o.WatchDebounce),
	}

	themes := make(map[string]ThemeConfig, len(base.UI.Themes)+len(over.UI.Themes))
	for name, th := range base.UI.Themes {
		themes[name] = th
	}
	for name, th := range over.UI.Themes {
		themes[name] = mergeTheme(themes[name], th)
	}
	out.UI.Themes = themes
	return out
}

func mergeTheme(base, over ThemeConfig) ThemeConfig {
	return ThemeConfig{
		Key:         pick(base.Key, over.Key),
		String:      pick(base.String, over.String),
		Number:      pick(base.Number, over.Number),
		Bool:        pick(base.Bool, over.Bool),
		Null:        pick(base.Null, over.Null),
		Link:        pick(base.Link, over.Link),
		Comment:     pick(base.Comment, over.Comment),
		Punct:       pick(base.Punct, over.Punct),
		Hint:        pick(base.Hint, over.Hint),
		HighlightFG: pick(base.HighlightFG, over.HighlightFG),
		HighlightBG: pick(base.HighlightBG, over.HighlightBG),
		CursorFG:    pick(base.CursorFG, over.CursorFG),
		CursorBG:    pick(base.CursorBG, over.CursorBG),
		InputFG:     pick(base.InputFG, over.InputFG),
		Status:      pick(base.Status, over.Status),
		Error:       pick(base.Error, over.Error),
	}
}

func pick(base, over string) string {
	if over != "" {
		return over
	}
	return base
}

func pickPtr[T any](base, over *T) *T {
	if over != nil {
		return over
	}
	return base
}

// Validate checks the values that are parsed later.
func (f File) Validate() error {
	if _, err := highlight.ParseMode(f.UI.Behavior.Highlight); err != nil {
		return err
	}
	if _, err := f.Debounce(); err != nil {
		return err
	}
	if _, ok := f.UI.Themes[f.UI.Theme.Default]; !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", f.UI.Theme.Default, joinNames(f.ThemeNames()))
	}
	return nil
}

// Theme returns the palette called name, or the default palette when name is
// empty.
func (f File) Theme(name string) (ThemeConfig, error) {
	if name == "" {
		name = f.UI.Theme.Default
	}
	th, ok := f.UI.Themes[name]
	if !ok {
		return ThemeConfig{}, fmt.Errorf("unknown theme %q (available: %s)", name, joinNames(f.ThemeNames()))
	}
	return th, nil
}

// ThemeNames lists the configured palettes in order.
func (f File) ThemeNames() []string {
	names := make([]string, 0, len(f.UI.Themes))
	for n := range f.UI.Themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RememberExpansion reports the remember_expansion setting.
func (f File) RememberExpansion() bool {
	return f.UI.Behavior.RememberExpansion != nil && *f.UI.Behavior.RememberExpansion
}

// Hyperlinks reports whether links are emitted as OSC 8 sequences.
func (f File) Hyperlinks() bool {
	return f.UI.Behavior.Hyperlinks == nil || *f.UI.Behavior.Hyperlinks
}

// Indent returns the spaces per nesting level.
func (f File) Indent() int {
	if f.UI.Behavior.Indent == nil || *f.UI.Behavior.Indent <= 0 {
		return 2
	}
	return *f.UI.Behavior.Indent
}

// Debounce returns the watch debounce delay.
func (f File) Debounce() (time.Duration, error) {
	if f.UI.Behavior.WatchDebounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(f.UI.Behavior.WatchDebounce)
	if err != nil {
		return 0, fmt.Errorf("invalid watch_debounce %q: %w", f.UI.Behavior.WatchDebounce, err)
	}
	return d, nil
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
