// Package inspector is the embeddable entry point of kvi: it owns the current
// tree instance, its expansion state and the active search query.
//
// An Inspector is not safe for concurrent use.
package inspector

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/kvi/internal/expansion"
	"github.com/oakwood-commons/kvi/internal/highlight"
	"github.com/oakwood-commons/kvi/internal/path"
	"github.com/oakwood-commons/kvi/internal/render"
	"github.com/oakwood-commons/kvi/internal/search"
	"github.com/oakwood-commons/kvi/internal/value"
)

// Value, Path and Node are re-exported so embedding programs can build input
// and read results without importing internal packages.
type (
	Value = value.Value
	Path  = path.Path
	Node  = render.Node
)

// FromAny classifies a plain Go value into a Value.
func FromAny(v any) Value { return value.FromAny(v) }

// Tree is one rendered tree instance.
type Tree struct {
	// Root is nil when a query matched nothing.
	Root  *render.Node
	Query string
	// Highlight is the address of the last matching leaf.
	Highlight highlight.State
	// Generation increases every time the instance is replaced.
	Generation uint64
	// Hits counts the matching leaves.
	Hits int
}

// Empty reports whether the tree has nothing to show.
func (t *Tree) Empty() bool {
	return t == nil || t.Root == nil
}

// Text draws the tree without styling, as the CLI prints it to a pipe.
func (t *Tree) Text() string {
	if t.Empty() {
		return ""
	}
	return render.Text(t.Root, render.Styles{})
}

// RenderOptions are the per-call inputs of Render.
type RenderOptions struct {
	Query string
	// OnHighlightChange replaces the callback set with WithOnHighlightChange.
	OnHighlightChange func(path.Path)
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithRememberExpansion keeps expansion flags by path across tree instances.
func WithRememberExpansion(on bool) Option {
	return func(in *Inspector) {
		if on {
			in.store = expansion.NewStore()
		} else {
			in.store = nil
		}
	}
}

// WithHighlightMode selects prefix or segment highlight matching.
func WithHighlightMode(m highlight.Mode) Option {
	return func(in *Inspector) { in.mode = m }
}

// WithTimestampLayout sets the time layout of epoch comments.
func WithTimestampLayout(layout string) Option {
	return func(in *Inspector) { in.ruleCfg.TimestampLayout = layout }
}

// WithLocation sets the zone of epoch comments. The default is time.Local.
func WithLocation(loc *time.Location) Option {
	return func(in *Inspector) { in.ruleCfg.Location = loc }
}

// WithLogger sets the logger. Render statistics are logged at V(1).
func WithLogger(lgr logr.Logger) Option {
	return func(in *Inspector) { in.log = lgr }
}

// WithOnHighlightChange registers a callback fired when the highlight path
// changes. It receives "" when the highlight clears.
func WithOnHighlightChange(fn func(path.Path)) Option {
	return func(in *Inspector) { in.onHighlight = fn }
}

// Inspector renders one value tree at a time.
type Inspector struct {
	mode        highlight.Mode
	ruleCfg     render.RuleConfig
	rules       []render.Rule
	store       *expansion.Store
	log         logr.Logger
	onHighlight func(path.Path)

	root      value.Value
	hasRoot   bool
	query     string
	projected search.Result
	state     *expansion.State
	current   *Tree
	gen       uint64
	lastMark  path.Path
}

// New returns an Inspector with no tree.
func New(opts ...Option) *Inspector {
	in := &Inspector{mode: highlight.ModePrefix, log: logr.Discard()}
	for _, opt := range opts {
		opt(in)
	}
	in.rules = render.DefaultRules(in.ruleCfg)
	return in
}

// Render replaces the tree instance with v filtered by opts.Query. Expansion
// state starts over unless remembered expansion is on.
func (in *Inspector) Render(v value.Value, opts RenderOptions) *Tree {
	if opts.OnHighlightChange != nil {
		in.onHighlight = opts.OnHighlightChange
	}
	in.root, in.hasRoot = v, true
	in.query = opts.Query
	return in.replace()
}

// SetQuery re-projects the current root with q. Any call starts a new
// instance, even when q equals the current query.
func (in *Inspector) SetQuery(q string) *Tree {
	in.query = q
	if !in.hasRoot {
		return in.current
	}
	return in.replace()
}

// SetRoot replaces the inspected value and keeps the query.
func (in *Inspector) SetRoot(v value.Value) *Tree {
	in.root, in.hasRoot = v, true
	return in.replace()
}

// Toggle flips the expansion of a node rendered in the current instance.
// Unknown paths are ignored.
func (in *Inspector) Toggle(p path.Path) bool {
	if in.state == nil {
		return false
	}
	ok := in.state.Toggle(p)
	in.log.V(1).Info("toggle", "path", string(p), "applied", ok)
	return ok
}

// SetExpanded forces the expansion of a rendered node.
func (in *Inspector) SetExpanded(p path.Path, open bool) bool {
	if in.state == nil {
		return false
	}
	return in.state.Set(p, open)
}

// Expand opens p and every collapsed ancestor of p, then redraws. It reports
// false when p does not address a node of the current projection. p is
// parsed as typed by a user; use ExpandSegments for addresses that come from
// a search.
func (in *Inspector) Expand(p path.Path) bool {
	segs, err := path.Parse(p)
	if err != nil {
		in.log.V(1).Info("expand: bad path", "path", string(p), "error", err.Error())
		return false
	}
	return in.ExpandSegments(segs)
}

// ExpandSegments is Expand for a typed address, such as Tree.Highlight.Segments.
func (in *Inspector) ExpandSegments(segs path.Segments) bool {
	if in.state == nil || in.current.Root == nil {
		return false
	}
	for i := 0; i <= len(segs); i++ {
		n := in.current.Root.FindSegments(segs[:i])
		if n == nil {
			return false
		}
		if n.Toggleable && !n.Expanded {
			in.state.Set(n.Path, true)
			in.current = in.draw()
		}
	}
	return in.current.Root.FindSegments(segs) != nil
}

// Tree redraws the current instance, picking up toggles. It returns nil
// before the first Render.
func (in *Inspector) Tree() *Tree {
	if in.state == nil {
		return nil
	}
	in.current = in.draw()
	return in.current
}

// Query returns the active query.
func (in *Inspector) Query() string {
	return in.query
}

// Rules returns the scalar rules the inspector renders with.
func (in *Inspector) Rules() []render.Rule {
	return in.rules
}

// Projection returns the value currently shown and whether anything matched.
func (in *Inspector) Projection() (value.Value, bool) {
	return in.projected.Value, in.projected.Present
}

func (in *Inspector) replace() *Tree {
	in.projected = search.Project(in.root, in.query)
	in.state = expansion.NewState(in.store)
	in.gen++
	in.current = in.draw()

	in.log.V(1).Info("projected",
		"query", in.query,
		"generation", in.gen,
		"present", in.projected.Present,
		"leaves", in.projected.Leaves,
		"hits", in.projected.Hits,
		"match", string(in.projected.Match),
	)
	in.notify()
	return in.current
}

func (in *Inspector) draw() *Tree {
	t := &Tree{Query: in.query, Generation: in.gen, Hits: in.projected.Hits}
	if in.projected.Matched {
		t.Highlight = highlight.At(in.projected.MatchSegments)
	}
	if !in.projected.Present {
		return t
	}
	t.Root = render.Render(in.projected.Value, render.Options{
		Expansion: in.state,
		Highlight: t.Highlight,
		Mode:      in.mode,
		Rules:     in.rules,
	})
	in.log.V(1).Info("rendered", "generation", in.gen, "nodes", in.state.Len())
	return t
}

func (in *Inspector) notify() {
	var mark path.Path
	if in.projected.Matched {
		mark = in.projected.Match
	}
	if mark == in.lastMark {
		return
	}
	in.lastMark = mark
	if in.onHighlight != nil {
		in.onHighlight(mark)
	}
}
