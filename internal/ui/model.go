// Package ui is the interactive tree view: a cursor over the rendered lines
// of an inspector, a live search input and optional file watching.
package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/go-logr/logr"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/kvi/internal/path"
	"github.com/oakwood-commons/kvi/internal/render"
	"github.com/oakwood-commons/kvi/internal/value"
	"github.com/oakwood-commons/kvi/internal/watch"
	"github.com/oakwood-commons/kvi/pkg/inspector"
)

// header and footer rows around the tree body
const chromeRows = 3

// Options configures a Model.
type Options struct {
	Theme Theme
	Keys  *KeyMap
	// Changes delivers file events; Reload re-reads the file on each one.
	Changes <-chan watch.Change
	Reload  func(path string) (value.Value, error)
	Logger  logr.Logger
	// Width and Height seed the size until the first WindowSizeMsg.
	Width  int
	Height int
}

type changeMsg watch.Change

type watchDoneMsg struct{}

// Model is the bubbletea model of the tree view. The inspector must have
// rendered a root before the model is created.
type Model struct {
	in    *inspector.Inspector
	tree  *inspector.Tree
	lines []render.Line

	cursor int
	offset int
	width  int
	height int

	theme Theme
	keys  KeyMap
	help  help.Model

	input     textinput.Model
	searching bool
	prevQuery string

	status    string
	statusErr bool

	changes <-chan watch.Change
	reload  func(string) (value.Value, error)
	log     logr.Logger
}

// NewModel wraps in.
func NewModel(in *inspector.Inspector, opts Options) *Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "search keys and values"
	ti.CharLimit = 500
	ti.SetWidth(80)
	ti.SetValue(in.Query())

	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	lgr := opts.Logger
	if lgr.GetSink() == nil {
		lgr = logr.Discard()
	}

	m := &Model{
		in:      in,
		width:   opts.Width,
		height:  opts.Height,
		theme:   opts.Theme,
		keys:    keys,
		help:    help.New(),
		input:   ti,
		changes: opts.Changes,
		reload:  opts.Reload,
		log:     lgr,
	}
	m.setTree(in.Tree())
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.waitForChange()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.SetWidth(max(msg.Width-4, 10))
		m.scroll()
		return m, nil

	case changeMsg:
		m.applyChange(watch.Change(msg))
		return m, m.waitForChange()

	case watchDoneMsg:
		return m, nil

	case tea.KeyPressMsg:
		if m.searching {
			return m, m.updateSearch(msg)
		}
		return m, m.updateKeys(msg)
	}

	if m.searching {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyPressMsg) tea.Cmd {
	m.status, m.statusErr = "", false
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.pageSize())
	case key.Matches(msg, m.keys.PageDown):
		m.move(m.pageSize())
	case key.Matches(msg, m.keys.Top):
		m.move(-len(m.lines))
	case key.Matches(msg, m.keys.Bottom):
		m.move(len(m.lines))
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.NextMatch):
		m.jumpToMatch()
	case key.Matches(msg, m.keys.ExpandAll):
		m.setVisible(true)
	case key.Matches(msg, m.keys.Collapse):
		m.setVisible(false)
	case key.Matches(msg, m.keys.CopyPath):
		m.copyPath()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.scroll()
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.prevQuery = m.in.Query()
		m.input.SetValue(m.prevQuery)
		m.input.CursorEnd()
		return m.input.Focus()
	}
	return nil
}

// updateSearch re-projects on every edit of the query.
func (m *Model) updateSearch(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.input.Blur()
		m.jumpToMatch()
		return nil
	case "esc":
		m.searching = false
		m.input.Blur()
		m.input.SetValue(m.prevQuery)
		if m.in.Query() != m.prevQuery {
			m.setTree(m.in.SetQuery(m.prevQuery))
		}
		return nil
	case "ctrl+c":
		return tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != m.in.Query() {
		m.setTree(m.in.SetQuery(q))
		m.cursor, m.offset = 0, 0
	}
	return cmd
}

func (m *Model) setTree(t *inspector.Tree) {
	m.tree = t
	m.lines = nil
	if !t.Empty() {
		m.lines = render.Lines(t.Root)
	}
	if m.cursor >= len(m.lines) {
		m.cursor = max(len(m.lines)-1, 0)
	}
	m.scroll()
}

func (m *Model) move(delta int) {
	if len(m.lines) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.lines)-1)
	m.scroll()
}

// current returns the node under the cursor.
func (m *Model) current() *render.Node {
	if m.cursor < len(m.lines) {
		return m.lines[m.cursor].Node
	}
	return nil
}

func (m *Model) toggle() {
	n := m.current()
	if n == nil || !n.Toggleable {
		return
	}
	m.in.Toggle(n.Path)
	m.setTree(m.in.Tree())
	m.focus(n.Segments)
}

func (m *Model) jumpToMatch() {
	if m.tree.Empty() || !m.tree.Highlight.Set {
		if q := m.in.Query(); q != "" {
			m.setStatus(fmt.Sprintf("no match for %q", q), true)
		}
		return
	}
	segs := m.tree.Highlight.Segments
	m.in.ExpandSegments(segs)
	m.setTree(m.in.Tree())
	m.focus(segs)
}

func (m *Model) copyPath() {
	n := m.current()
	if n == nil {
		return
	}
	if err := CopyToClipboard(string(n.Path)); err != nil {
		m.log.V(1).Info("clipboard write failed", "error", err.Error())
		m.setStatus("copy: "+err.Error(), true)
		return
	}
	m.setStatus("copied "+string(n.Path), false)
}

// setVisible opens every collapsed row, or closes every open row below the
// root.
func (m *Model) setVisible(open bool) {
	at := m.current()
	for _, l := range m.lines {
		switch {
		case open && l.Kind == render.LineCollapsed:
			m.in.SetExpanded(l.Node.Path, true)
		case !open && l.Kind == render.LineOpen && l.Node.Depth > 0:
			m.in.SetExpanded(l.Node.Path, false)
		}
	}
	m.setTree(m.in.Tree())
	if at != nil {
		m.focus(at.Segments)
	}
}

// focus moves the cursor to the row of segs, or to its nearest visible
// ancestor.
func (m *Model) focus(segs path.Segments) {
	for i := len(segs); i >= 0; i-- {
		if idx := m.indexOf(segs[:i]); idx >= 0 {
			m.cursor = idx
			m.scroll()
			return
		}
	}
}

func (m *Model) indexOf(segs path.Segments) int {
	for i, l := range m.lines {
		if l.Kind != render.LineClose && l.Node.Segments.Equal(segs) {
			return i
		}
	}
	return -1
}

func (m *Model) bodyHeight() int {
	if m.height <= 0 {
		return 0
	}
	rows := m.height - chromeRows
	if m.help.ShowAll {
		rows -= len(m.keys.FullHelp()[0]) - 1
	}
	return max(rows, 1)
}

func (m *Model) pageSize() int {
	if h := m.bodyHeight(); h > 0 {
		return h
	}
	return 10
}

// scroll keeps the cursor inside the visible window.
func (m *Model) scroll() {
	h := m.bodyHeight()
	if h == 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = max(min(m.offset, len(m.lines)-h), 0)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m *Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return watchDoneMsg{}
		}
		return changeMsg(c)
	}
}

// applyChange replaces the root after a file event and keeps the cursor on
// the same path when it still exists.
func (m *Model) applyChange(c watch.Change) {
	switch {
	case c.Err != nil:
		m.setStatus("watch: "+c.Err.Error(), true)
		return
	case c.Removed:
		m.setStatus(c.Path+" was removed", true)
		return
	case m.reload == nil:
		return
	}
	v, err := m.reload(c.Path)
	if err != nil {
		m.log.V(1).Info("reload failed", "path", c.Path, "error", err.Error())
		m.setStatus("reload: "+err.Error(), true)
		return
	}
	var at path.Segments
	if n := m.current(); n != nil {
		at = n.Segments
	}
	m.setTree(m.in.SetRoot(v))
	if at != nil {
		m.focus(at)
	}
	m.log.V(1).Info("reloaded", "path", c.Path, "generation", m.tree.Generation)
	m.setStatus("reloaded "+c.Path, false)
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) render() string {
	var b strings.Builder
	b.WriteString(m.headerLine())
	b.WriteByte('\n')

	if m.tree.Empty() {
		b.WriteString(m.theme.Lines.Hint.Render(m.emptyText()))
		b.WriteByte('\n')
	} else {
		end := len(m.lines)
		if h := m.bodyHeight(); h > 0 {
			end = min(m.offset+h, end)
		}
		for i := m.offset; i < end; i++ {
			row := m.lines[i].Render(m.theme.Lines)
			if i == m.cursor {
				row = m.theme.Cursor.Render(ansi.Strip(row))
			}
			b.WriteString(m.fit(row))
			b.WriteByte('\n')
		}
	}

	status := m.clip(m.status)
	if m.statusErr {
		status = m.theme.Error.Render(status)
	} else {
		status = m.theme.Status.Render(status)
	}
	b.WriteString(status)
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) headerLine() string {
	if m.searching {
		return "/" + m.input.View()
	}
	q := m.in.Query()
	if q == "" {
		at := ""
		if n := m.current(); n != nil {
			at = string(n.Path)
		}
		return m.theme.Input.Render(m.clip(at))
	}
	hits := "no match"
	if !m.tree.Empty() {
		hits = fmt.Sprintf("%d hit", m.tree.Hits)
		if m.tree.Hits != 1 {
			hits += "s"
		}
	}
	return m.theme.Input.Render(m.clip(fmt.Sprintf("/%s  %s", q, hits)))
}

func (m *Model) emptyText() string {
	if q := m.in.Query(); q != "" {
		return fmt.Sprintf("nothing matches %q", q)
	}
	return "nothing to show"
}

// fit cuts a styled row to the window width.
func (m *Model) fit(row string) string {
	if m.width <= 0 {
		return row
	}
	return ansi.Truncate(row, m.width, "…")
}

// clip cuts plain text to the window width.
func (m *Model) clip(s string) string {
	if m.width <= 0 {
		return s
	}
	return runewidth.Truncate(s, m.width, "…")
}
