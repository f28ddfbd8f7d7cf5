package ui

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvi/internal/config"
	"github.com/oakwood-commons/kvi/internal/path"
	"github.com/oakwood-commons/kvi/internal/render"
	"github.com/oakwood-commons/kvi/internal/value"
	"github.com/oakwood-commons/kvi/internal/watch"
	"github.com/oakwood-commons/kvi/pkg/inspector"
)

func sampleRoot() value.Value {
	return value.Mapping(
		value.E("id", value.Number(7)),
		value.E("tags", value.Sequence(value.String("a"), value.String("bb"), value.String("ccc"))),
		value.E("deep", value.Mapping(value.E("inner", value.Mapping(value.E("leaf", value.String("bb-deep")))))),
	)
}

func newTestModel(t *testing.T, opts Options) (*Model, *inspector.Inspector) {
	t.Helper()
	in := inspector.New()
	in.Render(sampleRoot(), inspector.RenderOptions{})
	if opts.Theme.Lines.Indent == 0 {
		opts.Theme = PlainTheme(2)
	}
	return NewModel(in, opts), in
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		switch k {
		case "enter":
			m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
		case "esc":
			m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
		case "down":
			m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
		default:
			r := []rune(k)[0]
			m.Update(tea.KeyPressMsg{Code: r, Text: k})
		}
	}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func cursorPath(m *Model) path.Path {
	return m.current().Path
}

func TestModel_Navigation(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	assert.Equal(t, path.Root, cursorPath(m))

	press(m, "j")
	assert.Equal(t, path.Path("$.id"), cursorPath(m))
	press(m, "down")
	assert.Equal(t, path.Path("$.tags"), cursorPath(m))
	press(m, "k")
	assert.Equal(t, path.Path("$.id"), cursorPath(m))

	press(m, "G")
	assert.Equal(t, len(m.lines)-1, m.cursor)
	assert.Equal(t, render.LineClose, m.lines[m.cursor].Kind)
	press(m, "g")
	assert.Equal(t, 0, m.cursor)
}

func TestModel_Toggle(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	press(m, "j", "j")
	require.Equal(t, path.Path("$.tags"), cursorPath(m))
	before := len(m.lines)

	press(m, "enter")
	assert.Equal(t, path.Path("$.tags"), cursorPath(m))
	assert.Equal(t, render.LineCollapsed, m.lines[m.cursor].Kind)
	assert.Equal(t, before-4, len(m.lines))

	m.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	assert.Equal(t, before, len(m.lines))
}

func TestModel_ExpandCollapseVisible(t *testing.T) {
	m, in := newTestModel(t, Options{})
	require.Nil(t, in.Tree().Root.Find("$.deep.inner.leaf"))

	press(m, "E")
	assert.NotNil(t, in.Tree().Root.Find("$.deep.inner.leaf"))

	press(m, "C")
	tree := in.Tree()
	assert.True(t, tree.Root.Expanded)
	assert.False(t, tree.Root.Find("$.tags").Expanded)
	assert.False(t, tree.Root.Find("$.deep").Expanded)
}

func TestModel_LiveSearch(t *testing.T) {
	m, in := newTestModel(t, Options{})
	press(m, "/")
	require.True(t, m.searching)

	typeText(m, "bb")
	assert.Equal(t, "bb", in.Query())
	require.False(t, m.tree.Empty())
	assert.Equal(t, 2, m.tree.Hits)

	press(m, "enter")
	assert.False(t, m.searching)
	assert.Equal(t, m.tree.Highlight.Path, cursorPath(m))
	assert.Contains(t, m.render(), "/bb  2 hits")
}

func TestModel_SearchEscRestores(t *testing.T) {
	m, in := newTestModel(t, Options{})
	press(m, "/")
	typeText(m, "zzz")
	assert.True(t, m.tree.Empty())
	assert.Contains(t, m.render(), `nothing matches "zzz"`)

	press(m, "esc")
	assert.False(t, m.searching)
	assert.Equal(t, "", in.Query())
	assert.False(t, m.tree.Empty())
}

func TestModel_JumpToMatch(t *testing.T) {
	in := inspector.New()
	in.Render(sampleRoot(), inspector.RenderOptions{Query: "deep"})
	m := NewModel(in, Options{Theme: PlainTheme(2)})
	require.Nil(t, m.tree.Root.Find("$.deep.inner.leaf"))

	press(m, "n")
	assert.Equal(t, path.Path("$.deep.inner.leaf"), cursorPath(m))

	in.SetQuery("nothing-here")
	m.setTree(in.Tree())
	press(m, "n")
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "no match")
}

func TestModel_Scroll(t *testing.T) {
	m, _ := newTestModel(t, Options{Height: chromeRows + 3})
	press(m, "G")
	assert.Equal(t, len(m.lines)-3, m.offset)
	out := m.render()
	assert.Equal(t, 3+chromeRows, len(strings.Split(out, "\n")))

	m.Update(tea.WindowSizeMsg{Width: 40, Height: 40})
	assert.Equal(t, 0, m.offset)
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_Reload(t *testing.T) {
	ch := make(chan watch.Change, 1)
	next := value.Mapping(value.E("id", value.Number(8)), value.E("fresh", value.Bool(true)))
	m, in := newTestModel(t, Options{
		Changes: ch,
		Reload: func(string) (value.Value, error) {
			return next, nil
		},
	})
	press(m, "j")

	ch <- watch.Change{Path: "/tmp/data.json"}
	msg := m.Init()()
	m.Update(msg)
	assert.NotNil(t, in.Tree().Root.Find("$.fresh"))
	assert.Equal(t, path.Path("$.id"), cursorPath(m))
	assert.Contains(t, m.status, "reloaded")

	close(ch)
	assert.IsType(t, watchDoneMsg{}, m.waitForChange()())
}

func TestModel_ReloadErrors(t *testing.T) {
	m, _ := newTestModel(t, Options{
		Reload: func(string) (value.Value, error) { return value.Value{}, errors.New("bad json") },
	})
	m.applyChange(watch.Change{Path: "x.json"})
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "bad json")

	m.applyChange(watch.Change{Path: "x.json", Removed: true})
	assert.Contains(t, m.status, "removed")
}

func TestModel_RenderTruncates(t *testing.T) {
	in := inspector.New()
	in.Render(value.Mapping(value.E("long", value.String(strings.Repeat("x", 200)))), inspector.RenderOptions{})
	m := NewModel(in, Options{Theme: PlainTheme(2), Width: 30})
	for _, line := range strings.Split(m.render(), "\n")[:4] {
		assert.LessOrEqual(t, len([]rune(line)), 30, line)
	}
}

func TestThemeFromConfig(t *testing.T) {
	cfg, err := config.Defaults()
	require.NoError(t, err)
	tc, err := cfg.Theme("dark")
	require.NoError(t, err)

	th := ThemeFromConfig(tc, true, 4)
	assert.True(t, th.Lines.Hyperlinks)
	assert.Equal(t, 4, th.Lines.Indent)
	assert.NotEqual(t, "x", th.Lines.Key.Render("x"))
}

func TestModel_CopyPath(t *testing.T) {
	var got string
	fail := false
	defer StubClipboard(func(s string) error {
		if fail {
			return errors.New("no display")
		}
		got = s
		return nil
	})()

	m, _ := newTestModel(t, Options{})
	press(m, "j", "j", "y")
	assert.Equal(t, "$.tags", got)
	assert.Equal(t, "copied $.tags", m.status)
	assert.False(t, m.statusErr)

	fail = true
	press(m, "y")
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "no display")
}

func TestModel_JumpToMatch_DottedKey(t *testing.T) {
	in := inspector.New()
	in.Render(value.Mapping(
		value.E("app.kubernetes.io", value.Mapping(
			value.E("a", value.Mapping(value.E("b", value.Mapping(value.E("c", value.String("hit")))))),
		)),
	), inspector.RenderOptions{Query: "hit"})
	m := NewModel(in, Options{Theme: PlainTheme(2)})

	press(m, "n")
	assert.False(t, m.statusErr, m.status)
	n := m.current()
	require.NotNil(t, n)
	assert.Equal(t, path.Path("$.app.kubernetes.io.a.b.c"), n.Path)
	assert.True(t, n.Highlighted)
}
