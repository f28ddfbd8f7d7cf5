package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvi/internal/path"
	"github.com/oakwood-commons/kvi/internal/value"
)

func sample() value.Value {
	return value.Mapping(
		value.E("id", value.Number(7)),
		value.E("tags", value.Sequence(value.String("a"), value.String("bb"), value.String("ccc"))),
		value.E("url", value.String("http://x.io")),
		value.E("created_at", value.Number(1700000000)),
	)
}

func TestProject_EmptyQueryIsIdentity(t *testing.T) {
	root := sample()
	res := Project(root, "")
	require.True(t, res.Present)
	assert.False(t, res.Matched)
	assert.True(t, value.Same(root, res.Value), "empty query must not copy the tree")
}

func TestProject_EndToEnd(t *testing.T) {
	res := Project(sample(), "bb")
	require.True(t, res.Present)
	want := value.Mapping(value.E("tags", value.Sequence(value.String("bb"))))
	assert.True(t, value.Equal(want, res.Value), "got %#v", res.Value)
	require.True(t, res.Matched)
	assert.Equal(t, path.Path("$.tags[0]"), res.Match)
	assert.Equal(t, path.Segments{}.Key("tags").Index(0), res.MatchSegments)
	assert.Equal(t, 1, res.Hits)
	assert.Equal(t, 6, res.Leaves)
}

func TestProject_CaseInsensitive(t *testing.T) {
	res := Project(value.Sequence(value.String("Hello"), value.String("world")), "hELLO")
	require.True(t, res.Present)
	assert.Equal(t, 1, res.Value.Len())
	assert.Equal(t, path.Path("$[0]"), res.Match)
}

func TestProject_LastMatchWins(t *testing.T) {
	root := value.Mapping(
		value.E("first", value.String("match")),
		value.E("nested", value.Mapping(value.E("deep", value.String("match me")))),
		value.E("skip", value.String("nope")),
	)
	res := Project(root, "match")
	assert.Equal(t, path.Path("$.nested.deep"), res.Match)
	assert.Equal(t, 2, res.Hits)
}

func TestProject_NoEmptyContainers(t *testing.T) {
	root := value.Mapping(
		value.E("empty", value.Sequence()),
		value.E("emptyMap", value.Mapping()),
		value.E("miss", value.Mapping(value.E("a", value.String("x")), value.E("b", value.Sequence(value.Number(1))))),
		value.E("hit", value.String("needle")),
	)
	res := Project(root, "needle")
	require.True(t, res.Present)
	assert.Equal(t, []string{"hit"}, res.Value.Keys())

	none := Project(root, "absent")
	assert.False(t, none.Present)
	assert.False(t, none.Matched)
}

func TestProject_ReindexesSequences(t *testing.T) {
	root := value.Sequence(
		value.String("x"),
		value.Mapping(value.E("k", value.String("no"))),
		value.Sequence(value.String("y"), value.String("target")),
		value.String("target too"),
	)
	res := Project(root, "target")
	require.True(t, res.Present)
	require.Equal(t, 2, res.Value.Len())
	inner := res.Value.Item(0)
	assert.Equal(t, 1, inner.Len())
	assert.Equal(t, "target", inner.Item(0).Str())
	assert.Equal(t, path.Path("$[1]"), res.Match)
}

func TestProject_MatchPathInNestedReindexedSequence(t *testing.T) {
	root := value.Sequence(
		value.String("nope"),
		value.Sequence(value.String("nope"), value.String("hit")),
	)
	res := Project(root, "hit")
	assert.Equal(t, path.Path("$[0][0]"), res.Match)
}

func TestProject_MatchesScalarStringForms(t *testing.T) {
	root := value.Mapping(
		value.E("n", value.Null()),
		value.E("b", value.Bool(true)),
		value.E("num", value.Number(1.5)),
	)
	assert.Equal(t, []string{"n"}, Project(root, "nul").Value.Keys())
	assert.Equal(t, []string{"b"}, Project(root, "TRUE").Value.Keys())
	assert.Equal(t, []string{"num"}, Project(root, "1.5").Value.Keys())
}

func TestProject_ScalarRoot(t *testing.T) {
	res := Project(value.String("solo"), "sol")
	require.True(t, res.Present)
	assert.Equal(t, path.Root, res.Match)
	assert.False(t, Project(value.String("solo"), "zzz").Present)
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	root := sample()
	before, err := value.EncodeJSON(root, "")
	require.NoError(t, err)
	Project(root, "a")
	after, err := value.EncodeJSON(root, "")
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestProject_DeepInput(t *testing.T) {
	const depth = 1000
	v := value.String("needle")
	for i := 0; i < depth; i++ {
		v = value.Sequence(v)
	}
	res := Project(v, "needle")
	require.True(t, res.Present)
	assert.True(t, strings.HasSuffix(string(res.Match), "[0][0]"))
	assert.Len(t, res.MatchSegments, depth)
}
