package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChild(t *testing.T) {
	assert.Equal(t, Path("$.a"), Child(Root, "a"))
	assert.Equal(t, Path("$[0]"), Child(Root, 0))
	assert.Equal(t, Path("$.tags[2]"), Child(Child(Root, "tags"), int64(2)))
	assert.Equal(t, Path("$.items[1].name"), Root.Key("items").Index(1).Key("name"))
}

func TestChild_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, Child(Root, "a"), Child(Root, "a"))
		assert.Equal(t, Child(Root, 0), Child(Root, 0))
	}
}

func TestChild_KeyLooksLikeIndex(t *testing.T) {
	// a string key is always a key, even when it is numeric
	assert.Equal(t, Path("$.0"), Child(Root, "0"))
}

func TestHasPrefix_IsLiteral(t *testing.T) {
	assert.True(t, Path("$.a10").HasPrefix("$.a1"))
	assert.True(t, Path("$.a1.b").HasPrefix("$.a1"))
	assert.False(t, Path("$.b").HasPrefix("$.a"))
}

func TestSegments_PathAndPrefix(t *testing.T) {
	a1 := Segments{}.Key("a1")
	a10 := Segments{}.Key("a10")
	child := a1.Index(3)

	assert.Equal(t, Path("$.a1[3]"), child.Path())
	assert.True(t, child.HasPrefix(a1))
	assert.False(t, a10.HasPrefix(a1))
	assert.False(t, a1.HasPrefix(child))
	assert.True(t, a1.Equal(Segments{{Kind: SegmentKey, Key: "a1"}}))
}

func TestSegments_KeyDoesNotAlias(t *testing.T) {
	base := make(Segments, 0, 4).Key("x")
	left := base.Key("l")
	right := base.Key("r")
	assert.Equal(t, "l", left[1].Key)
	assert.Equal(t, "r", right[1].Key)
}

func TestParse(t *testing.T) {
	segs, err := Parse("$.items[1].name")
	require.NoError(t, err)
	assert.Equal(t, Segments{
		{Kind: SegmentKey, Key: "items"},
		{Kind: SegmentIndex, Index: 1},
		{Kind: SegmentKey, Key: "name"},
	}, segs)

	root, err := Parse(Root)
	require.NoError(t, err)
	assert.Empty(t, root)

	for _, bad := range []Path{"items", "$[x]", "$[1", "$x"} {
		_, err := Parse(bad)
		assert.Error(t, err, "path %q", bad)
	}
}
