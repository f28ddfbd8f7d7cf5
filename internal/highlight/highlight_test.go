package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvi/internal/path"
)

func TestIsHighlighted_NoState(t *testing.T) {
	assert.False(t, IsHighlighted(path.Root, None))
	assert.False(t, ModeSegment.IsHighlighted(path.Root, path.Segments{}, None))
}

func TestIsHighlighted_PrefixCollision(t *testing.T) {
	// documented behavior: a plain string prefix test, not segment-aware
	st := AtPath("$.a1")
	assert.True(t, IsHighlighted("$.a1", st))
	assert.True(t, IsHighlighted("$.a10", st))
	assert.True(t, IsHighlighted("$.a1.child", st))
	assert.False(t, IsHighlighted("$", st))
	assert.False(t, IsHighlighted("$.b", st))
}

func TestIsHighlighted_SegmentMode(t *testing.T) {
	a1 := path.Segments{}.Key("a1")
	a10 := path.Segments{}.Key("a10")
	st := At(a1)

	assert.True(t, ModeSegment.IsHighlighted(a1.Path(), a1, st))
	assert.True(t, ModeSegment.IsHighlighted(a1.Index(0).Path(), a1.Index(0), st))
	assert.False(t, ModeSegment.IsHighlighted(a10.Path(), a10, st))

	// prefix mode on the same inputs keeps the collision
	assert.True(t, ModePrefix.IsHighlighted(a10.Path(), a10, st))
}

func TestAtPath_Unparseable(t *testing.T) {
	st := AtPath("not-a-path")
	assert.False(t, ModeSegment.IsHighlighted("not-a-path", nil, st))
	assert.True(t, ModePrefix.IsHighlighted("not-a-path", nil, st))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModePrefix, m)
	m, err = ParseMode("segment")
	require.NoError(t, err)
	assert.Equal(t, ModeSegment, m)
	_, err = ParseMode("fuzzy")
	assert.Error(t, err)
}
