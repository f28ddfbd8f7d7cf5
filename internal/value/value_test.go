package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvi/internal/path"
)

func TestClassify(t *testing.T) {
	type custom struct{ A int }
	tests := []struct {
		name string
		in   any
		want Kind
	}{
		{"nil", nil, KindNull},
		{"bool", true, KindBool},
		{"int", 7, KindNumber},
		{"uint8", uint8(7), KindNumber},
		{"float", 1.5, KindNumber},
		{"string", "x", KindString},
		{"slice", []any{1}, KindSequence},
		{"typed slice", []string{"a"}, KindSequence},
		{"map", map[string]any{}, KindMapping},
		{"typed map", map[string]int{}, KindMapping},
		{"struct", custom{}, KindMapping},
		{"nil pointer", (*custom)(nil), KindNull},
		{"value", Sequence(), KindSequence},
		{"int keyed map", map[int]string{}, KindOpaque},
		{"func", func() {}, KindOpaque},
		{"chan", make(chan int), KindOpaque},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestMapping_DuplicateKeysKeepFirstPosition(t *testing.T) {
	m := Mapping(E("a", Number(1)), E("b", Number(2)), E("a", Number(3)))
	require.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	got, ok := m.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, float64(3), got.Number())
}

func TestConstructorsCopyInput(t *testing.T) {
	items := []Value{String("a")}
	seq := Sequence(items...)
	items[0] = String("changed")
	assert.Equal(t, "a", seq.Item(0).Str())

	out := seq.Items()
	out[0] = String("changed")
	assert.Equal(t, "a", seq.Item(0).Str())
}

func TestFromAny_SortsMapKeys(t *testing.T) {
	v := FromAny(map[string]any{"b": 1, "a": []any{true, nil, "s"}})
	require.Equal(t, KindMapping, v.Kind())
	assert.Equal(t, []string{"a", "b"}, v.Keys())
	a, _ := v.Lookup("a")
	assert.Equal(t, KindBool, a.Item(0).Kind())
	assert.True(t, a.Item(1).IsNull())
	assert.Equal(t, "s", a.Item(2).Str())
}

func TestFromAny_StructKeepsFieldOrder(t *testing.T) {
	type item struct {
		Zeta  string `json:"zeta"`
		Alpha int    `json:"alpha"`
	}
	v := FromAny(item{Zeta: "z", Alpha: 2})
	assert.Equal(t, []string{"zeta", "alpha"}, v.Keys())
}

func TestFromAny_TypedContainers(t *testing.T) {
	v := FromAny(map[string][]int{"n": {1, 2}})
	n, ok := v.Lookup("n")
	require.True(t, ok)
	require.Equal(t, 2, n.Len())
	assert.Equal(t, float64(2), n.Item(1).Number())
}

func TestFromAny_CycleBecomesRef(t *testing.T) {
	m := map[string]any{"name": "root"}
	m["self"] = m

	v := FromAny(m)
	self, ok := v.Lookup("self")
	require.True(t, ok)
	require.Equal(t, KindOpaque, self.Kind())
	assert.Equal(t, Ref{Target: path.Root}, self.Opaque())
	assert.Equal(t, "<ref $>", Stringify(self))
}

func TestFromAny_SharedButAcyclicIsNotARef(t *testing.T) {
	shared := map[string]any{"x": 1}
	v := FromAny(map[string]any{"a": shared, "b": shared})
	b, _ := v.Lookup("b")
	assert.Equal(t, KindMapping, b.Kind())
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "null", Stringify(Null()))
	assert.Equal(t, "true", Stringify(Bool(true)))
	assert.Equal(t, "7", Stringify(Number(7)))
	assert.Equal(t, "1.5", Stringify(Number(1.5)))
	assert.Equal(t, "1700000000", Stringify(Number(1700000000)))
	assert.Equal(t, "bb", Stringify(String("bb")))
	assert.Equal(t, `{"a":[1,"x"]}`, Stringify(Mapping(E("a", Sequence(Number(1), String("x"))))))
}

func TestSameAndEqual(t *testing.T) {
	a := Sequence(Number(1))
	b := Sequence(Number(1))
	assert.True(t, Equal(a, b))
	assert.False(t, Same(a, b))
	assert.True(t, Same(a, a))
}

func TestToNative(t *testing.T) {
	v := Mapping(E("a", Sequence(Number(1), Null())), E("b", String("x")))
	assert.Equal(t, map[string]any{"a": []any{float64(1), nil}, "b": "x"}, ToNative(v))
}
