package expansion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oakwood-commons/kvi/internal/path"
	"github.com/oakwood-commons/kvi/internal/value"
)

func TestDefaultExpanded(t *testing.T) {
	tests := []struct {
		name  string
		kind  value.Kind
		size  int
		depth int
		want  bool
	}{
		{"empty sequence", value.KindSequence, 0, 0, false},
		{"empty mapping", value.KindMapping, 0, 0, false},
		{"short sequence deep", value.KindSequence, 3, 1, true},
		{"short sequence very deep", value.KindSequence, 4, 9, true},
		{"long sequence at root", value.KindSequence, 50, 0, true},
		{"long sequence nested", value.KindSequence, 5, 1, false},
		{"mapping at root", value.KindMapping, 3, 0, true},
		{"mapping at depth 1", value.KindMapping, 3, 1, true},
		{"mapping at depth 2", value.KindMapping, 1, 2, false},
		{"scalar", value.KindString, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultExpanded(tt.kind, tt.size, tt.depth))
		})
	}
}

func TestToggleable(t *testing.T) {
	assert.False(t, Toggleable(value.KindSequence, 0))
	assert.False(t, Toggleable(value.KindNumber, 1))
	assert.True(t, Toggleable(value.KindMapping, 1))
}

func TestState_DefaultEvaluatedOnce(t *testing.T) {
	s := NewState(nil)
	p := path.Root.Key("m")
	assert.False(t, s.IsExpanded(p, value.KindMapping, 2, 2))
	assert.True(t, s.Toggle(p))
	// a later lookup with different size/depth does not re-run the policy
	assert.True(t, s.IsExpanded(p, value.KindMapping, 2, 2))
	assert.True(t, s.IsExpanded(p, value.KindMapping, 9, 9))
}

func TestState_ToggleUnknownPathIsIgnored(t *testing.T) {
	s := NewState(nil)
	assert.False(t, s.Toggle("$.missing"))
	assert.False(t, s.Seen("$.missing"))
}

func TestState_EmptyCompositeNeverExpands(t *testing.T) {
	s := NewState(nil)
	assert.False(t, s.IsExpanded(path.Root, value.KindSequence, 0, 0))
	assert.False(t, s.Seen(path.Root))
	assert.False(t, s.Toggle(path.Root))
}

func TestState_NewInstanceResets(t *testing.T) {
	p := path.Root.Key("m")
	first := NewState(nil)
	first.IsExpanded(p, value.KindMapping, 1, 2)
	first.Toggle(p)

	second := NewState(nil)
	assert.False(t, second.IsExpanded(p, value.KindMapping, 1, 2))
}

func TestState_StoreSurvivesInstances(t *testing.T) {
	store := NewStore()
	p := path.Root.Key("m")

	first := NewState(store)
	first.IsExpanded(p, value.KindMapping, 1, 2)
	first.Toggle(p)

	second := NewState(store)
	assert.True(t, second.IsExpanded(p, value.KindMapping, 1, 2))

	store.Reset()
	third := NewState(store)
	assert.False(t, third.IsExpanded(p, value.KindMapping, 1, 2))
}

func TestState_Set(t *testing.T) {
	s := NewState(nil)
	p := path.Root
	s.IsExpanded(p, value.KindMapping, 1, 0)
	assert.True(t, s.Set(p, false))
	assert.False(t, s.IsExpanded(p, value.KindMapping, 1, 0))
	assert.True(t, s.Set(p, false))
	assert.Equal(t, 1, s.Len())
}
