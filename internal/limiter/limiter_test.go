package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oakwood-commons/kvi/internal/value"
)

func numbers(n int) value.Value {
	items := make([]value.Value, n)
	for i := range items {
		items[i] = value.Number(float64(i))
	}
	return value.Sequence(items...)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "zero", cfg: Config{}},
		{name: "limit and offset", cfg: Config{Limit: 2, Offset: 1}},
		{name: "negative limit", cfg: Config{Limit: -1}, wantErr: "--limit"},
		{name: "negative offset", cfg: Config{Offset: -1}, wantErr: "--offset"},
		{name: "negative tail", cfg: Config{Tail: -1}, wantErr: "--tail"},
		{name: "limit with tail", cfg: Config{Limit: 1, Tail: 1}, wantErr: "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		length     int
		start, end int
	}{
		{name: "limit", cfg: Config{Limit: 3}, length: 10, start: 0, end: 3},
		{name: "offset", cfg: Config{Offset: 8}, length: 10, start: 8, end: 10},
		{name: "offset and limit", cfg: Config{Offset: 2, Limit: 3}, length: 10, start: 2, end: 5},
		{name: "offset past end", cfg: Config{Offset: 20}, length: 10, start: 10, end: 10},
		{name: "limit past end", cfg: Config{Offset: 8, Limit: 5}, length: 10, start: 8, end: 10},
		{name: "tail", cfg: Config{Tail: 2}, length: 10, start: 8, end: 10},
		{name: "tail longer than input", cfg: Config{Tail: 20}, length: 3, start: 0, end: 3},
		{name: "tail ignores offset", cfg: Config{Tail: 1, Offset: 5}, length: 10, start: 9, end: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.cfg.Window(tt.length)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestApply_Sequence(t *testing.T) {
	out := Config{Offset: 1, Limit: 2}.Apply(numbers(5))
	assert.True(t, value.Equal(value.Sequence(value.Number(1), value.Number(2)), out))
}

func TestApply_MappingKeepsOrder(t *testing.T) {
	m := value.Mapping(value.E("z", value.Number(1)), value.E("a", value.Number(2)), value.E("m", value.Number(3)))
	out := Config{Tail: 2}.Apply(m)
	assert.Equal(t, []string{"a", "m"}, out.Keys())
}

func TestApply_Inactive(t *testing.T) {
	in := numbers(3)
	assert.True(t, value.Same(in, Config{}.Apply(in)))
	s := value.String("x")
	assert.Equal(t, s, Config{Limit: 1}.Apply(s))
}
