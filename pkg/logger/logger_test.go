package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ReturnsSameInstance(t *testing.T) {
	l1 := Get(0)
	l2 := Get(DebugLevel)
	require.NotNil(t, l1)
	assert.Same(t, l1, l2)
}

func TestGet_NoopWhenUnset(t *testing.T) {
	Get(0)
	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()

	assert.Same(t, &defaultNoopLogger, Get(0))
	assert.Same(t, &defaultNoopLogger, GetGlobalLogger())
	assert.Same(t, &defaultNoopLogger, FromContext(context.Background()))
}

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	lgr := New(&buf, 0)
	lgr.Info("rendered", "nodes", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "rendered", entry[MessageKey])
	assert.EqualValues(t, 3, entry["nodes"])
	assert.Contains(t, entry, TimeStampKey)
	assert.Contains(t, entry, VersionKey)
}

func TestNew_VerbosityFollowsLevel(t *testing.T) {
	var quiet, loud bytes.Buffer
	New(&quiet, 0).V(1).Info("hidden")
	New(&loud, DebugLevel).V(1).Info("shown")
	assert.Empty(t, quiet.String())
	assert.Contains(t, loud.String(), "shown")
}

func TestWithLogger(t *testing.T) {
	ctx := context.Background()
	l1 := Get(0)
	withL1 := WithLogger(ctx, l1)
	assert.Same(t, l1, FromContext(withL1))

	// same pointer keeps the context
	assert.Equal(t, withL1, WithLogger(withL1, l1))

	l2 := logr.Discard()
	withL2 := WithLogger(withL1, &l2)
	assert.Same(t, &l2, FromContext(withL2))
}

func TestFromContext_FallsBackToGlobal(t *testing.T) {
	assert.Same(t, Get(0), FromContext(context.Background()))
}

func TestSync_NoLogger(t *testing.T) {
	orig := globalZapLogger
	globalZapLogger = nil
	defer func() { globalZapLogger = orig }()
	assert.NotPanics(t, Sync)
}

func TestWithValues(t *testing.T) {
	base := Get(0)
	got := WithValues(base, "k", "v")
	require.NotNil(t, got)
	assert.NotSame(t, base, got)
	assert.NotSame(t, base, WithValues(base))
}
