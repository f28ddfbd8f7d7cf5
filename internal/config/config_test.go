package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestDefaults(t *testing.T) {
	cfg, err := Defaults()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "kvi", cfg.App.Name)
	assert.Equal(t, "dark", cfg.UI.Theme.Default)
	assert.Equal(t, []string{"dark", "light", "mono"}, cfg.ThemeNames())
	assert.False(t, cfg.RememberExpansion())
	assert.True(t, cfg.Hyperlinks())
	assert.Equal(t, 2, cfg.Indent())
	assert.Equal(t, "prefix", cfg.UI.Behavior.Highlight)

	d, err := cfg.Debounce()
	require.NoError(t, err)
	assert.Equal(t, 150*time.Millisecond, d)
}

func TestLoad_NoPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	def, _ := Defaults()
	assert.Equal(t, def, cfg)
}

func TestLoad_MergesUserFile(t *testing.T) {
	p := writeConfig(t, `
ui:
  theme:
    default: light
  behavior:
    remember_expansion: true
    highlight: segment
    indent: 4
  themes:
    light:
      key: "1"
    custom:
      key: "2"
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "light", cfg.UI.Theme.Default)
	assert.True(t, cfg.RememberExpansion())
	assert.Equal(t, "segment", cfg.UI.Behavior.Highlight)
	assert.Equal(t, 4, cfg.Indent())
	assert.Equal(t, "2006-01-02 15:04:05 MST", cfg.UI.Behavior.TimestampLayout, "unset fields keep defaults")

	light, err := cfg.Theme("")
	require.NoError(t, err)
	assert.Equal(t, "1", light.Key)
	assert.Equal(t, "28", light.String, "palette merges per color")

	custom, err := cfg.Theme("custom")
	require.NoError(t, err)
	assert.Equal(t, "2", custom.Key)
	assert.Empty(t, custom.String)
}

func TestLoad_ExplicitFalseOverridesDefault(t *testing.T) {
	p := writeConfig(t, "ui:\n  behavior:\n    hyperlinks: false\n")
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.False(t, cfg.Hyperlinks())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "bad yaml", body: "ui: [", wantErr: "decode config"},
		{name: "bad highlight", body: "ui:\n  behavior:\n    highlight: fuzzy\n", wantErr: "invalid highlight mode"},
		{name: "bad debounce", body: "ui:\n  behavior:\n    watch_debounce: soon\n", wantErr: "invalid watch_debounce"},
		{name: "unknown theme", body: "ui:\n  theme:\n    default: neon\n", wantErr: `unknown theme "neon"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "explicit.yaml", ResolvePath("explicit.yaml"))

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Empty(t, ResolvePath(""))

	p := filepath.Join(dir, "kvi", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("{}"), 0o600))
	assert.Equal(t, p, ResolvePath(""))
}

func TestDefaultYAML_IsCopy(t *testing.T) {
	a := DefaultYAML()
	a[0] = '#'
	assert.NotEqual(t, a[0], DefaultYAML()[0])
}
