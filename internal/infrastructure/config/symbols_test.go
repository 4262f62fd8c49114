package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSymbols(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{
			name:   "yaml",
			format: FormatYAML,
			data: `
app_symbols:
  firefox: F
  code: C
default_symbol: "*"
separator: "|"
`,
		},
		{
			name:   "toml",
			format: FormatTOML,
			data: `
default_symbol = "*"
separator = "|"

[app_symbols]
firefox = "F"
code = "C"
`,
		},
		{
			name:   "jsonc",
			format: FormatJSON,
			data: `{
  // browsers
  "app_symbols": {"firefox": "F", "code": "C",},
  "default_symbol": "*",
  "separator": "|"
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syms, err := ParseSymbols([]byte(tt.data), tt.format, nil)
			require.NoError(t, err)

			assert.Equal(t, map[string]string{"firefox": "F", "code": "C"}, syms.AppSymbols)
			assert.Equal(t, "*", syms.DefaultSymbol)
			assert.Equal(t, "|", syms.Separator)

			r := syms.Resolver()
			assert.Equal(t, "F", r.Resolve("firefox"))
			assert.Equal(t, "*", r.Resolve("gimp"))
		})
	}
}

func TestParseSymbolsSkipsInvalidEntries(t *testing.T) {
	data := `{"app_symbols": {"firefox": "F", "bad": 3, "empty": "", "": "X", "nested": {"a": "b"}}}`

	syms, err := ParseSymbols([]byte(data), FormatJSON, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"firefox": "F"}, syms.AppSymbols)
	assert.Equal(t, DefaultSymbols().DefaultSymbol, syms.DefaultSymbol)
	assert.Empty(t, syms.Separator)
}

func TestParseSymbolsMalformed(t *testing.T) {
	_, err := ParseSymbols([]byte("app_symbols: [unterminated"), FormatYAML, nil)
	assert.Error(t, err)

	_, err = ParseSymbols([]byte(`{"app_symbols": `), FormatJSON, nil)
	assert.Error(t, err)

	_, err = ParseSymbols([]byte("x"), Format("ini"), nil)
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatOf("config.yaml"))
	assert.Equal(t, FormatYAML, FormatOf("config.YML"))
	assert.Equal(t, FormatTOML, FormatOf("/etc/wsnamer/config.toml"))
	assert.Equal(t, FormatJSON, FormatOf("config.json"))
	assert.Equal(t, FormatJSON, FormatOf("config.jsonc"))
	assert.Equal(t, FormatYAML, FormatOf("symbols"))
}

func TestLoadSymbolsFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()

	syms, err := LoadSymbols(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
	assert.Equal(t, DefaultSymbols(), syms)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("app_symbols = ["), 0o644))
	syms, err = LoadSymbols(bad, nil)
	assert.Error(t, err)
	assert.Equal(t, DefaultSymbols(), syms)

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("app_symbols:\n  kitty: K\n"), 0o644))
	syms, err = LoadSymbols(good, nil)
	require.NoError(t, err)
	assert.Equal(t, "K", syms.AppSymbols["kitty"])
}

func TestSearchPaths(t *testing.T) {
	env := map[string]string{"XDG_CONFIG_HOME": "/home/u/.cfg", "HOME": "/home/u"}
	paths := SearchPaths(func(k string) string { return env[k] })

	require.Len(t, paths, 12)
	assert.Equal(t, "config.yaml", paths[0])
	assert.Equal(t, "config.json", paths[3])
	assert.Equal(t, "/home/u/.cfg/wsnamer/config.yaml", paths[4])
	assert.Equal(t, "/etc/wsnamer/config.json", paths[11])

	delete(env, "XDG_CONFIG_HOME")
	paths = SearchPaths(func(k string) string { return env[k] })
	assert.Equal(t, "/home/u/.config/wsnamer/config.yaml", paths[4])
}

func TestDiscover(t *testing.T) {
	path, err := Discover("/nowhere/symbols.yaml", os.Getenv)
	require.NoError(t, err)
	assert.Equal(t, "/nowhere/symbols.yaml", path, "explicit path wins even if missing")

	home := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
	env := map[string]string{"XDG_CONFIG_HOME": home}
	getenv := func(k string) string { return env[k] }

	_, err = Discover("", getenv)
	if _, statErr := os.Stat("/etc/wsnamer"); statErr != nil {
		assert.ErrorIs(t, err, ErrNoSymbolFile)
	}

	want := filepath.Join(home, AppName, "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(want), 0o755))
	require.NoError(t, os.WriteFile(want, []byte(""), 0o644))

	path, err = Discover("", getenv)
	require.NoError(t, err)
	assert.Equal(t, want, path)

	require.NoError(t, os.WriteFile("config.yml", []byte(""), 0o644))
	path, err = Discover("", getenv)
	require.NoError(t, err)
	assert.Equal(t, "config.yml", path, "working directory comes first")
}
