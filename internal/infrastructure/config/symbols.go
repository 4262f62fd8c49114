package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/wsnamer/internal/domain/symbols"
)

// Format is a supported symbol file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// AppName names the per-user and system config directories.
const AppName = "wsnamer"

var (
	// ErrNoSymbolFile is returned by Discover when no candidate exists.
	ErrNoSymbolFile = errors.New("no symbol file found")

	extensions = []string{".yaml", ".yml", ".toml", ".json"}
)

// Symbols is the parsed symbol file.
type Symbols struct {
	AppSymbols    map[string]string
	DefaultSymbol string
	Separator     string
}

// DefaultSymbols is used when no file is found or it cannot be read.
func DefaultSymbols() Symbols {
	return Symbols{
		AppSymbols:    map[string]string{},
		DefaultSymbol: symbols.DefaultSymbol,
	}
}

// Resolver builds the lookup table for the renaming engine.
func (s Symbols) Resolver() *symbols.Resolver {
	return symbols.NewResolver(s.AppSymbols, s.DefaultSymbol)
}

// symbolFile mirrors the on-disk layout. Symbols are decoded loosely so a
// single bad entry does not reject the whole file.
type symbolFile struct {
	AppSymbols    map[string]any `yaml:"app_symbols" toml:"app_symbols" json:"app_symbols"`
	DefaultSymbol *string        `yaml:"default_symbol" toml:"default_symbol" json:"default_symbol"`
	Separator     *string        `yaml:"separator" toml:"separator" json:"separator"`
}

// FormatOf infers the encoding from a file extension. Unknown extensions
// are read as YAML, which also accepts plain JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json", ".jsonc":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// SearchPaths lists the candidate symbol files in priority order.
func SearchPaths(getenv func(string) string) []string {
	var dirs []string
	dirs = append(dirs, ".")

	configHome := getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home := getenv("HOME"); home != "" {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		dirs = append(dirs, filepath.Join(configHome, AppName))
	}
	dirs = append(dirs, filepath.Join("/etc", AppName))

	paths := make([]string, 0, len(dirs)*len(extensions))
	for _, dir := range dirs {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, "config"+ext))
		}
	}
	return paths
}

// Discover picks the symbol file. An explicit path is returned as is, even
// if it does not exist yet, so it can still be watched.
func Discover(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, path := range SearchPaths(getenv) {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", ErrNoSymbolFile
}

// LoadSymbols reads and parses a symbol file. On failure it logs the error
// and returns the defaults together with the error.
func LoadSymbols(path string, logger *zap.Logger) (Symbols, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Failed to open symbol file, using defaults",
			zap.String("path", path), zap.Error(err))
		return DefaultSymbols(), fmt.Errorf("read symbol file: %w", err)
	}

	syms, err := ParseSymbols(data, FormatOf(path), logger)
	if err != nil {
		logger.Error("Failed to parse symbol file, using defaults",
			zap.String("path", path), zap.Error(err))
		return DefaultSymbols(), err
	}

	logger.Info("Loaded symbol file",
		zap.String("path", path),
		zap.Int("symbols", len(syms.AppSymbols)))
	return syms, nil
}

// ParseSymbols decodes a symbol file. Entries whose key is empty or whose
// value is not a non-empty string are skipped with a warning.
func ParseSymbols(data []byte, format Format, logger *zap.Logger) (Symbols, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var raw symbolFile
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Symbols{}, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Symbols{}, fmt.Errorf("parse toml: %w", err)
		}
	case FormatJSON:
		std, err := hujson.Standardize(data)
		if err != nil {
			return Symbols{}, fmt.Errorf("parse json: %w", err)
		}
		if err := sonic.Unmarshal(std, &raw); err != nil {
			return Symbols{}, fmt.Errorf("parse json: %w", err)
		}
	default:
		return Symbols{}, fmt.Errorf("unsupported format %q", format)
	}

	syms := DefaultSymbols()
	if raw.DefaultSymbol != nil {
		syms.DefaultSymbol = *raw.DefaultSymbol
	}
	if raw.Separator != nil {
		syms.Separator = *raw.Separator
	}

	keys := make([]string, 0, len(raw.AppSymbols))
	for k := range raw.AppSymbols {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, app := range keys {
		symbol, ok := raw.AppSymbols[app].(string)
		if app == "" || !ok || symbol == "" {
			logger.Warn("Skipping invalid symbol entry",
				zap.String("app", app),
				zap.Any("value", raw.AppSymbols[app]))
			continue
		}
		syms.AppSymbols[app] = symbol
	}
	return syms, nil
}
