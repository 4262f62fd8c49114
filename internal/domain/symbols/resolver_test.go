package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	r := NewResolver(map[string]string{"firefox": "F"}, "?")

	assert.Equal(t, "F", r.Resolve("firefox"))
	assert.Equal(t, "?", r.Resolve("unknown_app"))
}

func TestResolveIsCaseSensitive(t *testing.T) {
	r := NewResolver(map[string]string{"firefox": "F"}, "?")

	assert.Equal(t, "?", r.Resolve("Firefox"))
	assert.Equal(t, "?", r.Resolve("firefox*"))
	assert.Equal(t, "?", r.Resolve("fire"))
}

func TestNewResolver(t *testing.T) {
	tests := []struct {
		name        string
		symbols     map[string]string
		def         string
		wantDefault string
		wantLen     int
	}{
		{name: "empty default falls back", symbols: nil, def: "", wantDefault: DefaultSymbol},
		{name: "custom default", symbols: map[string]string{"code": "C"}, def: "*", wantDefault: "*", wantLen: 1},
		{name: "skips empty entries", symbols: map[string]string{"": "X", "kitty": "", "code": "C"}, def: "?", wantDefault: "?", wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.symbols, tt.def)
			assert.Equal(t, tt.wantDefault, r.Default())
			assert.Equal(t, tt.wantLen, r.Len())
		})
	}
}

func TestResolverCopiesInput(t *testing.T) {
	in := map[string]string{"code": "C"}
	r := NewResolver(in, "?")

	in["code"] = "X"
	in["kitty"] = "K"

	assert.Equal(t, "C", r.Resolve("code"))
	assert.Equal(t, "?", r.Resolve("kitty"))
}
