// Package symbols maps application identifiers to the short symbols shown
// in workspace names.
package symbols

// DefaultSymbol is used when the configuration does not set one.
const DefaultSymbol = "?"

// Resolver performs exact, case-sensitive lookups. A Resolver is immutable;
// configuration reloads build a new one.
type Resolver struct {
	symbols       map[string]string
	defaultSymbol string
}

// NewResolver copies appSymbols so later mutation of the caller's map has
// no effect. Entries with an empty key or symbol are skipped.
func NewResolver(appSymbols map[string]string, defaultSymbol string) *Resolver {
	symbols := make(map[string]string, len(appSymbols))
	for app, symbol := range appSymbols {
		if app == "" || symbol == "" {
			continue
		}
		symbols[app] = symbol
	}
	if defaultSymbol == "" {
		defaultSymbol = DefaultSymbol
	}
	return &Resolver{symbols: symbols, defaultSymbol: defaultSymbol}
}

// Resolve returns the symbol for appID, or the default symbol on a miss.
func (r *Resolver) Resolve(appID string) string {
	if symbol, ok := r.symbols[appID]; ok {
		return symbol
	}
	return r.defaultSymbol
}

// Default returns the fallback symbol.
func (r *Resolver) Default() string {
	return r.defaultSymbol
}

// Len returns the number of configured applications.
func (r *Resolver) Len() int {
	return len(r.symbols)
}
