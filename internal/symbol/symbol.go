package symbol

import (
	"strings"

	"github.com/finbridge/portfolio_engine/internal/model"
)

// Invalid is the canonical form of a symbol that could not be normalized.
// It is never registered in a price map, so every lookup against it misses
// and the caller falls back to the holding's entry price.
const Invalid = "INVALID"

// quoteCurrencies are the quote-asset suffixes recognized on crypto symbols.
// An explicit registry, not a strip-any-four-letters heuristic: base symbols
// that merely end in four letters must not be cut.
var quoteCurrencies = []string{"USDT", "USDC", "BUSD", "TUSD"}

// Normalize canonicalizes a raw symbol for one asset class. Stock and etf
// tickers are upper-cased and trimmed; crypto symbols keep their quote suffix
// (see Base for the stripped form); forex pairs accept both EUR/USD and
// EUR-USD spellings and canonicalize to the slash form.
func Normalize(class model.AssetClass, raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return Invalid
	}

	switch class {
	case model.AssetClassForex:
		return strings.ReplaceAll(s, "-", "/")
	case model.AssetClassStock, model.AssetClassCrypto, model.AssetClassETF:
		return s
	}

	return Invalid
}

// Key returns the {ASSET_CLASS}_{SYMBOL} lookup identity used across the
// price map.
func Key(class model.AssetClass, raw string) string {
	s := Normalize(class, raw)
	if s == Invalid {
		return Invalid
	}
	return strings.ToUpper(string(class)) + "_" + s
}

// Base strips a recognized quote-currency suffix from a canonical crypto
// symbol: BTCUSDT -> BTC. The second return reports whether a suffix was
// found. A symbol that is nothing but the suffix is left alone.
func Base(canonical string) (string, bool) {
	for _, q := range quoteCurrencies {
		if len(canonical) > len(q) && strings.HasSuffix(canonical, q) {
			return strings.TrimSuffix(canonical, q), true
		}
	}
	return canonical, false
}

// BaseKey returns the suffix-stripped crypto key for dual registration, or
// ok=false when the symbol carries no recognized suffix.
func BaseKey(class model.AssetClass, raw string) (string, bool) {
	if class != model.AssetClassCrypto {
		return "", false
	}

	s := Normalize(class, raw)
	if s == Invalid {
		return "", false
	}

	base, ok := Base(s)
	if !ok {
		return "", false
	}

	return strings.ToUpper(string(class)) + "_" + base, true
}

// RouteForm rewrites a canonical forex pair into its hyphen-delimited form
// used on request paths (EUR/USD -> EUR-USD). Other classes pass through.
func RouteForm(class model.AssetClass, canonical string) string {
	if class != model.AssetClassForex {
		return canonical
	}
	return strings.ReplaceAll(canonical, "/", "-")
}
