package valuationService

import (
	"github.com/finbridge/portfolio_engine/internal/model"
	"github.com/finbridge/portfolio_engine/internal/symbol"
	"github.com/shopspring/decimal"
)

// PriceMap maps canonical {ASSET_CLASS}_{SYMBOL} keys to live prices. It is
// built once per valuation pass and read-only afterwards.
type PriceMap map[string]decimal.Decimal

// BuildPriceMap merges quotes from all classes into one lookup. Later quotes
// for the same key overwrite earlier ones. Crypto quotes carrying a known
// quote-currency suffix are registered twice, full and base symbol, because
// holdings were recorded inconsistently between the two spellings.
func BuildPriceMap(quotes []model.Quote) PriceMap {
	prices := make(PriceMap, len(quotes))
	for _, q := range quotes {
		key := symbol.Key(q.AssetClass, q.Symbol)
		if key == symbol.Invalid {
			continue
		}

		prices[key] = q.Price

		if baseKey, ok := symbol.BaseKey(q.AssetClass, q.Symbol); ok {
			prices[baseKey] = q.Price
		}
	}
	return prices
}

// Resolve returns the price a holding is valued at: the live quote when one
// exists, the recorded entry price otherwise. Total for every input, a
// malformed symbol included.
func (m PriceMap) Resolve(h model.Holding) decimal.Decimal {
	price, _ := m.ResolveLive(h)
	return price
}

// ResolveLive is Resolve plus a flag telling whether the price came from a
// live quote.
func (m PriceMap) ResolveLive(h model.Holding) (decimal.Decimal, bool) {
	key := symbol.Key(h.AssetClass, h.Symbol)
	if key == symbol.Invalid {
		return h.EntryPrice, false
	}

	if price, ok := m[key]; ok {
		return price, true
	}

	return h.EntryPrice, false
}
