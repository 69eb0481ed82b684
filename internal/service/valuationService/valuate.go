package valuationService

import (
	"github.com/finbridge/portfolio_engine/internal/model"
	"github.com/finbridge/portfolio_engine/internal/symbol"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Valuate computes per-position and aggregate value, cost and P/L from an
// immutable holdings snapshot and price map. With an empty map every position
// falls back to its entry price, which yields a zero P/L portfolio rather
// than an error.
func Valuate(holdings []model.Holding, prices PriceMap) model.PortfolioValuation {
	valuation := model.PortfolioValuation{
		Positions: make([]model.Position, 0, len(holdings)),
	}

	for _, h := range holdings {
		price, live := prices.ResolveLive(h)

		currentValue := price.Mul(h.Quantity)
		investedValue := h.EntryPrice.Mul(h.Quantity)
		profitLoss := currentValue.Sub(investedValue)

		profitLossPct := decimal.Zero
		if !investedValue.IsZero() {
			profitLossPct = profitLoss.Div(investedValue).Mul(hundred)
		}

		valuation.Positions = append(valuation.Positions, model.Position{
			AssetClass:    h.AssetClass,
			Symbol:        symbol.Normalize(h.AssetClass, h.Symbol),
			Quantity:      h.Quantity,
			EntryPrice:    h.EntryPrice,
			ResolvedPrice: price,
			LiveQuote:     live,
			CurrentValue:  currentValue,
			InvestedValue: investedValue,
			ProfitLoss:    profitLoss,
			ProfitLossPct: profitLossPct,
		})

		valuation.PortfolioValue = valuation.PortfolioValue.Add(currentValue)
		valuation.TotalInvested = valuation.TotalInvested.Add(investedValue)
		valuation.TotalProfitLoss = valuation.TotalProfitLoss.Add(profitLoss)
	}

	if !valuation.TotalInvested.IsZero() {
		valuation.TotalProfitLossPct = valuation.TotalProfitLoss.Div(valuation.TotalInvested).Mul(hundred)
	}

	return valuation
}

// Consolidate folds every lot sharing one canonical (assetClass, symbol) into
// a single row, the view withdrawal selection works against. Quantity is
// summed; invested and current values are accumulated per lot from each lot's
// own entry price, so P/L stays correct across lots bought at different
// prices.
func Consolidate(holdings []model.Holding, prices PriceMap) []model.ConsolidatedHolding {
	byKey := make(map[string]*model.ConsolidatedHolding, len(holdings))
	order := make([]string, 0, len(holdings))

	for _, h := range holdings {
		key := symbol.Key(h.AssetClass, h.Symbol)
		if key == symbol.Invalid {
			// unidentifiable lots stay separate instead of merging with
			// every other malformed row
			key = string(h.AssetClass) + "|" + h.Symbol
		}

		c, ok := byKey[key]
		if !ok {
			c = &model.ConsolidatedHolding{
				AssetClass:    h.AssetClass,
				Symbol:        symbol.Normalize(h.AssetClass, h.Symbol),
				ResolvedPrice: prices.Resolve(h),
			}
			byKey[key] = c
			order = append(order, key)
		}

		lotPrice := prices.Resolve(h)

		c.Lots++
		c.Quantity = c.Quantity.Add(h.Quantity)
		c.InvestedValue = c.InvestedValue.Add(h.EntryPrice.Mul(h.Quantity))
		c.CurrentValue = c.CurrentValue.Add(lotPrice.Mul(h.Quantity))
	}

	consolidated := make([]model.ConsolidatedHolding, 0, len(order))
	for _, key := range order {
		c := byKey[key]
		c.ProfitLoss = c.CurrentValue.Sub(c.InvestedValue)
		// effective unit price; equals the live quote when one was used for
		// every lot, a quantity-weighted entry price otherwise
		if c.Quantity.IsPositive() {
			c.ResolvedPrice = c.CurrentValue.Div(c.Quantity)
		}
		consolidated = append(consolidated, *c)
	}

	return consolidated
}
