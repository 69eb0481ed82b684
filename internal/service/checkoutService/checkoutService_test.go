package checkoutService

import (
	"context"
	"testing"

	"github.com/finbridge/portfolio_engine/internal/externalApi"
	"github.com/finbridge/portfolio_engine/internal/model"
	"github.com/finbridge/portfolio_engine/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPortfolioApi struct {
	card model.DiscountCard
	err  error
}

func (s *stubPortfolioApi) GetDiscountCard(context.Context, string) (model.DiscountCard, error) {
	return s.card, s.err
}

type stubValuation struct {
	holdings []model.ConsolidatedHolding
	err      error
}

func (s *stubValuation) GetConsolidatedHoldings(context.Context, string) ([]model.ConsolidatedHolding, error) {
	return s.holdings, s.err
}

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestApplyDiscount(t *testing.T) {
	card := model.DiscountCard{PercentValue: d(25)}

	res, err := ApplyDiscount(d(100), card)

	require.NoError(t, err)
	assert.True(t, res.DiscountAmount.Equal(d(25)))
	assert.True(t, res.FinalTotal.Equal(d(75)))
}

func TestApplyDiscount_UsedCard(t *testing.T) {
	card := model.DiscountCard{PercentValue: d(25), IsUsed: true}

	_, err := ApplyDiscount(d(100), card)

	assert.ErrorIs(t, err, service.ErrCardAlreadyUsed)
}

func TestApplyDiscount_PercentOutOfRange(t *testing.T) {
	_, err := ApplyDiscount(d(100), model.DiscountCard{PercentValue: d(150)})
	assert.Error(t, err)

	_, err = ApplyDiscount(d(100), model.DiscountCard{PercentValue: d(-5)})
	assert.Error(t, err)
}

func TestConvert_RoundTrip(t *testing.T) {
	toQty, err := Convert(model.CurrencyToQuantity, d(500), d(50), d(100))
	require.NoError(t, err)
	assert.True(t, toQty.Quantity.Equal(d(10)))
	assert.True(t, toQty.CurrencyAmount.Equal(d(500)))
	assert.False(t, toQty.Clamped)

	toCurrency, err := Convert(model.QuantityToCurrency, toQty.Quantity, d(50), d(100))
	require.NoError(t, err)
	assert.True(t, toCurrency.CurrencyAmount.Equal(d(500)))
}

func TestConvert_ClampsQuantity(t *testing.T) {
	res, err := Convert(model.QuantityToCurrency, d(999), d(10), d(5))

	require.NoError(t, err)
	assert.True(t, res.Clamped)
	assert.True(t, res.Quantity.Equal(d(5)))
	assert.True(t, res.CurrencyAmount.Equal(d(50)))
}

func TestConvert_ClampsCurrencyAmount(t *testing.T) {
	res, err := Convert(model.CurrencyToQuantity, d(1000), d(50), d(10))

	require.NoError(t, err)
	assert.True(t, res.Clamped)
	assert.True(t, res.CurrencyAmount.Equal(d(500)))
	assert.True(t, res.Quantity.Equal(d(10)))
}

func TestConvert_PricingUnavailable(t *testing.T) {
	_, err := Convert(model.QuantityToCurrency, d(10), decimal.Zero, d(5))
	assert.ErrorIs(t, err, service.ErrPricingUnavailable)

	_, err = Convert(model.CurrencyToQuantity, d(10), d(-1), d(5))
	assert.ErrorIs(t, err, service.ErrPricingUnavailable)
}

func TestConvert_InvalidQuantity(t *testing.T) {
	_, err := Convert(model.QuantityToCurrency, d(-3), d(10), d(5))
	assert.ErrorIs(t, err, service.ErrInvalidQuantity)

	_, err = Convert(model.QuantityToCurrency, decimal.Zero, d(10), d(5))
	assert.ErrorIs(t, err, service.ErrInvalidQuantity)
}

func TestConvert_UnknownMode(t *testing.T) {
	_, err := Convert(model.ConversionMode("sideways"), d(1), d(1), d(1))
	assert.Error(t, err)
}

func TestApplyDiscountCard(t *testing.T) {
	svc := New(&stubPortfolioApi{card: model.DiscountCard{ID: "card-1", PercentValue: d(10)}}, &stubValuation{})

	res, err := svc.ApplyDiscountCard(context.Background(), "card-1", d(200))

	require.NoError(t, err)
	assert.True(t, res.DiscountAmount.Equal(d(20)))
	assert.True(t, res.FinalTotal.Equal(d(180)))
}

func TestApplyDiscountCard_NotFound(t *testing.T) {
	svc := New(&stubPortfolioApi{err: externalApi.ErrNotFound}, &stubValuation{})

	_, err := svc.ApplyDiscountCard(context.Background(), "missing", d(200))

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestEstimateWithdrawal(t *testing.T) {
	valuation := &stubValuation{holdings: []model.ConsolidatedHolding{{
		AssetClass:    model.AssetClassStock,
		Symbol:        "AAPL",
		Quantity:      d(5),
		ResolvedPrice: d(10),
	}}}
	svc := New(&stubPortfolioApi{}, valuation)

	est, err := svc.EstimateWithdrawal(context.Background(), "user-1", model.AssetClassStock, "aapl", model.QuantityToCurrency, d(999))

	require.NoError(t, err)
	assert.True(t, est.Clamped)
	assert.True(t, est.RequestedQuantity.Equal(d(5)))
	assert.True(t, est.EstimatedAmount.Equal(d(50)))
	assert.True(t, est.MaxQuantity.Equal(d(5)))
}

func TestEstimateWithdrawal_UnknownHolding(t *testing.T) {
	svc := New(&stubPortfolioApi{}, &stubValuation{})

	_, err := svc.EstimateWithdrawal(context.Background(), "user-1", model.AssetClassStock, "TSLA", model.QuantityToCurrency, d(1))

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestEstimateWithdrawal_PricingUnavailable(t *testing.T) {
	valuation := &stubValuation{holdings: []model.ConsolidatedHolding{{
		AssetClass: model.AssetClassStock,
		Symbol:     "AAPL",
		Quantity:   d(5),
		// no live quote and zero entry prices leave no usable unit price
		ResolvedPrice: decimal.Zero,
	}}}
	svc := New(&stubPortfolioApi{}, valuation)

	_, err := svc.EstimateWithdrawal(context.Background(), "user-1", model.AssetClassStock, "AAPL", model.CurrencyToQuantity, d(100))

	assert.ErrorIs(t, err, service.ErrPricingUnavailable)
}
