package valuationService

import (
	"context"
	"errors"
	"testing"

	"github.com/finbridge/portfolio_engine/config"
	"github.com/finbridge/portfolio_engine/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMarketApi struct {
	stockQuotes  []model.Quote
	cryptoQuotes []model.Quote
	forexQuotes  []model.Quote

	stockErr  error
	cryptoErr error
	forexErr  error

	stockSymbols  []string
	cryptoSymbols []string
	forexSymbols  []string

	stockCalls  int
	cryptoCalls int
	forexCalls  int
}

func (s *stubMarketApi) GetStockQuotes(_ context.Context, symbols []string) ([]model.Quote, error) {
	s.stockCalls++
	s.stockSymbols = symbols
	return s.stockQuotes, s.stockErr
}

func (s *stubMarketApi) GetCryptoQuotes(_ context.Context, symbols []string) ([]model.Quote, error) {
	s.cryptoCalls++
	s.cryptoSymbols = symbols
	return s.cryptoQuotes, s.cryptoErr
}

func (s *stubMarketApi) GetForexQuotes(_ context.Context, symbols []string) ([]model.Quote, error) {
	s.forexCalls++
	s.forexSymbols = symbols
	return s.forexQuotes, s.forexErr
}

type stubPortfolioApi struct {
	holdings []model.Holding
	err      error
}

func (s *stubPortfolioApi) GetHoldings(context.Context, string) ([]model.Holding, error) {
	return s.holdings, s.err
}

// stubCache always misses so tests exercise the live fetch path.
type stubCache struct{}

func (stubCache) GetQuoteSnapshot(context.Context, string) ([]model.Quote, error) {
	return nil, errors.New("cache miss")
}

func (stubCache) SetQuoteSnapshot(context.Context, string, []model.Quote) error {
	return nil
}

func holding(class model.AssetClass, sym string, quantity, entryPrice float64) model.Holding {
	return model.Holding{
		AssetClass: class,
		Symbol:     sym,
		Quantity:   decimal.NewFromFloat(quantity),
		EntryPrice: decimal.NewFromFloat(entryPrice),
	}
}

func quote(class model.AssetClass, sym string, price float64) model.Quote {
	return model.Quote{AssetClass: class, Symbol: sym, Price: decimal.NewFromFloat(price)}
}

func newService(portfolio *stubPortfolioApi, market *stubMarketApi) *ValuationService {
	cfg := &config.Config{Valuation: config.Valuation{ChartSteps: 20}}
	return New(cfg, portfolio, market, stubCache{})
}

func TestBuildPriceMap_CryptoDualRegistration(t *testing.T) {
	prices := BuildPriceMap([]model.Quote{quote(model.AssetClassCrypto, "BTCUSDT", 50000)})

	full := prices.Resolve(holding(model.AssetClassCrypto, "BTCUSDT", 1, 100))
	base := prices.Resolve(holding(model.AssetClassCrypto, "BTC", 1, 100))

	assert.True(t, full.Equal(decimal.NewFromInt(50000)))
	assert.True(t, base.Equal(full))
}

func TestBuildPriceMap_LastWriteWins(t *testing.T) {
	prices := BuildPriceMap([]model.Quote{
		quote(model.AssetClassStock, "AAPL", 100),
		quote(model.AssetClassStock, "aapl", 101),
	})

	got := prices.Resolve(holding(model.AssetClassStock, "AAPL", 1, 0))
	assert.True(t, got.Equal(decimal.NewFromInt(101)))
}

func TestResolve_Totality(t *testing.T) {
	prices := BuildPriceMap(nil)

	// malformed symbol, any class: entry price comes back, nothing blows up
	got := prices.Resolve(holding(model.AssetClassCrypto, "", 1, 42))
	assert.True(t, got.Equal(decimal.NewFromInt(42)))

	got = prices.Resolve(holding(model.AssetClass("bond"), "???", 1, 7))
	assert.True(t, got.Equal(decimal.NewFromInt(7)))
}

func TestValuate_EmptyPriceMapFallsBackToEntry(t *testing.T) {
	holdings := []model.Holding{
		holding(model.AssetClassStock, "AAPL", 2, 100),
		holding(model.AssetClassCrypto, "BTC", 0.5, 40000),
	}

	valuation := Valuate(holdings, BuildPriceMap(nil))

	assert.True(t, valuation.TotalProfitLoss.IsZero())
	assert.True(t, valuation.TotalProfitLossPct.IsZero())
	assert.True(t, valuation.PortfolioValue.Equal(valuation.TotalInvested))
	for _, p := range valuation.Positions {
		assert.False(t, p.LiveQuote)
	}
}

func TestValuate_ProfitLoss(t *testing.T) {
	holdings := []model.Holding{holding(model.AssetClassStock, "AAPL", 2, 100)}
	prices := BuildPriceMap([]model.Quote{quote(model.AssetClassStock, "AAPL", 150)})

	valuation := Valuate(holdings, prices)

	require.Len(t, valuation.Positions, 1)
	p := valuation.Positions[0]
	assert.True(t, p.LiveQuote)
	assert.True(t, p.CurrentValue.Equal(decimal.NewFromInt(300)))
	assert.True(t, p.InvestedValue.Equal(decimal.NewFromInt(200)))
	assert.True(t, p.ProfitLoss.Equal(decimal.NewFromInt(100)))
	assert.True(t, p.ProfitLossPct.Equal(decimal.NewFromInt(50)))
	assert.True(t, valuation.TotalProfitLossPct.Equal(decimal.NewFromInt(50)))
}

func TestValuate_ZeroInvested(t *testing.T) {
	holdings := []model.Holding{holding(model.AssetClassStock, "FREE", 3, 0)}
	prices := BuildPriceMap([]model.Quote{quote(model.AssetClassStock, "FREE", 10)})

	valuation := Valuate(holdings, prices)

	require.Len(t, valuation.Positions, 1)
	assert.True(t, valuation.Positions[0].ProfitLossPct.IsZero())
	assert.True(t, valuation.TotalProfitLossPct.IsZero())
}

func TestConsolidate_PerLotInvestedValue(t *testing.T) {
	holdings := []model.Holding{
		holding(model.AssetClassStock, "AAPL", 2, 100),
		holding(model.AssetClassStock, "aapl", 3, 120),
	}

	consolidated := Consolidate(holdings, BuildPriceMap(nil))

	require.Len(t, consolidated, 1)
	c := consolidated[0]
	assert.Equal(t, 2, c.Lots)
	assert.True(t, c.Quantity.Equal(decimal.NewFromInt(5)))
	// 2*100 + 3*120, not 5 * some averaged price
	assert.True(t, c.InvestedValue.Equal(decimal.NewFromInt(560)))
	assert.True(t, c.CurrentValue.Equal(decimal.NewFromInt(560)))
	assert.True(t, c.ProfitLoss.IsZero())
}

func TestConsolidate_LiveQuoteUnitPrice(t *testing.T) {
	holdings := []model.Holding{
		holding(model.AssetClassStock, "AAPL", 2, 100),
		holding(model.AssetClassStock, "AAPL", 3, 120),
	}
	prices := BuildPriceMap([]model.Quote{quote(model.AssetClassStock, "AAPL", 150)})

	consolidated := Consolidate(holdings, prices)

	require.Len(t, consolidated, 1)
	c := consolidated[0]
	assert.True(t, c.ResolvedPrice.Equal(decimal.NewFromInt(150)))
	assert.True(t, c.CurrentValue.Equal(decimal.NewFromInt(750)))
	assert.True(t, c.ProfitLoss.Equal(decimal.NewFromInt(190)))
}

func TestFetchQuotes_SkipsEmptyClasses(t *testing.T) {
	market := &stubMarketApi{stockQuotes: []model.Quote{quote(model.AssetClassStock, "AAPL", 100)}}
	svc := newService(&stubPortfolioApi{}, market)

	holdings := []model.Holding{
		holding(model.AssetClassStock, "AAPL", 1, 90),
		holding(model.AssetClassStock, "aapl ", 2, 95),
	}

	quotes := svc.FetchQuotes(context.Background(), holdings)

	assert.Equal(t, 1, market.stockCalls)
	assert.Equal(t, 0, market.cryptoCalls)
	assert.Equal(t, 0, market.forexCalls)
	assert.Equal(t, []string{"AAPL"}, market.stockSymbols) // deduplicated after normalization
	assert.Len(t, quotes, 1)
}

func TestFetchQuotes_PartialSourceFailure(t *testing.T) {
	market := &stubMarketApi{
		stockQuotes: []model.Quote{quote(model.AssetClassStock, "AAPL", 150)},
		forexQuotes: []model.Quote{quote(model.AssetClassForex, "EUR/USD", 1.1)},
		cryptoErr:   errors.New("source down"),
	}
	svc := newService(&stubPortfolioApi{}, market)

	holdings := []model.Holding{
		holding(model.AssetClassStock, "AAPL", 1, 100),
		holding(model.AssetClassCrypto, "BTC", 1, 40000),
		holding(model.AssetClassForex, "EUR-USD", 1000, 1.0),
	}

	quotes := svc.FetchQuotes(context.Background(), holdings)
	valuation := Valuate(holdings, BuildPriceMap(quotes))

	require.Len(t, valuation.Positions, 3)
	byClass := map[model.AssetClass]model.Position{}
	for _, p := range valuation.Positions {
		byClass[p.AssetClass] = p
	}

	assert.True(t, byClass[model.AssetClassStock].LiveQuote)
	assert.True(t, byClass[model.AssetClassForex].LiveQuote)
	// crypto degraded to entry price, no error anywhere
	assert.False(t, byClass[model.AssetClassCrypto].LiveQuote)
	assert.True(t, byClass[model.AssetClassCrypto].ProfitLoss.IsZero())
}

func TestFetchQuotes_ETFSharesStockSource(t *testing.T) {
	market := &stubMarketApi{
		stockQuotes: []model.Quote{
			quote(model.AssetClassStock, "AAPL", 150),
			quote(model.AssetClassStock, "SPY", 450),
		},
	}
	svc := newService(&stubPortfolioApi{}, market)

	holdings := []model.Holding{
		holding(model.AssetClassStock, "AAPL", 1, 100),
		holding(model.AssetClassETF, "SPY", 2, 400),
	}

	quotes := svc.FetchQuotes(context.Background(), holdings)

	assert.Equal(t, 1, market.stockCalls)
	assert.ElementsMatch(t, []string{"AAPL", "SPY"}, market.stockSymbols)

	price := BuildPriceMap(quotes).Resolve(holdings[1])
	assert.True(t, price.Equal(decimal.NewFromInt(450)))
}

func TestGetPortfolioValuation_TotalFetchFailure(t *testing.T) {
	market := &stubMarketApi{
		stockErr:  errors.New("down"),
		cryptoErr: errors.New("down"),
		forexErr:  errors.New("down"),
	}
	portfolio := &stubPortfolioApi{holdings: []model.Holding{
		holding(model.AssetClassStock, "AAPL", 2, 100),
	}}
	svc := newService(portfolio, market)

	valuation, err := svc.GetPortfolioValuation(context.Background(), "user-1")

	require.NoError(t, err)
	assert.True(t, valuation.TotalProfitLoss.IsZero())
	assert.True(t, valuation.PortfolioValue.Equal(valuation.TotalInvested))
}

func TestGetPortfolioValuation_ChartSeriesEndpoint(t *testing.T) {
	market := &stubMarketApi{stockQuotes: []model.Quote{quote(model.AssetClassStock, "AAPL", 150)}}
	portfolio := &stubPortfolioApi{holdings: []model.Holding{
		holding(model.AssetClassStock, "AAPL", 2, 100),
	}}
	svc := newService(portfolio, market)

	valuation, err := svc.GetPortfolioValuation(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, valuation.ChartSeries, 20)
	assert.InDelta(t, valuation.TotalProfitLossPct.InexactFloat64(), valuation.ChartSeries[19], 1e-9)
}

func TestSmoothedSeries(t *testing.T) {
	series := smoothedSeries(40, 20)

	require.Len(t, series, 20)
	assert.Equal(t, 40.0, series[19])

	// the converged tail is exact interpolation, not wobble
	assert.InDelta(t, 40*19.0/20.0, series[18], 1e-9)

	assert.Nil(t, smoothedSeries(10, 0))
}
