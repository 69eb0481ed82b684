package valuationService

import (
	"context"
	"log/slog"
	"sync"

	"github.com/finbridge/portfolio_engine/config"
	"github.com/finbridge/portfolio_engine/internal/model"
	"github.com/finbridge/portfolio_engine/internal/symbol"
	"github.com/finbridge/portfolio_engine/utils"
)

type MarketApi interface {
	GetStockQuotes(ctx context.Context, symbols []string) ([]model.Quote, error)
	GetCryptoQuotes(ctx context.Context, symbols []string) ([]model.Quote, error)
	GetForexQuotes(ctx context.Context, symbols []string) ([]model.Quote, error)
}

type PortfolioApi interface {
	GetHoldings(ctx context.Context, userID string) ([]model.Holding, error)
}

type Cache interface {
	GetQuoteSnapshot(ctx context.Context, userID string) ([]model.Quote, error)
	SetQuoteSnapshot(ctx context.Context, userID string, quotes []model.Quote) error
}

type ValuationService struct {
	cfg          *config.Config
	portfolioApi PortfolioApi
	marketApi    MarketApi
	cache        Cache
}

func New(cfg *config.Config, portfolioApi PortfolioApi, marketApi MarketApi, cache Cache) *ValuationService {
	return &ValuationService{
		cfg:          cfg,
		portfolioApi: portfolioApi,
		marketApi:    marketApi,
		cache:        cache,
	}
}

func (s *ValuationService) GetPortfolioValuation(ctx context.Context, userID string) (model.PortfolioValuation, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ValuationService.GetPortfolioValuation"

	slog.Debug("GetPortfolioValuation start", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	defer func() {
		slog.Debug("GetPortfolioValuation finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	}()

	holdings, err := s.portfolioApi.GetHoldings(ctx, userID)
	if err != nil {
		slog.Error("got error from portfolioApi.GetHoldings", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioValuation{}, err
	}

	quotes := s.getQuoteSnapshot(ctx, userID, holdings)
	prices := BuildPriceMap(quotes)

	valuation := Valuate(holdings, prices)
	valuation.ChartSeries = smoothedSeries(valuation.TotalProfitLossPct.InexactFloat64(), s.cfg.Valuation.ChartSteps)

	return valuation, nil
}

func (s *ValuationService) GetConsolidatedHoldings(ctx context.Context, userID string) ([]model.ConsolidatedHolding, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ValuationService.GetConsolidatedHoldings"

	slog.Debug("GetConsolidatedHoldings start", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	defer func() {
		slog.Debug("GetConsolidatedHoldings finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	}()

	holdings, err := s.portfolioApi.GetHoldings(ctx, userID)
	if err != nil {
		slog.Error("got error from portfolioApi.GetHoldings", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	quotes := s.getQuoteSnapshot(ctx, userID, holdings)

	return Consolidate(holdings, BuildPriceMap(quotes)), nil
}

// getQuoteSnapshot returns the price snapshot for one dashboard view: the
// cached one while it lives, a fresh fetch otherwise. Cache trouble is never
// an error, just a fresh fetch.
func (s *ValuationService) getQuoteSnapshot(ctx context.Context, userID string, holdings []model.Holding) []model.Quote {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ValuationService.getQuoteSnapshot"

	quotes, err := s.cache.GetQuoteSnapshot(ctx, userID)
	if err == nil {
		return quotes
	}

	slog.Warn("can't get quote snapshot from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

	quotes = s.FetchQuotes(ctx, holdings)

	if len(quotes) > 0 {
		go s.cache.SetQuoteSnapshot(context.WithoutCancel(ctx), userID, quotes)
	}

	return quotes
}

// FetchQuotes issues one batched lookup per asset class, concurrently. Each
// class is independent: a failed source contributes no quotes and the others
// proceed, so the worst case is entry-price fallback, never an error.
func (s *ValuationService) FetchQuotes(ctx context.Context, holdings []model.Holding) []model.Quote {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ValuationService.FetchQuotes"

	stockSymbols := distinctSymbols(holdings, model.AssetClassStock)
	etfSymbols := distinctSymbols(holdings, model.AssetClassETF)
	cryptoSymbols := distinctSymbols(holdings, model.AssetClassCrypto)
	forexSymbols := distinctSymbols(holdings, model.AssetClassForex)

	// etf tickers are priced by the stock source, one combined batch
	equitySymbols := union(stockSymbols, etfSymbols)

	fetches := []struct {
		class   model.AssetClass
		symbols []string
		fn      func(context.Context, []string) ([]model.Quote, error)
	}{
		{model.AssetClassStock, equitySymbols, s.marketApi.GetStockQuotes},
		{model.AssetClassCrypto, cryptoSymbols, s.marketApi.GetCryptoQuotes},
		{model.AssetClassForex, forexSymbols, s.marketApi.GetForexQuotes},
	}

	results := make([][]model.Quote, len(fetches))

	var wg sync.WaitGroup
	for i, fetch := range fetches {
		if len(fetch.symbols) == 0 {
			continue // nothing held in this class, no call issued
		}

		i, fetch := i, fetch
		wg.Add(1)
		go func() {
			defer wg.Done()

			classQuotes, err := fetch.fn(ctx, fetch.symbols)
			if err != nil {
				slog.Warn(
					"class price source failed, its positions fall back to entry price",
					slog.String("rqID", rqID),
					slog.String("op", op),
					slog.String("class", string(fetch.class)),
					slog.String("err", err.Error()),
				)
				return
			}
			results[i] = classQuotes
		}()
	}
	wg.Wait()

	quotes := make([]model.Quote, 0, len(results[0])+len(results[1])+len(results[2]))
	for _, classQuotes := range results {
		quotes = append(quotes, classQuotes...)
	}

	// mirror equity quotes under the etf class for symbols held as etf
	if len(etfSymbols) > 0 {
		etfSet := make(map[string]struct{}, len(etfSymbols))
		for _, sym := range etfSymbols {
			etfSet[sym] = struct{}{}
		}

		for _, q := range results[0] {
			if _, ok := etfSet[symbol.Normalize(model.AssetClassStock, q.Symbol)]; ok {
				quotes = append(quotes, model.Quote{
					AssetClass: model.AssetClassETF,
					Symbol:     q.Symbol,
					Price:      q.Price,
				})
			}
		}
	}

	return quotes
}

// distinctSymbols collects the deduplicated canonical symbols one class holds.
func distinctSymbols(holdings []model.Holding, class model.AssetClass) []string {
	seen := make(map[string]struct{}, len(holdings))
	symbols := make([]string, 0, len(holdings))

	for _, h := range holdings {
		if h.AssetClass != class {
			continue
		}

		canonical := symbol.Normalize(h.AssetClass, h.Symbol)
		if canonical == symbol.Invalid {
			continue
		}

		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		symbols = append(symbols, canonical)
	}

	return symbols
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		merged = append(merged, s)
	}

	return merged
}
