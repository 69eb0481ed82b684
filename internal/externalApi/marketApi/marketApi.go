package marketApi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/finbridge/portfolio_engine/config"
	"github.com/finbridge/portfolio_engine/internal/externalApi"
	"github.com/finbridge/portfolio_engine/internal/model"
	"github.com/finbridge/portfolio_engine/internal/model/marketModel"
	"github.com/finbridge/portfolio_engine/internal/symbol"
	"github.com/finbridge/portfolio_engine/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// MarketApi batches quote lookups against the three class price sources.
// One request per class, symbols comma-separated.
type MarketApi struct {
	client *resty.Client
	cfg    *config.Config
}

func New(cfg *config.Config) *MarketApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout)
	return &MarketApi{client: client, cfg: cfg}
}

func (a *MarketApi) GetStockQuotes(ctx context.Context, symbols []string) ([]model.Quote, error) {
	return a.getQuotes(ctx, model.AssetClassStock, a.cfg.API.StockApi.Url, symbols)
}

func (a *MarketApi) GetCryptoQuotes(ctx context.Context, symbols []string) ([]model.Quote, error) {
	return a.getQuotes(ctx, model.AssetClassCrypto, a.cfg.API.CryptoApi.Url, symbols)
}

func (a *MarketApi) GetForexQuotes(ctx context.Context, symbols []string) ([]model.Quote, error) {
	return a.getQuotes(ctx, model.AssetClassForex, a.cfg.API.ForexApi.Url, symbols)
}

func (a *MarketApi) getQuotes(ctx context.Context, class model.AssetClass, url string, symbols []string) ([]model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MarketApi.getQuotes"

	if len(symbols) == 0 {
		return nil, nil
	}

	// forex pairs travel hyphen-delimited on the wire, canonical form is slash
	batch := make([]string, 0, len(symbols))
	for _, s := range symbols {
		batch = append(batch, symbol.RouteForm(class, s))
	}

	slog.Debug("start quotes request", slog.String("rqID", rqID), slog.String("op", op), slog.String("class", string(class)))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("symbols", strings.Join(batch, ",")).
		Get(url)

	if err != nil {
		slog.Error("error while dialing price source", slog.String("rqID", rqID), slog.String("op", op), slog.String("class", string(class)), slog.String("err", err.Error()))
		return nil, externalApi.ErrSourceUnavailable
	}

	if resp.StatusCode() != http.StatusOK {
		slog.Error("price source returned non-200", slog.String("rqID", rqID), slog.String("op", op), slog.String("class", string(class)), slog.Int("status", resp.StatusCode()))
		return nil, externalApi.ErrSourceUnavailable
	}

	rawQuotes := marketModel.RawQuotes{}
	err = json.Unmarshal(resp.Body(), &rawQuotes)
	if err != nil {
		slog.Error("can't unmarshall response into marketModel.RawQuotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("class", string(class)), slog.String("err", err.Error()))
		return nil, externalApi.ErrSourceUnavailable
	}

	res := a.parseRawQuotes(ctx, class, rawQuotes)

	slog.Debug("quotes request complete", slog.String("rqID", rqID), slog.String("op", op), slog.String("class", string(class)), slog.Int("quotes", len(res)))

	return res, nil
}

func (a *MarketApi) parseRawQuotes(ctx context.Context, class model.AssetClass, rawQuotes marketModel.RawQuotes) []model.Quote {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MarketApi.parseRawQuotes"

	quotes := make([]model.Quote, 0, len(rawQuotes.Quotes))
	for _, raw := range rawQuotes.Quotes {
		price, ok := parsePrice(raw.Price)
		if !ok || !price.IsPositive() {
			slog.Warn("discarding quote without a positive price", slog.String("rqID", rqID), slog.String("op", op), slog.String("class", string(class)), slog.String("symbol", raw.Symbol), slog.Any("price", raw.Price))
			continue
		}

		quotes = append(quotes, model.Quote{
			AssetClass: class,
			Symbol:     raw.Symbol,
			Price:      price,
		})
	}

	return quotes
}

func parsePrice(v any) (decimal.Decimal, bool) {
	switch price := v.(type) {
	case float64:
		return decimal.NewFromFloat(price), true
	case string:
		d, err := decimal.NewFromString(price)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	return decimal.Decimal{}, false
}
