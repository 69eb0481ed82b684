package portfolioApi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/finbridge/portfolio_engine/config"
	"github.com/finbridge/portfolio_engine/internal/externalApi"
	"github.com/finbridge/portfolio_engine/internal/model"
	"github.com/finbridge/portfolio_engine/internal/model/recordModel"
	"github.com/finbridge/portfolio_engine/utils"
	"github.com/go-resty/resty/v2"
)

// PortfolioApi reads holdings and loyalty records from the record store
// exposed by the main application over HTTP.
type PortfolioApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *PortfolioApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.PortfolioApi.Url)
	return &PortfolioApi{client: client}
}

func (a *PortfolioApi) GetHoldings(ctx context.Context, userID string) ([]model.Holding, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioApi.GetHoldings"

	slog.Debug("start holdings request", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetPathParam("userID", userID).
		Get("/records/holdings/{userID}")

	if err != nil {
		slog.Error("error while dialing record store", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, externalApi.ErrNotFound
	}

	if resp.StatusCode() != http.StatusOK {
		slog.Error("record store returned non-200", slog.String("rqID", rqID), slog.String("op", op), slog.Int("status", resp.StatusCode()))
		return nil, externalApi.ErrSourceUnavailable
	}

	page := recordModel.RawHoldingsPage{}
	err = json.Unmarshal(resp.Body(), &page)
	if err != nil {
		slog.Error("can't unmarshall response into recordModel.RawHoldingsPage", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return a.parseRawHoldings(ctx, page), nil
}

// parseRawHoldings enforces the asset-class enum and the quantity >= 0
// invariant at the boundary; records that violate either are skipped, not
// surfaced, so one bad row can't take down a whole dashboard.
func (a *PortfolioApi) parseRawHoldings(ctx context.Context, page recordModel.RawHoldingsPage) []model.Holding {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioApi.parseRawHoldings"

	holdings := make([]model.Holding, 0, len(page.Records))
	for _, rec := range page.Records {
		class, err := model.ParseAssetClass(rec.AssetClass)
		if err != nil {
			slog.Warn("skipping holding with unknown asset class", slog.String("rqID", rqID), slog.String("op", op), slog.String("assetClass", rec.AssetClass), slog.String("symbol", rec.Symbol))
			continue
		}

		if rec.Quantity.IsNegative() {
			slog.Warn("skipping holding with negative quantity", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", rec.Symbol), slog.String("quantity", rec.Quantity.String()))
			continue
		}

		holdings = append(holdings, model.Holding{
			AssetClass: class,
			Symbol:     rec.Symbol,
			Quantity:   rec.Quantity,
			EntryPrice: rec.EntryPrice,
		})
	}

	return holdings
}

func (a *PortfolioApi) GetDiscountCard(ctx context.Context, cardID string) (model.DiscountCard, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioApi.GetDiscountCard"

	slog.Debug("start discount card request", slog.String("rqID", rqID), slog.String("op", op), slog.String("cardID", cardID))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetPathParam("cardID", cardID).
		Get("/records/discount-cards/{cardID}")

	if err != nil {
		slog.Error("error while dialing record store", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.DiscountCard{}, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return model.DiscountCard{}, externalApi.ErrNotFound
	}

	if resp.StatusCode() != http.StatusOK {
		slog.Error("record store returned non-200", slog.String("rqID", rqID), slog.String("op", op), slog.Int("status", resp.StatusCode()))
		return model.DiscountCard{}, externalApi.ErrSourceUnavailable
	}

	rawCard := recordModel.RawDiscountCard{}
	err = json.Unmarshal(resp.Body(), &rawCard)
	if err != nil {
		slog.Error("can't unmarshall response into recordModel.RawDiscountCard", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.DiscountCard{}, err
	}

	return model.DiscountCard{
		ID:           rawCard.ID,
		PercentValue: rawCard.PercentValue,
		IsUsed:       rawCard.IsUsed,
	}, nil
}
