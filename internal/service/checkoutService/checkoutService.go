package checkoutService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finbridge/portfolio_engine/internal/externalApi"
	"github.com/finbridge/portfolio_engine/internal/model"
	"github.com/finbridge/portfolio_engine/internal/service"
	"github.com/finbridge/portfolio_engine/internal/symbol"
	"github.com/finbridge/portfolio_engine/utils"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type PortfolioApi interface {
	GetDiscountCard(ctx context.Context, cardID string) (model.DiscountCard, error)
}

type ValuationProvider interface {
	GetConsolidatedHoldings(ctx context.Context, userID string) ([]model.ConsolidatedHolding, error)
}

type CheckoutService struct {
	portfolioApi PortfolioApi
	valuation    ValuationProvider
}

func New(portfolioApi PortfolioApi, valuation ValuationProvider) *CheckoutService {
	return &CheckoutService{
		portfolioApi: portfolioApi,
		valuation:    valuation,
	}
}

// ApplyDiscount computes the reduction a card gives on a pre-discount total.
// A used card is rejected before any computation; flipping the used flag at
// redemption time is the record store's business, not ours.
func ApplyDiscount(total decimal.Decimal, card model.DiscountCard) (model.DiscountResult, error) {
	if card.IsUsed {
		return model.DiscountResult{}, service.ErrCardAlreadyUsed
	}

	if card.PercentValue.IsNegative() || card.PercentValue.GreaterThan(hundred) {
		return model.DiscountResult{}, fmt.Errorf("discount percent out of range: %s", card.PercentValue)
	}

	discount := total.Mul(card.PercentValue).Div(hundred)

	return model.DiscountResult{
		DiscountAmount: discount,
		FinalTotal:     total.Sub(discount),
	}, nil
}

// Convert translates between asset quantity and currency amount at unitPrice,
// clamped so the implied quantity never exceeds maxQuantity. Quantities keep
// full precision; rounding to two decimals happens at the transport boundary
// only.
func Convert(mode model.ConversionMode, value, unitPrice, maxQuantity decimal.Decimal) (model.Conversion, error) {
	if !unitPrice.IsPositive() {
		return model.Conversion{}, service.ErrPricingUnavailable
	}

	if !value.IsPositive() {
		return model.Conversion{}, service.ErrInvalidQuantity
	}

	switch mode {
	case model.QuantityToCurrency:
		quantity := value
		clamped := false
		if quantity.GreaterThan(maxQuantity) {
			quantity = maxQuantity
			clamped = true
		}
		return model.Conversion{
			Quantity:       quantity,
			CurrencyAmount: quantity.Mul(unitPrice),
			Clamped:        clamped,
		}, nil

	case model.CurrencyToQuantity:
		amount := value
		clamped := false
		maxAmount := maxQuantity.Mul(unitPrice)
		if amount.GreaterThan(maxAmount) {
			amount = maxAmount
			clamped = true
		}
		return model.Conversion{
			Quantity:       amount.Div(unitPrice),
			CurrencyAmount: amount,
			Clamped:        clamped,
		}, nil
	}

	return model.Conversion{}, fmt.Errorf("unknown conversion mode %q", mode)
}

func (s *CheckoutService) ApplyDiscountCard(ctx context.Context, cardID string, total decimal.Decimal) (model.DiscountResult, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CheckoutService.ApplyDiscountCard"

	slog.Debug("ApplyDiscountCard start", slog.String("rqID", rqID), slog.String("op", op), slog.String("cardID", cardID))
	defer func() {
		slog.Debug("ApplyDiscountCard finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("cardID", cardID))
	}()

	card, err := s.portfolioApi.GetDiscountCard(ctx, cardID)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			slog.Warn("discount card not found", slog.String("rqID", rqID), slog.String("op", op), slog.String("cardID", cardID))
			return model.DiscountResult{}, service.ErrNotFound
		}
		slog.Error("got error from portfolioApi.GetDiscountCard", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.DiscountResult{}, err
	}

	result, err := ApplyDiscount(total, card)
	if err != nil {
		slog.Warn("discount rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("cardID", cardID), slog.String("err", err.Error()))
		return model.DiscountResult{}, err
	}

	return result, nil
}

// EstimateWithdrawal prices a withdrawal request against the consolidated
// holding, clamping the requested side to what the user actually holds.
func (s *CheckoutService) EstimateWithdrawal(
	ctx context.Context,
	userID string,
	class model.AssetClass,
	sym string,
	mode model.ConversionMode,
	value decimal.Decimal,
) (model.WithdrawalEstimate, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CheckoutService.EstimateWithdrawal"

	slog.Debug("EstimateWithdrawal start", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID), slog.String("symbol", sym))
	defer func() {
		slog.Debug("EstimateWithdrawal finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID), slog.String("symbol", sym))
	}()

	consolidated, err := s.valuation.GetConsolidatedHoldings(ctx, userID)
	if err != nil {
		slog.Error("got error from valuation.GetConsolidatedHoldings", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.WithdrawalEstimate{}, err
	}

	wantKey := symbol.Key(class, sym)
	if wantKey == symbol.Invalid {
		return model.WithdrawalEstimate{}, service.ErrNotFound
	}

	var holding model.ConsolidatedHolding
	found := false
	for _, c := range consolidated {
		if symbol.Key(c.AssetClass, c.Symbol) == wantKey {
			holding = c
			found = true
			break
		}
	}

	if !found {
		slog.Warn("no holding for withdrawal symbol", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", wantKey))
		return model.WithdrawalEstimate{}, service.ErrNotFound
	}

	conversion, err := Convert(mode, value, holding.ResolvedPrice, holding.Quantity)
	if err != nil {
		return model.WithdrawalEstimate{}, err
	}

	return model.WithdrawalEstimate{
		AssetClass:        holding.AssetClass,
		Symbol:            holding.Symbol,
		RequestedQuantity: conversion.Quantity,
		EstimatedAmount:   conversion.CurrencyAmount,
		MaxQuantity:       holding.Quantity,
		Clamped:           conversion.Clamped,
	}, nil
}
