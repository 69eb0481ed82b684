package model

import "github.com/shopspring/decimal"

// Quote is a live price sample for one symbol within one asset class.
// Never persisted, lives for one dashboard view at most.
type Quote struct {
	AssetClass AssetClass      `json:"assetClass"`
	Symbol     string          `json:"symbol"`
	Price      decimal.Decimal `json:"price"`
}

type Position struct {
	AssetClass    AssetClass      `json:"assetClass"`
	Symbol        string          `json:"symbol"`
	Quantity      decimal.Decimal `json:"quantity"`
	EntryPrice    decimal.Decimal `json:"entryPrice"`
	ResolvedPrice decimal.Decimal `json:"resolvedPrice"`
	LiveQuote     bool            `json:"liveQuote"`
	CurrentValue  decimal.Decimal `json:"currentValue"`
	InvestedValue decimal.Decimal `json:"investedValue"`
	ProfitLoss    decimal.Decimal `json:"profitLoss"`
	ProfitLossPct decimal.Decimal `json:"profitLossPct"`
}

type PortfolioValuation struct {
	Positions          []Position      `json:"positions"`
	PortfolioValue     decimal.Decimal `json:"portfolioValue"`
	TotalInvested      decimal.Decimal `json:"totalInvested"`
	TotalProfitLoss    decimal.Decimal `json:"totalProfitLoss"`
	TotalProfitLossPct decimal.Decimal `json:"totalProfitLossPct"`
	ChartSeries        []float64       `json:"chartSeries,omitempty"`
}

// ConsolidatedHolding is the on-read aggregation of every lot sharing one
// canonical (assetClass, symbol). InvestedValue is summed per lot, never
// derived from an averaged entry price.
type ConsolidatedHolding struct {
	AssetClass    AssetClass      `json:"assetClass"`
	Symbol        string          `json:"symbol"`
	Lots          int             `json:"lots"`
	Quantity      decimal.Decimal `json:"quantity"`
	ResolvedPrice decimal.Decimal `json:"resolvedPrice"`
	CurrentValue  decimal.Decimal `json:"currentValue"`
	InvestedValue decimal.Decimal `json:"investedValue"`
	ProfitLoss    decimal.Decimal `json:"profitLoss"`
}
