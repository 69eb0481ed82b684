package model

import "github.com/shopspring/decimal"

// DiscountCard is a one-time-use loyalty reward. Usage state is owned by the
// record store; this core only refuses to compute against a card already
// marked used.
type DiscountCard struct {
	ID           string          `json:"id"`
	PercentValue decimal.Decimal `json:"percentValue"`
	IsUsed       bool            `json:"isUsed"`
}

type DiscountResult struct {
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalTotal     decimal.Decimal `json:"finalTotal"`
}

type ConversionMode string

const (
	QuantityToCurrency ConversionMode = "quantityToCurrency"
	CurrencyToQuantity ConversionMode = "currencyToQuantity"
)

type Conversion struct {
	Quantity       decimal.Decimal `json:"quantity"`
	CurrencyAmount decimal.Decimal `json:"currencyAmount"`
	Clamped        bool            `json:"clamped"`
}

type WithdrawalEstimate struct {
	AssetClass        AssetClass      `json:"assetClass"`
	Symbol            string          `json:"symbol"`
	RequestedQuantity decimal.Decimal `json:"requestedQuantity"`
	EstimatedAmount   decimal.Decimal `json:"estimatedAmount"`
	MaxQuantity       decimal.Decimal `json:"maxQuantity"`
	Clamped           bool            `json:"clamped"`
}
