package recordModel

import "github.com/shopspring/decimal"

// RawHoldingsPage is the record-store response for a user's holdings list.
type RawHoldingsPage struct {
	Records []RawHolding `json:"records"`
}

type RawHolding struct {
	AssetClass string          `json:"assetClass"`
	Symbol     string          `json:"symbol"`
	Quantity   decimal.Decimal `json:"quantity"`
	EntryPrice decimal.Decimal `json:"entryPrice"`
}

type RawDiscountCard struct {
	ID           string          `json:"id"`
	PercentValue decimal.Decimal `json:"percentValue"`
	IsUsed       bool            `json:"isUsed"`
}
