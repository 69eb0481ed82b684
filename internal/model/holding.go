package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type AssetClass string

const (
	AssetClassStock  AssetClass = "stock"
	AssetClassCrypto AssetClass = "crypto"
	AssetClassForex  AssetClass = "forex"
	AssetClassETF    AssetClass = "etf"
)

func ParseAssetClass(s string) (AssetClass, error) {
	switch AssetClass(strings.ToLower(strings.TrimSpace(s))) {
	case AssetClassStock:
		return AssetClassStock, nil
	case AssetClassCrypto:
		return AssetClassCrypto, nil
	case AssetClassForex:
		return AssetClassForex, nil
	case AssetClassETF:
		return AssetClassETF, nil
	}
	return "", fmt.Errorf("unknown asset class %q", s)
}

// Holding is one recorded lot in a user's portfolio. Symbol is kept as
// originally recorded, casing and delimiter included; canonicalization
// happens in the symbol package on read.
type Holding struct {
	AssetClass AssetClass      `json:"assetClass"`
	Symbol     string          `json:"symbol"`
	Quantity   decimal.Decimal `json:"quantity"`
	EntryPrice decimal.Decimal `json:"entryPrice"`
}
