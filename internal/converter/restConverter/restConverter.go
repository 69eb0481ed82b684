package restConverter

import "github.com/finbridge/portfolio_engine/internal/model"

// Currency amounts are rendered with two decimals here and nowhere earlier;
// quantities and unit prices keep full precision.

type PositionResponse struct {
	AssetClass    string `json:"assetClass"`
	Symbol        string `json:"symbol"`
	Quantity      string `json:"quantity"`
	EntryPrice    string `json:"entryPrice"`
	ResolvedPrice string `json:"resolvedPrice"`
	LiveQuote     bool   `json:"liveQuote"`
	CurrentValue  string `json:"currentValue"`
	InvestedValue string `json:"investedValue"`
	ProfitLoss    string `json:"profitLoss"`
	ProfitLossPct string `json:"profitLossPct"`
}

type ValuationResponse struct {
	Positions          []PositionResponse `json:"positions"`
	PortfolioValue     string             `json:"portfolioValue"`
	TotalInvested      string             `json:"totalInvested"`
	TotalProfitLoss    string             `json:"totalProfitLoss"`
	TotalProfitLossPct string             `json:"totalProfitLossPct"`
	ChartSeries        []float64          `json:"chartSeries,omitempty"`
}

type ConsolidatedHoldingResponse struct {
	AssetClass    string `json:"assetClass"`
	Symbol        string `json:"symbol"`
	Lots          int    `json:"lots"`
	Quantity      string `json:"quantity"`
	ResolvedPrice string `json:"resolvedPrice"`
	CurrentValue  string `json:"currentValue"`
	InvestedValue string `json:"investedValue"`
	ProfitLoss    string `json:"profitLoss"`
}

type DiscountResponse struct {
	DiscountAmount string `json:"discountAmount"`
	FinalTotal     string `json:"finalTotal"`
}

type WithdrawalEstimateResponse struct {
	AssetClass        string `json:"assetClass"`
	Symbol            string `json:"symbol"`
	RequestedQuantity string `json:"requestedQuantity"`
	EstimatedAmount   string `json:"estimatedAmount"`
	MaxQuantity       string `json:"maxQuantity"`
	Clamped           bool   `json:"clamped"`
}

func Valuation(v model.PortfolioValuation) ValuationResponse {
	positions := make([]PositionResponse, 0, len(v.Positions))
	for _, p := range v.Positions {
		positions = append(positions, PositionResponse{
			AssetClass:    string(p.AssetClass),
			Symbol:        p.Symbol,
			Quantity:      p.Quantity.String(),
			EntryPrice:    p.EntryPrice.String(),
			ResolvedPrice: p.ResolvedPrice.String(),
			LiveQuote:     p.LiveQuote,
			CurrentValue:  p.CurrentValue.StringFixed(2),
			InvestedValue: p.InvestedValue.StringFixed(2),
			ProfitLoss:    p.ProfitLoss.StringFixed(2),
			ProfitLossPct: p.ProfitLossPct.StringFixed(2),
		})
	}

	return ValuationResponse{
		Positions:          positions,
		PortfolioValue:     v.PortfolioValue.StringFixed(2),
		TotalInvested:      v.TotalInvested.StringFixed(2),
		TotalProfitLoss:    v.TotalProfitLoss.StringFixed(2),
		TotalProfitLossPct: v.TotalProfitLossPct.StringFixed(2),
		ChartSeries:        v.ChartSeries,
	}
}

func ConsolidatedHoldings(holdings []model.ConsolidatedHolding) []ConsolidatedHoldingResponse {
	res := make([]ConsolidatedHoldingResponse, 0, len(holdings))
	for _, h := range holdings {
		res = append(res, ConsolidatedHoldingResponse{
			AssetClass:    string(h.AssetClass),
			Symbol:        h.Symbol,
			Lots:          h.Lots,
			Quantity:      h.Quantity.String(),
			ResolvedPrice: h.ResolvedPrice.String(),
			CurrentValue:  h.CurrentValue.StringFixed(2),
			InvestedValue: h.InvestedValue.StringFixed(2),
			ProfitLoss:    h.ProfitLoss.StringFixed(2),
		})
	}
	return res
}

func Discount(d model.DiscountResult) DiscountResponse {
	return DiscountResponse{
		DiscountAmount: d.DiscountAmount.StringFixed(2),
		FinalTotal:     d.FinalTotal.StringFixed(2),
	}
}

func WithdrawalEstimate(e model.WithdrawalEstimate) WithdrawalEstimateResponse {
	return WithdrawalEstimateResponse{
		AssetClass:        string(e.AssetClass),
		Symbol:            e.Symbol,
		RequestedQuantity: e.RequestedQuantity.String(),
		EstimatedAmount:   e.EstimatedAmount.StringFixed(2),
		MaxQuantity:       e.MaxQuantity.String(),
		Clamped:           e.Clamped,
	}
}
