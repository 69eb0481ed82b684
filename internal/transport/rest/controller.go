package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/finbridge/portfolio_engine/internal/converter/restConverter"
	"github.com/finbridge/portfolio_engine/internal/model"
	"github.com/finbridge/portfolio_engine/internal/service"
	"github.com/finbridge/portfolio_engine/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ValuationService interface {
	GetPortfolioValuation(ctx context.Context, userID string) (model.PortfolioValuation, error)
	GetConsolidatedHoldings(ctx context.Context, userID string) ([]model.ConsolidatedHolding, error)
}

type CheckoutService interface {
	ApplyDiscountCard(ctx context.Context, cardID string, total decimal.Decimal) (model.DiscountResult, error)
	EstimateWithdrawal(ctx context.Context, userID string, class model.AssetClass, sym string, mode model.ConversionMode, value decimal.Decimal) (model.WithdrawalEstimate, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, valuation model.PortfolioValuation) (fileBytes []byte, fileExtension string, err error)
}

type Controller struct {
	valuationService ValuationService
	checkoutService  CheckoutService
	reportGenerator  ReportGenerator
}

func NewController(valuationService ValuationService, checkoutService CheckoutService, reportGenerator ReportGenerator) *Controller {
	return &Controller{
		valuationService: valuationService,
		checkoutService:  checkoutService,
		reportGenerator:  reportGenerator,
	}
}

func (ctrl *Controller) GetValuation(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	valuation, err := ctrl.valuationService.GetPortfolioValuation(ctx, c.Param("userID"))
	if err != nil {
		slog.Error("got error from valuationService.GetPortfolioValuation", slog.String("rqID", rqID), slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, restConverter.Valuation(valuation))
}

func (ctrl *Controller) GetConsolidatedHoldings(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	holdings, err := ctrl.valuationService.GetConsolidatedHoldings(ctx, c.Param("userID"))
	if err != nil {
		slog.Error("got error from valuationService.GetConsolidatedHoldings", slog.String("rqID", rqID), slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"holdings": restConverter.ConsolidatedHoldings(holdings)})
}

func (ctrl *Controller) GetStatement(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	valuation, err := ctrl.valuationService.GetPortfolioValuation(ctx, c.Param("userID"))
	if err != nil {
		slog.Error("got error from valuationService.GetPortfolioValuation", slog.String("rqID", rqID), slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	fileBytes, ext, err := ctrl.reportGenerator.Generate(ctx, valuation)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="portfolio`+ext+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", fileBytes)
}

type DiscountRequest struct {
	CardID string `json:"cardId" binding:"required"`
	Total  string `json:"total" binding:"required"`
}

func (ctrl *Controller) ApplyDiscount(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid post body", slog.String("rqID", rqID), slog.String("err", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	total, err := decimal.NewFromString(req.Total)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid total format"})
		return
	}

	result, err := ctrl.checkoutService.ApplyDiscountCard(ctx, req.CardID, total)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "discount card not found"})
		case errors.Is(err, service.ErrCardAlreadyUsed):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "discount card already used"})
		default:
			slog.Error("got error from checkoutService.ApplyDiscountCard", slog.String("rqID", rqID), slog.String("err", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		}
		return
	}

	c.JSON(http.StatusOK, restConverter.Discount(result))
}

type WithdrawalEstimateRequest struct {
	UserID     string `json:"userId" binding:"required"`
	AssetClass string `json:"assetClass" binding:"required"`
	Symbol     string `json:"symbol" binding:"required"`
	Mode       string `json:"mode" binding:"required"`
	Value      string `json:"value" binding:"required"`
}

func (ctrl *Controller) EstimateWithdrawal(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	var req WithdrawalEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid post body", slog.String("rqID", rqID), slog.String("err", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class, err := model.ParseAssetClass(req.AssetClass)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := model.ConversionMode(req.Mode)
	if mode != model.QuantityToCurrency && mode != model.CurrencyToQuantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown conversion mode"})
		return
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		// non-numeric input is auto-correctable, tell the UI what to show
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid quantity", "correctedValue": "0"})
		return
	}

	estimate, err := ctrl.checkoutService.EstimateWithdrawal(ctx, req.UserID, class, req.Symbol, mode, value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "holding not found"})
		case errors.Is(err, service.ErrInvalidQuantity):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid quantity", "correctedValue": "0"})
		case errors.Is(err, service.ErrPricingUnavailable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "pricing unavailable"})
		default:
			slog.Error("got error from checkoutService.EstimateWithdrawal", slog.String("rqID", rqID), slog.String("err", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		}
		return
	}

	c.JSON(http.StatusOK, restConverter.WithdrawalEstimate(estimate))
}
