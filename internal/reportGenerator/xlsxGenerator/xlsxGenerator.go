package xlsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finbridge/portfolio_engine/internal/model"
	"github.com/finbridge/portfolio_engine/utils"
	"github.com/xuri/excelize/v2"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate renders a portfolio statement workbook: one sheet of priced
// positions followed by a totals block.
func (g *XLSXGenerator) Generate(ctx context.Context, valuation model.PortfolioValuation) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	if len(valuation.Positions) == 0 {
		return nil, "", errors.New("empty positions")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillSheet(ctx, f, valuation); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) fillSheet(ctx context.Context, f *excelize.File, valuation model.PortfolioValuation) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.fillSheet"

	const sheetName = "Sheet1"

	err := f.MergeCell(sheetName, "A1", "I1")
	if err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", "Positions")

	headerStyleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, "A1", "A1", headerStyleID); err != nil {
		slog.Error("got error while applying style", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	_ = f.SetCellStr(sheetName, "A2", "class")
	_ = f.SetCellStr(sheetName, "B2", "symbol")
	_ = f.SetCellStr(sheetName, "C2", "quantity")
	_ = f.SetCellStr(sheetName, "D2", "entry price")
	_ = f.SetCellStr(sheetName, "E2", "price")
	_ = f.SetCellStr(sheetName, "F2", "invested")
	_ = f.SetCellStr(sheetName, "G2", "current value")
	_ = f.SetCellStr(sheetName, "H2", "p/l")
	_ = f.SetCellStr(sheetName, "I2", "p/l %")

	for i, position := range valuation.Positions {
		row := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), string(position.AssetClass))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), position.Symbol)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), position.Quantity.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), position.EntryPrice.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), position.ResolvedPrice.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), position.InvestedValue.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), position.CurrentValue.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), position.ProfitLoss.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), position.ProfitLossPct.InexactFloat64())
	}

	rowNum := len(valuation.Positions) + 4

	err = f.MergeCell(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("D%d", rowNum))
	if err != nil {
		return err
	}

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), "Totals")

	totalsStyleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#d9ead3"},
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("A%d", rowNum), totalsStyleID); err != nil {
		slog.Error("got error while applying style", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "invested")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", rowNum), "current value")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", rowNum), "p/l")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", rowNum), "p/l %")

	rowNum++
	_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), valuation.TotalInvested.InexactFloat64())
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), valuation.PortfolioValue.InexactFloat64())
	_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), valuation.TotalProfitLoss.InexactFloat64())
	_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), valuation.TotalProfitLossPct.InexactFloat64())

	return nil
}
