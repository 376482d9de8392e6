package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
	"github.com/jaehyuk-lee/infinite_buying_bot/utils"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

func (g *XLSXGenerator) Generate(ctx context.Context, details model.PortfolioDetails) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err = g.fillSummarySheet(f, details); err != nil {
		slog.Error("got error while filling summary sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err = g.fillTransactionsSheet(f, details); err != nil {
		slog.Error("got error while filling transactions sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func headerStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
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
			Color:   []string{color},
		},
	})
}

func (g *XLSXGenerator) fillSummarySheet(f *excelize.File, details model.PortfolioDetails) error {
	const sheetName = "Summary"

	p := details.Portfolio

	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	if err := f.MergeCell(sheetName, "A1", "B1"); err != nil {
		return err
	}
	f.SetCellValue(sheetName, "A1", "Portfolio result")

	styleID, err := headerStyle(f, "#cfe2f3")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", styleID); err != nil {
		return err
	}

	rows := [][2]any{
		{"name", p.Name},
		{"total investment", p.TotalInvestment.InexactFloat64()},
		{"installments", int64(p.Installments)},
		{"status", string(p.Status)},
		{"total paid", details.Stats.TotalPaid.InexactFloat64()},
		{"total sold", details.Stats.TotalSold.InexactFloat64()},
	}

	if p.EvaluationResult != nil {
		rows = append(rows,
			[2]any{"net profit", p.EvaluationResult.NetProfit().InexactFloat64()},
			[2]any{"ROI %", p.EvaluationResult.ROIPercent().InexactFloat64()},
		)
	}
	if p.StartDate != nil {
		rows = append(rows, [2]any{"started", p.StartDate.Format("2006-01-02")})
	}
	if p.EndDate != nil {
		rows = append(rows, [2]any{"finished", p.EndDate.Format("2006-01-02")})
	}

	for i, row := range rows {
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", i+2), row[0])
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", i+2), row[1])
	}

	return nil
}

func (g *XLSXGenerator) fillTransactionsSheet(f *excelize.File, details model.PortfolioDetails) error {
	const sheetName = "Transactions"

	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	if err := f.MergeCell(sheetName, "A1", "E1"); err != nil {
		return err
	}
	f.SetCellValue(sheetName, "A1", "Transaction history")

	styleID, err := headerStyle(f, "#d9ead3")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", styleID); err != nil {
		return err
	}

	_ = f.SetCellStr(sheetName, "A2", "date")
	_ = f.SetCellStr(sheetName, "B2", "type")
	_ = f.SetCellStr(sheetName, "C2", "price")
	_ = f.SetCellStr(sheetName, "D2", "quantity")
	_ = f.SetCellStr(sheetName, "E2", "amount")

	for i, tx := range details.Portfolio.Transactions {
		rowNum := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), tx.Date.Format("2006-01-02"))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", rowNum), string(tx.Type))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), tx.Price.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), tx.Quantity.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), tx.Amount().InexactFloat64())
	}

	return nil
}
