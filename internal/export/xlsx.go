package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"mobimaster/backend/internal/domain"
)

// ReportXLSX renders the business report as a workbook with a summary
// sheet and a per-transaction detail sheet for the window.
func ReportXLSX(shop ShopInfo, report domain.BusinessReport, transactions []domain.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}

	rows := [][]any{
		{shop.Name},
		{"Business Report", report.Period},
		{"Window", report.StartDate, report.EndDate},
		{},
		{"Period Sales", report.PeriodSales},
		{"Period Profit", report.PeriodProfit},
		{"Period Expenditure", report.PeriodExpenditure},
		{"Period Net", report.PeriodNet},
		{},
		{"Lifetime Sales", report.TotalSales},
		{"Lifetime Profit", report.TotalProfit},
		{"Lifetime Expenditure", report.TotalExpenditure},
		{"Pending Balances", report.TotalPending},
		{},
		{"Category", "Sales"},
		{domain.CategoryMobile, report.CategoryBreakdown[domain.CategoryMobile]},
		{domain.CategoryAccessories, report.CategoryBreakdown[domain.CategoryAccessories]},
		{domain.CategoryRepair, report.CategoryBreakdown[domain.CategoryRepair]},
	}
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(summary, cell, value); err != nil {
				return nil, err
			}
		}
	}

	const detail = "Transactions"
	if _, err := f.NewSheet(detail); err != nil {
		return nil, err
	}
	header := []any{"Transaction", "Date", "Type", "Category", "Item", "Customer", "Selling", "Profit", "Paid", "Left", "Status"}
	for j, value := range header {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		if err := f.SetCellValue(detail, cell, value); err != nil {
			return nil, err
		}
	}
	for i, tx := range transactions {
		row := []any{tx.TransactionID, tx.Date, tx.Type, tx.Category, tx.Item, tx.CustomerName, tx.SellingPrice, tx.Profit, tx.PaidAmount, tx.LeftAmount, tx.Status}
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(detail, cell, value); err != nil {
				return nil, err
			}
		}
	}
	if err := f.SetColWidth(detail, "A", "F", 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
