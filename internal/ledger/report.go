package ledger

import (
	"time"

	"mobimaster/backend/internal/domain"
)

const dateLayout = "2006-01-02"

// PeriodWindow returns the inclusive calendar-date range for a report
// period relative to now. Weekly runs Monday through Sunday. For all_time
// both bounds are zero, meaning no filter.
func PeriodWindow(period string, now time.Time) (start, end time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch period {
	case domain.PeriodDaily:
		return today, today
	case domain.PeriodWeekly:
		weekday := int(today.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		monday := today.AddDate(0, 0, -(weekday - 1))
		return monday, monday.AddDate(0, 0, 6)
	case domain.PeriodMonthly:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first, first.AddDate(0, 1, -1)
	case domain.PeriodYearly:
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		return time.Time{}, time.Time{}
	}
}

func inWindow(date string, start, end time.Time) bool {
	if start.IsZero() && end.IsZero() {
		return true
	}
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return false
	}
	return !day.Before(start) && !day.After(end)
}

// BuildReport aggregates transactions and expenditures into the dashboard
// totals for one period window. Time of day is ignored; lifetime totals
// and the pending figure are computed over the unfiltered collections.
func BuildReport(transactions []domain.Transaction, expenditures []domain.Expenditure, period string, now time.Time) domain.BusinessReport {
	start, end := PeriodWindow(period, now)

	report := domain.BusinessReport{
		Period: period,
		CategoryBreakdown: map[string]int64{
			domain.CategoryMobile:      0,
			domain.CategoryAccessories: 0,
			domain.CategoryRepair:      0,
		},
	}
	if !start.IsZero() {
		report.StartDate = start.Format(dateLayout)
		report.EndDate = end.Format(dateLayout)
	}

	for _, tx := range transactions {
		report.TotalProfit += tx.Profit
		report.TotalPending += tx.LeftAmount
		if tx.Type == domain.TxTypeSale {
			report.TotalSales += tx.SellingPrice
		}
		if !inWindow(tx.Date, start, end) {
			continue
		}
		report.TransactionCount++
		report.PeriodProfit += tx.Profit
		if tx.Type == domain.TxTypeSale {
			report.PeriodSales += tx.SellingPrice
		}
		if _, ok := report.CategoryBreakdown[tx.Category]; ok {
			report.CategoryBreakdown[tx.Category] += tx.SellingPrice
		}
	}

	for _, exp := range expenditures {
		report.TotalExpenditure += exp.Amount
		if !inWindow(exp.Date, start, end) {
			continue
		}
		report.ExpenditureEntries++
		report.PeriodExpenditure += exp.Amount
	}

	report.PeriodNet = report.PeriodProfit - report.PeriodExpenditure
	return report
}
