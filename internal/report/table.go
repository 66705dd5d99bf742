// Package report renders projection results into tabular reports.
package report

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"payoff/internal/budget"
	"payoff/internal/projection"
)

// PaidMarker replaces the balance of an extinguished debt.
const PaidMarker = "PAID"

// FormatAmount renders d with thousands separators and two decimals.
func FormatAmount(d decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", d.InexactFloat64())
}

// FormatDuration renders a month count as "X years Y months".
func FormatDuration(months int) string {
	return fmt.Sprintf("%d years %d months", months/12, months%12)
}

// BuildReport lays out res as a month-by-month table.
func BuildReport(title string, res projection.Result, a budget.Analysis) Report {
	r := Report{
		Title: title,
		Summary: [][]string{
			{"Months to freedom", fmt.Sprint(res.MonthsToFreedom)},
			{"Duration", FormatDuration(res.MonthsToFreedom)},
			{"Total interest paid", FormatAmount(res.TotalInterestPaid)},
			{"Final savings", FormatAmount(res.FinalSavings)},
			{"Net surplus", FormatAmount(a.NetSurplus)},
			{"Extra payment power", FormatAmount(a.ExtraPower)},
		},
		Header: []string{"Month", "Date"},
	}

	if len(res.Ledger) > 0 {
		for _, d := range res.Ledger[0].Debts {
			r.Header = append(r.Header, d.Name)
		}
	}
	r.Header = append(r.Header, "Total Remaining", "Extra Pool", "Savings")

	for _, row := range res.Ledger {
		line := make([]string, 0, len(r.Header))
		line = append(line, fmt.Sprint(row.Month), row.Label)
		for _, d := range row.Debts {
			if d.Paid {
				line = append(line, PaidMarker)
				continue
			}
			line = append(line, FormatAmount(d.Balance))
		}
		line = append(line,
			FormatAmount(row.TotalRemaining),
			FormatAmount(row.ExtraPool),
			FormatAmount(row.Savings),
		)
		r.Rows = append(r.Rows, line)
	}
	return r
}
