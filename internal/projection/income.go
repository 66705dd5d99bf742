package projection

import (
	"github.com/shopspring/decimal"

	"payoff/internal/core"
)

// raiseDue reports whether a salary raise fires in the 1-based month.
func raiseDue(month, raisesPerYear int) bool {
	if month <= 1 {
		return false
	}
	switch raisesPerYear {
	case 1:
		return (month-1)%12 == 0
	case 2:
		return (month-1)%6 == 0
	}
	return false
}

// evaluateIncome returns the income's amount for month and the raise granted
// in that month. A raise permanently updates in.Amount.
func evaluateIncome(month int, in *core.Income) (amount, raise decimal.Decimal) {
	switch in.Kind {
	case core.IncomeSalaryWithRaises:
		if raiseDue(month, in.RaisesPerYear) {
			raise = core.RoundCents(in.Amount.Mul(in.RaisePercentage).Div(hundred))
			in.Amount = in.Amount.Add(raise)
		}
		return in.Amount, raise
	case core.IncomeRegular, core.IncomeOneTime:
		return in.Amount, decimal.Zero
	}
	return in.Amount, decimal.Zero
}
