package projection

import (
	"github.com/shopspring/decimal"

	"payoff/internal/core"
)

// MonthlyContribution is what goal sets aside each month. A percentage goal
// saves nothing when the surplus is not positive.
func MonthlyContribution(goal *core.SavingsGoal, netSurplus decimal.Decimal) decimal.Decimal {
	if goal == nil {
		return decimal.Zero
	}
	switch goal.Strategy {
	case core.SavingsFixedAmount:
		return goal.MonthlyAmount
	case core.SavingsPercentage:
		if !netSurplus.IsPositive() {
			return decimal.Zero
		}
		return core.RoundCents(netSurplus.Mul(goal.Percentage).Div(hundred))
	}
	return decimal.Zero
}

type savings struct {
	contribution decimal.Decimal
	growth       decimal.Decimal // 1 + monthly rate, zero when not compounding
	total        decimal.Decimal
}

func newSavings(goal *core.SavingsGoal, netSurplus decimal.Decimal) savings {
	s := savings{contribution: MonthlyContribution(goal, netSurplus)}
	if goal != nil && goal.CompoundingRate.IsPositive() {
		s.growth = decimal.NewFromInt(1).Add(goal.CompoundingRate.Div(hundred))
	}
	return s
}

func (s *savings) accumulate() decimal.Decimal {
	s.total = s.total.Add(s.contribution)
	if !s.growth.IsZero() {
		s.total = core.RoundCents(s.total.Mul(s.growth))
	}
	return s.total
}
